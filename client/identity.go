package client

import (
	"context"
	"net/http"
	"time"

	"github.com/plumstack/ostack-console/config"
)

const subjectTokenHeader = "X-Subject-Token"

// IdentityClient talks to Keystone.
type IdentityClient struct {
	base *BaseClient
}

func InitIdentityClient(cfg *config.EnvConfig) *IdentityClient {
	return &IdentityClient{base: NewBaseClient(cfg.OpenStack.RootURL + "/identity/v3")}
}

type Token struct {
	Username  string
	Token     string
	ExpiresAt time.Time
}

// Login performs password authentication with unscoped authorization. The
// token itself arrives in the X-Subject-Token response header.
func (c *IdentityClient) Login(ctx context.Context, username, password string) (*Token, error) {
	body := map[string]any{
		"auth": map[string]any{
			"identity": map[string]any{
				"methods": []string{"password"},
				"password": map[string]any{
					"user": map[string]any{
						"name":     username,
						"domain":   map[string]string{"name": "Default"},
						"password": password,
					},
				},
			},
		},
	}
	resp, err := c.base.do(ctx, http.MethodPost, "/auth/tokens", "", nil, body)
	if err != nil {
		return nil, err
	}
	var payload struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := decode(resp, "token", &payload); err != nil {
		return nil, err
	}
	return &Token{
		Username:  payload.User.Name,
		Token:     resp.Header.Get(subjectTokenHeader),
		ExpiresAt: payload.ExpiresAt,
	}, nil
}

// Ping checks that Keystone answers at all; used by the healthcheck.
func (c *IdentityClient) Ping(ctx context.Context) error {
	_, err := c.base.do(ctx, http.MethodGet, "", "", nil, nil)
	return err
}
