package service

import (
	"context"

	"github.com/plumstack/ostack-console/client"
)

// Login authenticates against Keystone and returns the issued token. The
// HTTP layer wraps it into a signed session cookie; the raw token never
// leaves the process.
func (s *Service) Login(ctx context.Context, username, password string) (*client.Token, error) {
	return s.Identity.Login(ctx, username, password)
}

// Healthcheck verifies the database and the identity endpoint answer.
func (s *Service) Healthcheck(ctx context.Context) error {
	db, err := s.Repository.DB.DB()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return s.Identity.Ping(ctx)
}
