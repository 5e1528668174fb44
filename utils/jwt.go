package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/plumstack/ostack-console/config"
)

// Session claims wrap the upstream identity token so the browser only
// ever holds a signed cookie, never the raw OpenStack token.
type SessionClaims struct {
	Username  string `json:"username"`
	AuthToken string `json:"auth_token"`
	jwt.RegisteredClaims
}

func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

func CreateSessionToken(username, authToken string, expiresAt time.Time, config *config.EnvConfig) (string, error) {
	claims := SessionClaims{
		Username:  username,
		AuthToken: authToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWT.SecretKey))
}

func ParseSessionToken(tokenString string, config *config.EnvConfig) (*SessionClaims, error) {
	secret := []byte(config.JWT.SecretKey)
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

func InjectClaimsToContext(c *gin.Context, claims *SessionClaims) {
	c.Set("username", claims.Username)
	c.Set("auth_token", claims.AuthToken)
}

func GetAuthTokenFromContext(c *gin.Context) (string, error) {
	token, ok := c.Get("auth_token")
	if !ok {
		return "", errors.New("auth_token is missing from context")
	}
	tokenStr, ok := token.(string)
	if !ok || tokenStr == "" {
		return "", errors.New("invalid auth_token in context")
	}
	return tokenStr, nil
}
