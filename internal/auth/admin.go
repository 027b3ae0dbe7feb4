package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials rejects a failed admin login.
var ErrInvalidCredentials = errors.New("admin authentication failed")

// Admin gates the admin-only routes. The credential check is a plain
// equality comparison against fixed club-level values; a successful login
// issues a short-lived HS256 token so later requests carry a Bearer header
// instead of the password.
type Admin struct {
	Username string
	Password string
	secret   []byte
	tokenTTL time.Duration
}

func NewAdmin(username, password, secret string) *Admin {
	return &Admin{
		Username: username,
		Password: password,
		secret:   []byte(secret),
		tokenTTL: 12 * time.Hour,
	}
}

// Login compares the trimmed credentials and returns a signed session token.
func (a *Admin) Login(username, password string) (string, error) {
	if strings.TrimSpace(username) != a.Username || strings.TrimSpace(password) != a.Password {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"iat": now.Unix(),
		"exp": now.Add(a.tokenTTL).Unix(),
	})
	return token.SignedString(a.secret)
}

// VerifyToken checks a session token's signature, expiry and subject.
func (a *Admin) VerifyToken(tokenString string) error {
	if tokenString == "" {
		return errors.New("empty token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errors.New("invalid token claims")
	}
	if sub, _ := claims["sub"].(string); sub != "admin" {
		return errors.New("subject claim is not admin")
	}
	return nil
}
