package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mmfc-attendance/internal/auth"
)

func TestLoginIssuesVerifiableToken(t *testing.T) {
	admin := auth.NewAdmin("admin", "mmfc1234", "test-secret")

	token, err := admin.Login("admin", "mmfc1234")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, admin.VerifyToken(token))
}

func TestLoginTrimsCredentials(t *testing.T) {
	admin := auth.NewAdmin("admin", "mmfc1234", "test-secret")

	token, err := admin.Login("  admin ", " mmfc1234  ")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	admin := auth.NewAdmin("admin", "mmfc1234", "test-secret")

	_, err := admin.Login("admin", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = admin.Login("hacker", "mmfc1234")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestVerifyTokenRejectsForgedToken(t *testing.T) {
	admin := auth.NewAdmin("admin", "mmfc1234", "test-secret")
	other := auth.NewAdmin("admin", "mmfc1234", "other-secret")

	token, err := other.Login("admin", "mmfc1234")
	assert.NoError(t, err)

	// Signed under a different secret, so verification must fail.
	assert.Error(t, admin.VerifyToken(token))
	assert.Error(t, admin.VerifyToken(""))
	assert.Error(t, admin.VerifyToken("not-a-token"))
}
