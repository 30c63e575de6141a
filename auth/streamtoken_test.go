package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

const secret = "test-secret"

func TestStreamTokenRoundTrip(t *testing.T) {
	token, err := MintStreamToken(secret, "admin-1", models.RoleAdmin)
	require.NoError(t, err)

	userID, err := VerifyStreamToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", userID)
}

func TestStreamTokenRejectsNonAdminRole(t *testing.T) {
	token, err := MintStreamToken(secret, "user-1", models.RoleCustomer)
	require.NoError(t, err)

	_, err = VerifyStreamToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidStreamToken)
}

func TestStreamTokenRejectsWrongSecret(t *testing.T) {
	token, err := MintStreamToken(secret, "admin-1", models.RoleAdmin)
	require.NoError(t, err)

	_, err = VerifyStreamToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidStreamToken)
}

func TestStreamTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyStreamToken(secret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidStreamToken)
}
