package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "sales@example.com", "sales")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "sales@example.com", claims.Email)
	assert.Equal(t, "sales", claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)

	_, err = ValidateToken("")
	assert.Error(t, err)
}

func TestInitInstallsConfiguredSecret(t *testing.T) {
	t.Cleanup(func() { jwtSecret = []byte(devSecret) })

	fallbackToken, err := GenerateToken(5, "a@b.co", "sales")
	require.NoError(t, err)

	Init("operator-configured-secret")

	// tokens signed under the fallback must not verify anymore
	_, err = ValidateToken(fallbackToken)
	assert.Error(t, err)

	token, err := GenerateToken(5, "a@b.co", "sales")
	require.NoError(t, err)
	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.UserID)

	// empty value keeps the installed secret
	Init("")
	_, err = ValidateToken(token)
	assert.NoError(t, err)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(1, "a@b.co", "admin")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}
