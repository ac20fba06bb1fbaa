package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", "https://clerk.celulas.test")

	token, err := svc.GenerateIdentityToken("user_2abc", "ana@igreja.test", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateIdentityToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.Subject)
	assert.Equal(t, "ana@igreja.test", claims.Email)
}

func TestValidateIdentityTokenRejects(t *testing.T) {
	svc := NewService("test-secret", "issuer-a")

	expired, err := svc.GenerateIdentityToken("user_1", "", -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateIdentityToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	otherKey, err := NewService("other-secret", "issuer-a").GenerateIdentityToken("user_1", "", time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateIdentityToken(otherKey)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherIssuer, err := NewService("test-secret", "issuer-b").GenerateIdentityToken("user_1", "", time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateIdentityToken(otherIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := svc.GenerateIdentityToken("", "", time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateIdentityToken(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateIdentityToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
