package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.Sign("user-42", time.Minute)
	require.NoError(t, err)

	userID, err := v.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestRejectsMissingToken(t *testing.T) {
	v := NewVerifier("test-secret")
	_, err := v.UserID("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsMalformedToken(t *testing.T) {
	v := NewVerifier("test-secret")
	_, err := v.UserID("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsExpiredToken(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.Sign("user-42", -time.Minute)
	require.NoError(t, err)

	_, err = v.UserID(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRejectsWrongSecret(t *testing.T) {
	signer := NewVerifier("secret-a")
	token, err := signer.Sign("user-42", time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("secret-b").UserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
