package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionObjectGetters(t *testing.T) {
	now := time.Now()
	exp := now.Add(time.Hour)

	sess := &session.SessionObject{
		UserID:         "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		SessionID:      "sid-1",
		Audience:       []string{"test-audience"},
		Issuer:         "test-issuer",
		IssuedAt:       &now,
		ExpirationDate: &exp,
	}

	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", sess.GetUserID())
	assert.Equal(t, "sid-1", sess.GetSessionID())
	assert.Equal(t, []string{"test-audience"}, sess.GetAudience())
	assert.Equal(t, "test-issuer", sess.GetIssuer())
	assert.Equal(t, &now, sess.GetIssuedAt())
	assert.Equal(t, &exp, sess.GetExpiration())

	uid, err := sess.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", uid.String())
}

func TestSessionObjectGetUserUUID_Invalid(t *testing.T) {
	sess := &session.SessionObject{UserID: "not-a-uuid"}

	_, err := sess.GetUserUUID()
	assert.Error(t, err)
}

func TestSessionClaims(t *testing.T) {
	now := time.Now()

	claims := &session.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		SID:       "sid-1",
		UserEmail: "person@example.com",
	}

	assert.Equal(t, "subject-123", claims.Subject())
	assert.Equal(t, "subject-123", claims.UserID())
	assert.Equal(t, "sid-1", claims.SessionID())
	assert.Equal(t, "person@example.com", claims.Email())
	assert.WithinDuration(t, now, claims.IssuedAt(), time.Second)
	assert.WithinDuration(t, now.Add(time.Hour), claims.Expires(), time.Second)

	t.Run("uid overrides subject", func(t *testing.T) {
		claims := &session.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-123"},
			UID:              "user-456",
		}
		assert.Equal(t, "user-456", claims.UserID())
		assert.Equal(t, "subject-123", claims.Subject())
	})

	t.Run("zero times when claims are unset", func(t *testing.T) {
		claims := &session.SessionClaims{}
		assert.True(t, claims.Expires().IsZero())
		assert.True(t, claims.IssuedAt().IsZero())
	})
}
