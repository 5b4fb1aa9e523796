package token

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatalf("Error generating random bytes: %v", err)
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

func TestJwtService(t *testing.T) {
	// Setup
	issuer := "testIssuer"
	svc := NewJwtService(newSecret(), issuer)

	t.Run("Generate and Decode valid token", func(t *testing.T) {
		claims := map[string]interface{}{
			"player": "alice",
		}

		token, err := svc.Generate(claims, time.Minute*5)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		decoded, err := svc.Decode(token)
		assert.NoError(t, err)
		assert.Equal(t, "alice", decoded["player"])
		assert.Equal(t, issuer, decoded["iss"])
	})

	t.Run("Decode invalid token", func(t *testing.T) {
		_, err := svc.Decode("invalidTokenString")
		assert.Error(t, err)
	})

	t.Run("Decode expired token", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"player": "alice"}, -time.Minute)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("Decode token signed with another secret", func(t *testing.T) {
		other := NewJwtService(newSecret(), issuer)
		token, err := other.Generate(map[string]interface{}{}, time.Minute)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.Error(t, err)
	})

	t.Run("Decode token from another issuer", func(t *testing.T) {
		secret := newSecret()
		token, err := NewJwtService(secret, "someoneElse").Generate(map[string]interface{}{}, time.Minute)
		require.NoError(t, err)

		_, err = NewJwtService(secret, issuer).Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSessionTokens(t *testing.T) {
	svc := NewJwtService(newSecret(), "vinom-maze")

	t.Run("Issue and resolve", func(t *testing.T) {
		id := uuid.New()
		token, err := svc.Issue(id, time.Hour)
		require.NoError(t, err)

		got, err := svc.SessionID(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("Token without session", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{"player": "alice"}, time.Hour)
		require.NoError(t, err)

		_, err = svc.SessionID(token)
		assert.ErrorIs(t, err, ErrMissingSession)
	})

	t.Run("Malformed session claim", func(t *testing.T) {
		token, err := svc.Generate(map[string]interface{}{ClaimSessionID: "not-a-uuid"}, time.Hour)
		require.NoError(t, err)

		_, err = svc.SessionID(token)
		assert.ErrorIs(t, err, ErrMissingSession)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := svc.Issue(uuid.New(), -time.Minute)
		require.NoError(t, err)

		_, err = svc.SessionID(token)
		assert.Error(t, err)
	})
}
