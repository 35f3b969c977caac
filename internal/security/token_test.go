package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Create(Identity{ProfileID: "prof-1", Name: "alice", AvatarURL: "https://cdn.example/a.png"})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	id, err := svc.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, "prof-1", id.ProfileID)
	assert.Equal(t, "alice", id.Name)
	assert.Equal(t, "https://cdn.example/a.png", id.AvatarURL)
}

func TestTokenServiceRejectsBadTokens(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Parse("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("other-secret", time.Hour)
		token, err := other.Create(Identity{ProfileID: "prof-1"})
		assert.NoError(t, err)

		_, err = svc.Parse(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewTokenService("test-secret", -time.Minute)
		token, err := short.Create(Identity{ProfileID: "prof-1"})
		assert.NoError(t, err)

		_, err = svc.Parse(token)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := svc.Create(Identity{})
		assert.NoError(t, err)

		_, err = svc.Parse(token)
		assert.Error(t, err)
	})
}
