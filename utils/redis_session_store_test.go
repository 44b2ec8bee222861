package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKeyParser(t *testing.T) {
	p := &RedisKeyParser{prefix: "session", delimiter: "_"}
	validId := "valid-session-id"
	expectedKey := "session_valid-session-id"

	assert.True(t, p.ValidateId(validId))
	assert.False(t, p.ValidateId("invalid_session_id"))
	assert.False(t, p.ValidateId(""))

	k, err := p.EncodeSessionKey(validId)
	assert.Nil(t, err)
	assert.Equal(t, expectedKey, k)

	_, err = p.EncodeSessionKey("invalid_session_id")
	assert.NotNil(t, err)

	id, err := p.DecodeSessionKey(expectedKey)
	assert.Nil(t, err)
	assert.Equal(t, validId, id)

	_, err = p.DecodeSessionKey("other_valid-session-id")
	assert.NotNil(t, err)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	id, err := s.Create(ctx, &SessionData{UserId: "user-id", Notices: []string{"hello"}})
	require.Nil(t, err)
	require.NotEmpty(t, id)

	data, err := s.Get(ctx, id)
	require.Nil(t, err)
	assert.Equal(t, "user-id", data.UserId)
	assert.Equal(t, []string{"hello"}, data.Notices)

	// Mutating the returned copy must not leak into the store.
	data.Notices = append(data.Notices, "world")
	data.Notices[0] = "changed"
	again, err := s.Get(ctx, id)
	require.Nil(t, err)
	assert.Equal(t, []string{"hello"}, again.Notices)

	data.Notices = nil
	require.Nil(t, s.Save(ctx, id, data))
	again, _ = s.Get(ctx, id)
	assert.Empty(t, again.Notices)

	require.Nil(t, s.Destroy(ctx, id))
	_, err = s.Get(ctx, id)
	assert.Equal(t, ErrSessionNotFound, err)
}
