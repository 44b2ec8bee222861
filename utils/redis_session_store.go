package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionData is everything kept server side for a browser session.
type SessionData struct {
	UserId string `json:"user_id,omitempty"`
	// Notices are one-shot messages shown on the next rendered page.
	Notices []string `json:"notices,omitempty"`
	// OAuthState guards the OAuth callback against forged requests.
	OAuthState string `json:"oauth_state,omitempty"`
}

type SessionStore interface {
	Create(ctx context.Context, data *SessionData) (string, error)
	Get(ctx context.Context, sessionId string) (*SessionData, error)
	Save(ctx context.Context, sessionId string, data *SessionData) error
	Destroy(ctx context.Context, sessionId string) error
}

type RedisSessionStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
	ttl       time.Duration
}

func GetRedisSessionStore(ctx context.Context, ttl time.Duration) (*RedisSessionStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return &RedisSessionStore{
		inner:     redisClient,
		keyParser: RedisKeyParser{prefix: "session", delimiter: "__"},
		ttl:       ttl,
	}, nil
}

type RedisKeyParser struct {
	prefix    string
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return id != "" && !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeSessionKey(sessionId string) (string, error) {
	if !r.ValidateId(sessionId) {
		return "", fmt.Errorf("invalid session id: %s", sessionId)
	}
	return fmt.Sprintf("%s%s%s", r.prefix, r.delimiter, sessionId), nil
}

func (r RedisKeyParser) DecodeSessionKey(key string) (string, error) {
	splits := strings.Split(key, r.delimiter)
	if len(splits) != 2 || splits[0] != r.prefix {
		return "", fmt.Errorf("invalid key: %s", key)
	}
	return splits[1], nil
}

func (r *RedisSessionStore) Create(ctx context.Context, data *SessionData) (string, error) {
	sessionId := uuid.New().String()
	return sessionId, r.Save(ctx, sessionId, data)
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionId string) (*SessionData, error) {
	key, err := r.keyParser.EncodeSessionKey(sessionId)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	raw, err := r.inner.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to read session")
	}
	var data SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, errors.Wrap(err, "corrupted session")
	}
	return &data, nil
}

// Save overwrites the session and refreshes its ttl.
func (r *RedisSessionStore) Save(ctx context.Context, sessionId string, data *SessionData) error {
	key, err := r.keyParser.EncodeSessionKey(sessionId)
	if err != nil {
		return err
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, key, b, r.ttl).Err()
}

func (r *RedisSessionStore) Destroy(ctx context.Context, sessionId string) error {
	key, err := r.keyParser.EncodeSessionKey(sessionId)
	if err != nil {
		return nil
	}
	return r.inner.Del(ctx, key).Err()
}

// MemorySessionStore keeps sessions in process. Used in tests and when redis
// is not configured in development.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionData
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]SessionData)}
}

func (m *MemorySessionStore) Create(ctx context.Context, data *SessionData) (string, error) {
	sessionId := uuid.New().String()
	return sessionId, m.Save(ctx, sessionId, data)
}

func (m *MemorySessionStore) Get(ctx context.Context, sessionId string) (*SessionData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.sessions[sessionId]
	if !ok {
		return nil, ErrSessionNotFound
	}
	data.Notices = append([]string{}, data.Notices...)
	return &data, nil
}

func (m *MemorySessionStore) Save(ctx context.Context, sessionId string, data *SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *data
	cp.Notices = append([]string{}, data.Notices...)
	m.sessions[sessionId] = cp
	return nil
}

func (m *MemorySessionStore) Destroy(ctx context.Context, sessionId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionId)
	return nil
}
