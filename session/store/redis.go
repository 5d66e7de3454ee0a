package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	cfg "github.com/fairlabor/pobot/config"
	"github.com/fairlabor/pobot/errors"
	"github.com/fairlabor/pobot/message"
	"github.com/fairlabor/pobot/session"
)

// RedisStore implements session storage using Redis. The full session
// record (including messages, buyers, and reports) is stored as one JSON
// document, so child appends are load-modify-save operations.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis configuration for sessions.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "pobot:session:",
		TTL:    24 * time.Hour,
	}
}

// NewRedisStore creates a new Redis-based session store.
func NewRedisStore(config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	if err := cfg.ValidateRedisConfig(config.Addr, config.DB, config.Prefix); err != nil {
		return nil, fmt.Errorf("invalid Redis configuration: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisStore{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}, nil
}

// Save persists a session record to Redis.
func (s *RedisStore) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session record cannot be nil")
	}

	key := s.sessionKey(sess.ID)

	raw, err := json.Marshal(sess.Clone())
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.client.SAdd(ctx, s.setKey(), sess.ID).Err(); err != nil {
		return fmt.Errorf("failed to add session to index: %w", err)
	}

	return nil
}

// Load loads a session record from Redis.
func (s *RedisStore) Load(ctx context.Context, id string) (*session.Session, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session %s: %w", id, errors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}

	return &sess, nil
}

// Delete removes a session record from Redis.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.client.SRem(ctx, s.setKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to update session index: %w", err)
	}
	return nil
}

// List returns all session IDs.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored sessions.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	count, err := s.client.SCard(ctx, s.setKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return int(count), nil
}

// Exists checks if a session exists.
func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return exists > 0, nil
}

// AppendMessage adds a message to the session's ordered log.
func (s *RedisStore) AppendMessage(ctx context.Context, sessionID string, msg *message.Message) error {
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.AppendMessage(message.Clone(msg))
	})
}

// AddBuyerCompany records a resolved buyer, deduplicated by name.
func (s *RedisStore) AddBuyerCompany(ctx context.Context, sessionID, name string) error {
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.AddBuyerCompany(name)
	})
}

// AddReport appends a violation report to the session.
func (s *RedisStore) AddReport(ctx context.Context, sessionID string, report *session.ViolationReport) error {
	return s.mutate(ctx, sessionID, func(sess *session.Session) {
		sess.AddReport(report.Clone())
	})
}

func (s *RedisStore) mutate(ctx context.Context, sessionID string, fn func(*session.Session)) error {
	sess, err := s.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(sess)
	return s.Save(ctx, sess)
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + id
}

func (s *RedisStore) setKey() string {
	return s.prefix + "set"
}
