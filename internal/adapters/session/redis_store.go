package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const (
	keyToken        = "token"
	keyRole         = "role"
	keyDepartmentID = "department_id"
)

// RedisClient is the subset of *redis.Client the store needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps the session under <prefix>:<sessionID>:<key> with a TTL
// so an abandoned session expires on its own.
type RedisStore struct {
	client    RedisClient
	prefix    string
	sessionID string
	ttl       time.Duration
}

var _ ports.SessionStore = (*RedisStore)(nil)

func NewRedisStore(client RedisClient, prefix, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

// StableSessionID derives a session id that is the same for every
// invocation by the same user against the same backend.
func StableSessionID(username, hostname, apiBaseURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(username+"@"+hostname+"|"+apiBaseURL)).String()
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + s.sessionID + ":" + name
}

func (s *RedisStore) keys() []string {
	return []string{s.key(keyToken), s.key(keyRole), s.key(keyDepartmentID)}
}

func (s *RedisStore) Set(ctx context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	// Drop any previous department so a stale one cannot survive.
	if err := s.client.Del(ctx, s.key(keyDepartmentID)).Err(); err != nil {
		return fmt.Errorf("resetting session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(keyToken), session.Token, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	if err := s.client.Set(ctx, s.key(keyRole), string(session.Role), s.ttl).Err(); err != nil {
		return fmt.Errorf("storing session role: %w", err)
	}
	if session.DepartmentID != nil {
		value := strconv.FormatInt(*session.DepartmentID, 10)
		if err := s.client.Set(ctx, s.key(keyDepartmentID), value, s.ttl).Err(); err != nil {
			return fmt.Errorf("storing session department: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context) (domain.Session, error) {
	token, err := s.lookup(ctx, keyToken)
	if err != nil {
		return domain.Session{}, err
	}
	role, err := s.lookup(ctx, keyRole)
	if err != nil {
		return domain.Session{}, err
	}
	department, err := s.lookup(ctx, keyDepartmentID)
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{Token: token, Role: domain.ParseRole(role)}
	if department != "" {
		if id, err := strconv.ParseInt(department, 10, 64); err == nil {
			session.DepartmentID = &id
		}
	}

	// Half-expired keys leave a token without a role or the reverse.
	if session.Validate() != nil {
		if _, err := s.Clear(ctx); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, nil
	}
	return session, nil
}

func (s *RedisStore) lookup(ctx context.Context, name string) (string, error) {
	value, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session %s: %w", name, err)
	}
	return value, nil
}

func (s *RedisStore) Clear(ctx context.Context) (bool, error) {
	deleted, err := s.client.Del(ctx, s.keys()...).Result()
	if err != nil {
		return false, fmt.Errorf("clearing session: %w", err)
	}
	return deleted > 0, nil
}
