package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Event types published on the per-user channel
const (
	EventSessionCreated = "session.created"
	EventSessionRevoked = "session.revoked"
)

// Info one active session, keyed by token id
type Info struct {
	TokenID   string    `json:"token_id"`
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Event a session lifecycle notification
type Event struct {
	Type    string    `json:"type"`
	UserID  uint      `json:"user_id"`
	TokenID string    `json:"token_id,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// Registry tracks issued token ids in Redis so sessions can be revoked before expiry
type Registry struct {
	client *redis.Client
	prefix string
}

func NewRegistry(config *Config) *Registry {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRegistryWithClient(client, config.Prefix)
}

// NewRegistryWithClient wraps an existing client
func NewRegistryWithClient(client *redis.Client, prefix string) *Registry {
	if prefix == "" {
		prefix = "irigasi:session"
	}
	return &Registry{
		client: client,
		prefix: prefix,
	}
}

func (r *Registry) Close() error {
	return r.client.Close()
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetClient raw client for advanced use
func (r *Registry) GetClient() *redis.Client {
	return r.client
}

// Register stores a session until its token expires
func (r *Registry) Register(ctx context.Context, info Info) error {
	ttl := time.Until(info.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", info.TokenID)
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now()
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	userKey := r.userKey(info.UserID)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(info.TokenID), data, ttl)
	pipe.SAdd(ctx, userKey, info.TokenID)
	pipe.Expire(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("register session: %w", err)
	}

	return r.Publish(ctx, Event{Type: EventSessionCreated, UserID: info.UserID, TokenID: info.TokenID})
}

// IsActive reports whether the token id is still registered
func (r *Registry) IsActive(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.sessionKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}

// Get returns the stored session, redis.Nil when unknown
func (r *Registry) Get(ctx context.Context, tokenID string) (*Info, error) {
	data, err := r.client.Get(ctx, r.sessionKey(tokenID)).Bytes()
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &info, nil
}

// Revoke removes one session (logout)
func (r *Registry) Revoke(ctx context.Context, tokenID, reason string) error {
	info, err := r.Get(ctx, tokenID)
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(tokenID))
	pipe.SRem(ctx, r.userKey(info.UserID), tokenID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return r.Publish(ctx, Event{Type: EventSessionRevoked, UserID: info.UserID, TokenID: tokenID, Reason: reason})
}

// RevokeUser removes every session of a user and returns how many were active
func (r *Registry) RevokeUser(ctx context.Context, userID uint, reason string) (int, error) {
	userKey := r.userKey(userID)
	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.sessionKey(id))
	}
	keys = append(keys, userKey)

	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	// the user set itself is one of the deleted keys
	count := int(removed)
	if len(ids) > 0 {
		count--
	}
	if count < 0 {
		count = 0
	}

	if err := r.Publish(ctx, Event{Type: EventSessionRevoked, UserID: userID, Reason: reason}); err != nil {
		return count, err
	}
	return count, nil
}

// ListUser active sessions of a user, dropping ids whose session key has expired
func (r *Registry) ListUser(ctx context.Context, userID uint) ([]Info, error) {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]Info, 0, len(ids))
	for _, id := range ids {
		info, err := r.Get(ctx, id)
		if err == redis.Nil {
			r.client.SRem(ctx, r.userKey(userID), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *info)
	}
	return sessions, nil
}

// Publish sends an event to the user's channel
func (r *Registry) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channelKey(event.UserID), data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe listens to the events of one user
func (r *Registry) Subscribe(ctx context.Context, userID uint) *redis.PubSub {
	return r.client.Subscribe(ctx, r.channelKey(userID))
}

// DecodeEvent parses a pub/sub payload
func DecodeEvent(payload string) (Event, error) {
	var e Event
	err := json.Unmarshal([]byte(payload), &e)
	return e, err
}

func (r *Registry) sessionKey(tokenID string) string {
	return fmt.Sprintf("%s:token:%s", r.prefix, tokenID)
}

func (r *Registry) userKey(userID uint) string {
	return fmt.Sprintf("%s:user:%s", r.prefix, strconv.FormatUint(uint64(userID), 10))
}

func (r *Registry) channelKey(userID uint) string {
	return fmt.Sprintf("%s:channel:user:%d", r.prefix, userID)
}
