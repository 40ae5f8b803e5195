package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/accountkit/account-service/internal/core/domain"
)

// unreachableClient points at a closed local port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestUserCache_DefaultsAndKey(t *testing.T) {
	c := NewUserCache(nil, 0, zerolog.Nop())
	if c.ttl != defaultUserCacheTTL {
		t.Fatalf("expected default ttl, got %v", c.ttl)
	}
	if got := c.key("abc"); got != "user:abc" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestUserCache_DegradesWhenRedisIsDown(t *testing.T) {
	c := NewUserCache(unreachableClient(t), time.Minute, zerolog.Nop())
	ctx := context.Background()
	u := &domain.User{ID: "1", Username: "john", Role: domain.RoleUser}

	// None of these may panic or block; failures are only logged.
	c.Set(ctx, u)
	c.Delete(ctx, u.ID)
	if _, ok := c.Get(ctx, u.ID); ok {
		t.Fatalf("expected miss when redis is unreachable")
	}
}

func TestEventPublisher_ReturnsErrorWhenRedisIsDown(t *testing.T) {
	p := NewEventPublisher(unreachableClient(t), "")
	if p.stream != defaultStream {
		t.Fatalf("expected default stream, got %q", p.stream)
	}
	err := p.Publish(context.Background(), domain.UserEvent{Type: domain.EventUserRegistered, UserID: "1"})
	if err == nil {
		t.Fatalf("expected publish error")
	}
}
