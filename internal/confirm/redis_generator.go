package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nexora/account-api/internal/platform/logger"
)

// consumeScript atomically compares the stored token digest against the
// presented one and deletes the key on match. Without the script, a
// GET/DEL pair would let two concurrent redemptions both succeed.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGenerator implements Generator backed by Redis. Expiry is owned by
// the key TTL; consumption is an atomic compare-and-delete.
type RedisGenerator struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisGenerator creates a Redis-backed confirmation token generator.
// If logger is nil, a default logger is used.
func NewRedisGenerator(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisGenerator {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisGenerator{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "confirmation_generator")),
	}
}

// Ensure RedisGenerator implements Generator
var _ Generator = (*RedisGenerator)(nil)

func tokenKey(accountID uuid.UUID) string {
	return "confirm:" + accountID.String()
}

// Issue implements Generator.Issue
func (g *RedisGenerator) Issue(ctx context.Context, accountID uuid.UUID) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	token, err := newToken()
	if err != nil {
		return "", err
	}

	// SET overwrites any outstanding token for the account, so at most
	// one token is redeemable at a time.
	if err := g.client.Set(ctx, tokenKey(accountID), hashToken(token), g.ttl).Err(); err != nil {
		log.Error("failed to store confirmation token",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID.String()))
		return "", fmt.Errorf("failed to store confirmation token: %w", err)
	}

	log.Debug("confirmation token issued",
		slog.String("account_id", accountID.String()),
		slog.Duration("ttl", g.ttl))
	return token, nil
}

// ValidateAndConsume implements Generator.ValidateAndConsume
func (g *RedisGenerator) ValidateAndConsume(ctx context.Context, accountID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if token == "" {
		return ErrInvalidToken
	}

	deleted, err := consumeScript.Run(ctx, g.client, []string{tokenKey(accountID)}, hashToken(token)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error("failed to consume confirmation token",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID.String()))
		return fmt.Errorf("failed to consume confirmation token: %w", err)
	}
	if deleted == 0 {
		log.Debug("confirmation token rejected",
			slog.String("account_id", accountID.String()))
		return ErrInvalidToken
	}

	log.Info("confirmation token consumed",
		slog.String("account_id", accountID.String()))
	return nil
}
