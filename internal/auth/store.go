package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	blacklistKeyPrefix = "blacklist:"
	ticketKeyFormat    = "ws_ticket:%s"

	// TicketTTL bounds how long a websocket ticket may sit unused.
	TicketTTL = 30 * time.Second
)

// ErrStoreUnavailable is returned when Redis is not configured.
var ErrStoreUnavailable = errors.New("token store unavailable")

// RevocationStore records revoked token IDs until they would expire anyway.
type RevocationStore struct {
	rdb *redis.Client
}

// NewRevocationStore returns a RevocationStore. A nil client disables revocation.
func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb}
}

// Revoke blacklists jti for ttl.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	if jti == "" {
		return errors.New("token has no id")
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Lookup failures count as not revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, blacklistKeyPrefix+jti).Result()
	return err == nil && n > 0
}

// TicketStore issues short-lived single-use tickets for websocket upgrades,
// since browsers cannot set an Authorization header on the handshake.
type TicketStore struct {
	rdb *redis.Client
}

// NewTicketStore returns a TicketStore backed by rdb.
func NewTicketStore(rdb *redis.Client) *TicketStore {
	return &TicketStore{rdb: rdb}
}

// Issue stores a new ticket for userID.
func (s *TicketStore) Issue(ctx context.Context, userID uint) (string, error) {
	if s.rdb == nil {
		return "", ErrStoreUnavailable
	}
	ticket := uuid.NewString()
	if err := s.rdb.Set(ctx, fmt.Sprintf(ticketKeyFormat, ticket), userID, TicketTTL).Err(); err != nil {
		return "", fmt.Errorf("store ticket: %w", err)
	}
	return ticket, nil
}

// Redeem consumes ticket and returns the user it was issued to.
func (s *TicketStore) Redeem(ctx context.Context, ticket string) (uint, error) {
	if s.rdb == nil {
		return 0, ErrStoreUnavailable
	}
	val, err := s.rdb.GetDel(ctx, fmt.Sprintf(ticketKeyFormat, ticket)).Result()
	if err != nil {
		return 0, fmt.Errorf("redeem ticket: %w", err)
	}
	id, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("corrupt ticket: %w", err)
	}
	return uint(id), nil
}
