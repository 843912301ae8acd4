package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoxin-go/webchat/internal/infrastructure/cache/port"
)

// Channel identifies which UI context a user's live connection represents.
// A user may hold one binding per channel at the same time: the open
// conversation view and the conversation list view are independent delivery
// targets.
type Channel string

const (
	ChannelConversation Channel = "conversation"
	ChannelDirectory    Channel = "directory"
)

// ParseChannel normalizes a wire-level channel value.
func ParseChannel(v string) (Channel, error) {
	switch v {
	case "", "conversation":
		return ChannelConversation, nil
	case "directory", "list":
		return ChannelDirectory, nil
	default:
		return "", fmt.Errorf("presence: unknown channel %q", v)
	}
}

// DefaultTTL matches the session lifetime of the legacy deployment.
const DefaultTTL = 12 * time.Hour

// Registry maps (user id, channel) to at most one live connection handle.
// Bindings are kept in the shared cache with a TTL so they expire on their
// own when a client vanishes without disconnecting. A new bind overwrites
// any previous handle (last-writer-wins); the abandoned socket gets no
// takeover signal from here.
type Registry struct {
	cache  port.Cache
	logger *zap.SugaredLogger
	ttl    time.Duration
}

func NewRegistry(cache port.Cache, logger *zap.SugaredLogger, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{cache: cache, logger: logger, ttl: ttl}
}

// Bind associates handle with (userID, channel), replacing any previous binding.
func (r *Registry) Bind(ctx context.Context, userID int64, channel Channel, handle string) error {
	if err := r.cache.Set(ctx, bindingKey(userID, channel), handle, r.ttl); err != nil {
		return fmt.Errorf("presence: bind user %d: %w", userID, err)
	}
	return nil
}

// Lookup returns the current handle for (userID, channel). Absence is the
// common case, not an error; a cache failure is also reported as absent so
// that losing presence never aborts message delivery.
func (r *Registry) Lookup(ctx context.Context, userID int64, channel Channel) (string, bool) {
	handle, err := r.cache.Get(ctx, bindingKey(userID, channel))
	if err != nil {
		if !errors.Is(err, port.ErrMiss) {
			r.logger.Warnf("presence: lookup user %d channel %s: %v", userID, channel, err)
		}
		return "", false
	}
	return handle, true
}

// Unbind removes the binding for (userID, channel) if it still points at
// handle. The compare and the delete are one atomic step, so a newer login's
// binding can never be evicted by a stale disconnect. Passing an empty handle
// removes unconditionally. Unbinding an absent binding is a no-op.
func (r *Registry) Unbind(ctx context.Context, userID int64, channel Channel, handle string) error {
	key := bindingKey(userID, channel)
	if handle == "" {
		if _, err := r.cache.Del(ctx, key); err != nil {
			return fmt.Errorf("presence: unbind user %d: %w", userID, err)
		}
		return nil
	}
	if _, err := r.cache.DelIfEquals(ctx, key, handle); err != nil {
		return fmt.Errorf("presence: unbind user %d: %w", userID, err)
	}
	return nil
}

// bindingKey mirrors the legacy cache layout: chat:sid:<uid> for the open
// conversation view, chat:list:sid:<uid> for the list view.
func bindingKey(userID int64, channel Channel) string {
	if channel == ChannelDirectory {
		return "chat:list:sid:" + strconv.FormatInt(userID, 10)
	}
	return "chat:sid:" + strconv.FormatInt(userID, 10)
}
