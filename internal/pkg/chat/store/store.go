package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoxin-go/webchat/internal/infrastructure/cache/port"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
)

// DefaultRetention matches the legacy deployment: messages live for two days
// and are then evicted by the backend's TTL.
const DefaultRetention = 48 * time.Hour

const seqKey = "chat:seq"

// Store is the bounded-retention message log. Each message is one cache
// entry keyed by chat:<scope>:<key>:<ts>:<seq>, where ts is the unix send
// time in seconds and seq is a monotonically increasing counter that breaks
// ties within the same second. Values are JSON-encoded messages; the legacy
// eval-style encoding is deliberately gone.
type Store struct {
	cache     port.Cache
	logger    *zap.SugaredLogger
	retention time.Duration
	now       func() time.Time
}

func New(cache port.Cache, logger *zap.SugaredLogger, retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{cache: cache, logger: logger, retention: retention, now: time.Now}
}

// Cursor addresses a position in a conversation log for paging.
type Cursor struct {
	TS  int64
	Seq int64
}

func (c Cursor) String() string {
	return strconv.FormatInt(c.TS, 10) + "-" + strconv.FormatInt(c.Seq, 10)
}

// ParseCursor parses the "ts-seq" form produced by Cursor.String.
func ParseCursor(s string) (Cursor, error) {
	ts, seq, ok := strings.Cut(s, "-")
	if !ok {
		return Cursor{}, fmt.Errorf("store: malformed cursor %q", s)
	}
	t, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("store: malformed cursor %q", s)
	}
	q, err := strconv.ParseInt(seq, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("store: malformed cursor %q", s)
	}
	return Cursor{TS: t, Seq: q}, nil
}

// MessageCursor returns the cursor addressing a stored message.
func MessageCursor(m chat.Message) Cursor {
	return Cursor{TS: m.SentAt.Unix(), Seq: m.Seq}
}

// Append durably records the message and returns it with SentAt and Seq
// assigned. Append is the only fatal step of a send: callers must surface
// its error.
func (s *Store) Append(ctx context.Context, m chat.Message) (chat.Message, error) {
	seq, err := s.cache.Incr(ctx, seqKey)
	if err != nil {
		return chat.Message{}, fmt.Errorf("store: next seq: %w", err)
	}

	m.SentAt = s.now().Truncate(time.Second)
	m.Seq = seq

	value, err := json.Marshal(m)
	if err != nil {
		return chat.Message{}, fmt.Errorf("store: encode message: %w", err)
	}

	key := entryKey(m.Kind, m.ConversationKey, m.SentAt.Unix(), seq)
	if err := s.cache.Set(ctx, key, string(value), s.retention); err != nil {
		return chat.Message{}, fmt.Errorf("store: append %s: %w", key, err)
	}
	return m, nil
}

// Recent returns the newest messages of the conversation, newest first.
func (s *Store) Recent(ctx context.Context, kind chat.Kind, key string, limit int) ([]chat.Message, error) {
	return s.page(ctx, kind, key, nil, limit)
}

// Before returns up to limit messages older than cursor, newest first.
func (s *Store) Before(ctx context.Context, kind chat.Kind, key string, cursor Cursor, limit int) ([]chat.Message, error) {
	return s.page(ctx, kind, key, &cursor, limit)
}

func (s *Store) page(ctx context.Context, kind chat.Kind, key string, before *Cursor, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	prefix := logPrefix(kind, key)
	keys, err := s.cache.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("store: scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.cache.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("store: fetch %s: %w", prefix, err)
	}

	msgs := make([]chat.Message, 0, len(keys))
	for _, k := range keys {
		cur, ok := parseEntryKey(prefix, k)
		if !ok {
			s.logger.Warnf("store: skipping malformed log key %s", k)
			continue
		}
		if before != nil && !olderThan(cur, *before) {
			continue
		}
		raw, ok := values[k]
		if !ok {
			continue // evicted between scan and fetch
		}
		var m chat.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			// Corrupt entries are dropped, never fatal for the page.
			s.logger.Warnf("store: skipping corrupt log entry %s: %v", k, err)
			continue
		}
		msgs = append(msgs, m)
	}

	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.After(msgs[j].SentAt)
		}
		return msgs[i].Seq > msgs[j].Seq
	})

	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func olderThan(a, b Cursor) bool {
	if a.TS != b.TS {
		return a.TS < b.TS
	}
	return a.Seq < b.Seq
}

func logPrefix(kind chat.Kind, key string) string {
	return "chat:" + kind.String() + ":" + key + ":"
}

func entryKey(kind chat.Kind, key string, ts, seq int64) string {
	return logPrefix(kind, key) + strconv.FormatInt(ts, 10) + ":" + strconv.FormatInt(seq, 10)
}

// parseEntryKey extracts the (ts, seq) suffix of a log key.
func parseEntryKey(prefix, k string) (Cursor, bool) {
	suffix := strings.TrimPrefix(k, prefix)
	ts, seq, ok := strings.Cut(suffix, ":")
	if !ok {
		return Cursor{}, false
	}
	t, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Cursor{}, false
	}
	q, err := strconv.ParseInt(seq, 10, 64)
	if err != nil {
		return Cursor{}, false
	}
	return Cursor{TS: t, Seq: q}, true
}
