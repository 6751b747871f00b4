package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
)

const (
	defaultPrefix = "gptgame:stats"
	defaultTTL    = 7 * 24 * time.Hour
)

// Store keeps game event counters in Redis hashes: a cumulative total, a
// per-language total, and hourly buckets that expire after the TTL.
type Store struct {
	rdb redis.Cmdable

	prefix string
	ttl    time.Duration
}

var _ ports.StatsStore = (*Store)(nil)

type Option func(*Store)

func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if trimmed := strings.Trim(prefix, ": "); trimmed != "" {
			s.prefix = trimmed
		}
	}
}

// WithTTL sets the expiry of hourly buckets. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func NewStore(rdb redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		rdb:    rdb,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Record(ctx context.Context, event domain.GameEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(event.Kind)
	keys := s.eventKeys(event.Language, at)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, keys.total, field, 1)
	if keys.language != "" {
		pipe.HIncrBy(ctx, keys.language, field, 1)
	}
	pipe.HIncrBy(ctx, keys.hour, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, keys.hour, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record %s event: %w", event.Kind, err)
	}

	return nil
}

// Snapshot returns the cumulative totals.
func (s *Store) Snapshot(ctx context.Context) (map[domain.GameEventKind]int64, error) {
	if s == nil || s.rdb == nil {
		return map[domain.GameEventKind]int64{}, nil
	}

	raw, err := s.rdb.HGetAll(ctx, s.totalKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("read stats totals: %w", err)
	}

	return parseCounts(raw)
}

type eventKeys struct {
	total    string
	language string
	hour     string
}

func (s *Store) eventKeys(language domain.Language, at time.Time) eventKeys {
	keys := eventKeys{
		total: s.totalKey(),
		hour:  fmt.Sprintf("%s:hour:%s", s.prefix, at.UTC().Format("2006010215")),
	}
	if language != "" {
		keys.language = s.prefix + ":lang:" + string(language)
	}

	return keys
}

func (s *Store) totalKey() string {
	return s.prefix + ":total"
}

func parseCounts(raw map[string]string) (map[domain.GameEventKind]int64, error) {
	counts := make(map[domain.GameEventKind]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse counter %q: %w", field, err)
		}
		counts[domain.GameEventKind(field)] = n
	}

	return counts, nil
}
