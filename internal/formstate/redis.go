package formstate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/envutil"
)

// NewStore picks the Redis backend when REDIS_ADDR is set and falls back to
// the in-process store otherwise.
func NewStore(log *logger.Logger) (Store, error) {
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) == "" {
		return NewMemoryStore(log), nil
	}
	return NewRedisStore(log)
}

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore connects to REDIS_ADDR and keeps wizard slots for
// FORMSTATE_TTL (default 24h). Abandoned slots expire on their own.
func NewRedisStore(log *logger.Logger) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: log.With("service", "FormStateRedisStore"),
		rdb: rdb,
		ttl: envutil.Duration("FORMSTATE_TTL", 24*time.Hour),
	}, nil
}

// Profile and step live in separate keys so either can be inspected or
// expired on its own.
func profileKey(sessionID string) string {
	return "cathealth:wizard:" + sessionID + ":profile"
}

func stepKey(sessionID string) string {
	return "cathealth:wizard:" + sessionID + ":step"
}

func (s *redisStore) Save(ctx context.Context, sessionID string, snap Snapshot) {
	raw, err := json.Marshal(snap.Profile)
	if err != nil {
		s.log.Warn("Form state save dropped", "session_id", sessionID, "error", err)
		return
	}
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, profileKey(sessionID), raw, s.ttl)
	pipe.Set(ctx, stepKey(sessionID), strconv.Itoa(snap.Position), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("Form state save dropped", "session_id", sessionID, "error", err)
	}
}

func (s *redisStore) Load(ctx context.Context, sessionID string) (Snapshot, bool) {
	raw, err := s.rdb.Get(ctx, profileKey(sessionID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			s.log.Warn("Form state load failed", "session_id", sessionID, "error", err)
		}
		return Snapshot{}, false
	}

	var profile cat.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		s.log.Warn("Form state slot unreadable, clearing", "session_id", sessionID, "error", err)
		s.Clear(ctx, sessionID)
		return Snapshot{}, false
	}

	snap := Snapshot{Profile: profile, Position: 1}
	if rawStep, err := s.rdb.Get(ctx, stepKey(sessionID)).Result(); err == nil {
		if pos, perr := strconv.Atoi(strings.TrimSpace(rawStep)); perr == nil && pos >= 1 {
			snap.Position = pos
		}
	}
	return snap, true
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) {
	if err := s.rdb.Del(ctx, profileKey(sessionID), stepKey(sessionID)).Err(); err != nil {
		s.log.Warn("Form state clear failed", "session_id", sessionID, "error", err)
	}
}
