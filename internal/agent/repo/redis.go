package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	errx "github.com/aqarat-core-poc/server/internal/core/error"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// RedisSessionRepository stores session state as a JSON blob and the
// conversation history as a list of JSON-encoded messages. Both keys share
// the same TTL, refreshed on every write.
type RedisSessionRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessionRepository(rdb redis.Cmdable, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) stateKey(sessionID string) string {
	return fmt.Sprintf("conversation:%s:state", sessionID)
}

func (r *RedisSessionRepository) messagesKey(sessionID string) string {
	return fmt.Sprintf("conversation:%s:messages", sessionID)
}

func (r *RedisSessionRepository) LoadSession(ctx context.Context, sessionID string) (*model.Session, error) {
	key := r.stateKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session state from redis")
		return nil, errx.WrapRedis(err)
	}

	return decodeState(sessionID, raw), nil
}

// decodeState parses a stored state blob. An undecodable blob is
// reported as absent rather than as an error: failing the turn would
// poison the session on the same corrupt key forever, while treating it
// as missing restarts the conversation from discovery.
func decodeState(sessionID, raw string) *model.Session {
	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		logx.Warn().Err(err).Str("sessionID", sessionID).Msg("dropping undecodable session state")
		return nil
	}
	return &sess
}

func (r *RedisSessionRepository) SaveSession(ctx context.Context, session *model.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", session.ID).Msg("failed to marshal session state")
		return fmt.Errorf("marshal session state: %w", err)
	}
	key := r.stateKey(session.ID)

	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionRepository) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.messagesKey(sessionID)

	// append message
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
		}
	}
	return nil
}

func (r *RedisSessionRepository) LoadHistory(ctx context.Context, sessionID string) (*model.ConversationHistory, error) {
	key := r.messagesKey(sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return &model.ConversationHistory{SessionID: sessionID, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			// Same policy as state: a corrupt row degrades the history,
			// it does not take the session down.
			logx.Warn().Err(err).Str("sessionID", sessionID).Int("index", i).Msg("skipping undecodable message")
			continue
		}
		msgs = append(msgs, &m)
	}
	return &model.ConversationHistory{SessionID: sessionID, Messages: msgs}, nil
}

func (r *RedisSessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, r.stateKey(sessionID), r.messagesKey(sessionID)).Err(); err != nil {
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
