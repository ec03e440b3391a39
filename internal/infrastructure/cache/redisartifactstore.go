package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

const (
	stagedKeyPrefix   = "licensing:staged:"
	stagedFieldName   = "filename"
	stagedFieldBody   = "content"
	stagedFieldStaged = "staged_at"
)

// RedisArtifactStore stages rosters in Redis hashes with a sorted index per owner.
type RedisArtifactStore struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisArtifactStore creates the Redis-backed artifact store
func NewRedisArtifactStore(client *redis.Client, logger logger.Interface) licensing.ArtifactStore {
	return &RedisArtifactStore{client: client, logger: logger}
}

// Format: licensing:staged:{owner}:{id}
func (s *RedisArtifactStore) fileKey(owner string, ownerID uint) string {
	return fmt.Sprintf("%s%s:%d", stagedKeyPrefix, owner, ownerID)
}

// Format: licensing:staged:{owner}
func (s *RedisArtifactStore) indexKey(owner string) string {
	return stagedKeyPrefix + owner
}

func (s *RedisArtifactStore) Put(ctx context.Context, owner string, ownerID uint, filename string, content []byte) error {
	key := s.fileKey(owner, ownerID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			stagedFieldName, filename,
			stagedFieldBody, content,
			stagedFieldStaged, biztime.NowUTC().Unix(),
		)
		pipe.ZAdd(ctx, s.indexKey(owner), redis.Z{Score: float64(ownerID), Member: ownerID})
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to stage file in redis", "owner", owner, "owner_id", ownerID, "error", err)
		return fmt.Errorf("failed to stage file: %w", err)
	}
	return nil
}

func (s *RedisArtifactStore) Get(ctx context.Context, owner string, ownerID uint) ([]byte, error) {
	content, err := s.client.HGet(ctx, s.fileKey(owner, ownerID), stagedFieldBody).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, licensing.ErrArtifactNotFound
	}
	if err != nil {
		s.logger.Errorw("failed to read staged file from redis", "owner", owner, "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}
	return content, nil
}

func (s *RedisArtifactStore) Exists(ctx context.Context, owner string, ownerID uint) (bool, error) {
	n, err := s.client.Exists(ctx, s.fileKey(owner, ownerID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check staged file: %w", err)
	}
	return n == 1, nil
}

func (s *RedisArtifactStore) ExistsMany(ctx context.Context, owner string, ownerIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	cmds := make([]*redis.IntCmd, len(ownerIDs))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ownerIDs {
			cmds[i] = pipe.Exists(ctx, s.fileKey(owner, id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check staged files: %w", err)
	}

	for i, cmd := range cmds {
		if cmd.Val() == 1 {
			out[ownerIDs[i]] = true
		}
	}
	return out, nil
}

func (s *RedisArtifactStore) ListOwnerIDs(ctx context.Context, owner string) ([]uint, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(owner), 0, -1).Result()
	if err != nil {
		s.logger.Errorw("failed to list staged files in redis", "owner", owner, "error", err)
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			s.logger.Warnw("skipping malformed staged index entry", "owner", owner, "member", m)
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (s *RedisArtifactStore) Delete(ctx context.Context, owner string, ownerID uint) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.fileKey(owner, ownerID))
		pipe.ZRem(ctx, s.indexKey(owner), ownerID)
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to delete staged file from redis", "owner", owner, "owner_id", ownerID, "error", err)
		return fmt.Errorf("failed to delete staged file: %w", err)
	}
	return nil
}
