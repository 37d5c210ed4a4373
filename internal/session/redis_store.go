package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-review/internal/model"
)

// RedisStore keeps each session in a hash at <prefix>:<hash> that expires
// with the session.  A per-account set <prefix>:account:<id> indexes the
// hashes so every session of an account can be renamed or revoked.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(tokenHash string) string { return s.prefix + ":" + tokenHash }

func (s *RedisStore) accountKey(id uint64) string {
	return s.prefix + ":account:" + strconv.FormatUint(id, 10)
}

func (s *RedisStore) Save(ctx context.Context, sess model.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	k := s.key(sess.TokenHash)
	ak := s.accountKey(sess.AccountID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k,
			"account_id", sess.AccountID,
			"kind", string(sess.Kind),
			"role", sess.Role,
			"name", sess.Name,
			"expires_at", sess.ExpiresAt.UTC().UnixMilli(),
		)
		p.PExpire(ctx, k, ttl)
		p.SAdd(ctx, ak, sess.TokenHash)
		// the index lives as long as the newest session
		p.PExpire(ctx, ak, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Load(ctx context.Context, tokenHash string) (model.Session, error) {
	m, err := s.rdb.HGetAll(ctx, s.key(tokenHash)).Result()
	if err != nil {
		return model.Session{}, err
	}
	if len(m) == 0 {
		return model.Session{}, ErrNotFound
	}
	id, err := strconv.ParseUint(m["account_id"], 10, 64)
	if err != nil {
		return model.Session{}, ErrNotFound
	}
	ms, err := strconv.ParseInt(m["expires_at"], 10, 64)
	if err != nil {
		return model.Session{}, ErrNotFound
	}
	exp := time.UnixMilli(ms).UTC()
	if time.Now().After(exp) {
		return model.Session{}, ErrNotFound
	}
	return model.Session{
		TokenHash: tokenHash,
		AccountID: id,
		Kind:      model.Kind(m["kind"]),
		Role:      m["role"],
		Name:      m["name"],
		ExpiresAt: exp,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, tokenHash string) error {
	id, err := s.rdb.HGet(ctx, s.key(tokenHash), "account_id").Uint64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key(tokenHash))
		p.SRem(ctx, s.accountKey(id), tokenHash)
		return nil
	})
	return err
}

func (s *RedisStore) DeleteForAccount(ctx context.Context, accountID uint64) error {
	ak := s.accountKey(accountID)
	hashes, err := s.rdb.SMembers(ctx, ak).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, s.key(h))
	}
	keys = append(keys, ak)
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) Rename(ctx context.Context, accountID uint64, name string) error {
	ak := s.accountKey(accountID)
	hashes, err := s.rdb.SMembers(ctx, ak).Result()
	if err != nil {
		return err
	}
	for _, h := range hashes {
		k := s.key(h)
		// HSET on an expired key would resurrect it without a TTL
		n, err := s.rdb.Exists(ctx, k).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			s.rdb.SRem(ctx, ak, h)
			continue
		}
		if err := s.rdb.HSet(ctx, k, "name", name).Err(); err != nil {
			return err
		}
	}
	return nil
}
