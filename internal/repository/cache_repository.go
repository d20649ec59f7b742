package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"airunote/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedLink : в json модели хэш пароля скрыт, в кэше он нужен для проверки
type cachedLink struct {
	Share        *model.Share `json:"share"`
	PasswordHash *string      `json:"passwordHash,omitempty"`
}

type LinkCacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewLinkCacheRepository(rdb *config.RedisClient, ttl time.Duration) *LinkCacheRepository {
	return &LinkCacheRepository{rdb, ttl}
}

func (r *LinkCacheRepository) SetShare(ctx context.Context, share *model.Share) error {
	if share.LinkCode == nil {
		return nil
	}

	data, err := json.Marshal(cachedLink{Share: share, PasswordHash: share.LinkPasswordHash})
	if err != nil {
		return util.LogError("[LinkCache] ошибка сериализации ссылки", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(*share.LinkCode), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("[LinkCache] ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *LinkCacheRepository) GetShare(ctx context.Context, linkCode string) (*model.Share, error) {
	val, err := r.client.Client.Get(ctx, r.key(linkCode)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("[LinkCache] ошибка получения ссылки из Redis", err)
	}

	var cached cachedLink
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, util.LogError("[LinkCache] ошибка десериализации ссылки из кэша", err)
	}
	if cached.Share == nil {
		return nil, nil
	}
	cached.Share.LinkPasswordHash = cached.PasswordHash
	return cached.Share, nil
}

func (r *LinkCacheRepository) DeleteShares(ctx context.Context, linkCodes ...string) error {
	if len(linkCodes) == 0 {
		return nil
	}

	keys := make([]string, 0, len(linkCodes))
	for _, code := range linkCodes {
		keys = append(keys, r.key(code))
	}
	if err := r.client.Client.Del(ctx, keys...).Err(); err != nil {
		return util.LogError("[LinkCache] ошибка удаления ссылок из Redis", err)
	}
	return nil
}

func (r *LinkCacheRepository) key(linkCode string) string {
	return fmt.Sprintf("link:%s", linkCode)
}
