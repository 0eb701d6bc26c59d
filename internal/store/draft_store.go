package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
)

// ErrDraftNotFound 草稿不存在或已过期
var ErrDraftNotFound = errors.New("draft not found or expired")

// DraftStore 向导草稿存储接口
type DraftStore interface {
	// Get 按 token 取草稿，未命中返回 ErrDraftNotFound
	Get(ctx context.Context, token string) (*domain.NotificationDraft, error)
	// Save 存草稿并重置 TTL，每次步骤推进都会延长有效期
	Save(ctx context.Context, draft *domain.NotificationDraft) error
	// Delete 丢弃草稿（提交成功或操作员放弃时）
	Delete(ctx context.Context, token string) error
}

// RedisDraftStore 草稿存储实现，过期依赖 Redis TTL 自动回收
type RedisDraftStore struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedisDraftStore 创建草稿存储
func NewRedisDraftStore(c *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{c: c, ttl: ttl}
}

// 确保实现了接口
var _ DraftStore = (*RedisDraftStore)(nil)

func draftKey(token string) string {
	return "notify:draft:" + token
}

func (s *RedisDraftStore) Get(ctx context.Context, token string) (*domain.NotificationDraft, error) {
	if token == "" {
		return nil, ErrDraftNotFound
	}

	val, err := s.c.Get(ctx, draftKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft domain.NotificationDraft
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	return &draft, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *domain.NotificationDraft) error {
	if draft.Token == "" {
		return fmt.Errorf("draft token is required")
	}

	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := s.c.Set(ctx, draftKey(draft.Token), string(raw), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, token string) error {
	if err := s.c.Del(ctx, draftKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
