package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/glotree/pbb-ledger/internal/cache"
	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/models"
)

// RedeemState 会话里的兑换意向（下单前的临时状态）
type RedeemState struct {
	CertCode  string       `json:"cert_code"`  // 规范券码
	SerialRaw int64        `json:"serial_raw"` // 原始序列号
	Amount    models.Money `json:"amount"`     // 本次抵扣金额（已按购物车总额封顶）
	AppliedAt time.Time    `json:"applied_at"` // 应用时间
}

// Store 兑换意向存储接口
type Store interface {
	Get(ctx context.Context, token string) (*RedeemState, error)
	Set(ctx context.Context, token string, state *RedeemState) error
	Unset(ctx context.Context, token string) error
}

// RedisStore 基于 Redis 的兑换意向存储
type RedisStore struct {
	ttl time.Duration
}

// NewRedisStore 创建 Redis 兑换意向存储
func NewRedisStore(ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisStore{ttl: ttl}
}

// Get 读取兑换意向
func (s *RedisStore) Get(ctx context.Context, token string) (*RedeemState, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	var state RedeemState
	found, err := cache.GetJSON(ctx, redeemKey(token), &state)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &state, nil
}

// Set 写入兑换意向
func (s *RedisStore) Set(ctx context.Context, token string, state *RedeemState) error {
	token = strings.TrimSpace(token)
	if token == "" || state == nil {
		return nil
	}
	return cache.SetJSON(ctx, redeemKey(token), state, s.ttl)
}

// Unset 清除兑换意向
func (s *RedisStore) Unset(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return cache.Del(ctx, redeemKey(token))
}

func redeemKey(token string) string {
	return constants.SessionRedeemKeyPrefix + ":" + token
}

type memoryEntry struct {
	state     RedeemState
	expiresAt time.Time
}

// MemoryStore 进程内兑换意向存储（Redis 未启用时的退路，单实例可用）
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemoryStore 创建进程内兑换意向存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

// Get 读取兑换意向
func (s *MemoryStore) Get(_ context.Context, token string) (*RedeemState, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

// Set 写入兑换意向
func (s *MemoryStore) Set(_ context.Context, token string, state *RedeemState) error {
	token = strings.TrimSpace(token)
	if token == "" || state == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{
		state:     *state,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Unset 清除兑换意向
func (s *MemoryStore) Unset(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
