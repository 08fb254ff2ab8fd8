package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"contractdesk/internal/domain"
)

// ConfirmationRepository хранит токены подтверждения удаления в Redis.
// Токен живет ограниченное время и изымается при подтверждении.
type ConfirmationRepository struct {
	rdb *goredis.Client
}

func NewConfirmationRepository(addr, password string, db int) (*ConfirmationRepository, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ConfirmationRepository{rdb: rdb}, nil
}

func confirmationKey(token string) string {
	return "contract:deletion:" + token
}

func (r *ConfirmationRepository) Save(ctx context.Context, token string, req *domain.DeletionRequest, ttl time.Duration) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal deletion request: %w", err)
	}

	if err := r.rdb.Set(ctx, confirmationKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store confirmation token: %w", err)
	}

	return nil
}

// Take изымает токен: повторное подтверждение по тому же токену невозможно.
func (r *ConfirmationRepository) Take(ctx context.Context, token string) (*domain.DeletionRequest, error) {
	data, err := r.rdb.GetDel(ctx, confirmationKey(token)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, &domain.NotFoundError{Entity: "confirmation token", Key: token}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take confirmation token: %w", err)
	}

	var req domain.DeletionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deletion request: %w", err)
	}

	return &req, nil
}

func (r *ConfirmationRepository) Close() error {
	return r.rdb.Close()
}
