package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"contractdesk/internal/domain"
)

type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetParam возвращает значение параметра конфигурации,
// пустую строку — если параметр не задан.
func (r *SettingsRepository) GetParam(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM app_settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *SettingsRepository) SetParam(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO app_settings (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetTemplate возвращает шаблон письма по имени.
func (r *SettingsRepository) GetTemplate(ctx context.Context, name string) (*domain.MailTemplate, error) {
	var tmpl domain.MailTemplate
	err := r.db.GetContext(ctx, &tmpl, `SELECT * FROM mail_templates WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "mail template", Key: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mail template: %w", err)
	}
	return &tmpl, nil
}
