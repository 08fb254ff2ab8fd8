package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"contractdesk/internal/domain"
)

type ContentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*domain.ContractContent, error) {
	var content domain.ContractContent
	err := r.db.GetContext(ctx, &content, `SELECT * FROM contract_contents WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract content", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &content, nil
}

// AppendRevision добавляет новую ревизию текста пункта и делает её актуальной.
// Ревизии не перезаписываются. Конкурентные правки одного пункта
// сериализуются блокировкой его строки.
func (r *ContentRepository) AppendRevision(ctx context.Context, lineID int64, text string) (*domain.ContractContent, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var dummy int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM contract_lines WHERE id = $1 FOR UPDATE`, lineID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(lineID, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock line row: %w", err)
	}

	content := &domain.ContractContent{Content: text}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO contract_contents (content) VALUES ($1) RETURNING id, created_at`,
		content.Content,
	).Scan(&content.ID, &content.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contract_line_content_rel (line_id, content_id) VALUES ($1, $2)`,
		lineID, content.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to link revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE contract_lines SET current_content_id = $1 WHERE id = $2`, content.ID, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to repoint current content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return content, nil
}

// History возвращает все ревизии пункта в порядке добавления.
func (r *ContentRepository) History(ctx context.Context, lineID int64) ([]domain.ContractContent, error) {
	var contents []domain.ContractContent
	err := r.db.SelectContext(ctx, &contents, `
        SELECT c.*
        FROM contract_contents c
        JOIN contract_line_content_rel rel ON rel.content_id = c.id
        WHERE rel.line_id = $1
        ORDER BY rel.id`, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content history: %w", err)
	}
	return contents, nil
}

// SetCurrent делает историческую ревизию актуальной.
// Ревизия обязана принадлежать истории пункта.
func (r *ContentRepository) SetCurrent(ctx context.Context, lineID, contentID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var dummy int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM contract_lines WHERE id = $1 FOR UPDATE`, lineID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(lineID, 10)}
	}
	if err != nil {
		return fmt.Errorf("failed to lock line row: %w", err)
	}

	var inHistory bool
	err = tx.GetContext(ctx, &inHistory,
		`SELECT EXISTS(SELECT 1 FROM contract_line_content_rel WHERE line_id = $1 AND content_id = $2)`,
		lineID, contentID)
	if err != nil {
		return fmt.Errorf("failed to check content history: %w", err)
	}
	if !inHistory {
		return &domain.PreconditionError{Reason: "revision does not belong to the line's history"}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE contract_lines SET current_content_id = $1 WHERE id = $2`, contentID, lineID)
	if err != nil {
		return fmt.Errorf("failed to repoint current content: %w", err)
	}

	return tx.Commit()
}
