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

type LineRepository struct {
	db *sqlx.DB
}

func NewLineRepository(db *sqlx.DB) *LineRepository {
	return &LineRepository{db: db}
}

// Create создает пункт вместе с его начальной ревизией текста:
// ревизия становится history[0] и актуальным содержимым.
func (r *LineRepository) Create(ctx context.Context, line *domain.ContractLine, initialText string) (*domain.ContractContent, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if line.Sequence == 0 {
		err = tx.GetContext(ctx, &line.Sequence,
			`SELECT COALESCE(MAX(sequence), 0) + 1 FROM contract_lines WHERE section_id = $1`, line.SectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute line sequence: %w", err)
		}
	}

	content := &domain.ContractContent{Content: initialText}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO contract_contents (content) VALUES ($1) RETURNING id, created_at`,
		content.Content,
	).Scan(&content.ID, &content.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}

	line.CurrentContentID = &content.ID
	err = tx.QueryRowContext(ctx, `
        INSERT INTO contract_lines (section_id, contract_id, number, sequence, current_content_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		line.SectionID, line.ContractID, line.Number, line.Sequence, line.CurrentContentID,
	).Scan(&line.ID, &line.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert line: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contract_line_content_rel (line_id, content_id) VALUES ($1, $2)`,
		line.ID, content.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to link content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return content, nil
}

func (r *LineRepository) GetByID(ctx context.Context, id int64) (*domain.ContractLine, error) {
	var line domain.ContractLine
	err := r.db.GetContext(ctx, &line, `SELECT * FROM contract_lines WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get line: %w", err)
	}
	return &line, nil
}

// ListBySection возвращает пункты раздела в порядке следования,
// одинаковый sequence упорядочивается порядком создания.
func (r *LineRepository) ListBySection(ctx context.Context, sectionID int64) ([]domain.ContractLine, error) {
	var lines []domain.ContractLine
	err := r.db.SelectContext(ctx, &lines,
		`SELECT * FROM contract_lines WHERE section_id = $1 ORDER BY sequence, id`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines: %w", err)
	}
	return lines, nil
}

func (r *LineRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contract_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(id, 10)}
	}

	return nil
}
