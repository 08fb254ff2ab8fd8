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

type SectionRepository struct {
	db *sqlx.DB
}

func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// Create добавляет раздел в конец версии: sequence выдается под
// блокировкой строки версии.
func (r *SectionRepository) Create(ctx context.Context, section *domain.ContractSection) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var dummy int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM contract_versions WHERE id = $1 FOR UPDATE`, section.VersionID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "contract version", Key: strconv.FormatInt(section.VersionID, 10)}
	}
	if err != nil {
		return fmt.Errorf("failed to lock version row: %w", err)
	}

	if section.Sequence == 0 {
		err = tx.GetContext(ctx, &section.Sequence,
			`SELECT COALESCE(MAX(sequence), 0) + 1 FROM contract_sections WHERE version_id = $1`, section.VersionID)
		if err != nil {
			return fmt.Errorf("failed to compute section sequence: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO contract_sections (version_id, contract_id, name, sequence) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		section.VersionID, section.ContractID, section.Name, section.Sequence,
	).Scan(&section.ID, &section.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert section: %w", err)
	}

	return tx.Commit()
}

func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*domain.ContractSection, error) {
	var section domain.ContractSection
	err := r.db.GetContext(ctx, &section, `SELECT * FROM contract_sections WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &section, nil
}

func (r *SectionRepository) ListByVersion(ctx context.Context, versionID int64) ([]domain.ContractSection, error) {
	var sections []domain.ContractSection
	err := r.db.SelectContext(ctx, &sections,
		`SELECT * FROM contract_sections WHERE version_id = $1 ORDER BY sequence, id`, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

func (r *SectionRepository) Update(ctx context.Context, section *domain.ContractSection) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contract_sections SET name = $1, sequence = $2 WHERE id = $3`,
		section.Name, section.Sequence, section.ID)
	if err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(section.ID, 10)}
	}

	return nil
}

// Delete удаляет раздел, пункты каскадируются схемой.
func (r *SectionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contract_sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(id, 10)}
	}

	return nil
}
