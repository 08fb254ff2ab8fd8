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

type VersionRepository struct {
	db *sqlx.DB
}

func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) GetByID(ctx context.Context, id int64) (*domain.ContractVersion, error) {
	var version domain.ContractVersion
	err := r.db.GetContext(ctx, &version, `SELECT * FROM contract_versions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract version", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &version, nil
}

func (r *VersionRepository) ListByContract(ctx context.Context, contractID int64) ([]domain.ContractVersion, error) {
	var versions []domain.ContractVersion
	err := r.db.SelectContext(ctx, &versions,
		`SELECT * FROM contract_versions WHERE contract_id = $1 ORDER BY version_number`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

func (r *VersionRepository) Update(ctx context.Context, version *domain.ContractVersion) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contract_versions SET is_published = $1, is_signed = $2 WHERE id = $3`,
		version.IsPublished, version.IsSigned, version.ID)
	if err != nil {
		return fmt.Errorf("failed to update version: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "contract version", Key: strconv.FormatInt(version.ID, 10)}
	}

	return nil
}

// CreateFromBase создает следующую версию договора копией дерева базовой версии.
// Номер версии выдается под блокировкой строки договора, гонка max+1 исключена.
func (r *VersionRepository) CreateFromBase(ctx context.Context, contractID, baseVersionID int64) (*domain.ContractVersion, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var dummy int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM contracts WHERE id = $1 FOR UPDATE`, contractID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(contractID, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock contract row: %w", err)
	}

	var nextNumber int
	err = tx.GetContext(ctx, &nextNumber,
		`SELECT COALESCE(MAX(version_number), 0) + 1 FROM contract_versions WHERE contract_id = $1`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next version number: %w", err)
	}

	version := &domain.ContractVersion{ContractID: contractID, VersionNumber: nextNumber}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO contract_versions (contract_id, version_number) VALUES ($1, $2) RETURNING id, created_at`,
		contractID, nextNumber,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert version: %w", err)
	}

	if err := copyVersionTree(ctx, tx, baseVersionID, version.ID, contractID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return version, nil
}

// copyVersionTree копирует разделы и пункты версии. История пунктов не
// переносится: актуальный текст становится первой ревизией новой истории.
// Вызывается внутри транзакции создания новой версии или договора-дубликата.
func copyVersionTree(ctx context.Context, tx *sqlx.Tx, srcVersionID, dstVersionID, dstContractID int64) error {
	var sections []domain.ContractSection
	err := tx.SelectContext(ctx, &sections,
		`SELECT * FROM contract_sections WHERE version_id = $1 ORDER BY sequence, id`, srcVersionID)
	if err != nil {
		return fmt.Errorf("failed to select source sections: %w", err)
	}

	for _, section := range sections {
		var newSectionID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO contract_sections (version_id, contract_id, name, sequence) VALUES ($1, $2, $3, $4) RETURNING id`,
			dstVersionID, dstContractID, section.Name, section.Sequence,
		).Scan(&newSectionID)
		if err != nil {
			return fmt.Errorf("failed to copy section: %w", err)
		}

		var lines []struct {
			domain.ContractLine
			Text sql.NullString `db:"text"`
		}
		err = tx.SelectContext(ctx, &lines, `
            SELECT l.*, c.content AS text
            FROM contract_lines l
            LEFT JOIN contract_contents c ON c.id = l.current_content_id
            WHERE l.section_id = $1
            ORDER BY l.sequence, l.id`, section.ID)
		if err != nil {
			return fmt.Errorf("failed to select source lines: %w", err)
		}

		for _, line := range lines {
			var newContentID *int64
			if line.CurrentContentID != nil {
				var contentID int64
				err = tx.QueryRowContext(ctx,
					`INSERT INTO contract_contents (content) VALUES ($1) RETURNING id`,
					line.Text.String,
				).Scan(&contentID)
				if err != nil {
					return fmt.Errorf("failed to copy line content: %w", err)
				}
				newContentID = &contentID
			}

			var newLineID int64
			err = tx.QueryRowContext(ctx,
				`INSERT INTO contract_lines (section_id, contract_id, number, sequence, current_content_id)
                 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				newSectionID, dstContractID, line.Number, line.Sequence, newContentID,
			).Scan(&newLineID)
			if err != nil {
				return fmt.Errorf("failed to copy line: %w", err)
			}

			if newContentID != nil {
				_, err = tx.ExecContext(ctx,
					`INSERT INTO contract_line_content_rel (line_id, content_id) VALUES ($1, $2)`,
					newLineID, *newContentID)
				if err != nil {
					return fmt.Errorf("failed to link copied content: %w", err)
				}
			}
		}
	}

	return nil
}
