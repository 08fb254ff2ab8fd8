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

type AnnexRepository struct {
	db *sqlx.DB
}

func NewAnnexRepository(db *sqlx.DB) *AnnexRepository {
	return &AnnexRepository{db: db}
}

// Create вставляет приложение, выдавая номер из счетчика договора.
// Инкремент счетчика и вставка идут одной транзакцией.
func (r *AnnexRepository) Create(ctx context.Context, annex *domain.ContractAnnex) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`UPDATE contracts SET annex_count = annex_count + 1, updated_at = CURRENT_TIMESTAMP
         WHERE id = $1 RETURNING annex_count`,
		annex.ContractID,
	).Scan(&annex.AnnexNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(annex.ContractID, 10)}
	}
	if err != nil {
		return fmt.Errorf("failed to increment annex counter: %w", err)
	}

	if annex.Name == "" {
		annex.Name = domain.AnnexName(annex.AnnexNumber, annex.DateConclusion)
	}

	err = tx.QueryRowContext(ctx, `
        INSERT INTO contract_annexes (contract_id, name, annex_number, date_conclusion, cost)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		annex.ContractID, annex.Name, annex.AnnexNumber, annex.DateConclusion, annex.Cost,
	).Scan(&annex.ID, &annex.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert annex: %w", err)
	}

	return tx.Commit()
}

func (r *AnnexRepository) GetByID(ctx context.Context, id int64) (*domain.ContractAnnex, error) {
	var annex domain.ContractAnnex
	err := r.db.GetContext(ctx, &annex, `SELECT * FROM contract_annexes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract annex", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get annex: %w", err)
	}
	return &annex, nil
}

func (r *AnnexRepository) ListByContract(ctx context.Context, contractID int64) ([]domain.ContractAnnex, error) {
	var annexes []domain.ContractAnnex
	err := r.db.SelectContext(ctx, &annexes,
		`SELECT * FROM contract_annexes WHERE contract_id = $1 ORDER BY annex_number`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list annexes: %w", err)
	}
	return annexes, nil
}

// Delete удаляет приложение и уменьшает счетчик договора.
func (r *AnnexRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var contractID int64
	err = tx.QueryRowContext(ctx, `DELETE FROM contract_annexes WHERE id = $1 RETURNING contract_id`, id).Scan(&contractID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "contract annex", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return fmt.Errorf("failed to delete annex: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE contracts SET annex_count = annex_count - 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		contractID)
	if err != nil {
		return fmt.Errorf("failed to decrement annex counter: %w", err)
	}

	return tx.Commit()
}
