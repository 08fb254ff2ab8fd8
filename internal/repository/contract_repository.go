package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"contractdesk/internal/domain"
)

type ContractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// Create создает договор и сразу его первую версию в одной транзакции.
// Номер договора считается по количеству договоров за текущий день;
// advisory-блокировка по ключу дня закрывает гонку count-then-insert.
func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) (*domain.ContractVersion, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	version, err := insertContractWithVersion(ctx, tx, contract)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return version, nil
}

// CreateCopy создает договор-дубликат: сам договор, его версия 1 и копия
// дерева исходной версии фиксируются одной транзакцией.
func (r *ContractRepository) CreateCopy(ctx context.Context, contract *domain.Contract, srcVersionID int64) (*domain.ContractVersion, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	version, err := insertContractWithVersion(ctx, tx, contract)
	if err != nil {
		return nil, err
	}

	if err := copyVersionTree(ctx, tx, srcVersionID, version.ID, contract.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return version, nil
}

func insertContractWithVersion(ctx context.Context, tx *sqlx.Tx, contract *domain.Contract) (*domain.ContractVersion, error) {
	if contract.Number == "" {
		today := time.Now().Format("2006-01-02")

		// Сериализуем выдачу дневного номера
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "contract_number_"+today); err != nil {
			return nil, fmt.Errorf("failed to acquire number lock: %w", err)
		}

		var countToday int
		err := tx.GetContext(ctx, &countToday,
			`SELECT COUNT(*) FROM contracts WHERE created_at >= date_trunc('day', CURRENT_TIMESTAMP)`)
		if err != nil {
			return nil, fmt.Errorf("failed to count today's contracts: %w", err)
		}

		contract.Number = domain.ContractNumber(time.Now(), countToday+1)
	}

	query := `
        INSERT INTO contracts (
            number, partner_id, company, currency, type, state,
            date_conclusion, date_conclusion_fix, commencement_date, expiration_date,
            renew_automatically, renew_period, renew_period_type,
            notification_expiration, notification_expiration_period, responsible_employee
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id, created_at, updated_at`

	err := tx.QueryRowContext(
		ctx,
		query,
		contract.Number,
		contract.PartnerID,
		contract.Company,
		contract.Currency,
		contract.Type,
		contract.State,
		contract.DateConclusion,
		contract.DateConclusionFix,
		contract.CommencementDate,
		contract.ExpirationDate,
		contract.RenewAutomatically,
		contract.RenewPeriod,
		contract.RenewPeriodType,
		contract.NotificationExpiration,
		contract.NotificationExpirationPeriod,
		contract.ResponsibleEmployee,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contract: %w", err)
	}

	// Первая версия создается вместе с договором
	version := &domain.ContractVersion{ContractID: contract.ID, VersionNumber: 1}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO contract_versions (contract_id, version_number) VALUES ($1, $2) RETURNING id, created_at`,
		version.ContractID, version.VersionNumber,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert initial version: %w", err)
	}

	return version, nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id int64) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.GetContext(ctx, &contract, `SELECT * FROM contracts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return &contract, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	query := `
        UPDATE contracts
        SET state = $1,
            date_conclusion = $2,
            date_conclusion_fix = $3,
            commencement_date = $4,
            expiration_date = $5,
            renew_automatically = $6,
            renew_period = $7,
            renew_period_type = $8,
            notification_expiration = $9,
            notification_expiration_period = $10,
            responsible_employee = $11,
            published_version_id = $12,
            signed_version_id = $13,
            scan_key = $14,
            expiration_notified_on = $15,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $16`

	result, err := r.db.ExecContext(ctx, query,
		contract.State,
		contract.DateConclusion,
		contract.DateConclusionFix,
		contract.CommencementDate,
		contract.ExpirationDate,
		contract.RenewAutomatically,
		contract.RenewPeriod,
		contract.RenewPeriodType,
		contract.NotificationExpiration,
		contract.NotificationExpirationPeriod,
		contract.ResponsibleEmployee,
		contract.PublishedVersionID,
		contract.SignedVersionID,
		contract.ScanKey,
		contract.ExpirationNotifiedOn,
		contract.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(contract.ID, 10)}
	}

	return nil
}

// UpdateExpiration пишет поля фонового обхода сроков и только пока договор
// в состоянии sign: ручной переход, закоммиченный между чтением списка и
// этой записью, не перетирается устаревшим снимком. Возвращает false, если
// договор уже покинул sign и запись пропущена.
func (r *ContractRepository) UpdateExpiration(ctx context.Context, contract *domain.Contract) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
        UPDATE contracts
        SET state = $1,
            expiration_date = $2,
            expiration_notified_on = $3,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $4 AND state = $5`,
		contract.State,
		contract.ExpirationDate,
		contract.ExpirationNotifiedOn,
		contract.ID,
		domain.StateSign,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update contract expiration: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

// UpdateWithVersion сохраняет договор и версию одной транзакцией,
// чтобы переходы publish/sign были атомарными.
func (r *ContractRepository) UpdateWithVersion(ctx context.Context, contract *domain.Contract, version *domain.ContractVersion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Блокируем строку договора: ручной переход не должен
	// пересекаться с обработкой этого же договора в фоновом обходе
	var dummy int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM contracts WHERE id = $1 FOR UPDATE`, contract.ID).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(contract.ID, 10)}
	}
	if err != nil {
		return fmt.Errorf("failed to lock contract row: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE contracts
        SET state = $1,
            date_conclusion = $2,
            date_conclusion_fix = $3,
            published_version_id = $4,
            signed_version_id = $5,
            expiration_date = $6,
            expiration_notified_on = $7,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $8`,
		contract.State,
		contract.DateConclusion,
		contract.DateConclusionFix,
		contract.PublishedVersionID,
		contract.SignedVersionID,
		contract.ExpirationDate,
		contract.ExpirationNotifiedOn,
		contract.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}

	if version != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE contract_versions SET is_published = $1, is_signed = $2 WHERE id = $3`,
			version.IsPublished, version.IsSigned, version.ID)
		if err != nil {
			return fmt.Errorf("failed to update version flags: %w", err)
		}
	}

	return tx.Commit()
}

func (r *ContractRepository) ListByState(ctx context.Context, state string) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.SelectContext(ctx, &contracts,
		`SELECT * FROM contracts WHERE state = $1 ORDER BY created_at`, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

func (r *ContractRepository) ListByPartner(ctx context.Context, partnerID int64) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.SelectContext(ctx, &contracts,
		`SELECT * FROM contracts WHERE partner_id = $1 ORDER BY created_at`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts by partner: %w", err)
	}
	return contracts, nil
}

// Delete удаляет договор. Сначала удаляются приложения,
// версии/разделы/пункты каскадируются схемой.
func (r *ContractRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contract_annexes WHERE contract_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete annexes: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(id, 10)}
	}

	return tx.Commit()
}
