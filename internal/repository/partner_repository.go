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

type PartnerRepository struct {
	db *sqlx.DB
}

func NewPartnerRepository(db *sqlx.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO partners (name, name_genitive, name_initials, position_genitive, representative_id, representative_document)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`,
		partner.Name,
		partner.NameGenitive,
		partner.NameInitials,
		partner.PositionGenitive,
		partner.RepresentativeID,
		partner.RepresentativeDocument,
	).Scan(&partner.ID, &partner.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert partner: %w", err)
	}
	return nil
}

func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.db.GetContext(ctx, &partner, `SELECT * FROM partners WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "partner", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return &partner, nil
}

func (r *PartnerRepository) List(ctx context.Context) ([]domain.Partner, error) {
	var partners []domain.Partner
	err := r.db.SelectContext(ctx, &partners, `SELECT * FROM partners ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return partners, nil
}
