package domain

import "time"

// Partner — контрагент договора (заказчик или поставщик).
// Падежные формы имени используются при подстановке в шаблоны писем.
type Partner struct {
	ID                     int64     `json:"id" db:"id"`
	Name                   string    `json:"name" db:"name"`
	NameGenitive           *string   `json:"name_genitive,omitempty" db:"name_genitive"`
	NameInitials           *string   `json:"name_initials,omitempty" db:"name_initials"`
	PositionGenitive       *string   `json:"position_genitive,omitempty" db:"position_genitive"`
	RepresentativeID       *int64    `json:"representative_id,omitempty" db:"representative_id"`
	RepresentativeDocument *string   `json:"representative_document,omitempty" db:"representative_document"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}
