package domain

import "time"

// ContractLine хранит информацию о пункте (абзаце) договора.
// Текущий текст лежит в contract_contents, история — в таблице связи.
type ContractLine struct {
	ID               int64     `json:"id" db:"id"`
	SectionID        int64     `json:"section_id" db:"section_id"`
	ContractID       int64     `json:"contract_id" db:"contract_id"`
	Number           string    `json:"number" db:"number"`
	Sequence         int       `json:"sequence" db:"sequence"`
	CurrentContentID *int64    `json:"current_content_id,omitempty" db:"current_content_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
