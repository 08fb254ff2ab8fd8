package domain

import "time"

// ContractSection — упорядоченный раздел внутри версии договора.
type ContractSection struct {
	ID         int64     `json:"id" db:"id"`
	VersionID  int64     `json:"version_id" db:"version_id"`
	ContractID int64     `json:"contract_id" db:"contract_id"`
	Name       string    `json:"name" db:"name"`
	Sequence   int       `json:"sequence" db:"sequence"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
