package domain

import (
	"fmt"
	"time"
)

type ContractVersion struct {
	ID            int64     `json:"id" db:"id"`
	ContractID    int64     `json:"contract_id" db:"contract_id"`
	VersionNumber int       `json:"version_number" db:"version_number"`
	IsPublished   bool      `json:"is_published" db:"is_published"`
	IsSigned      bool      `json:"is_signed" db:"is_signed"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DisplayName строит имя версии из номера договора и номера версии.
func (v *ContractVersion) DisplayName(contractNumber string) string {
	return fmt.Sprintf("%s - %d", contractNumber, v.VersionNumber)
}
