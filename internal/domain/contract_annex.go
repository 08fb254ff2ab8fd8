package domain

import (
	"fmt"
	"time"
)

// ContractAnnex — приложение к договору (заказ на продажу/закупку).
type ContractAnnex struct {
	ID             int64     `json:"id" db:"id"`
	ContractID     int64     `json:"contract_id" db:"contract_id"`
	Name           string    `json:"name" db:"name"`
	AnnexNumber    int       `json:"annex_number" db:"annex_number"`
	DateConclusion time.Time `json:"date_conclusion" db:"date_conclusion"`
	Cost           float64   `json:"cost" db:"cost"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// AnnexName строит имя приложения по умолчанию, если оно не задано явно.
func AnnexName(number int, date time.Time) string {
	return fmt.Sprintf("Annex №%d from %s", number, date.Format("2006-01-02"))
}
