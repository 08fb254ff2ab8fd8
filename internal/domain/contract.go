package domain

import (
	"fmt"
	"time"
)

// Состояния жизненного цикла договора.
const (
	StateDraft = "draft"
	StateSign  = "sign"
	StateClose = "close"
)

// Типы договора.
const (
	TypeWithCustomer = "with_customer"
	TypeWithVendor   = "with_vendor"
)

// Единицы периода продления.
const (
	PeriodDays   = "days"
	PeriodMonths = "months"
	PeriodYears  = "years"
)

type Contract struct {
	ID                           int64      `json:"id" db:"id"`
	Number                       string     `json:"number" db:"number"`
	PartnerID                    int64      `json:"partner_id" db:"partner_id"`
	Company                      string     `json:"company" db:"company"`
	Currency                     string     `json:"currency" db:"currency"`
	Type                         string     `json:"type" db:"type"`
	State                        string     `json:"state" db:"state"`
	DateConclusion               *time.Time `json:"date_conclusion,omitempty" db:"date_conclusion"`
	DateConclusionFix            *time.Time `json:"date_conclusion_fix,omitempty" db:"date_conclusion_fix"`
	CommencementDate             *time.Time `json:"commencement_date,omitempty" db:"commencement_date"`
	ExpirationDate               *time.Time `json:"expiration_date,omitempty" db:"expiration_date"`
	RenewAutomatically           bool       `json:"renew_automatically" db:"renew_automatically"`
	RenewPeriod                  int        `json:"renew_period" db:"renew_period"`
	RenewPeriodType              string     `json:"renew_period_type" db:"renew_period_type"`
	NotificationExpiration       bool       `json:"notification_expiration" db:"notification_expiration"`
	NotificationExpirationPeriod int        `json:"notification_expiration_period" db:"notification_expiration_period"`
	ResponsibleEmployee          *string    `json:"responsible_employee,omitempty" db:"responsible_employee"`
	PublishedVersionID           *int64     `json:"published_version_id,omitempty" db:"published_version_id"`
	SignedVersionID              *int64     `json:"signed_version_id,omitempty" db:"signed_version_id"`
	AnnexCount                   int        `json:"annex_count" db:"annex_count"`
	ScanKey                      *string    `json:"scan_key,omitempty" db:"scan_key"`
	ExpirationNotifiedOn         *time.Time `json:"expiration_notified_on,omitempty" db:"expiration_notified_on"`
	CreatedAt                    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                    time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate проверяет ограничения на поля договора перед записью.
func (c *Contract) Validate() error {
	switch c.Type {
	case TypeWithCustomer, TypeWithVendor:
	default:
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown contract type %q", c.Type)}
	}

	if c.RenewAutomatically || c.RenewPeriod != 0 {
		if c.RenewPeriod <= 0 {
			return &ValidationError{Field: "renew_period", Reason: "must be greater than zero"}
		}
		switch c.RenewPeriodType {
		case PeriodDays, PeriodMonths, PeriodYears:
		default:
			return &ValidationError{Field: "renew_period_type", Reason: fmt.Sprintf("unknown period type %q", c.RenewPeriodType)}
		}
	}

	if c.NotificationExpiration && c.NotificationExpirationPeriod <= 0 {
		return &ValidationError{Field: "notification_expiration_period", Reason: "must be greater than zero"}
	}

	return nil
}

// NextExpiration возвращает дату окончания, сдвинутую на период продления.
// Месяцы и годы считаются по календарю, а не фиксированным числом дней.
func (c *Contract) NextExpiration(from time.Time) time.Time {
	switch c.RenewPeriodType {
	case PeriodMonths:
		return from.AddDate(0, c.RenewPeriod, 0)
	case PeriodYears:
		return from.AddDate(c.RenewPeriod, 0, 0)
	default:
		return from.AddDate(0, 0, c.RenewPeriod)
	}
}

// ContractNumber строит номер договора вида `YYMM-D-N`,
// где N — порядковый номер договора, созданного в этот день.
func ContractNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%d", day.Format("0601-02"), seq)
}
