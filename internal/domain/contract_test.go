package domain

import (
	"testing"
	"time"
)

func TestContractNumber(t *testing.T) {
	day := time.Date(2025, 3, 7, 15, 30, 0, 0, time.UTC)

	got := ContractNumber(day, 1)
	if got != "2503-07-1" {
		t.Errorf("Expected 2503-07-1, got %s", got)
	}

	got = ContractNumber(day, 12)
	if got != "2503-07-12" {
		t.Errorf("Expected 2503-07-12, got %s", got)
	}
}

func TestNextExpirationCalendarMath(t *testing.T) {
	from := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	c := &Contract{RenewPeriod: 1, RenewPeriodType: PeriodMonths}
	got := c.NextExpiration(from)
	// 31 января + месяц по календарю переливается в март
	want := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	c = &Contract{RenewPeriod: 10, RenewPeriodType: PeriodDays}
	got = c.NextExpiration(from)
	want = time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	c = &Contract{RenewPeriod: 2, RenewPeriodType: PeriodYears}
	got = c.NextExpiration(from)
	want = time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestContractValidate(t *testing.T) {
	c := &Contract{Type: TypeWithCustomer}
	if err := c.Validate(); err != nil {
		t.Errorf("Expected valid contract, got %v", err)
	}

	c = &Contract{Type: "partnership"}
	if err := c.Validate(); err == nil {
		t.Error("Expected error for unknown contract type")
	}

	c = &Contract{Type: TypeWithVendor, RenewAutomatically: true}
	if err := c.Validate(); err == nil {
		t.Error("Expected error for auto renew without period")
	}

	c = &Contract{Type: TypeWithVendor, RenewAutomatically: true, RenewPeriod: 6, RenewPeriodType: PeriodMonths}
	if err := c.Validate(); err != nil {
		t.Errorf("Expected valid contract, got %v", err)
	}

	c = &Contract{Type: TypeWithVendor, RenewPeriod: 5, RenewPeriodType: "quarters"}
	if err := c.Validate(); err == nil {
		t.Error("Expected error for unknown period type")
	}

	c = &Contract{Type: TypeWithCustomer, NotificationExpiration: true}
	if err := c.Validate(); err == nil {
		t.Error("Expected error for notification without period")
	}
}

func TestVersionDisplayName(t *testing.T) {
	v := &ContractVersion{VersionNumber: 3}
	got := v.DisplayName("2503-07-1")
	if got != "2503-07-1 - 3" {
		t.Errorf("Expected '2503-07-1 - 3', got %s", got)
	}
}

func TestAnnexName(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	got := AnnexName(2, date)
	if got != "Annex №2 from 2025-06-15" {
		t.Errorf("Unexpected annex name: %s", got)
	}
}
