package wizard

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"contractdesk/internal/domain"
)

type memContracts struct {
	contracts map[int64]*domain.Contract
	signed    map[int64]*int64
}

func (m *memContracts) Get(ctx context.Context, id int64) (*domain.Contract, error) {
	contract, ok := m.contracts[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(id, 10)}
	}
	return contract, nil
}

func (m *memContracts) Sign(ctx context.Context, contractID int64, versionID *int64) error {
	if _, ok := m.contracts[contractID]; !ok {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(contractID, 10)}
	}
	m.signed[contractID] = versionID
	return nil
}

func TestSignWizardPublishedSelection(t *testing.T) {
	published := int64(7)
	contracts := &memContracts{
		contracts: map[int64]*domain.Contract{
			1: {ID: 1, PublishedVersionID: &published},
			2: {ID: 2},
		},
		signed: make(map[int64]*int64),
	}
	w := NewSignWizard(contracts)
	ctx := context.Background()

	if err := w.Sign(ctx, 1, SelectionPublished); err != nil {
		t.Fatalf("Failed to sign with published version: %v", err)
	}
	if got := contracts.signed[1]; got == nil || *got != published {
		t.Errorf("Expected signed version %d, got %v", published, got)
	}

	// Без опубликованной версии выбор published отклоняется
	err := w.Sign(ctx, 2, SelectionPublished)
	var precondition *domain.PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("Expected precondition error, got %v", err)
	}
}

func TestSignWizardEmptySelection(t *testing.T) {
	contracts := &memContracts{
		contracts: map[int64]*domain.Contract{1: {ID: 1}},
		signed:    make(map[int64]*int64),
	}
	w := NewSignWizard(contracts)

	if err := w.Sign(context.Background(), 1, SelectionEmpty); err != nil {
		t.Fatalf("Failed to sign without version: %v", err)
	}
	versionID, ok := contracts.signed[1]
	if !ok || versionID != nil {
		t.Errorf("Expected signature without version, got %v", versionID)
	}
}

func TestSignWizardRejectsUnknownSelection(t *testing.T) {
	contracts := &memContracts{
		contracts: map[int64]*domain.Contract{1: {ID: 1}},
		signed:    make(map[int64]*int64),
	}
	w := NewSignWizard(contracts)

	err := w.Sign(context.Background(), 1, "latest")
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}
