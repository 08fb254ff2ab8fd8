package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"contractdesk/internal/domain"
)

func TestAnnexGateOnUnsignedContract(t *testing.T) {
	env := newTestEnv(testDay)
	ctx := context.Background()

	contract := draftContract()
	env.contracts.Create(ctx, contract)

	annex := &domain.ContractAnnex{ContractID: contract.ID, Cost: 1000}
	err := env.annexes.Create(ctx, annex)
	var precondition *domain.PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("Expected precondition error for unsigned contract, got %v", err)
	}

	// Настройка allow_not_signed_contract открывает привязку
	env.store.params[domain.ParamAllowNotSignedContract] = "true"
	if err := env.annexes.Create(ctx, annex); err != nil {
		t.Fatalf("Expected annex allowed by setting, got %v", err)
	}
}

func TestAnnexNumberingAndDefaultName(t *testing.T) {
	env := newTestEnv(testDay)
	ctx := context.Background()

	contract := draftContract()
	env.contracts.Create(ctx, contract)
	env.contracts.Sign(ctx, contract.ID, nil)

	first := &domain.ContractAnnex{ContractID: contract.ID, Cost: 500}
	if err := env.annexes.Create(ctx, first); err != nil {
		t.Fatalf("Failed to create annex: %v", err)
	}
	if first.AnnexNumber != 1 {
		t.Errorf("Expected annex number 1, got %d", first.AnnexNumber)
	}
	if first.Name != "Annex №1 from 2025-03-07" {
		t.Errorf("Unexpected default name: %s", first.Name)
	}

	second := &domain.ContractAnnex{ContractID: contract.ID, Name: "Supply order", Cost: 700}
	if err := env.annexes.Create(ctx, second); err != nil {
		t.Fatalf("Failed to create second annex: %v", err)
	}
	if second.AnnexNumber != 2 {
		t.Errorf("Expected annex number 2, got %d", second.AnnexNumber)
	}
	if second.Name != "Supply order" {
		t.Errorf("Expected explicit name preserved, got %s", second.Name)
	}

	stored, _ := env.contracts.Get(ctx, contract.ID)
	if stored.AnnexCount != 2 {
		t.Errorf("Expected annex count 2, got %d", stored.AnnexCount)
	}

	// Удаление возвращает счетчик
	if err := env.annexes.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Failed to delete annex: %v", err)
	}
	stored, _ = env.contracts.Get(ctx, contract.ID)
	if stored.AnnexCount != 1 {
		t.Errorf("Expected annex count 1 after delete, got %d", stored.AnnexCount)
	}
}

func TestAnnexRejectsNegativeCost(t *testing.T) {
	env := newTestEnv(testDay)
	ctx := context.Background()

	contract := draftContract()
	env.contracts.Create(ctx, contract)
	env.contracts.Sign(ctx, contract.ID, nil)

	annex := &domain.ContractAnnex{ContractID: contract.ID, Cost: -1}
	err := env.annexes.Create(ctx, annex)
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

type recordingLinker struct {
	linked []int64
}

func (r *recordingLinker) LinkAnnex(ctx context.Context, annex *domain.ContractAnnex) error {
	r.linked = append(r.linked, annex.ID)
	return nil
}

func TestAnnexLinkerIsInvoked(t *testing.T) {
	env := newTestEnv(testDay)
	ctx := context.Background()

	contract := draftContract()
	env.contracts.Create(ctx, contract)
	env.contracts.Sign(ctx, contract.ID, nil)

	linker := &recordingLinker{}
	annexes := NewAnnexService(env.store, annexStoreAdapter{env.store}, env.store, linker)
	annexes.now = func() time.Time { return testDay }

	annex := &domain.ContractAnnex{ContractID: contract.ID, Cost: 300}
	if err := annexes.Create(ctx, annex); err != nil {
		t.Fatalf("Failed to create annex: %v", err)
	}

	if len(linker.linked) != 1 || linker.linked[0] != annex.ID {
		t.Errorf("Expected linker invoked for annex %d, got %v", annex.ID, linker.linked)
	}
}
