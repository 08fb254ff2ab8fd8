package service

import (
	"context"
	"time"

	"contractdesk/internal/domain"
)

// AnnexLinker — точка расширения: привязка созданного приложения
// к внешнему документу (счету, заказу). Базовая реализация ничего не делает,
// учетные модули регистрируют свою при сборке приложения.
type AnnexLinker interface {
	LinkAnnex(ctx context.Context, annex *domain.ContractAnnex) error
}

// NopAnnexLinker — реализация по умолчанию.
type NopAnnexLinker struct{}

func (NopAnnexLinker) LinkAnnex(ctx context.Context, annex *domain.ContractAnnex) error {
	return nil
}

// AnnexService управляет приложениями к договору.
type AnnexService struct {
	contracts ContractStore
	annexes   AnnexStore
	settings  SettingsStore
	linker    AnnexLinker
	now       func() time.Time
}

func NewAnnexService(contracts ContractStore, annexes AnnexStore, settings SettingsStore, linker AnnexLinker) *AnnexService {
	if linker == nil {
		linker = NopAnnexLinker{}
	}
	return &AnnexService{
		contracts: contracts,
		annexes:   annexes,
		settings:  settings,
		linker:    linker,
		now:       time.Now,
	}
}

// Create создает приложение. Привязка к неподписанному договору
// разрешается только настройкой allow_not_signed_contract.
func (s *AnnexService) Create(ctx context.Context, annex *domain.ContractAnnex) error {
	contract, err := s.contracts.GetByID(ctx, annex.ContractID)
	if err != nil {
		return err
	}

	if contract.State != domain.StateSign {
		allowed, err := s.settings.GetParam(ctx, domain.ParamAllowNotSignedContract)
		if err != nil {
			return err
		}
		if allowed != "true" {
			return &domain.PreconditionError{Reason: "binding annexes to a not signed contract is not allowed"}
		}
	}

	if annex.Cost < 0 {
		return &domain.ValidationError{Field: "cost", Reason: "must not be negative"}
	}
	if annex.DateConclusion.IsZero() {
		annex.DateConclusion = dateOnly(s.now())
	}

	// Номер и имя по умолчанию выдает хранилище при вставке
	if err := s.annexes.Create(ctx, annex); err != nil {
		return err
	}

	return s.linker.LinkAnnex(ctx, annex)
}

func (s *AnnexService) Get(ctx context.Context, id int64) (*domain.ContractAnnex, error) {
	return s.annexes.GetByID(ctx, id)
}

func (s *AnnexService) ListByContract(ctx context.Context, contractID int64) ([]domain.ContractAnnex, error) {
	return s.annexes.ListByContract(ctx, contractID)
}

func (s *AnnexService) Delete(ctx context.Context, id int64) error {
	return s.annexes.Delete(ctx, id)
}
