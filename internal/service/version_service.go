package service

import (
	"context"
	"sort"

	"contractdesk/internal/domain"
)

// VersionService управляет публикацией версий и созданием новых
// версий копией существующих.
type VersionService struct {
	contracts ContractStore
	versions  VersionStore
}

func NewVersionService(contracts ContractStore, versions VersionStore) *VersionService {
	return &VersionService{contracts: contracts, versions: versions}
}

func (s *VersionService) Get(ctx context.Context, id int64) (*domain.ContractVersion, error) {
	return s.versions.GetByID(ctx, id)
}

func (s *VersionService) ListByContract(ctx context.Context, contractID int64) ([]domain.ContractVersion, error) {
	return s.versions.ListByContract(ctx, contractID)
}

// VersionView — версия с отображаемым именем для карточки договора.
type VersionView struct {
	domain.ContractVersion
	DisplayName string `json:"display_name"`
}

// ListForDisplay возвращает версии договора с именами вида "номер - N".
func (s *VersionService) ListForDisplay(ctx context.Context, contractID int64) ([]VersionView, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	versions, err := s.versions.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	views := make([]VersionView, 0, len(versions))
	for i := range versions {
		views = append(views, VersionView{
			ContractVersion: versions[i],
			DisplayName:     versions[i].DisplayName(contract.Number),
		})
	}
	return views, nil
}

// Publish делает версию опубликованной и записывает её в договор.
// Флаг ранее опубликованной версии намеренно не сбрасывается:
// авторитетен только указатель published_version_id договора,
// а откат публикации опирается на оставшиеся поднятые флаги.
func (s *VersionService) Publish(ctx context.Context, versionID int64) error {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return err
	}

	contract, err := s.contracts.GetByID(ctx, version.ContractID)
	if err != nil {
		return err
	}
	if contract.State == domain.StateSign {
		return &domain.InvalidStateError{Op: "publish version", State: contract.State}
	}

	if version.IsPublished {
		return nil
	}

	version.IsPublished = true
	contract.PublishedVersionID = &version.ID

	return s.contracts.UpdateWithVersion(ctx, contract, version)
}

// RollbackUnpublish снимает публикацию. Если версия была текущей
// опубликованной, договор переключается на последнюю по дате создания
// из оставшихся опубликованных, либо остается без публикации.
func (s *VersionService) RollbackUnpublish(ctx context.Context, versionID int64) error {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return err
	}
	if !version.IsPublished {
		return nil
	}

	contract, err := s.contracts.GetByID(ctx, version.ContractID)
	if err != nil {
		return err
	}
	if contract.State == domain.StateSign {
		return &domain.InvalidStateError{Op: "rollback published version", State: contract.State}
	}

	version.IsPublished = false

	if contract.PublishedVersionID != nil && *contract.PublishedVersionID == version.ID {
		all, err := s.versions.ListByContract(ctx, contract.ID)
		if err != nil {
			return err
		}

		var published []domain.ContractVersion
		for _, v := range all {
			if v.ID != version.ID && v.IsPublished {
				published = append(published, v)
			}
		}
		sort.Slice(published, func(i, j int) bool {
			return published[i].CreatedAt.After(published[j].CreatedAt)
		})

		if len(published) > 0 {
			contract.PublishedVersionID = &published[0].ID
		} else {
			contract.PublishedVersionID = nil
		}
	}

	return s.contracts.UpdateWithVersion(ctx, contract, version)
}

// CreateNewVersion создает следующую версию договора копией базовой.
func (s *VersionService) CreateNewVersion(ctx context.Context, contractID, baseVersionID int64) (*domain.ContractVersion, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.State == domain.StateSign || contract.State == domain.StateClose {
		return nil, &domain.InvalidStateError{Op: "create new version", State: contract.State}
	}
	if contract.PublishedVersionID == nil {
		return nil, &domain.PreconditionError{Reason: "contract has no published version"}
	}

	base, err := s.versions.GetByID(ctx, baseVersionID)
	if err != nil {
		return nil, err
	}
	if base.ContractID != contractID {
		return nil, &domain.PreconditionError{Reason: "base version does not belong to the contract"}
	}

	return s.versions.CreateFromBase(ctx, contractID, baseVersionID)
}
