package wizard

import (
	"context"

	"contractdesk/internal/domain"
)

// VersionCreator создает новую версию договора копией базовой.
type VersionCreator interface {
	CreateNewVersion(ctx context.Context, contractID, baseVersionID int64) (*domain.ContractVersion, error)
}

type VersionWizard struct {
	versions VersionCreator
}

func NewVersionWizard(versions VersionCreator) *VersionWizard {
	return &VersionWizard{versions: versions}
}

// Create валидирует запрос и создает новую версию. Предусловия
// (наличие опубликованной версии, состояние договора) проверяет сервис.
func (w *VersionWizard) Create(ctx context.Context, contractID, baseVersionID int64) (*domain.ContractVersion, error) {
	return w.versions.CreateNewVersion(ctx, contractID, baseVersionID)
}
