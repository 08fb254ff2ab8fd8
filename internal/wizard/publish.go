// Package wizard содержит короткоживущие команды жизненного цикла:
// каждая проверяет запрошенный переход против текущего состояния
// договора и делегирует мутацию сервисам.
package wizard

import (
	"context"

	"contractdesk/internal/domain"
)

// PublishService — операции версий, нужные визарду публикации.
type PublishService interface {
	Get(ctx context.Context, id int64) (*domain.ContractVersion, error)
	ListByContract(ctx context.Context, contractID int64) ([]domain.ContractVersion, error)
	Publish(ctx context.Context, versionID int64) error
}

type PublishWizard struct {
	versions PublishService
}

func NewPublishWizard(versions PublishService) *PublishWizard {
	return &PublishWizard{versions: versions}
}

// PublishOptions — версии договора, разложенные для выбора в форме.
type PublishOptions struct {
	Draft     []domain.ContractVersion `json:"draft"`
	Published []domain.ContractVersion `json:"published"`
}

func (w *PublishWizard) Options(ctx context.Context, contractID int64) (*PublishOptions, error) {
	versions, err := w.versions.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	options := &PublishOptions{}
	for _, v := range versions {
		if v.IsPublished {
			options.Published = append(options.Published, v)
		} else {
			options.Draft = append(options.Draft, v)
		}
	}

	return options, nil
}

// Publish публикует выбранную версию договора.
func (w *PublishWizard) Publish(ctx context.Context, contractID, versionID int64) error {
	version, err := w.versions.Get(ctx, versionID)
	if err != nil {
		return err
	}
	if version.ContractID != contractID {
		return &domain.PreconditionError{Reason: "version does not belong to the contract"}
	}

	return w.versions.Publish(ctx, versionID)
}
