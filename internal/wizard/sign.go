package wizard

import (
	"context"
	"fmt"

	"contractdesk/internal/domain"
)

// Варианты выбора версии при подписании.
const (
	SelectionEmpty     = "empty"
	SelectionPublished = "published"
)

// SignService — операции договора, нужные визарду подписания.
type SignService interface {
	Get(ctx context.Context, id int64) (*domain.Contract, error)
	Sign(ctx context.Context, contractID int64, versionID *int64) error
}

type SignWizard struct {
	contracts SignService
}

func NewSignWizard(contracts SignService) *SignWizard {
	return &SignWizard{contracts: contracts}
}

// Sign подписывает договор. При выборе published подписанной становится
// текущая опубликованная версия; при выборе empty договор подписывается
// без привязки к версии.
func (w *SignWizard) Sign(ctx context.Context, contractID int64, selection string) error {
	switch selection {
	case SelectionEmpty:
		return w.contracts.Sign(ctx, contractID, nil)
	case SelectionPublished:
		contract, err := w.contracts.Get(ctx, contractID)
		if err != nil {
			return err
		}
		if contract.PublishedVersionID == nil {
			return &domain.PreconditionError{Reason: "contract has no published version to sign"}
		}
		return w.contracts.Sign(ctx, contractID, contract.PublishedVersionID)
	default:
		return &domain.ValidationError{Field: "version_selection", Reason: fmt.Sprintf("unknown selection %q", selection)}
	}
}
