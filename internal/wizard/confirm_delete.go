package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contractdesk/internal/domain"
	"contractdesk/internal/service"
)

// Сообщение подтверждения, показываемое пользователю.
const ConfirmMessage = "Are you sure you want to delete?"

// Время жизни неподтвержденного запроса на удаление.
const confirmationTTL = 15 * time.Minute

// SectionDeleter и LineDeleter — операции, которыми визард
// выполняет подтвержденное удаление.
type SectionDeleter interface {
	Get(ctx context.Context, id int64) (*domain.ContractSection, error)
	Delete(ctx context.Context, id int64) error
}

type LineDeleter interface {
	Get(ctx context.Context, id int64) (*domain.ContractLine, error)
	Delete(ctx context.Context, id int64) error
}

// ConfirmDeleteWizard реализует двухфазное удаление: сначала выдается
// токен с сообщением подтверждения, удаление выполняется только
// по предъявлению токена. Токен одноразовый.
type ConfirmDeleteWizard struct {
	tokens   service.ConfirmationStore
	sections SectionDeleter
	lines    LineDeleter
	now      func() time.Time
}

func NewConfirmDeleteWizard(tokens service.ConfirmationStore, sections SectionDeleter, lines LineDeleter) *ConfirmDeleteWizard {
	return &ConfirmDeleteWizard{
		tokens:   tokens,
		sections: sections,
		lines:    lines,
		now:      time.Now,
	}
}

// DeletionTicket возвращается на первой фазе удаления.
type DeletionTicket struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Request проверяет, что цель существует, и выдает токен подтверждения.
func (w *ConfirmDeleteWizard) Request(ctx context.Context, target string, targetID int64) (*DeletionTicket, error) {
	switch target {
	case domain.DeletionTargetSection:
		if _, err := w.sections.Get(ctx, targetID); err != nil {
			return nil, err
		}
	case domain.DeletionTargetLine:
		if _, err := w.lines.Get(ctx, targetID); err != nil {
			return nil, err
		}
	default:
		return nil, &domain.ValidationError{Field: "target", Reason: fmt.Sprintf("unknown deletion target %q", target)}
	}

	req := &domain.DeletionRequest{
		Target:      target,
		TargetID:    targetID,
		Message:     ConfirmMessage,
		RequestedAt: w.now(),
	}

	token := uuid.New().String()
	if err := w.tokens.Save(ctx, token, req, confirmationTTL); err != nil {
		return nil, err
	}

	return &DeletionTicket{Token: token, Message: req.Message}, nil
}

// Confirm выполняет удаление по токену. Ограничения неизменяемости
// перепроверяются сервисами на момент подтверждения.
func (w *ConfirmDeleteWizard) Confirm(ctx context.Context, token string) error {
	req, err := w.tokens.Take(ctx, token)
	if err != nil {
		return err
	}

	switch req.Target {
	case domain.DeletionTargetSection:
		return w.sections.Delete(ctx, req.TargetID)
	case domain.DeletionTargetLine:
		return w.lines.Delete(ctx, req.TargetID)
	default:
		return &domain.ValidationError{Field: "target", Reason: fmt.Sprintf("unknown deletion target %q", req.Target)}
	}
}
