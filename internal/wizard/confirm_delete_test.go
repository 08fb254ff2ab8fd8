package wizard

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"contractdesk/internal/domain"
)

type memTokens struct {
	requests map[string]*domain.DeletionRequest
}

func newMemTokens() *memTokens {
	return &memTokens{requests: make(map[string]*domain.DeletionRequest)}
}

func (m *memTokens) Save(ctx context.Context, token string, req *domain.DeletionRequest, ttl time.Duration) error {
	m.requests[token] = req
	return nil
}

func (m *memTokens) Take(ctx context.Context, token string) (*domain.DeletionRequest, error) {
	req, ok := m.requests[token]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "deletion request", Key: token}
	}
	delete(m.requests, token)
	return req, nil
}

type memSections struct {
	sections map[int64]*domain.ContractSection
	deleted  []int64
}

func (m *memSections) Get(ctx context.Context, id int64) (*domain.ContractSection, error) {
	section, ok := m.sections[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(id, 10)}
	}
	return section, nil
}

func (m *memSections) Delete(ctx context.Context, id int64) error {
	if _, ok := m.sections[id]; !ok {
		return &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.sections, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type memLines struct {
	lines   map[int64]*domain.ContractLine
	deleted []int64
}

func (m *memLines) Get(ctx context.Context, id int64) (*domain.ContractLine, error) {
	line, ok := m.lines[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(id, 10)}
	}
	return line, nil
}

func (m *memLines) Delete(ctx context.Context, id int64) error {
	if _, ok := m.lines[id]; !ok {
		return &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.lines, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func setupDeleteWizard() (*ConfirmDeleteWizard, *memSections, *memLines) {
	sections := &memSections{sections: map[int64]*domain.ContractSection{
		10: {ID: 10, Name: "Terms"},
	}}
	lines := &memLines{lines: map[int64]*domain.ContractLine{
		20: {ID: 20, Number: "1.1"},
	}}
	return NewConfirmDeleteWizard(newMemTokens(), sections, lines), sections, lines
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	w, sections, _ := setupDeleteWizard()
	ctx := context.Background()

	ticket, err := w.Request(ctx, domain.DeletionTargetSection, 10)
	if err != nil {
		t.Fatalf("Failed to request deletion: %v", err)
	}
	if ticket.Message != ConfirmMessage {
		t.Errorf("Unexpected confirmation message: %s", ticket.Message)
	}
	if ticket.Token == "" {
		t.Fatal("Expected a confirmation token")
	}

	// До подтверждения ничего не удалено
	if len(sections.deleted) != 0 {
		t.Fatal("Expected no deletion before confirmation")
	}

	if err := w.Confirm(ctx, ticket.Token); err != nil {
		t.Fatalf("Failed to confirm deletion: %v", err)
	}
	if len(sections.deleted) != 1 || sections.deleted[0] != 10 {
		t.Errorf("Expected section 10 deleted, got %v", sections.deleted)
	}
}

func TestDeleteTokenIsSingleUse(t *testing.T) {
	w, _, lines := setupDeleteWizard()
	ctx := context.Background()

	ticket, err := w.Request(ctx, domain.DeletionTargetLine, 20)
	if err != nil {
		t.Fatalf("Failed to request deletion: %v", err)
	}

	if err := w.Confirm(ctx, ticket.Token); err != nil {
		t.Fatalf("Failed to confirm deletion: %v", err)
	}
	if len(lines.deleted) != 1 {
		t.Fatalf("Expected line deleted, got %v", lines.deleted)
	}

	// Повторное предъявление токена отклоняется
	err = w.Confirm(ctx, ticket.Token)
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected not found error for reused token, got %v", err)
	}
}

func TestDeleteRequestValidatesTarget(t *testing.T) {
	w, _, _ := setupDeleteWizard()
	ctx := context.Background()

	_, err := w.Request(ctx, "contract", 1)
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected validation error for unknown target, got %v", err)
	}

	// Несуществующая цель не получает токен
	_, err = w.Request(ctx, domain.DeletionTargetSection, 999)
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected not found error, got %v", err)
	}
}
