package wizard

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"contractdesk/internal/domain"
)

type memVersions struct {
	versions  map[int64]*domain.ContractVersion
	published []int64
}

func (m *memVersions) Get(ctx context.Context, id int64) (*domain.ContractVersion, error) {
	version, ok := m.versions[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract version", Key: strconv.FormatInt(id, 10)}
	}
	return version, nil
}

func (m *memVersions) ListByContract(ctx context.Context, contractID int64) ([]domain.ContractVersion, error) {
	var result []domain.ContractVersion
	for _, v := range m.versions {
		if v.ContractID == contractID {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (m *memVersions) Publish(ctx context.Context, versionID int64) error {
	m.published = append(m.published, versionID)
	return nil
}

func TestPublishOptionsPartitionsVersions(t *testing.T) {
	versions := &memVersions{versions: map[int64]*domain.ContractVersion{
		1: {ID: 1, ContractID: 5, VersionNumber: 1, IsPublished: true},
		2: {ID: 2, ContractID: 5, VersionNumber: 2},
		3: {ID: 3, ContractID: 9, VersionNumber: 1},
	}}
	w := NewPublishWizard(versions)

	options, err := w.Options(context.Background(), 5)
	if err != nil {
		t.Fatalf("Failed to get options: %v", err)
	}

	if len(options.Published) != 1 || options.Published[0].ID != 1 {
		t.Errorf("Unexpected published versions: %+v", options.Published)
	}
	if len(options.Draft) != 1 || options.Draft[0].ID != 2 {
		t.Errorf("Unexpected draft versions: %+v", options.Draft)
	}
}

func TestPublishWizardChecksOwnership(t *testing.T) {
	versions := &memVersions{versions: map[int64]*domain.ContractVersion{
		1: {ID: 1, ContractID: 5},
	}}
	w := NewPublishWizard(versions)
	ctx := context.Background()

	// Версия чужого договора не публикуется
	err := w.Publish(ctx, 9, 1)
	var precondition *domain.PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("Expected precondition error, got %v", err)
	}

	if err := w.Publish(ctx, 5, 1); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}
	if len(versions.published) != 1 || versions.published[0] != 1 {
		t.Errorf("Expected version 1 published, got %v", versions.published)
	}
}
