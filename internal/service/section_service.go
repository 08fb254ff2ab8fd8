package service

import (
	"context"

	"contractdesk/internal/domain"
)

// SectionService управляет разделами версии договора.
// Любая мутация запрещена для опубликованной версии и подписанного договора.
type SectionService struct {
	contracts ContractStore
	versions  VersionStore
	sections  SectionStore
	lines     LineStore
}

func NewSectionService(contracts ContractStore, versions VersionStore, sections SectionStore, lines LineStore) *SectionService {
	return &SectionService{
		contracts: contracts,
		versions:  versions,
		sections:  sections,
		lines:     lines,
	}
}

func (s *SectionService) Create(ctx context.Context, versionID int64, name string) (*domain.ContractSection, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "section name can't be empty"}
	}

	version, err := ensureVersionMutable(ctx, s.contracts, s.versions, versionID, "create section")
	if err != nil {
		return nil, err
	}

	section := &domain.ContractSection{
		VersionID:  version.ID,
		ContractID: version.ContractID,
		Name:       name,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, err
	}

	return section, nil
}

func (s *SectionService) Get(ctx context.Context, id int64) (*domain.ContractSection, error) {
	return s.sections.GetByID(ctx, id)
}

func (s *SectionService) ListByVersion(ctx context.Context, versionID int64) ([]domain.ContractSection, error) {
	return s.sections.ListByVersion(ctx, versionID)
}

func (s *SectionService) Rename(ctx context.Context, sectionID int64, name string) error {
	if name == "" {
		return &domain.ValidationError{Field: "name", Reason: "section name can't be empty"}
	}

	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return err
	}
	if _, err := ensureVersionMutable(ctx, s.contracts, s.versions, section.VersionID, "rename section"); err != nil {
		return err
	}

	section.Name = name
	return s.sections.Update(ctx, section)
}

// AddLine добавляет пункт с начальным текстом в раздел.
func (s *SectionService) AddLine(ctx context.Context, sectionID int64, number, text string) (*domain.ContractLine, error) {
	if text == "" {
		return nil, &domain.ValidationError{Field: "content", Reason: "content can't be empty"}
	}

	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if _, err := ensureVersionMutable(ctx, s.contracts, s.versions, section.VersionID, "add line"); err != nil {
		return nil, err
	}

	line := &domain.ContractLine{
		SectionID:  section.ID,
		ContractID: section.ContractID,
		Number:     number,
	}
	if _, err := s.lines.Create(ctx, line, text); err != nil {
		return nil, err
	}

	return line, nil
}

// Delete удаляет раздел. Вызывается только после подтверждения
// через визард удаления.
func (s *SectionService) Delete(ctx context.Context, sectionID int64) error {
	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return err
	}
	if _, err := ensureVersionMutable(ctx, s.contracts, s.versions, section.VersionID, "delete section"); err != nil {
		return err
	}

	return s.sections.Delete(ctx, sectionID)
}
