package service

import (
	"context"

	"contractdesk/internal/domain"
)

// LineService управляет пунктами договора и их историей ревизий.
type LineService struct {
	contracts ContractStore
	versions  VersionStore
	sections  SectionStore
	lines     LineStore
	contents  ContentStore
}

func NewLineService(contracts ContractStore, versions VersionStore, sections SectionStore, lines LineStore, contents ContentStore) *LineService {
	return &LineService{
		contracts: contracts,
		versions:  versions,
		sections:  sections,
		lines:     lines,
		contents:  contents,
	}
}

func (s *LineService) Get(ctx context.Context, id int64) (*domain.ContractLine, error) {
	return s.lines.GetByID(ctx, id)
}

func (s *LineService) ListBySection(ctx context.Context, sectionID int64) ([]domain.ContractLine, error) {
	return s.lines.ListBySection(ctx, sectionID)
}

// CurrentText возвращает актуальный текст пункта.
func (s *LineService) CurrentText(ctx context.Context, lineID int64) (string, error) {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return "", err
	}
	if line.CurrentContentID == nil {
		return "", nil
	}

	content, err := s.contents.GetByID(ctx, *line.CurrentContentID)
	if err != nil {
		return "", err
	}
	return content.Content, nil
}

// EditContent записывает новый текст пункта: создается новая ревизия,
// история не переписывается. Если текст не изменился, новая ревизия
// не создается.
func (s *LineService) EditContent(ctx context.Context, lineID int64, text string) (*domain.ContractContent, error) {
	if text == "" {
		return nil, &domain.ValidationError{Field: "content", Reason: "content can't be empty"}
	}

	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}

	section, err := s.sections.GetByID(ctx, line.SectionID)
	if err != nil {
		return nil, err
	}
	if _, err := ensureVersionMutable(ctx, s.contracts, s.versions, section.VersionID, "edit line content"); err != nil {
		return nil, err
	}

	if line.CurrentContentID != nil {
		current, err := s.contents.GetByID(ctx, *line.CurrentContentID)
		if err != nil {
			return nil, err
		}
		if current.Content == text {
			return current, nil
		}
	}

	return s.contents.AppendRevision(ctx, lineID, text)
}

// History возвращает все ревизии пункта в порядке добавления.
func (s *LineService) History(ctx context.Context, lineID int64) ([]domain.ContractContent, error) {
	if _, err := s.lines.GetByID(ctx, lineID); err != nil {
		return nil, err
	}
	return s.contents.History(ctx, lineID)
}

// MakeCurrent делает историческую ревизию актуальной.
func (s *LineService) MakeCurrent(ctx context.Context, lineID, contentID int64) error {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return err
	}

	section, err := s.sections.GetByID(ctx, line.SectionID)
	if err != nil {
		return err
	}
	if _, err := ensureVersionMutable(ctx, s.contracts, s.versions, section.VersionID, "change current content"); err != nil {
		return err
	}

	return s.contents.SetCurrent(ctx, lineID, contentID)
}

// Delete удаляет пункт. Вызывается только после подтверждения
// через визард удаления.
func (s *LineService) Delete(ctx context.Context, lineID int64) error {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return err
	}

	section, err := s.sections.GetByID(ctx, line.SectionID)
	if err != nil {
		return err
	}
	if _, err := ensureVersionMutable(ctx, s.contracts, s.versions, section.VersionID, "delete line"); err != nil {
		return err
	}

	return s.lines.Delete(ctx, lineID)
}
