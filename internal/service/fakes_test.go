package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"contractdesk/internal/domain"
)

// memStore — общее in-memory хранилище для тестов сервисов.
// Реализует все стор-интерфейсы; возвращает копии, чтобы
// правки в сервисе не были видны до явного Update.
type memStore struct {
	contracts map[int64]*domain.Contract
	versions  map[int64]*domain.ContractVersion
	sections  map[int64]*domain.ContractSection
	lines     map[int64]*domain.ContractLine
	contents  map[int64]*domain.ContractContent
	history   map[int64][]int64
	annexes   map[int64]*domain.ContractAnnex
	params    map[string]string
	templates map[string]*domain.MailTemplate
	nextID    int64
	day       time.Time
	copyFail  error
}

func newMemStore(day time.Time) *memStore {
	return &memStore{
		contracts: make(map[int64]*domain.Contract),
		versions:  make(map[int64]*domain.ContractVersion),
		sections:  make(map[int64]*domain.ContractSection),
		lines:     make(map[int64]*domain.ContractLine),
		contents:  make(map[int64]*domain.ContractContent),
		history:   make(map[int64][]int64),
		annexes:   make(map[int64]*domain.ContractAnnex),
		params:    make(map[string]string),
		templates: make(map[string]*domain.MailTemplate),
		day:       day,
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// --- ContractStore ---

func (m *memStore) Create(ctx context.Context, contract *domain.Contract) (*domain.ContractVersion, error) {
	contract.ID = m.id()
	contract.Number = domain.ContractNumber(m.day, len(m.contracts)+1)
	contract.CreatedAt = m.day
	contract.UpdatedAt = m.day

	copied := *contract
	m.contracts[contract.ID] = &copied

	version := &domain.ContractVersion{
		ID:            m.id(),
		ContractID:    contract.ID,
		VersionNumber: 1,
		CreatedAt:     m.day.Add(time.Duration(m.nextID) * time.Second),
	}
	m.versions[version.ID] = version

	result := *version
	return &result, nil
}

// CreateCopy повторяет атомарность репозитория: при ошибке копирования
// дерева не остается ни договора, ни версии.
func (m *memStore) CreateCopy(ctx context.Context, contract *domain.Contract, srcVersionID int64) (*domain.ContractVersion, error) {
	if m.copyFail != nil {
		return nil, m.copyFail
	}

	version, err := m.Create(ctx, contract)
	if err != nil {
		return nil, err
	}
	if err := m.copyTree(srcVersionID, version.ID, contract.ID); err != nil {
		return nil, err
	}
	return version, nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*domain.Contract, error) {
	contract, ok := m.contracts[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(id, 10)}
	}
	copied := *contract
	return &copied, nil
}

func (m *memStore) Update(ctx context.Context, contract *domain.Contract) error {
	if _, ok := m.contracts[contract.ID]; !ok {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(contract.ID, 10)}
	}
	copied := *contract
	m.contracts[contract.ID] = &copied
	return nil
}

func (m *memStore) UpdateWithVersion(ctx context.Context, contract *domain.Contract, version *domain.ContractVersion) error {
	if err := m.Update(ctx, contract); err != nil {
		return err
	}
	if version != nil {
		stored, ok := m.versions[version.ID]
		if !ok {
			return &domain.NotFoundError{Entity: "contract version", Key: strconv.FormatInt(version.ID, 10)}
		}
		stored.IsPublished = version.IsPublished
		stored.IsSigned = version.IsSigned
	}
	return nil
}

// UpdateExpiration воспроизводит охрану репозитория: запись проходит,
// только пока договор в sign, и затрагивает лишь поля обхода.
func (m *memStore) UpdateExpiration(ctx context.Context, contract *domain.Contract) (bool, error) {
	stored, ok := m.contracts[contract.ID]
	if !ok {
		return false, &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(contract.ID, 10)}
	}
	if stored.State != domain.StateSign {
		return false, nil
	}

	stored.State = contract.State
	stored.ExpirationDate = contract.ExpirationDate
	stored.ExpirationNotifiedOn = contract.ExpirationNotifiedOn
	return true, nil
}

func (m *memStore) ListByState(ctx context.Context, state string) ([]domain.Contract, error) {
	var result []domain.Contract
	for _, c := range m.contracts {
		if c.State == state {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memStore) ListByPartner(ctx context.Context, partnerID int64) ([]domain.Contract, error) {
	var result []domain.Contract
	for _, c := range m.contracts {
		if c.PartnerID == partnerID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	if _, ok := m.contracts[id]; !ok {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.contracts, id)
	for vid, v := range m.versions {
		if v.ContractID == id {
			delete(m.versions, vid)
		}
	}
	for aid, a := range m.annexes {
		if a.ContractID == id {
			delete(m.annexes, aid)
		}
	}
	return nil
}

// --- VersionStore ---

func (m *memStore) GetVersion(ctx context.Context, id int64) (*domain.ContractVersion, error) {
	version, ok := m.versions[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract version", Key: strconv.FormatInt(id, 10)}
	}
	copied := *version
	return &copied, nil
}

func (m *memStore) ListByContract(ctx context.Context, contractID int64) ([]domain.ContractVersion, error) {
	var result []domain.ContractVersion
	for _, v := range m.versions {
		if v.ContractID == contractID {
			result = append(result, *v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VersionNumber < result[j].VersionNumber })
	return result, nil
}

func (m *memStore) UpdateVersion(ctx context.Context, version *domain.ContractVersion) error {
	if _, ok := m.versions[version.ID]; !ok {
		return &domain.NotFoundError{Entity: "contract version", Key: strconv.FormatInt(version.ID, 10)}
	}
	copied := *version
	m.versions[version.ID] = &copied
	return nil
}

func (m *memStore) CreateFromBase(ctx context.Context, contractID, baseVersionID int64) (*domain.ContractVersion, error) {
	maxNumber := 0
	for _, v := range m.versions {
		if v.ContractID == contractID && v.VersionNumber > maxNumber {
			maxNumber = v.VersionNumber
		}
	}

	version := &domain.ContractVersion{
		ID:            m.id(),
		ContractID:    contractID,
		VersionNumber: maxNumber + 1,
		CreatedAt:     m.day.Add(time.Duration(m.nextID) * time.Second),
	}
	m.versions[version.ID] = version

	if err := m.copyTree(baseVersionID, version.ID, contractID); err != nil {
		return nil, err
	}

	copied := *version
	return &copied, nil
}

func (m *memStore) copyTree(srcVersionID, dstVersionID, dstContractID int64) error {
	var srcSections []*domain.ContractSection
	for _, s := range m.sections {
		if s.VersionID == srcVersionID {
			srcSections = append(srcSections, s)
		}
	}
	sort.Slice(srcSections, func(i, j int) bool { return srcSections[i].Sequence < srcSections[j].Sequence })

	for _, src := range srcSections {
		section := &domain.ContractSection{
			ID:         m.id(),
			VersionID:  dstVersionID,
			ContractID: dstContractID,
			Name:       src.Name,
			Sequence:   src.Sequence,
		}
		m.sections[section.ID] = section

		var srcLines []*domain.ContractLine
		for _, l := range m.lines {
			if l.SectionID == src.ID {
				srcLines = append(srcLines, l)
			}
		}
		sort.Slice(srcLines, func(i, j int) bool { return srcLines[i].Sequence < srcLines[j].Sequence })

		for _, srcLine := range srcLines {
			// Текущий текст становится первой ревизией копии, история не переносится
			var text string
			if srcLine.CurrentContentID != nil {
				text = m.contents[*srcLine.CurrentContentID].Content
			}

			content := &domain.ContractContent{ID: m.id(), Content: text}
			m.contents[content.ID] = content

			line := &domain.ContractLine{
				ID:               m.id(),
				SectionID:        section.ID,
				ContractID:       dstContractID,
				Number:           srcLine.Number,
				Sequence:         srcLine.Sequence,
				CurrentContentID: &content.ID,
			}
			m.lines[line.ID] = line
			m.history[line.ID] = []int64{content.ID}
		}
	}

	return nil
}

// --- SectionStore ---

func (m *memStore) CreateSection(ctx context.Context, section *domain.ContractSection) error {
	if section.Sequence == 0 {
		maxSeq := 0
		for _, s := range m.sections {
			if s.VersionID == section.VersionID && s.Sequence > maxSeq {
				maxSeq = s.Sequence
			}
		}
		section.Sequence = maxSeq + 1
	}
	section.ID = m.id()
	copied := *section
	m.sections[section.ID] = &copied
	return nil
}

func (m *memStore) GetSection(ctx context.Context, id int64) (*domain.ContractSection, error) {
	section, ok := m.sections[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(id, 10)}
	}
	copied := *section
	return &copied, nil
}

func (m *memStore) ListByVersion(ctx context.Context, versionID int64) ([]domain.ContractSection, error) {
	var result []domain.ContractSection
	for _, s := range m.sections {
		if s.VersionID == versionID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Sequence < result[j].Sequence })
	return result, nil
}

func (m *memStore) UpdateSection(ctx context.Context, section *domain.ContractSection) error {
	if _, ok := m.sections[section.ID]; !ok {
		return &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(section.ID, 10)}
	}
	copied := *section
	m.sections[section.ID] = &copied
	return nil
}

func (m *memStore) DeleteSection(ctx context.Context, id int64) error {
	if _, ok := m.sections[id]; !ok {
		return &domain.NotFoundError{Entity: "contract section", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.sections, id)
	for lid, l := range m.lines {
		if l.SectionID == id {
			delete(m.lines, lid)
			delete(m.history, lid)
		}
	}
	return nil
}

// --- LineStore ---

func (m *memStore) CreateLine(ctx context.Context, line *domain.ContractLine, initialText string) (*domain.ContractContent, error) {
	if line.Sequence == 0 {
		maxSeq := 0
		for _, l := range m.lines {
			if l.SectionID == line.SectionID && l.Sequence > maxSeq {
				maxSeq = l.Sequence
			}
		}
		line.Sequence = maxSeq + 1
	}

	content := &domain.ContractContent{ID: m.id(), Content: initialText}
	m.contents[content.ID] = content

	line.ID = m.id()
	line.CurrentContentID = &content.ID
	copied := *line
	m.lines[line.ID] = &copied
	m.history[line.ID] = []int64{content.ID}

	result := *content
	return &result, nil
}

func (m *memStore) GetLine(ctx context.Context, id int64) (*domain.ContractLine, error) {
	line, ok := m.lines[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(id, 10)}
	}
	copied := *line
	return &copied, nil
}

func (m *memStore) ListBySection(ctx context.Context, sectionID int64) ([]domain.ContractLine, error) {
	var result []domain.ContractLine
	for _, l := range m.lines {
		if l.SectionID == sectionID {
			result = append(result, *l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Sequence < result[j].Sequence })
	return result, nil
}

func (m *memStore) DeleteLine(ctx context.Context, id int64) error {
	if _, ok := m.lines[id]; !ok {
		return &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.lines, id)
	delete(m.history, id)
	return nil
}

// --- ContentStore ---

func (m *memStore) GetContent(ctx context.Context, id int64) (*domain.ContractContent, error) {
	content, ok := m.contents[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract content", Key: strconv.FormatInt(id, 10)}
	}
	copied := *content
	return &copied, nil
}

func (m *memStore) AppendRevision(ctx context.Context, lineID int64, text string) (*domain.ContractContent, error) {
	line, ok := m.lines[lineID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(lineID, 10)}
	}

	content := &domain.ContractContent{ID: m.id(), Content: text}
	m.contents[content.ID] = content
	m.history[lineID] = append(m.history[lineID], content.ID)
	line.CurrentContentID = &content.ID

	copied := *content
	return &copied, nil
}

func (m *memStore) History(ctx context.Context, lineID int64) ([]domain.ContractContent, error) {
	var result []domain.ContractContent
	for _, id := range m.history[lineID] {
		result = append(result, *m.contents[id])
	}
	return result, nil
}

func (m *memStore) SetCurrent(ctx context.Context, lineID, contentID int64) error {
	line, ok := m.lines[lineID]
	if !ok {
		return &domain.NotFoundError{Entity: "contract line", Key: strconv.FormatInt(lineID, 10)}
	}

	found := false
	for _, id := range m.history[lineID] {
		if id == contentID {
			found = true
			break
		}
	}
	if !found {
		return &domain.PreconditionError{Reason: "content does not belong to the line history"}
	}

	line.CurrentContentID = &contentID
	return nil
}

// --- AnnexStore ---

func (m *memStore) CreateAnnex(ctx context.Context, annex *domain.ContractAnnex) error {
	contract, ok := m.contracts[annex.ContractID]
	if !ok {
		return &domain.NotFoundError{Entity: "contract", Key: strconv.FormatInt(annex.ContractID, 10)}
	}

	contract.AnnexCount++
	annex.AnnexNumber = contract.AnnexCount
	if annex.Name == "" {
		annex.Name = domain.AnnexName(annex.AnnexNumber, annex.DateConclusion)
	}

	annex.ID = m.id()
	copied := *annex
	m.annexes[annex.ID] = &copied
	return nil
}

func (m *memStore) GetAnnex(ctx context.Context, id int64) (*domain.ContractAnnex, error) {
	annex, ok := m.annexes[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "contract annex", Key: strconv.FormatInt(id, 10)}
	}
	copied := *annex
	return &copied, nil
}

func (m *memStore) ListAnnexes(ctx context.Context, contractID int64) ([]domain.ContractAnnex, error) {
	var result []domain.ContractAnnex
	for _, a := range m.annexes {
		if a.ContractID == contractID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AnnexNumber < result[j].AnnexNumber })
	return result, nil
}

func (m *memStore) DeleteAnnex(ctx context.Context, id int64) error {
	annex, ok := m.annexes[id]
	if !ok {
		return &domain.NotFoundError{Entity: "contract annex", Key: strconv.FormatInt(id, 10)}
	}
	if contract, ok := m.contracts[annex.ContractID]; ok {
		contract.AnnexCount--
	}
	delete(m.annexes, id)
	return nil
}

// --- SettingsStore ---

func (m *memStore) GetParam(ctx context.Context, key string) (string, error) {
	return m.params[key], nil
}

func (m *memStore) SetParam(ctx context.Context, key, value string) error {
	m.params[key] = value
	return nil
}

func (m *memStore) GetTemplate(ctx context.Context, name string) (*domain.MailTemplate, error) {
	tmpl, ok := m.templates[name]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "mail template", Key: name}
	}
	copied := *tmpl
	return &copied, nil
}

// Адаптеры под сигнатуры стор-интерфейсов: методы разных сущностей
// в memStore различаются именами, интерфейсы ожидают одинаковые.

type versionStoreAdapter struct{ *memStore }

func (a versionStoreAdapter) GetByID(ctx context.Context, id int64) (*domain.ContractVersion, error) {
	return a.GetVersion(ctx, id)
}

func (a versionStoreAdapter) Update(ctx context.Context, version *domain.ContractVersion) error {
	return a.UpdateVersion(ctx, version)
}

type sectionStoreAdapter struct{ *memStore }

func (a sectionStoreAdapter) Create(ctx context.Context, section *domain.ContractSection) error {
	return a.CreateSection(ctx, section)
}

func (a sectionStoreAdapter) GetByID(ctx context.Context, id int64) (*domain.ContractSection, error) {
	return a.GetSection(ctx, id)
}

func (a sectionStoreAdapter) Update(ctx context.Context, section *domain.ContractSection) error {
	return a.UpdateSection(ctx, section)
}

func (a sectionStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.DeleteSection(ctx, id)
}

type lineStoreAdapter struct{ *memStore }

func (a lineStoreAdapter) Create(ctx context.Context, line *domain.ContractLine, initialText string) (*domain.ContractContent, error) {
	return a.CreateLine(ctx, line, initialText)
}

func (a lineStoreAdapter) GetByID(ctx context.Context, id int64) (*domain.ContractLine, error) {
	return a.GetLine(ctx, id)
}

func (a lineStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.DeleteLine(ctx, id)
}

type contentStoreAdapter struct{ *memStore }

func (a contentStoreAdapter) GetByID(ctx context.Context, id int64) (*domain.ContractContent, error) {
	return a.GetContent(ctx, id)
}

type annexStoreAdapter struct{ *memStore }

func (a annexStoreAdapter) Create(ctx context.Context, annex *domain.ContractAnnex) error {
	return a.CreateAnnex(ctx, annex)
}

func (a annexStoreAdapter) GetByID(ctx context.Context, id int64) (*domain.ContractAnnex, error) {
	return a.GetAnnex(ctx, id)
}

func (a annexStoreAdapter) ListByContract(ctx context.Context, contractID int64) ([]domain.ContractAnnex, error) {
	return a.ListAnnexes(ctx, contractID)
}

func (a annexStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.DeleteAnnex(ctx, id)
}

// fakeSender записывает отправленные письма.
type fakeSender struct {
	sent []string
	fail error
}

func (f *fakeSender) Send(ctx context.Context, to string, tmpl *domain.MailTemplate, contract *domain.Contract) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, to)
	return nil
}

// testEnv собирает сервисы поверх одного memStore с фиксированной датой.
type testEnv struct {
	store     *memStore
	sender    *fakeSender
	contracts *ContractService
	versions  *VersionService
	sections  *SectionService
	lines     *LineService
	annexes   *AnnexService
}

func newTestEnv(day time.Time) *testEnv {
	store := newMemStore(day)
	sender := &fakeSender{}

	versionStore := versionStoreAdapter{store}
	sectionStore := sectionStoreAdapter{store}
	lineStore := lineStoreAdapter{store}
	contentStore := contentStoreAdapter{store}
	annexStore := annexStoreAdapter{store}

	contracts := NewContractService(store, versionStore, store, nil, sender)
	contracts.now = func() time.Time { return day }

	annexes := NewAnnexService(store, annexStore, store, nil)
	annexes.now = func() time.Time { return day }

	return &testEnv{
		store:     store,
		sender:    sender,
		contracts: contracts,
		versions:  NewVersionService(store, versionStore),
		sections:  NewSectionService(store, versionStore, sectionStore, lineStore),
		lines:     NewLineService(store, versionStore, sectionStore, lineStore, contentStore),
		annexes:   annexes,
	}
}

func (e *testEnv) setDay(day time.Time) {
	e.contracts.now = func() time.Time { return day }
}

func draftContract() *domain.Contract {
	return &domain.Contract{
		PartnerID: 1,
		Company:   "Acme LLC",
		Currency:  "USD",
		Type:      domain.TypeWithCustomer,
	}
}
