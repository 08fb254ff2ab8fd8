package service

import (
	"context"
	"time"

	"contractdesk/internal/domain"
)

// Интерфейсы хранилищ, которые потребляют сервисы. Реализуются
// репозиториями поверх Postgres и in-memory фейками в тестах.

type ContractStore interface {
	// Create вставляет договор, присваивает номер и создает первую версию
	// в одной транзакции; возвращает созданную версию.
	Create(ctx context.Context, contract *domain.Contract) (*domain.ContractVersion, error)
	// CreateCopy вставляет договор-дубликат вместе с копией дерева исходной
	// версии в одной транзакции: при ошибке не остается частичного договора.
	CreateCopy(ctx context.Context, contract *domain.Contract, srcVersionID int64) (*domain.ContractVersion, error)
	GetByID(ctx context.Context, id int64) (*domain.Contract, error)
	Update(ctx context.Context, contract *domain.Contract) error
	// UpdateExpiration пишет поля фонового обхода, пока договор в sign;
	// false означает, что договор успели перевести вручную и запись пропущена.
	UpdateExpiration(ctx context.Context, contract *domain.Contract) (bool, error)
	// UpdateWithVersion атомарно сохраняет договор вместе с флагами версии.
	UpdateWithVersion(ctx context.Context, contract *domain.Contract, version *domain.ContractVersion) error
	ListByState(ctx context.Context, state string) ([]domain.Contract, error)
	ListByPartner(ctx context.Context, partnerID int64) ([]domain.Contract, error)
	Delete(ctx context.Context, id int64) error
}

type VersionStore interface {
	GetByID(ctx context.Context, id int64) (*domain.ContractVersion, error)
	ListByContract(ctx context.Context, contractID int64) ([]domain.ContractVersion, error)
	Update(ctx context.Context, version *domain.ContractVersion) error
	// CreateFromBase выдает следующий номер версии и копирует дерево базовой.
	CreateFromBase(ctx context.Context, contractID, baseVersionID int64) (*domain.ContractVersion, error)
}

type SectionStore interface {
	Create(ctx context.Context, section *domain.ContractSection) error
	GetByID(ctx context.Context, id int64) (*domain.ContractSection, error)
	ListByVersion(ctx context.Context, versionID int64) ([]domain.ContractSection, error)
	Update(ctx context.Context, section *domain.ContractSection) error
	Delete(ctx context.Context, id int64) error
}

type LineStore interface {
	Create(ctx context.Context, line *domain.ContractLine, initialText string) (*domain.ContractContent, error)
	GetByID(ctx context.Context, id int64) (*domain.ContractLine, error)
	ListBySection(ctx context.Context, sectionID int64) ([]domain.ContractLine, error)
	Delete(ctx context.Context, id int64) error
}

type ContentStore interface {
	GetByID(ctx context.Context, id int64) (*domain.ContractContent, error)
	// AppendRevision добавляет ревизию в историю пункта и делает её актуальной.
	AppendRevision(ctx context.Context, lineID int64, text string) (*domain.ContractContent, error)
	History(ctx context.Context, lineID int64) ([]domain.ContractContent, error)
	SetCurrent(ctx context.Context, lineID, contentID int64) error
}

type AnnexStore interface {
	Create(ctx context.Context, annex *domain.ContractAnnex) error
	GetByID(ctx context.Context, id int64) (*domain.ContractAnnex, error)
	ListByContract(ctx context.Context, contractID int64) ([]domain.ContractAnnex, error)
	Delete(ctx context.Context, id int64) error
}

type SettingsStore interface {
	GetParam(ctx context.Context, key string) (string, error)
	SetParam(ctx context.Context, key, value string) error
	GetTemplate(ctx context.Context, name string) (*domain.MailTemplate, error)
}

type ConfirmationStore interface {
	Save(ctx context.Context, token string, req *domain.DeletionRequest, ttl time.Duration) error
	Take(ctx context.Context, token string) (*domain.DeletionRequest, error)
}

// Sender отправляет уведомление об истечении срока договора.
type Sender interface {
	Send(ctx context.Context, to string, tmpl *domain.MailTemplate, contract *domain.Contract) error
}
