package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/google/uuid"

	"contractdesk/internal/domain"
	"contractdesk/internal/service/s3"
)

// ContractService реализует жизненный цикл договора:
// draft -> sign -> close, продление и фоновый обход сроков.
type ContractService struct {
	contracts ContractStore
	versions  VersionStore
	settings  SettingsStore
	scans     s3.Storage
	sender    Sender
	now       func() time.Time
}

func NewContractService(
	contracts ContractStore,
	versions VersionStore,
	settings SettingsStore,
	scans s3.Storage,
	sender Sender,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		versions:  versions,
		settings:  settings,
		scans:     scans,
		sender:    sender,
		now:       time.Now,
	}
}

// Create создает договор в состоянии draft. Первая версия
// создается хранилищем в той же транзакции.
func (s *ContractService) Create(ctx context.Context, contract *domain.Contract) (*domain.ContractVersion, error) {
	if contract.State == "" {
		contract.State = domain.StateDraft
	}
	if contract.State != domain.StateDraft {
		return nil, &domain.ValidationError{Field: "state", Reason: "new contract must start in draft"}
	}
	if contract.PartnerID == 0 {
		return nil, &domain.ValidationError{Field: "partner_id", Reason: "partner is required"}
	}

	if err := contract.Validate(); err != nil {
		return nil, err
	}

	return s.contracts.Create(ctx, contract)
}

func (s *ContractService) Get(ctx context.Context, id int64) (*domain.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

func (s *ContractService) ListByState(ctx context.Context, state string) ([]domain.Contract, error) {
	return s.contracts.ListByState(ctx, state)
}

// ListByPartner возвращает договоры контрагента для его карточки.
func (s *ContractService) ListByPartner(ctx context.Context, partnerID int64) ([]domain.Contract, error) {
	return s.contracts.ListByPartner(ctx, partnerID)
}

// Update сохраняет редактируемые поля договора.
func (s *ContractService) Update(ctx context.Context, contract *domain.Contract) error {
	if err := contract.Validate(); err != nil {
		return err
	}
	return s.contracts.Update(ctx, contract)
}

// Sign переводит договор в состояние sign. Версия может не указываться:
// в этом случае signed_version остается пустой.
func (s *ContractService) Sign(ctx context.Context, contractID int64, versionID *int64) error {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if contract.State != domain.StateDraft {
		return &domain.InvalidStateError{Op: "sign contract", State: contract.State}
	}

	var version *domain.ContractVersion
	if versionID != nil {
		version, err = s.versions.GetByID(ctx, *versionID)
		if err != nil {
			return err
		}
		if version.ContractID != contractID {
			return &domain.PreconditionError{Reason: "version does not belong to the contract"}
		}
		if !version.IsPublished {
			return &domain.PreconditionError{Reason: "only a published version can be signed"}
		}
		version.IsSigned = true
		contract.SignedVersionID = &version.ID
	} else {
		contract.SignedVersionID = nil
	}

	today := dateOnly(s.now())
	contract.State = domain.StateSign
	contract.DateConclusion = &today
	// Дата первого подписания фиксируется и не очищается при unsign
	if contract.DateConclusionFix == nil {
		contract.DateConclusionFix = &today
	}

	return s.contracts.UpdateWithVersion(ctx, contract, version)
}

// Unsign снимает подпись: договор возвращается в draft,
// дата подписания и подписанная версия очищаются.
func (s *ContractService) Unsign(ctx context.Context, contractID int64) error {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if contract.State != domain.StateSign {
		return &domain.InvalidStateError{Op: "unsign contract", State: contract.State}
	}

	var version *domain.ContractVersion
	if contract.SignedVersionID != nil {
		version, err = s.versions.GetByID(ctx, *contract.SignedVersionID)
		if err != nil {
			return err
		}
		version.IsSigned = false
	}

	contract.State = domain.StateDraft
	contract.DateConclusion = nil
	contract.SignedVersionID = nil

	return s.contracts.UpdateWithVersion(ctx, contract, version)
}

// Close закрывает договор из любого состояния.
func (s *ContractService) Close(ctx context.Context, contractID int64) error {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}

	contract.State = domain.StateClose
	return s.contracts.Update(ctx, contract)
}

// Renew возвращает договор в draft.
func (s *ContractService) Renew(ctx context.Context, contractID int64) error {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}

	contract.State = domain.StateDraft
	return s.contracts.Update(ctx, contract)
}

// RenewContract сдвигает дату окончания на период продления.
func (s *ContractService) RenewContract(ctx context.Context, contractID int64) error {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if contract.RenewPeriod <= 0 {
		return &domain.ValidationError{Field: "renew_period", Reason: "must be greater than zero"}
	}
	if contract.ExpirationDate == nil {
		return &domain.PreconditionError{Reason: "contract has no expiration date"}
	}

	next := contract.NextExpiration(*contract.ExpirationDate)
	contract.ExpirationDate = &next
	contract.ExpirationNotifiedOn = nil

	return s.contracts.Update(ctx, contract)
}

// Copy дублирует договор: новый получает свой номер и версию 1
// с копией дерева опубликованной версии оригинала.
func (s *ContractService) Copy(ctx context.Context, contractID int64) (*domain.Contract, error) {
	src, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if src.PublishedVersionID == nil {
		return nil, &domain.PreconditionError{Reason: "contract has no published version to copy"}
	}

	dst := &domain.Contract{
		PartnerID:                    src.PartnerID,
		Company:                      src.Company,
		Currency:                     src.Currency,
		Type:                         src.Type,
		State:                        domain.StateDraft,
		CommencementDate:             src.CommencementDate,
		ExpirationDate:               src.ExpirationDate,
		RenewAutomatically:           src.RenewAutomatically,
		RenewPeriod:                  src.RenewPeriod,
		RenewPeriodType:              src.RenewPeriodType,
		NotificationExpiration:       src.NotificationExpiration,
		NotificationExpirationPeriod: src.NotificationExpirationPeriod,
		ResponsibleEmployee:          src.ResponsibleEmployee,
	}

	if _, err := s.contracts.CreateCopy(ctx, dst, *src.PublishedVersionID); err != nil {
		return nil, err
	}

	return dst, nil
}

// Delete удаляет договор вместе с приложениями. Скан, если был загружен,
// убирается из хранилища; ошибка удаления скана не блокирует операцию.
func (s *ContractService) Delete(ctx context.Context, contractID int64) error {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return err
	}

	if contract.ScanKey != nil && s.scans != nil {
		if err := s.scans.DeleteObject(*contract.ScanKey); err != nil {
			log.Printf("warning: failed to delete scan %s: %v", *contract.ScanKey, err)
		}
	}

	return s.contracts.Delete(ctx, contractID)
}

// UploadScan сохраняет скан подписанного экземпляра в объектном хранилище.
func (s *ContractService) UploadScan(ctx context.Context, contractID int64, filename string, data []byte) (string, error) {
	if s.scans == nil {
		return "", fmt.Errorf("scan storage is not configured")
	}
	if len(data) == 0 {
		return "", &domain.ValidationError{Field: "scan", Reason: "file is empty"}
	}

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("contract_scans/%s/%s_%s", contract.Number, uuid.New().String(), path.Base(filename))
	if err := s.scans.UploadBytes(key, data); err != nil {
		return "", fmt.Errorf("failed to upload scan: %w", err)
	}

	// Предыдущий скан заменяется новым
	if contract.ScanKey != nil {
		if err := s.scans.DeleteObject(*contract.ScanKey); err != nil {
			log.Printf("warning: failed to delete previous scan %s: %v", *contract.ScanKey, err)
		}
	}

	contract.ScanKey = &key
	if err := s.contracts.Update(ctx, contract); err != nil {
		return "", err
	}

	return key, nil
}

// DownloadScan отдает сохраненный скан договора.
func (s *ContractService) DownloadScan(ctx context.Context, contractID int64) (s3.S3Object, error) {
	if s.scans == nil {
		return nil, fmt.Errorf("scan storage is not configured")
	}

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ScanKey == nil {
		return nil, &domain.NotFoundError{Entity: "contract scan", Key: contract.Number}
	}

	return s.scans.GetObject(ctx, *contract.ScanKey)
}

// CheckContracts — фоновый обход подписанных договоров: рассылает
// уведомления о приближении срока и продлевает либо закрывает истекшие.
// Договоры обрабатываются независимо, ошибка одного не прерывает обход.
func (s *ContractService) CheckContracts(ctx context.Context) error {
	contracts, err := s.contracts.ListByState(ctx, domain.StateSign)
	if err != nil {
		return fmt.Errorf("failed to list signed contracts: %w", err)
	}

	today := dateOnly(s.now())

	for i := range contracts {
		contract := contracts[i]

		// Уведомление и продление/закрытие — независимые исходы
		if err := s.notifyExpiration(ctx, &contract, today); err != nil {
			log.Printf("contract %s: expiration notification failed: %v", contract.Number, err)
		}

		if err := s.processExpiration(ctx, &contract, today); err != nil {
			log.Printf("contract %s: expiration processing failed: %v", contract.Number, err)
		}
	}

	return nil
}

// notifyExpiration отправляет письмо ответственному за notification_expiration_period
// дней до окончания. Отметка expiration_notified_on исключает повторную отправку,
// в том числе при пропущенном дне обхода.
func (s *ContractService) notifyExpiration(ctx context.Context, contract *domain.Contract, today time.Time) error {
	if !contract.NotificationExpiration || contract.ResponsibleEmployee == nil || contract.ExpirationDate == nil {
		return nil
	}
	if s.sender == nil {
		return nil
	}

	notifyFrom := dateOnly(*contract.ExpirationDate).AddDate(0, 0, -contract.NotificationExpirationPeriod)
	if today.Before(notifyFrom) {
		return nil
	}
	if contract.ExpirationNotifiedOn != nil {
		return nil
	}

	tmpl, err := s.settings.GetTemplate(ctx, domain.TemplateContractExpiration)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			// Без шаблона уведомление пропускается, обход продолжается
			log.Printf("contract %s: mail template missing, notification skipped", contract.Number)
			return nil
		}
		return err
	}

	if err := s.sender.Send(ctx, *contract.ResponsibleEmployee, tmpl, contract); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	contract.ExpirationNotifiedOn = &today
	updated, err := s.contracts.UpdateExpiration(ctx, contract)
	if err != nil {
		return err
	}
	if !updated {
		log.Printf("contract %s: left sign state, notification mark not written", contract.Number)
	}
	return nil
}

// processExpiration продлевает или закрывает договор, чей срок наступил.
// Сравнение нестрогое: пропущенный день обхода доводится при следующем запуске.
func (s *ContractService) processExpiration(ctx context.Context, contract *domain.Contract, today time.Time) error {
	if contract.ExpirationDate == nil {
		return nil
	}
	if dateOnly(*contract.ExpirationDate).After(today) {
		return nil
	}

	if contract.RenewAutomatically {
		next := contract.NextExpiration(*contract.ExpirationDate)
		contract.ExpirationDate = &next
		contract.ExpirationNotifiedOn = nil
	} else {
		contract.State = domain.StateClose
	}

	// Запись идет под условием state = sign: договор, переведенный вручную
	// после чтения списка, обход не трогает
	updated, err := s.contracts.UpdateExpiration(ctx, contract)
	if err != nil {
		return err
	}
	if !updated {
		log.Printf("contract %s: left sign state, sweep skipped", contract.Number)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
