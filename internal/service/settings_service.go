package service

import (
	"context"
	"strconv"

	"contractdesk/internal/domain"
)

// SettingsService читает и пишет параметры конфигурации модуля.
type SettingsService struct {
	settings SettingsStore
}

func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// AllowNotSignedContract сообщает, разрешена ли привязка приложений
// к неподписанным договорам.
func (s *SettingsService) AllowNotSignedContract(ctx context.Context) (bool, error) {
	value, err := s.settings.GetParam(ctx, domain.ParamAllowNotSignedContract)
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func (s *SettingsService) SetAllowNotSignedContract(ctx context.Context, allowed bool) error {
	return s.settings.SetParam(ctx, domain.ParamAllowNotSignedContract, strconv.FormatBool(allowed))
}
