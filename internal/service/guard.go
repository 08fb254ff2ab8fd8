package service

import (
	"context"
	"fmt"

	"contractdesk/internal/domain"
)

// ensureVersionMutable проверяет, что содержимое версии можно менять:
// версия не опубликована и договор не находится в состоянии sign.
func ensureVersionMutable(ctx context.Context, contracts ContractStore, versions VersionStore, versionID int64, op string) (*domain.ContractVersion, error) {
	version, err := versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}

	if version.IsPublished {
		return nil, &domain.ImmutableVersionError{
			Reason: fmt.Sprintf("cannot %s: contract version %d is published", op, version.VersionNumber),
		}
	}

	contract, err := contracts.GetByID(ctx, version.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.State == domain.StateSign {
		return nil, &domain.ImmutableVersionError{
			Reason: fmt.Sprintf("cannot %s: contract %s is signed", op, contract.Number),
		}
	}

	return version, nil
}
