package service

import (
	"context"
	"strings"

	"ridepool/internal/general/logger"
	"ridepool/internal/ports"
)

// poolService exposes read-only pool queries.
type poolService struct {
	logger   *logger.Logger
	uow      ports.UnitOfWork
	poolRepo ports.PoolRepository
}

// NewPoolService creates a new instance of the PoolService.
func NewPoolService(logger *logger.Logger, uow ports.UnitOfWork, poolRepo ports.PoolRepository) ports.PoolService {
	return &poolService{
		logger:   logger,
		uow:      uow,
		poolRepo: poolRepo,
	}
}

// GetActivePools lists every ACTIVE pool with its vehicle and member rides.
func (service *poolService) GetActivePools(ctx context.Context) ([]*ports.PoolDetail, error) {
	var out []*ports.PoolDetail
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		details, err := service.poolRepo.ListActiveDetails(txCtx)
		if err != nil {
			return err
		}
		out = details
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "pools_list_failed", "Failed to list active pools", err, nil)
		return nil, err
	}

	return out, nil
}

// GetPoolByID loads one pool with its vehicle and member rides.
func (service *poolService) GetPoolByID(ctx context.Context, poolID string) (*ports.PoolDetail, error) {
	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return nil, ports.ErrNotFound
	}

	var out *ports.PoolDetail
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		detail, err := service.poolRepo.GetDetail(txCtx, poolID)
		if err != nil {
			return err
		}
		out = detail
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
