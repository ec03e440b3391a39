package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

type StageBulkDistributionCommand struct {
	AllocationID uint
	ProductID    uint
	Filename     string
	Content      []byte
	CreatedBy    uint
}

// StageBulkDistributionUseCase records a distribution without licences and
// stages its roster for the next reconciliation run. Capacity is checked per
// row at import time.
type StageBulkDistributionUseCase struct {
	txManager        TransactionManager
	allocationRepo   licensing.AllocationRepository
	distributionRepo licensing.DistributionRepository
	productSetRepo   licensing.ProductSetRepository
	artifacts        licensing.ArtifactStore
	maxUploadBytes   int64
	logger           logger.Interface
}

func NewStageBulkDistributionUseCase(
	txManager TransactionManager,
	allocationRepo licensing.AllocationRepository,
	distributionRepo licensing.DistributionRepository,
	productSetRepo licensing.ProductSetRepository,
	artifacts licensing.ArtifactStore,
	maxUploadBytes int64,
	logger logger.Interface,
) *StageBulkDistributionUseCase {
	return &StageBulkDistributionUseCase{
		txManager:        txManager,
		allocationRepo:   allocationRepo,
		distributionRepo: distributionRepo,
		productSetRepo:   productSetRepo,
		artifacts:        artifacts,
		maxUploadBytes:   maxUploadBytes,
		logger:           logger,
	}
}

func (uc *StageBulkDistributionUseCase) Execute(ctx context.Context, cmd StageBulkDistributionCommand) (*licensing.Distribution, error) {
	if err := checkArtifact(cmd.Content, uc.maxUploadBytes); err != nil {
		return nil, toAppError(err)
	}

	var distribution *licensing.Distribution
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		allocation, err := uc.allocationRepo.GetByID(txCtx, cmd.AllocationID)
		if err != nil {
			return err
		}
		if err := checkDistributable(txCtx, uc.productSetRepo, allocation, cmd.ProductID); err != nil {
			return err
		}

		distribution, err = licensing.NewDistribution(allocation.ID(), cmd.ProductID, cmd.CreatedBy)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.distributionRepo.Create(txCtx, distribution); err != nil {
			return err
		}
		return uc.artifacts.Put(txCtx, licensing.ArtifactOwnerDistribution, distribution.ID(), cmd.Filename, cmd.Content)
	})
	if err != nil {
		if appErr := toAppError(err); apperrors.IsAppError(appErr) {
			return nil, appErr
		}
		uc.logger.Errorw("failed to stage bulk distribution", "allocation_id", cmd.AllocationID, "error", err)
		return nil, fmt.Errorf("failed to stage bulk distribution: %w", err)
	}

	uc.logger.Infow("bulk distribution staged",
		"distribution_id", distribution.ID(),
		"allocation_id", distribution.AllocationID(),
		"product_id", distribution.ProductID(),
		"bytes", len(cmd.Content),
		"created_by", cmd.CreatedBy,
	)
	return distribution, nil
}

type ReuploadDistributionCommand struct {
	DistributionID uint
	Filename       string
	Content        []byte
	UploadedBy     uint
}

// ReuploadDistributionUseCase replaces the staged roster of a distribution
// that has not produced any licences yet.
type ReuploadDistributionUseCase struct {
	distributionRepo licensing.DistributionRepository
	licenceRepo      licensing.LicenceRepository
	artifacts        licensing.ArtifactStore
	maxUploadBytes   int64
	logger           logger.Interface
}

func NewReuploadDistributionUseCase(
	distributionRepo licensing.DistributionRepository,
	licenceRepo licensing.LicenceRepository,
	artifacts licensing.ArtifactStore,
	maxUploadBytes int64,
	logger logger.Interface,
) *ReuploadDistributionUseCase {
	return &ReuploadDistributionUseCase{
		distributionRepo: distributionRepo,
		licenceRepo:      licenceRepo,
		artifacts:        artifacts,
		maxUploadBytes:   maxUploadBytes,
		logger:           logger,
	}
}

func (uc *ReuploadDistributionUseCase) Execute(ctx context.Context, cmd ReuploadDistributionCommand) error {
	if err := checkArtifact(cmd.Content, uc.maxUploadBytes); err != nil {
		return toAppError(err)
	}

	distribution, err := uc.distributionRepo.GetByID(ctx, cmd.DistributionID)
	if err != nil {
		return toAppError(err)
	}

	counts, err := uc.licenceRepo.CountByDistributions(ctx, []uint{distribution.ID()})
	if err != nil {
		uc.logger.Errorw("failed to count distribution licences", "distribution_id", distribution.ID(), "error", err)
		return fmt.Errorf("failed to count distribution licences: %w", err)
	}
	if counts[distribution.ID()] > 0 {
		return toAppError(licensing.ErrDistributionNotEmpty)
	}

	if err := uc.artifacts.Put(ctx, licensing.ArtifactOwnerDistribution, distribution.ID(), cmd.Filename, cmd.Content); err != nil {
		uc.logger.Errorw("failed to restage roster", "distribution_id", distribution.ID(), "error", err)
		return fmt.Errorf("failed to restage roster: %w", err)
	}

	uc.logger.Infow("distribution roster restaged",
		"distribution_id", distribution.ID(),
		"bytes", len(cmd.Content),
		"uploaded_by", cmd.UploadedBy,
	)
	return nil
}

func checkArtifact(content []byte, maxBytes int64) error {
	if len(content) == 0 {
		return licensing.ErrEmptyArtifact
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return licensing.ErrArtifactTooLarge
	}
	return nil
}
