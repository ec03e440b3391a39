package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	"github.com/orris-inc/licensing/internal/infrastructure/metrics"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// ReconciliationUseCase imports staged rosters and enrols the learners of
// every distribution created since the previous run.
type ReconciliationUseCase struct {
	state            *RunState
	importer         RosterImporter
	artifacts        licensing.ArtifactStore
	allocationRepo   licensing.AllocationRepository
	distributionRepo licensing.DistributionRepository
	licenceRepo      licensing.LicenceRepository
	productSetRepo   licensing.ProductSetRepository
	registry         *licensing.Registry
	publisher        events.EventPublisher
	logger           logger.Interface
}

func NewReconciliationUseCase(
	state *RunState,
	importer RosterImporter,
	artifacts licensing.ArtifactStore,
	allocationRepo licensing.AllocationRepository,
	distributionRepo licensing.DistributionRepository,
	licenceRepo licensing.LicenceRepository,
	productSetRepo licensing.ProductSetRepository,
	registry *licensing.Registry,
	publisher events.EventPublisher,
	logger logger.Interface,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		state:            state,
		importer:         importer,
		artifacts:        artifacts,
		allocationRepo:   allocationRepo,
		distributionRepo: distributionRepo,
		licenceRepo:      licenceRepo,
		productSetRepo:   productSetRepo,
		registry:         registry,
		publisher:        publisher,
		logger:           logger,
	}
}

// Execute runs one reconciliation pass and returns the number of
// distributions enrolled. It fails with ErrConcurrentRun while another pass
// holds the run lock.
func (uc *ReconciliationUseCase) Execute(ctx context.Context) (int, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := uc.logger.With("run_id", runID)

	release, err := uc.state.Acquire(ctx)
	if err != nil {
		if errors.Is(err, licensing.ErrConcurrentRun) {
			metrics.RecordReconciliationDuration(metrics.StatusSkipped, time.Since(started).Seconds())
			return 0, err
		}
		log.Errorw("failed to acquire reconciliation lock", "error", err)
		metrics.RecordReconciliationDuration(metrics.StatusFailure, time.Since(started).Seconds())
		return 0, err
	}
	defer release()

	enrolled, err := uc.run(ctx, runID, log)
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
	}
	metrics.RecordReconciliationDuration(status, time.Since(started).Seconds())
	return enrolled, err
}

func (uc *ReconciliationUseCase) run(ctx context.Context, runID string, log logger.Interface) (int, error) {
	runStart := biztime.NowUTC()
	lastRun, err := uc.state.LastRun(ctx)
	if err != nil {
		log.Errorw("failed to read reconciliation state", "error", err)
		return 0, err
	}

	log.Infow("reconciliation started", "last_run", lastRun, "run_start", runStart)

	imported, err := uc.importStaged(ctx, log)
	if err != nil {
		return 0, err
	}

	distributions, err := uc.collect(ctx, lastRun, runStart, imported)
	if err != nil {
		log.Errorw("failed to collect distributions", "error", err)
		return 0, err
	}

	enrolled := 0
	for _, d := range distributions {
		if ctx.Err() != nil {
			return enrolled, ctx.Err()
		}
		if uc.enrol(ctx, runID, d, log) {
			enrolled++
		}
	}

	if err := uc.state.SetLastRun(ctx, runStart); err != nil {
		log.Errorw("failed to advance reconciliation state", "error", err)
		return enrolled, err
	}

	log.Infow("reconciliation finished",
		"imported", len(imported),
		"distributions", len(distributions),
		"enrolled", enrolled,
	)
	return enrolled, nil
}

// importStaged imports every staged roster in ascending distribution order
// and returns the ids that imported cleanly. Each attempted artifact is
// deleted whatever the outcome, except when the pass is cancelled mid-import:
// that roster stays staged for the next pass.
func (uc *ReconciliationUseCase) importStaged(ctx context.Context, log logger.Interface) ([]uint, error) {
	ids, err := uc.artifacts.ListOwnerIDs(ctx, licensing.ArtifactOwnerDistribution)
	if err != nil {
		log.Errorw("failed to list staged rosters", "error", err)
		return nil, err
	}

	var imported []uint
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		ok := uc.importOne(ctx, id, log)
		if !ok && ctx.Err() != nil {
			log.Infow("reconciliation interrupted, staged roster kept", "distribution_id", id)
			return imported, ctx.Err()
		}
		if ok {
			imported = append(imported, id)
		}
		if err := uc.artifacts.Delete(context.WithoutCancel(ctx), licensing.ArtifactOwnerDistribution, id); err != nil && !errors.Is(err, licensing.ErrArtifactNotFound) {
			log.Errorw("failed to delete staged roster", "distribution_id", id, "error", err)
		}
	}
	return imported, nil
}

func (uc *ReconciliationUseCase) importOne(ctx context.Context, distributionID uint, log logger.Interface) bool {
	content, err := uc.artifacts.Get(ctx, licensing.ArtifactOwnerDistribution, distributionID)
	if err != nil {
		log.Errorw("failed to read staged roster", "distribution_id", distributionID, "error", err)
		return false
	}

	result, err := uc.importer.Execute(ctx, ImportRosterCommand{DistributionID: distributionID, Content: content})
	if err != nil {
		if ctx.Err() == nil {
			log.Warnw("staged roster not imported", "distribution_id", distributionID, "error", err)
		}
		return false
	}

	log.Infow("staged roster imported",
		"distribution_id", distributionID,
		"processed", result.Processed,
		"created", result.Created,
		"updated", result.Updated,
	)
	return true
}

// collect returns the distributions created in (after, upTo] together with
// the imported ones, ordered by creation time then id. Imported distributions
// created after upTo are left to the next pass, whose window covers them.
func (uc *ReconciliationUseCase) collect(ctx context.Context, after, upTo time.Time, imported []uint) ([]*licensing.Distribution, error) {
	window, err := uc.distributionRepo.ListCreatedBetween(ctx, after, upTo)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(window)+len(imported))
	out := make([]*licensing.Distribution, 0, len(window)+len(imported))
	for _, d := range window {
		seen[d.ID()] = struct{}{}
		out = append(out, d)
	}

	var missing []uint
	for _, id := range imported {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		extra, err := uc.distributionRepo.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, d := range extra {
			if _, ok := seen[d.ID()]; ok || d.CreatedAt().After(upTo) {
				continue
			}
			seen[d.ID()] = struct{}{}
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

// enrol hands one distribution's learners to its product handler. Failures
// stay local to the distribution.
func (uc *ReconciliationUseCase) enrol(ctx context.Context, runID string, d *licensing.Distribution, log logger.Interface) bool {
	log = log.With("distribution_id", d.ID())

	userIDs, err := uc.licenceRepo.UserIDsByDistribution(ctx, d.ID())
	if err != nil {
		log.Errorw("failed to load distribution licences", "error", err)
		return false
	}
	if len(userIDs) == 0 {
		log.Debugw("distribution has no licences, skipping")
		return false
	}

	product, enrolErr := uc.enrolLicences(ctx, d, userIDs)
	productType := "unknown"
	if product != nil {
		productType = product.Type()
	}
	metrics.RecordEnrolment(productType, enrolErr)

	if enrolErr != nil {
		log.Errorw("failed to enrol distribution", "product_type", productType, "error", enrolErr)
		if err := uc.publisher.Publish(licensing.NewDistributionEnrolmentFailedEvent(runID, d, productType, enrolErr)); err != nil {
			log.Warnw("failed to publish enrolment failed event", "error", err)
		}
	} else {
		log.Infow("distribution enrolled", "product_type", productType, "users", len(userIDs))
	}

	if product != nil {
		event := licensing.NewDistributionLicencesCreatedEvent(runID, d, product, userIDs, enrolErr == nil)
		if err := uc.publisher.Publish(event); err != nil {
			log.Warnw("failed to publish licences created event", "error", err)
		}
	}
	return enrolErr == nil
}

func (uc *ReconciliationUseCase) enrolLicences(ctx context.Context, d *licensing.Distribution, userIDs []uint) (*licensing.Product, error) {
	product, err := uc.productSetRepo.GetProduct(ctx, d.ProductID())
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", d.ProductID(), err)
	}
	allocation, err := uc.allocationRepo.GetByID(ctx, d.AllocationID())
	if err != nil {
		return product, fmt.Errorf("failed to load allocation %d: %w", d.AllocationID(), err)
	}
	handler, err := uc.registry.Product(product.Type())
	if err != nil {
		return product, err
	}
	return product, handler.Enrol(ctx, allocation, d, product, userIDs)
}
