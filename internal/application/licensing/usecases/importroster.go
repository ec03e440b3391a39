package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	"github.com/orris-inc/licensing/internal/infrastructure/metrics"
	"github.com/orris-inc/licensing/internal/infrastructure/tabular"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// Roster columns every uploaded file must carry. Any other column is kept on
// the account profile.
const (
	ColumnFirstName = "firstname"
	ColumnLastName  = "lastname"
	ColumnUsername  = "username"
	ColumnPassword  = "password"
	ColumnEmail     = "email"
	ColumnIDNumber  = "idnumber"
)

var RequiredRosterColumns = []string{
	ColumnFirstName, ColumnLastName, ColumnUsername, ColumnPassword, ColumnEmail, ColumnIDNumber,
}

type ImportRosterCommand struct {
	DistributionID uint
	Content        []byte
}

type ImportRosterResult struct {
	Processed int
	Created   int
	Updated   int
}

// AccountDefaults are stamped on accounts created from a roster.
type AccountDefaults struct {
	Locale string
	Host   string
}

// ImportRosterUseCase turns a staged roster into accounts and licences. Rows
// are processed in file order, each in its own transaction. On failure every
// licence of the distribution is removed and the accounts are kept.
type ImportRosterUseCase struct {
	txManager        TransactionManager
	allocationRepo   licensing.AllocationRepository
	distributionRepo licensing.DistributionRepository
	licenceRepo      licensing.LicenceRepository
	targetSetRepo    licensing.TargetSetRepository
	userRepo         account.Repository
	registry         *licensing.Registry
	hasher           PasswordHasher
	publisher        events.EventPublisher
	defaults         AccountDefaults
	logger           logger.Interface
}

func NewImportRosterUseCase(
	txManager TransactionManager,
	allocationRepo licensing.AllocationRepository,
	distributionRepo licensing.DistributionRepository,
	licenceRepo licensing.LicenceRepository,
	targetSetRepo licensing.TargetSetRepository,
	userRepo account.Repository,
	registry *licensing.Registry,
	hasher PasswordHasher,
	publisher events.EventPublisher,
	defaults AccountDefaults,
	logger logger.Interface,
) *ImportRosterUseCase {
	return &ImportRosterUseCase{
		txManager:        txManager,
		allocationRepo:   allocationRepo,
		distributionRepo: distributionRepo,
		licenceRepo:      licenceRepo,
		targetSetRepo:    targetSetRepo,
		userRepo:         userRepo,
		registry:         registry,
		hasher:           hasher,
		publisher:        publisher,
		defaults:         defaults,
		logger:           logger,
	}
}

// importRun holds the state of one roster import.
type importRun struct {
	distribution  *licensing.Distribution
	allocation    *licensing.Allocation
	targetSet     *licensing.TargetSet
	creatorTarget *licensing.Target
	licensed      map[uint]struct{}
	result        ImportRosterResult
	licences      int
	line          int
}

func (uc *ImportRosterUseCase) Execute(ctx context.Context, cmd ImportRosterCommand) (*ImportRosterResult, error) {
	distribution, err := uc.distributionRepo.GetByID(ctx, cmd.DistributionID)
	if err != nil {
		return nil, err
	}

	run := &importRun{
		distribution: distribution,
		licensed:     make(map[uint]struct{}),
	}
	if err := uc.process(ctx, run, cmd.Content); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			uc.abort(ctx, run)
			return nil, fmt.Errorf("roster import of distribution %d aborted: %w", distribution.ID(), ctxErr)
		}
		uc.fail(ctx, run, err)
		return nil, err
	}

	metrics.RecordLicencesCreated(metrics.SourceImport, run.licences)
	uc.logger.Infow("roster imported",
		"distribution_id", distribution.ID(),
		"processed", run.result.Processed,
		"created", run.result.Created,
		"updated", run.result.Updated,
		"licences", run.licences,
	)
	return &run.result, nil
}

func (uc *ImportRosterUseCase) process(ctx context.Context, run *importRun, content []byte) error {
	var err error
	run.allocation, err = uc.allocationRepo.GetByID(ctx, run.distribution.AllocationID())
	if err != nil {
		return err
	}
	run.targetSet, err = uc.targetSetRepo.GetByID(ctx, run.allocation.TargetSetID())
	if err != nil {
		return err
	}

	reader, err := tabular.NewReader(content, RequiredRosterColumns)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		run.line = row.Line
		if err := uc.processRow(ctx, run, row); err != nil {
			return err
		}
		run.result.Processed++
	}
}

func (uc *ImportRosterUseCase) processRow(ctx context.Context, run *importRun, row tabular.Row) error {
	rawIDNumber := strings.TrimSpace(row.Get(ColumnIDNumber))
	if rawIDNumber == "" {
		return &licensing.CSVError{Line: row.Line, Reason: "idnumber is required"}
	}

	fields := account.RosterFields{
		Username:  row.Get(ColumnUsername),
		Email:     row.Get(ColumnEmail),
		FirstName: row.Get(ColumnFirstName),
		LastName:  row.Get(ColumnLastName),
		IDNumber:  run.targetSet.CanonicalIDNumber(rawIDNumber),
	}
	extra := row.Extra(RequiredRosterColumns)

	var created *account.User
	var createdPassword string
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		user, err := uc.userRepo.GetByIDNumber(txCtx, fields.IDNumber)
		switch {
		case err == nil:
			if err := uc.updateAccount(txCtx, run, user, fields, extra); err != nil {
				return err
			}
		case errors.Is(err, account.ErrUserNotFound):
			user, createdPassword, err = uc.createAccount(txCtx, run, fields, row.Get(ColumnPassword), extra)
			if err != nil {
				return err
			}
			created = user
		default:
			return err
		}

		return uc.grantLicence(txCtx, run, user.ID())
	})
	if err != nil {
		return err
	}

	if created != nil {
		run.result.Created++
		metrics.RecordImportedAccount(true)
		if err := uc.publisher.Publish(account.NewUserCreatedEvent(created, createdPassword, run.distribution.CreatedBy())); err != nil {
			uc.logger.Warnw("failed to publish user created event", "user_id", created.ID(), "error", err)
		}
	}
	return nil
}

func (uc *ImportRosterUseCase) updateAccount(ctx context.Context, run *importRun, user *account.User, fields account.RosterFields, extra map[string]string) error {
	username := account.NormalizeUsername(fields.Username)
	if username != "" && username != user.Username() {
		if err := uc.checkUsernameFree(ctx, username, user.ID()); err != nil {
			return err
		}
	}

	changed := user.ApplyRoster(fields)
	profileChanged := user.MergeProfile(extra)
	if len(changed) == 0 && !profileChanged {
		return nil
	}
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return collisionOr(err, user.Username())
	}

	run.result.Updated++
	metrics.RecordImportedAccount(false)
	uc.logger.Debugw("roster account updated",
		"user_id", user.ID(),
		"distribution_id", run.distribution.ID(),
		"fields", changed,
		"profile_changed", profileChanged,
	)
	return nil
}

func (uc *ImportRosterUseCase) createAccount(ctx context.Context, run *importRun, fields account.RosterFields, password string, extra map[string]string) (*account.User, string, error) {
	if err := uc.checkUsernameFree(ctx, account.NormalizeUsername(fields.Username), 0); err != nil {
		return nil, "", err
	}

	target, err := uc.creatorTargetFor(ctx, run)
	if err != nil {
		return nil, "", err
	}

	plain, hash, err := uc.hasher.HashOrGenerate(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := account.NewUser(account.NewUserParams{
		Fields:       fields,
		PasswordHash: hash,
		Locale:       uc.defaults.Locale,
		Host:         uc.defaults.Host,
		Profile:      extra,
	})
	if err != nil {
		return nil, "", &licensing.CSVError{Line: run.line, Reason: err.Error()}
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, "", collisionOr(err, user.Username())
	}

	handler, err := uc.registry.Target(target.Type())
	if err != nil {
		return nil, "", err
	}
	if err := handler.AssignUser(ctx, target.ItemID(), user.ID(), run.distribution.CreatedBy()); err != nil {
		return nil, "", fmt.Errorf("failed to assign user to %s %d: %w", target.Type(), target.ItemID(), err)
	}
	return user, plain, nil
}

// creatorTargetFor resolves the distribution creator's target once per import.
func (uc *ImportRosterUseCase) creatorTargetFor(ctx context.Context, run *importRun) (*licensing.Target, error) {
	if run.creatorTarget != nil {
		return run.creatorTarget, nil
	}
	target, found, err := uc.registry.TargetForUser(ctx, run.targetSet, run.distribution.CreatedBy())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: user %d", licensing.ErrMissingTarget, run.distribution.CreatedBy())
	}
	run.creatorTarget = target
	return target, nil
}

func (uc *ImportRosterUseCase) checkUsernameFree(ctx context.Context, username string, ownerID uint) error {
	other, err := uc.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, account.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID() != ownerID {
		return fmt.Errorf("%w: %s", licensing.ErrUserCollision, username)
	}
	return nil
}

// collisionOr reports a username clash caught by the database as a roster
// collision, e.g. when another writer took the name after checkUsernameFree.
func collisionOr(err error, username string) error {
	if errors.Is(err, account.ErrUsernameTaken) {
		return fmt.Errorf("%w: %s", licensing.ErrUserCollision, username)
	}
	return err
}

// grantLicence records one licence per user per distribution. The allocation
// row lock serialises the capacity check with concurrent writers.
func (uc *ImportRosterUseCase) grantLicence(ctx context.Context, run *importRun, userID uint) error {
	if _, dup := run.licensed[userID]; dup {
		return nil
	}

	allocation, err := uc.allocationRepo.GetByIDForUpdate(ctx, run.allocation.ID())
	if err != nil {
		return err
	}
	consumed, err := uc.licenceRepo.CountByAllocation(ctx, allocation.ID())
	if err != nil {
		return err
	}
	if allocation.IsExhausted(consumed) {
		return licensing.NewInsufficientCapacityError(allocation.Available(consumed), 1)
	}

	licence, err := licensing.NewLicence(run.distribution.ID(), userID, run.distribution.CreatedBy())
	if err != nil {
		return err
	}
	if err := uc.licenceRepo.CreateBatch(ctx, []*licensing.Licence{licence}); err != nil {
		return err
	}

	run.licensed[userID] = struct{}{}
	run.licences++
	return nil
}

// abort drops the licences written before the context was cancelled so the
// staged roster can be imported from scratch by a later pass. Nothing is
// reported to the creator.
func (uc *ImportRosterUseCase) abort(ctx context.Context, run *importRun) {
	removed, err := uc.licenceRepo.DeleteByDistribution(context.WithoutCancel(ctx), run.distribution.ID())
	if err != nil {
		uc.logger.Errorw("failed to remove licences of aborted import",
			"distribution_id", run.distribution.ID(),
			"error", err,
		)
	}
	uc.logger.Infow("roster import aborted",
		"distribution_id", run.distribution.ID(),
		"line", run.line,
		"licences_removed", removed,
	)
}

// fail removes the distribution's licences and reports the failure to its creator.
func (uc *ImportRosterUseCase) fail(ctx context.Context, run *importRun, cause error) {
	code := licensing.ImportErrorCode(cause)
	metrics.RecordImportFailure(code)

	cleanupCtx := context.WithoutCancel(ctx)
	removed, err := uc.licenceRepo.DeleteByDistribution(cleanupCtx, run.distribution.ID())
	if err != nil {
		uc.logger.Errorw("failed to remove licences of failed import",
			"distribution_id", run.distribution.ID(),
			"error", err,
		)
	}

	uc.logger.Warnw("roster import failed",
		"distribution_id", run.distribution.ID(),
		"line", run.line,
		"error_code", code,
		"licences_removed", removed,
		"error", cause,
	)

	line := run.line
	var csvErr *licensing.CSVError
	if errors.As(cause, &csvErr) {
		line = csvErr.Line
	}
	event := licensing.NewUserCSVImportFailedEvent(run.distribution.ID(), run.distribution.CreatedBy(), line, cause)
	if err := uc.publisher.Publish(event); err != nil {
		uc.logger.Warnw("failed to publish import failed event", "distribution_id", run.distribution.ID(), "error", err)
	}
}
