package usecases

import (
	"errors"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
)

// toAppError maps domain failures onto the HTTP-facing error taxonomy.
// Errors it does not recognise pass through unchanged.
func toAppError(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}

	var capacityErr *licensing.InsufficientCapacityError
	var csvErr *licensing.CSVError

	switch {
	case errors.As(err, &capacityErr):
		return apperrors.NewConflictError("insufficient licences",
			fmt.Sprintf("available=%d requested=%d", capacityErr.Available, capacityErr.Requested))
	case errors.As(err, &csvErr):
		return apperrors.NewValidationError("unable to parse csv", csvErr.Error())
	case errors.Is(err, licensing.ErrAllocationNotFound),
		errors.Is(err, licensing.ErrDistributionNotFound),
		errors.Is(err, licensing.ErrProductNotFound),
		errors.Is(err, licensing.ErrProductSetNotFound),
		errors.Is(err, licensing.ErrTargetNotFound),
		errors.Is(err, licensing.ErrTargetSetNotFound),
		errors.Is(err, licensing.ErrItemNotFound),
		errors.Is(err, account.ErrUserNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, licensing.ErrConcurrentRun),
		errors.Is(err, licensing.ErrCapacityRace),
		errors.Is(err, licensing.ErrDistributionNotEmpty),
		errors.Is(err, licensing.ErrSetInUse),
		errors.Is(err, licensing.ErrUserCollision):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, licensing.ErrEmptySelection),
		errors.Is(err, licensing.ErrInvalidIDFormat),
		errors.Is(err, licensing.ErrMissingTarget),
		errors.Is(err, licensing.ErrUnknownProductType),
		errors.Is(err, licensing.ErrUnknownTargetType),
		errors.Is(err, licensing.ErrAllocationInactive),
		errors.Is(err, licensing.ErrProductNotInSet),
		errors.Is(err, licensing.ErrEmptyArtifact),
		errors.Is(err, licensing.ErrArtifactTooLarge):
		return apperrors.NewValidationError(err.Error())
	}
	return err
}
