package licensing

import (
	"errors"
	"fmt"
)

var (
	ErrAllocationNotFound   = errors.New("allocation not found")
	ErrDistributionNotFound = errors.New("distribution not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductSetNotFound   = errors.New("product set not found")
	ErrTargetNotFound       = errors.New("target not found")
	ErrTargetSetNotFound    = errors.New("target set not found")
	ErrArtifactNotFound     = errors.New("staged artifact not found")
	ErrItemNotFound         = errors.New("catalog item not found")

	// ErrEmptySelection is returned when a manual distribution names no users.
	ErrEmptySelection = errors.New("no users selected")

	// ErrInsufficientCapacity is wrapped by InsufficientCapacityError.
	ErrInsufficientCapacity = errors.New("insufficient licences")

	// ErrInvalidIDFormat is returned for a user id number format without exactly one %s.
	ErrInvalidIDFormat = errors.New("user id number format must contain exactly one %s placeholder")

	// ErrMissingTarget is returned when no target in the set matches a user.
	ErrMissingTarget = errors.New("no target found for user")

	// ErrCSVParse is wrapped by CSVError.
	ErrCSVParse = errors.New("unable to parse csv")

	// ErrConcurrentRun is returned when reconciliation is already running.
	ErrConcurrentRun = errors.New("reconciliation is already running")

	// ErrCapacityRace is returned when a write would push consumed above count.
	ErrCapacityRace = errors.New("allocation capacity exceeded by a concurrent distribution")

	ErrUnknownProductType   = errors.New("unknown product type")
	ErrUnknownTargetType    = errors.New("unknown target type")
	ErrAllocationInactive   = errors.New("allocation is not active")
	ErrProductNotInSet      = errors.New("product does not belong to the allocation's product set")
	ErrDistributionNotEmpty = errors.New("distribution already has licences")
	ErrEmptyArtifact        = errors.New("uploaded file is empty")
	ErrArtifactTooLarge     = errors.New("uploaded file is too large")
	ErrSetInUse             = errors.New("set is referenced by an allocation")
)

// InsufficientCapacityError carries the numbers shown to the distributor.
type InsufficientCapacityError struct {
	Available int
	Requested int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("%s: available %d, requested %d", ErrInsufficientCapacity, e.Available, e.Requested)
}

func (e *InsufficientCapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}

// NewInsufficientCapacityError clamps a negative available count for display.
func NewInsufficientCapacityError(available, requested int) *InsufficientCapacityError {
	if available < 0 {
		available = 0
	}
	return &InsufficientCapacityError{Available: available, Requested: requested}
}

// CSVError reports a malformed roster. Line is 1-based; 0 means the file as a whole.
type CSVError struct {
	Line   int
	Reason string
}

func (e *CSVError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", ErrCSVParse, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrCSVParse, e.Reason)
}

func (e *CSVError) Unwrap() error {
	return ErrCSVParse
}

// Import failure codes carried by UserCSVImportFailedEvent.
const (
	ImportErrorCSVParse             = "csvparse"
	ImportErrorMissingTarget        = "missingtarget"
	ImportErrorInsufficientLicences = "insufficientlicences"
	ImportErrorUserCollision        = "usercollision"
	ImportErrorInternal             = "internal"
)

// ErrUserCollision is returned when a roster row would reuse another account's username.
var ErrUserCollision = errors.New("username already belongs to another user")

// ImportErrorCode classifies an import failure.
func ImportErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrCSVParse):
		return ImportErrorCSVParse
	case errors.Is(err, ErrMissingTarget):
		return ImportErrorMissingTarget
	case errors.Is(err, ErrInsufficientCapacity), errors.Is(err, ErrCapacityRace):
		return ImportErrorInsufficientLicences
	case errors.Is(err, ErrUserCollision):
		return ImportErrorUserCollision
	default:
		return ImportErrorInternal
	}
}
