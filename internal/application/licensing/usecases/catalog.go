package usecases

import (
	"context"
	"strings"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// Catalog kinds.
const (
	CatalogKindProduct = "product"
	CatalogKindTarget  = "target"
)

type SearchCatalogQuery struct {
	Kind  string
	Type  string
	Query string
}

// CatalogUseCase backs the product and target choosers.
type CatalogUseCase struct {
	registry *licensing.Registry
	logger   logger.Interface
}

func NewCatalogUseCase(registry *licensing.Registry, logger logger.Interface) *CatalogUseCase {
	return &CatalogUseCase{registry: registry, logger: logger}
}

// catalog is the chooser surface shared by product and target handlers.
type catalog interface {
	Get(ctx context.Context, itemIDs []uint) ([]*licensing.CatalogItem, error)
	Search(ctx context.Context, query string) ([]*licensing.CatalogItem, error)
}

func (uc *CatalogUseCase) handler(kind, itemType string) (catalog, error) {
	switch kind {
	case CatalogKindProduct:
		return uc.registry.Product(itemType)
	case CatalogKindTarget:
		return uc.registry.Target(itemType)
	default:
		return nil, apperrors.NewValidationError("unknown catalog kind", kind)
	}
}

// Types lists the registered item types of kind.
func (uc *CatalogUseCase) Types(kind string) ([]string, error) {
	switch kind {
	case CatalogKindProduct:
		return uc.registry.ProductTypes(), nil
	case CatalogKindTarget:
		return uc.registry.TargetTypes(), nil
	default:
		return nil, apperrors.NewValidationError("unknown catalog kind", kind)
	}
}

func (uc *CatalogUseCase) Search(ctx context.Context, q SearchCatalogQuery) ([]*licensing.CatalogItem, error) {
	h, err := uc.handler(q.Kind, q.Type)
	if err != nil {
		return nil, toAppError(err)
	}
	items, err := h.Search(ctx, strings.TrimSpace(q.Query))
	if err != nil {
		uc.logger.Errorw("failed to search catalog", "kind", q.Kind, "type", q.Type, "error", err)
		return nil, err
	}
	return items, nil
}

func (uc *CatalogUseCase) Get(ctx context.Context, kind, itemType string, itemIDs []uint) ([]*licensing.CatalogItem, error) {
	h, err := uc.handler(kind, itemType)
	if err != nil {
		return nil, toAppError(err)
	}
	if len(itemIDs) == 0 {
		return []*licensing.CatalogItem{}, nil
	}
	items, err := h.Get(ctx, itemIDs)
	if err != nil {
		uc.logger.Errorw("failed to get catalog items", "kind", kind, "type", itemType, "error", err)
		return nil, err
	}
	return items, nil
}
