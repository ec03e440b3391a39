package licensing

import (
	"context"
	"fmt"
	"sort"
)

// CatalogItem is a product or target as presented to choosers.
type CatalogItem struct {
	Type      string
	ID        uint
	Name      string
	ShortName string
	IDNumber  string
	URL       string
}

// ProductHandler enrols learners into one kind of product.
type ProductHandler interface {
	Type() string
	Enrol(ctx context.Context, allocation *Allocation, distribution *Distribution, product *Product, userIDs []uint) error
	Get(ctx context.Context, itemIDs []uint) ([]*CatalogItem, error)
	Search(ctx context.Context, query string) ([]*CatalogItem, error)
	ItemName(ctx context.Context, itemID uint) (string, error)
	ItemURL(itemID uint) string
}

// TargetHandler places users into one kind of target.
type TargetHandler interface {
	Type() string
	AssignUser(ctx context.Context, targetItemID, assigneeID, assignerID uint) error
	// ForUser picks the candidate the user belongs to. The bool is false when
	// none matches.
	ForUser(ctx context.Context, userID uint, candidates []*Target) (*Target, bool, error)
	UsersIn(ctx context.Context, itemIDs []uint) ([]uint, error)
	Get(ctx context.Context, itemIDs []uint) ([]*CatalogItem, error)
	Search(ctx context.Context, query string) ([]*CatalogItem, error)
	ItemName(ctx context.Context, itemID uint) (string, error)
	ItemURL(itemID uint) string
}

// Registry resolves handlers by their type tag.
type Registry struct {
	products map[string]ProductHandler
	targets  map[string]TargetHandler
}

// NewRegistry builds a registry; a duplicated type tag is a programming error.
func NewRegistry(products []ProductHandler, targets []TargetHandler) (*Registry, error) {
	r := &Registry{
		products: make(map[string]ProductHandler, len(products)),
		targets:  make(map[string]TargetHandler, len(targets)),
	}
	for _, h := range products {
		if _, dup := r.products[h.Type()]; dup {
			return nil, fmt.Errorf("duplicate product handler %q", h.Type())
		}
		r.products[h.Type()] = h
	}
	for _, h := range targets {
		if _, dup := r.targets[h.Type()]; dup {
			return nil, fmt.Errorf("duplicate target handler %q", h.Type())
		}
		r.targets[h.Type()] = h
	}
	return r, nil
}

func (r *Registry) Product(productType string) (ProductHandler, error) {
	h, ok := r.products[productType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProductType, productType)
	}
	return h, nil
}

func (r *Registry) Target(targetType string) (TargetHandler, error) {
	h, ok := r.targets[targetType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTargetType, targetType)
	}
	return h, nil
}

// ProductTypes returns registered product type tags in sorted order.
func (r *Registry) ProductTypes() []string {
	out := make([]string, 0, len(r.products))
	for t := range r.products {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TargetTypes returns registered target type tags in sorted order.
func (r *Registry) TargetTypes() []string {
	out := make([]string, 0, len(r.targets))
	for t := range r.targets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ValidateProducts rejects refs with an unregistered type or a zero item.
func (r *Registry) ValidateProducts(refs []ItemRef) error {
	for _, ref := range refs {
		if _, err := r.Product(ref.Type); err != nil {
			return err
		}
		if ref.ItemID == 0 {
			return fmt.Errorf("product %s has no item", ref.Type)
		}
	}
	return nil
}

// ValidateTargets rejects refs with an unregistered type or a zero item.
func (r *Registry) ValidateTargets(refs []ItemRef) error {
	for _, ref := range refs {
		if _, err := r.Target(ref.Type); err != nil {
			return err
		}
		if ref.ItemID == 0 {
			return fmt.Errorf("target %s has no item", ref.Type)
		}
	}
	return nil
}

// TargetForUser walks the set's targets grouped by type and returns the first
// match reported by a handler.
func (r *Registry) TargetForUser(ctx context.Context, set *TargetSet, userID uint) (*Target, bool, error) {
	for _, targetType := range r.TargetTypes() {
		candidates := set.TargetsOfType(targetType)
		if len(candidates) == 0 {
			continue
		}
		h := r.targets[targetType]
		target, found, err := h.ForUser(ctx, userID, candidates)
		if err != nil {
			return nil, false, err
		}
		if found {
			return target, true, nil
		}
	}
	return nil, false, nil
}
