package licensing

import (
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/licensing/internal/shared/biztime"
)

// Product types known to the registry.
const (
	ProductTypeCourse  = "course"
	ProductTypeProgram = "program"
)

// Target types known to the registry.
const (
	TargetTypeOrganisation = "organisation"
)

// ItemRef names one catalog item of a given type.
type ItemRef struct {
	Type   string
	ItemID uint
}

// Key identifies the ref inside a set.
func (r ItemRef) Key() string {
	return fmt.Sprintf("%s-%d", r.Type, r.ItemID)
}

// Product is an enrollable item inside a product set.
type Product struct {
	id           uint
	productSetID uint
	itemType     string
	itemID       uint
}

func NewProduct(productSetID uint, ref ItemRef) *Product {
	return &Product{productSetID: productSetID, itemType: ref.Type, itemID: ref.ItemID}
}

// ReconstructProduct reconstructs a Product from persistence
func ReconstructProduct(id, productSetID uint, itemType string, itemID uint) *Product {
	return &Product{id: id, productSetID: productSetID, itemType: itemType, itemID: itemID}
}

func (p *Product) ID() uint           { return p.id }
func (p *Product) ProductSetID() uint { return p.productSetID }
func (p *Product) Type() string       { return p.itemType }
func (p *Product) ItemID() uint       { return p.itemID }
func (p *Product) Ref() ItemRef       { return ItemRef{Type: p.itemType, ItemID: p.itemID} }

// SetID sets the product ID (only for persistence layer use)
func (p *Product) SetID(id uint) { p.id = id }

// ProductSet is a named collection of products.
type ProductSet struct {
	id        uint
	name      string
	createdAt time.Time
	createdBy uint
	products  []*Product
}

// NewProductSet creates a new product set
func NewProductSet(name string, createdBy uint) (*ProductSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("product set name is required")
	}
	return &ProductSet{name: name, createdAt: biztime.NowUTC(), createdBy: createdBy}, nil
}

// ReconstructProductSet reconstructs a ProductSet from persistence
func ReconstructProductSet(id uint, name string, createdAt time.Time, createdBy uint, products []*Product) *ProductSet {
	return &ProductSet{id: id, name: name, createdAt: createdAt, createdBy: createdBy, products: products}
}

func (s *ProductSet) ID() uint             { return s.id }
func (s *ProductSet) Name() string         { return s.name }
func (s *ProductSet) CreatedAt() time.Time { return s.createdAt }
func (s *ProductSet) CreatedBy() uint      { return s.createdBy }
func (s *ProductSet) Products() []*Product { return s.products }
func (s *ProductSet) SetID(id uint)        { s.id = id }

// Rename changes the set name.
func (s *ProductSet) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("product set name is required")
	}
	s.name = name
	return nil
}

// Contains reports whether productID is one of the set's products.
func (s *ProductSet) Contains(productID uint) bool {
	for _, p := range s.products {
		if p.id == productID {
			return true
		}
	}
	return false
}

// DiffProducts returns the refs to add and the products to delete so that the
// set ends up holding exactly wanted.
func (s *ProductSet) DiffProducts(wanted []ItemRef) ([]ItemRef, []*Product) {
	current := make([]ItemRef, len(s.products))
	for i, p := range s.products {
		current[i] = p.Ref()
	}
	add, removeIdx := diffRefs(current, wanted)
	remove := make([]*Product, 0, len(removeIdx))
	for _, i := range removeIdx {
		remove = append(remove, s.products[i])
	}
	return add, remove
}

// Target is a group of users inside a target set.
type Target struct {
	id          uint
	targetSetID uint
	itemType    string
	itemID      uint
}

func NewTarget(targetSetID uint, ref ItemRef) *Target {
	return &Target{targetSetID: targetSetID, itemType: ref.Type, itemID: ref.ItemID}
}

// ReconstructTarget reconstructs a Target from persistence
func ReconstructTarget(id, targetSetID uint, itemType string, itemID uint) *Target {
	return &Target{id: id, targetSetID: targetSetID, itemType: itemType, itemID: itemID}
}

func (t *Target) ID() uint          { return t.id }
func (t *Target) TargetSetID() uint { return t.targetSetID }
func (t *Target) Type() string      { return t.itemType }
func (t *Target) ItemID() uint      { return t.itemID }
func (t *Target) Ref() ItemRef      { return ItemRef{Type: t.itemType, ItemID: t.itemID} }

// SetID sets the target ID (only for persistence layer use)
func (t *Target) SetID(id uint) { t.id = id }

// TargetSet is a named collection of targets sharing an id number format.
type TargetSet struct {
	id                 uint
	name               string
	userIDNumberFormat string
	createdAt          time.Time
	createdBy          uint
	targets            []*Target
}

// NewTargetSet creates a new target set
func NewTargetSet(name, userIDNumberFormat string, createdBy uint) (*TargetSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("target set name is required")
	}
	if err := ValidateIDNumberFormat(userIDNumberFormat); err != nil {
		return nil, err
	}
	return &TargetSet{
		name:               name,
		userIDNumberFormat: userIDNumberFormat,
		createdAt:          biztime.NowUTC(),
		createdBy:          createdBy,
	}, nil
}

// ReconstructTargetSet reconstructs a TargetSet from persistence
func ReconstructTargetSet(id uint, name, userIDNumberFormat string, createdAt time.Time, createdBy uint, targets []*Target) *TargetSet {
	return &TargetSet{
		id:                 id,
		name:               name,
		userIDNumberFormat: userIDNumberFormat,
		createdAt:          createdAt,
		createdBy:          createdBy,
		targets:            targets,
	}
}

func (s *TargetSet) ID() uint                   { return s.id }
func (s *TargetSet) Name() string               { return s.name }
func (s *TargetSet) UserIDNumberFormat() string { return s.userIDNumberFormat }
func (s *TargetSet) CreatedAt() time.Time       { return s.createdAt }
func (s *TargetSet) CreatedBy() uint            { return s.createdBy }
func (s *TargetSet) Targets() []*Target         { return s.targets }
func (s *TargetSet) SetID(id uint)              { s.id = id }

// Update changes name and format together, validating the format first.
func (s *TargetSet) Update(name, userIDNumberFormat string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("target set name is required")
	}
	if err := ValidateIDNumberFormat(userIDNumberFormat); err != nil {
		return err
	}
	s.name = name
	s.userIDNumberFormat = userIDNumberFormat
	return nil
}

// CanonicalIDNumber applies the set's format to a raw roster id number.
func (s *TargetSet) CanonicalIDNumber(raw string) string {
	return FormatIDNumber(s.userIDNumberFormat, raw)
}

// TargetsOfType returns the set's targets handled by targetType.
func (s *TargetSet) TargetsOfType(targetType string) []*Target {
	var out []*Target
	for _, t := range s.targets {
		if t.itemType == targetType {
			out = append(out, t)
		}
	}
	return out
}

// DiffTargets returns the refs to add and the targets to delete so that the
// set ends up holding exactly wanted.
func (s *TargetSet) DiffTargets(wanted []ItemRef) ([]ItemRef, []*Target) {
	current := make([]ItemRef, len(s.targets))
	for i, t := range s.targets {
		current[i] = t.Ref()
	}
	add, removeIdx := diffRefs(current, wanted)
	remove := make([]*Target, 0, len(removeIdx))
	for _, i := range removeIdx {
		remove = append(remove, s.targets[i])
	}
	return add, remove
}

// diffRefs returns wanted refs missing from current (deduplicated, in wanted
// order) and the indexes of current refs absent from wanted.
func diffRefs(current, wanted []ItemRef) ([]ItemRef, []int) {
	want := make(map[string]struct{}, len(wanted))
	have := make(map[string]struct{}, len(current))
	for _, r := range current {
		have[r.Key()] = struct{}{}
	}

	var add []ItemRef
	for _, r := range wanted {
		k := r.Key()
		if _, dup := want[k]; dup {
			continue
		}
		want[k] = struct{}{}
		if _, ok := have[k]; !ok {
			add = append(add, r)
		}
	}

	var remove []int
	for i, r := range current {
		if _, ok := want[r.Key()]; !ok {
			remove = append(remove, i)
		}
	}
	return add, remove
}

const idNumberPlaceholder = "%s"

// ValidateIDNumberFormat requires exactly one %s placeholder.
func ValidateIDNumberFormat(format string) error {
	if strings.Count(format, idNumberPlaceholder) != 1 {
		return ErrInvalidIDFormat
	}
	return nil
}

// FormatIDNumber substitutes raw into format. The raw value is trimmed.
func FormatIDNumber(format, raw string) string {
	return strings.Replace(format, idNumberPlaceholder, strings.TrimSpace(raw), 1)
}
