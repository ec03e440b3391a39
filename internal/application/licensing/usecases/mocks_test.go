package usecases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/setting"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

type nopLogger struct{}

func (l *nopLogger) Debug(msg string, args ...any)                   {}
func (l *nopLogger) Info(msg string, args ...any)                    {}
func (l *nopLogger) Warn(msg string, args ...any)                    {}
func (l *nopLogger) Error(msg string, args ...any)                   {}
func (l *nopLogger) Fatal(msg string, args ...any)                   {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }
func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}

// mockTxManager runs fn inline. RolledBack counts calls whose fn failed.
// Like a real database it refuses to begin on a cancelled context.
type mockTxManager struct {
	RolledBack int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		m.RolledBack++
		return err
	}
	return nil
}

type mockAllocationRepository struct {
	CreateFunc            func(ctx context.Context, a *licensing.Allocation) error
	GetByIDFunc           func(ctx context.Context, id uint) (*licensing.Allocation, error)
	GetByIDForUpdateFunc  func(ctx context.Context, id uint) (*licensing.Allocation, error)
	ListActiveFunc        func(ctx context.Context, now time.Time, targetSetID *uint) ([]*licensing.AllocationUsage, error)
	ListUsageFunc         func(ctx context.Context, targetSetID *uint) ([]*licensing.AllocationUsage, error)
	CountByProductSetFunc func(ctx context.Context, id uint) (int64, error)
	CountByTargetSetFunc  func(ctx context.Context, id uint) (int64, error)
}

func (m *mockAllocationRepository) Create(ctx context.Context, a *licensing.Allocation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	a.SetID(1)
	return nil
}

func (m *mockAllocationRepository) GetByID(ctx context.Context, id uint) (*licensing.Allocation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, licensing.ErrAllocationNotFound
}

func (m *mockAllocationRepository) GetByIDForUpdate(ctx context.Context, id uint) (*licensing.Allocation, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *mockAllocationRepository) ListActive(ctx context.Context, now time.Time, targetSetID *uint) ([]*licensing.AllocationUsage, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, now, targetSetID)
	}
	return nil, nil
}

func (m *mockAllocationRepository) ListUsage(ctx context.Context, targetSetID *uint) ([]*licensing.AllocationUsage, error) {
	if m.ListUsageFunc != nil {
		return m.ListUsageFunc(ctx, targetSetID)
	}
	return nil, nil
}

func (m *mockAllocationRepository) CountByProductSet(ctx context.Context, id uint) (int64, error) {
	if m.CountByProductSetFunc != nil {
		return m.CountByProductSetFunc(ctx, id)
	}
	return 0, nil
}

func (m *mockAllocationRepository) CountByTargetSet(ctx context.Context, id uint) (int64, error) {
	if m.CountByTargetSetFunc != nil {
		return m.CountByTargetSetFunc(ctx, id)
	}
	return 0, nil
}

type mockDistributionRepository struct {
	mu    sync.Mutex
	items []*licensing.Distribution

	CreateFunc             func(ctx context.Context, d *licensing.Distribution) error
	ListCreatedBetweenFunc func(ctx context.Context, after, upTo time.Time) ([]*licensing.Distribution, error)
}

func (m *mockDistributionRepository) Create(ctx context.Context, d *licensing.Distribution) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d.SetID(uint(len(m.items) + 1))
	m.items = append(m.items, d)
	return nil
}

func (m *mockDistributionRepository) GetByID(ctx context.Context, id uint) (*licensing.Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.items {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, licensing.ErrDistributionNotFound
}

func (m *mockDistributionRepository) ListByIDs(ctx context.Context, ids []uint) ([]*licensing.Distribution, error) {
	var out []*licensing.Distribution
	for _, id := range ids {
		if d, err := m.GetByID(ctx, id); err == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDistributionRepository) ListByAllocation(ctx context.Context, allocationID uint) ([]*licensing.Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*licensing.Distribution
	for _, d := range m.items {
		if d.AllocationID() == allocationID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDistributionRepository) ListCreatedBetween(ctx context.Context, after, upTo time.Time) ([]*licensing.Distribution, error) {
	if m.ListCreatedBetweenFunc != nil {
		return m.ListCreatedBetweenFunc(ctx, after, upTo)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*licensing.Distribution
	for _, d := range m.items {
		if d.CreatedAt().After(after) && !d.CreatedAt().After(upTo) {
			out = append(out, d)
		}
	}
	return out, nil
}

// mockLicenceRepository keeps licences in memory; allocationOf maps a
// distribution to its allocation for CountByAllocation.
type mockLicenceRepository struct {
	mu           sync.Mutex
	licences     []*licensing.Licence
	allocationOf func(distributionID uint) uint

	CreateBatchFunc       func(ctx context.Context, licences []*licensing.Licence) error
	CountByAllocationFunc func(ctx context.Context, allocationID uint) (int, error)
}

func (m *mockLicenceRepository) CreateBatch(ctx context.Context, licences []*licensing.Licence) error {
	if m.CreateBatchFunc != nil {
		if err := m.CreateBatchFunc(ctx, licences); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range licences {
		l.SetID(uint(len(m.licences) + 1))
		m.licences = append(m.licences, l)
	}
	return nil
}

func (m *mockLicenceRepository) CountByAllocation(ctx context.Context, allocationID uint) (int, error) {
	if m.CountByAllocationFunc != nil {
		return m.CountByAllocationFunc(ctx, allocationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.licences {
		if m.allocationOf != nil && m.allocationOf(l.DistributionID()) == allocationID {
			n++
		}
	}
	return n, nil
}

func (m *mockLicenceRepository) CountByDistributions(ctx context.Context, ids []uint) (map[uint]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint]int, len(ids))
	for _, id := range ids {
		for _, l := range m.licences {
			if l.DistributionID() == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (m *mockLicenceRepository) UserIDsByDistribution(ctx context.Context, distributionID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint
	for _, l := range m.licences {
		if l.DistributionID() == distributionID {
			out = append(out, l.UserID())
		}
	}
	return out, nil
}

func (m *mockLicenceRepository) DeleteByDistribution(ctx context.Context, distributionID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.licences[:0]
	var removed int64
	for _, l := range m.licences {
		if l.DistributionID() == distributionID {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	m.licences = kept
	return removed, nil
}

func (m *mockLicenceRepository) all() []*licensing.Licence {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*licensing.Licence(nil), m.licences...)
}

type mockProductSetRepository struct {
	CreateFunc         func(ctx context.Context, set *licensing.ProductSet) error
	UpdateFunc         func(ctx context.Context, set *licensing.ProductSet) error
	GetByIDFunc        func(ctx context.Context, id uint) (*licensing.ProductSet, error)
	ListFunc           func(ctx context.Context) ([]*licensing.ProductSet, error)
	DeleteFunc         func(ctx context.Context, id uint) error
	AddProductsFunc    func(ctx context.Context, products []*licensing.Product) error
	DeleteProductsFunc func(ctx context.Context, ids []uint) error
	GetProductFunc     func(ctx context.Context, id uint) (*licensing.Product, error)
}

func (m *mockProductSetRepository) Create(ctx context.Context, set *licensing.ProductSet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, set)
	}
	set.SetID(1)
	return nil
}

func (m *mockProductSetRepository) Update(ctx context.Context, set *licensing.ProductSet) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, set)
	}
	return nil
}

func (m *mockProductSetRepository) GetByID(ctx context.Context, id uint) (*licensing.ProductSet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, licensing.ErrProductSetNotFound
}

func (m *mockProductSetRepository) List(ctx context.Context) ([]*licensing.ProductSet, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockProductSetRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockProductSetRepository) AddProducts(ctx context.Context, products []*licensing.Product) error {
	if m.AddProductsFunc != nil {
		return m.AddProductsFunc(ctx, products)
	}
	return nil
}

func (m *mockProductSetRepository) DeleteProducts(ctx context.Context, ids []uint) error {
	if m.DeleteProductsFunc != nil {
		return m.DeleteProductsFunc(ctx, ids)
	}
	return nil
}

func (m *mockProductSetRepository) GetProduct(ctx context.Context, id uint) (*licensing.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, licensing.ErrProductNotFound
}

type mockTargetSetRepository struct {
	CreateFunc         func(ctx context.Context, set *licensing.TargetSet) error
	UpdateFunc         func(ctx context.Context, set *licensing.TargetSet) error
	GetByIDFunc        func(ctx context.Context, id uint) (*licensing.TargetSet, error)
	ListFunc           func(ctx context.Context) ([]*licensing.TargetSet, error)
	DeleteFunc         func(ctx context.Context, id uint) error
	AddTargetsFunc     func(ctx context.Context, targets []*licensing.Target) error
	DeleteTargetsFunc  func(ctx context.Context, ids []uint) error
	ListContainingFunc func(ctx context.Context, refs []licensing.ItemRef) ([]*licensing.TargetSet, error)
}

func (m *mockTargetSetRepository) Create(ctx context.Context, set *licensing.TargetSet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, set)
	}
	set.SetID(1)
	return nil
}

func (m *mockTargetSetRepository) Update(ctx context.Context, set *licensing.TargetSet) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, set)
	}
	return nil
}

func (m *mockTargetSetRepository) GetByID(ctx context.Context, id uint) (*licensing.TargetSet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, licensing.ErrTargetSetNotFound
}

func (m *mockTargetSetRepository) List(ctx context.Context) ([]*licensing.TargetSet, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockTargetSetRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTargetSetRepository) AddTargets(ctx context.Context, targets []*licensing.Target) error {
	if m.AddTargetsFunc != nil {
		return m.AddTargetsFunc(ctx, targets)
	}
	return nil
}

func (m *mockTargetSetRepository) DeleteTargets(ctx context.Context, ids []uint) error {
	if m.DeleteTargetsFunc != nil {
		return m.DeleteTargetsFunc(ctx, ids)
	}
	return nil
}

func (m *mockTargetSetRepository) ListContaining(ctx context.Context, refs []licensing.ItemRef) ([]*licensing.TargetSet, error) {
	if m.ListContainingFunc != nil {
		return m.ListContainingFunc(ctx, refs)
	}
	return nil, nil
}

// mockArtifactStore keeps staged content in memory.
type mockArtifactStore struct {
	mu      sync.Mutex
	content map[uint][]byte
	deleted []uint
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{content: make(map[uint][]byte)}
}

func (m *mockArtifactStore) Put(ctx context.Context, owner string, ownerID uint, filename string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[ownerID] = content
	return nil
}

func (m *mockArtifactStore) Get(ctx context.Context, owner string, ownerID uint) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.content[ownerID]
	if !ok {
		return nil, licensing.ErrArtifactNotFound
	}
	return c, nil
}

func (m *mockArtifactStore) Exists(ctx context.Context, owner string, ownerID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.content[ownerID]
	return ok, nil
}

func (m *mockArtifactStore) ExistsMany(ctx context.Context, owner string, ownerIDs []uint) (map[uint]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		_, out[id] = m.content[id]
	}
	return out, nil
}

func (m *mockArtifactStore) ListOwnerIDs(ctx context.Context, owner string) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uint
	for id := range m.content {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockArtifactStore) Delete(ctx context.Context, owner string, ownerID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.content, ownerID)
	m.deleted = append(m.deleted, ownerID)
	return nil
}

// mockUserRepository keeps accounts in memory.
type mockUserRepository struct {
	mu    sync.Mutex
	users []*account.User

	UpdateFunc func(ctx context.Context, u *account.User) error
}

func (m *mockUserRepository) Create(ctx context.Context, u *account.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.SetID(uint(len(m.users) + 100))
	m.users = append(m.users, u)
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, u *account.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, account.ErrUserNotFound
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []uint) ([]*account.User, error) {
	var out []*account.User
	for _, id := range ids {
		if u, err := m.GetByID(ctx, id); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) GetByIDNumber(ctx context.Context, idNumber string) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.IDNumber() == idNumber {
			return u, nil
		}
	}
	return nil, account.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, account.ErrUserNotFound
}

// mockSettingRepository is a string map keyed by category/key.
type mockSettingRepository struct {
	mu     sync.Mutex
	values map[string]string

	CompareAndSwapFunc func(ctx context.Context, category, key string, expected, value string) (bool, error)
	UpsertFunc         func(ctx context.Context, s *setting.SystemSetting) error
}

func newMockSettingRepository() *mockSettingRepository {
	return &mockSettingRepository{values: make(map[string]string)}
}

func (m *mockSettingRepository) GetByKey(ctx context.Context, category, key string) (*setting.SystemSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[category+"/"+key]
	if !ok {
		return nil, setting.ErrSettingNotFound
	}
	valueType := setting.ValueTypeString
	switch key {
	case SettingKeyCronRunning:
		valueType = setting.ValueTypeBool
	case SettingKeyCronLastRun:
		valueType = setting.ValueTypeTime
	}
	return setting.ReconstructSystemSetting(1, "setting_test", category, key, v, valueType, "", 0, 1, time.Time{}, time.Time{}), nil
}

func (m *mockSettingRepository) GetByCategory(ctx context.Context, category string) ([]*setting.SystemSetting, error) {
	return nil, nil
}

func (m *mockSettingRepository) Upsert(ctx context.Context, s *setting.SystemSetting) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[s.Category()+"/"+s.Key()] = s.Value()
	return nil
}

func (m *mockSettingRepository) CompareAndSwap(ctx context.Context, category, key string, valueType setting.ValueType, expected, value string) (bool, error) {
	if m.CompareAndSwapFunc != nil {
		return m.CompareAndSwapFunc(ctx, category, key, expected, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := category + "/" + key
	if m.values[k] != expected {
		return false, nil
	}
	m.values[k] = value
	return true, nil
}

func (m *mockSettingRepository) Delete(ctx context.Context, category, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, category+"/"+key)
	return nil
}

func (m *mockSettingRepository) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[SettingCategoryLicensing+"/"+key]
}

type mockPasswordHasher struct{}

func (mockPasswordHasher) HashOrGenerate(password string) (string, string, error) {
	if password == "" {
		password = "generated"
	}
	return password, "hash:" + password, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (m *mockPublisher) Publish(event events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) PublishAll(evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = m.Publish(e)
	}
	return nil
}

func (m *mockPublisher) ofType(eventType string) []events.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.DomainEvent
	for _, e := range m.events {
		if e.GetEventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type mockRosterImporter struct {
	ExecuteFunc func(ctx context.Context, cmd ImportRosterCommand) (*ImportRosterResult, error)
}

func (m *mockRosterImporter) Execute(ctx context.Context, cmd ImportRosterCommand) (*ImportRosterResult, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, cmd)
	}
	return &ImportRosterResult{}, nil
}

type enrolCall struct {
	DistributionID uint
	UserIDs        []uint
}

type mockProductHandler struct {
	kind      string
	mu        sync.Mutex
	calls     []enrolCall
	EnrolFunc func(ctx context.Context, d *licensing.Distribution, userIDs []uint) error
	NameFunc  func(ctx context.Context, itemID uint) (string, error)
	SearchFn  func(ctx context.Context, query string) ([]*licensing.CatalogItem, error)
}

func (h *mockProductHandler) Type() string { return h.kind }

func (h *mockProductHandler) Enrol(ctx context.Context, _ *licensing.Allocation, d *licensing.Distribution, _ *licensing.Product, userIDs []uint) error {
	h.mu.Lock()
	h.calls = append(h.calls, enrolCall{DistributionID: d.ID(), UserIDs: userIDs})
	h.mu.Unlock()
	if h.EnrolFunc != nil {
		return h.EnrolFunc(ctx, d, userIDs)
	}
	return nil
}

func (h *mockProductHandler) Get(ctx context.Context, ids []uint) ([]*licensing.CatalogItem, error) {
	out := make([]*licensing.CatalogItem, len(ids))
	for i, id := range ids {
		out[i] = &licensing.CatalogItem{Type: h.kind, ID: id}
	}
	return out, nil
}

func (h *mockProductHandler) Search(ctx context.Context, query string) ([]*licensing.CatalogItem, error) {
	if h.SearchFn != nil {
		return h.SearchFn(ctx, query)
	}
	return nil, nil
}

func (h *mockProductHandler) ItemName(ctx context.Context, itemID uint) (string, error) {
	if h.NameFunc != nil {
		return h.NameFunc(ctx, itemID)
	}
	return "item", nil
}

func (h *mockProductHandler) ItemURL(itemID uint) string { return "" }

type assignCall struct {
	TargetItemID, AssigneeID, AssignerID uint
}

// mockTargetHandler matches users through members, keyed by target item id.
type mockTargetHandler struct {
	kind    string
	members map[uint][]uint
	mu      sync.Mutex
	assigns []assignCall
}

func (h *mockTargetHandler) Type() string { return h.kind }

func (h *mockTargetHandler) AssignUser(ctx context.Context, targetItemID, assigneeID, assignerID uint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.assigns = append(h.assigns, assignCall{targetItemID, assigneeID, assignerID})
	return nil
}

func (h *mockTargetHandler) ForUser(ctx context.Context, userID uint, candidates []*licensing.Target) (*licensing.Target, bool, error) {
	for _, c := range candidates {
		for _, m := range h.members[c.ItemID()] {
			if m == userID {
				return c, true, nil
			}
		}
	}
	return nil, false, nil
}

func (h *mockTargetHandler) UsersIn(ctx context.Context, itemIDs []uint) ([]uint, error) {
	var out []uint
	for _, id := range itemIDs {
		out = append(out, h.members[id]...)
	}
	return out, nil
}

func (h *mockTargetHandler) Get(ctx context.Context, ids []uint) ([]*licensing.CatalogItem, error) {
	out := make([]*licensing.CatalogItem, len(ids))
	for i, id := range ids {
		out[i] = &licensing.CatalogItem{Type: h.kind, ID: id, Name: "org"}
	}
	return out, nil
}

func (h *mockTargetHandler) Search(ctx context.Context, query string) ([]*licensing.CatalogItem, error) {
	return nil, nil
}

func (h *mockTargetHandler) ItemName(ctx context.Context, itemID uint) (string, error) {
	if _, ok := h.members[itemID]; !ok {
		return "", licensing.ErrItemNotFound
	}
	return "org", nil
}

func (h *mockTargetHandler) ItemURL(itemID uint) string { return "" }
