package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu    sync.Mutex
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Add stores a user as is and returns it.
func (s *UserRepositoryStub) Add(user *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	if user.ID == 0 {
		user.ID = s.Next
		s.Next++
	}
	s.Users[user.Email] = user
	s.ByID[user.ID] = user
	return user
}

func (s *UserRepositoryStub) init() {
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if s.Next == 0 {
		s.Next = 1
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.init()
	if _, exists := s.Users[user.Email]; exists {
		return domainErrors.ErrAlreadyExists
	}
	user.ID = s.Next
	user.CreatedAt = time.Now()
	s.Next++
	s.Users[user.Email] = user
	s.ByID[user.ID] = user
	return nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Count returns number of stored users.
func (s *UserRepositoryStub) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.ByID), nil
}

// OrderRepositoryStub keeps orders in memory and applies the same
// compare-and-swap rules as the database. Fn fields override behaviour.
type OrderRepositoryStub struct {
	CreateFn                func(context.Context, *model.Order) error
	GetByIDFn               func(context.Context, string) (*model.Order, error)
	ListFn                  func(context.Context, model.OrderFilter, model.Page) (*model.OrderList, error)
	SaveFn                  func(context.Context, *model.Order, model.OrderStatus) error
	CompleteFn              func(context.Context, *model.Order, *model.License) error
	TransferContentExistsFn func(context.Context, string) (bool, error)
	ListExpiredFn           func(context.Context, time.Time, int) ([]model.Order, error)
	CountByStatusFn         func(context.Context) (map[model.OrderStatus]int, error)
	RevenueSinceFn          func(context.Context, time.Time) (int64, error)

	mu        sync.Mutex
	Orders    map[string]model.Order
	Licenses  []model.License
	Writes    int
	Creates   int
	MemoCheck []string
}

// NewOrderRepositoryStub returns an empty in-memory store.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{Orders: make(map[string]model.Order)}
	for _, o := range orders {
		s.Orders[o.ID] = o
	}
	return s
}

// Put stores an order without any checks.
func (s *OrderRepositoryStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]model.Order)
	}
	s.Orders[order.ID] = order
}

// Snapshot returns the stored copy of an order.
func (s *OrderRepositoryStub) Snapshot(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	return o, ok
}

// WriteCount returns the number of applied mutations.
func (s *OrderRepositoryStub) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Writes
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]model.Order)
	}
	for _, existing := range s.Orders {
		if existing.TransferContent == order.TransferContent || existing.OrderNumber == order.OrderNumber {
			return domainErrors.ErrAlreadyExists
		}
	}
	if _, ok := s.Orders[order.ID]; ok {
		return domainErrors.ErrAlreadyExists
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	s.Orders[order.ID] = *order
	s.Creates++
	return nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter, page)
	}
	page = page.Normalize()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mu.Lock()
	var matched []model.Order
	for _, o := range s.Orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != 0 && o.UserID != filter.UserID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), search) &&
			!strings.Contains(strings.ToLower(o.TransferContent), search) &&
			!strings.Contains(strings.ToLower(o.UserEmail), search) {
			continue
		}
		matched = append(matched, o)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	list := &model.OrderList{Total: len(matched), Page: page.Page, Limit: page.Limit}
	if start := page.Offset(); start < len(matched) {
		end := min(start+page.Limit, len(matched))
		list.Orders = matched[start:end]
	}
	return list, nil
}

func (s *OrderRepositoryStub) Save(ctx context.Context, order *model.Order, expected model.OrderStatus) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, order, expected)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.swap(order, expected); err != nil {
		return err
	}
	return nil
}

func (s *OrderRepositoryStub) Complete(ctx context.Context, order *model.Order, license *model.License) error {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, order, license)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.swap(order, model.OrderStatusProcessing); err != nil {
		return err
	}
	s.Licenses = append(s.Licenses, *license)
	return nil
}

func (s *OrderRepositoryStub) swap(order *model.Order, expected model.OrderStatus) error {
	stored, ok := s.Orders[order.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Status != expected || !expected.CanTransitionTo(order.Status) {
		return domainErrors.ErrInvalidState
	}
	order.UpdatedAt = time.Now()
	s.Orders[order.ID] = *order
	s.Writes++
	return nil
}

func (s *OrderRepositoryStub) TransferContentExists(ctx context.Context, memo string) (bool, error) {
	if s.TransferContentExistsFn != nil {
		return s.TransferContentExistsFn(ctx, memo)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MemoCheck = append(s.MemoCheck, memo)
	for _, o := range s.Orders {
		if o.TransferContent == memo {
			return true, nil
		}
	}
	return false, nil
}

func (s *OrderRepositoryStub) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	if s.ListExpiredFn != nil {
		return s.ListExpiredFn(ctx, now, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.Orders {
		if o.Due(now) {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExpiresAt.Before(result[j].ExpiresAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *OrderRepositoryStub) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	if s.CountByStatusFn != nil {
		return s.CountByStatusFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[model.OrderStatus]int)
	for _, o := range s.Orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (s *OrderRepositoryStub) RevenueSince(ctx context.Context, since time.Time) (int64, error) {
	if s.RevenueSinceFn != nil {
		return s.RevenueSinceFn(ctx, since)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, o := range s.Orders {
		if o.Status == model.OrderStatusCompleted && o.ApprovedAt != nil && !o.ApprovedAt.Before(since) {
			sum += o.Amount
		}
	}
	return sum, nil
}

// PackageRepositoryStub serves a fixed catalog.
type PackageRepositoryStub struct {
	ListActiveFn func(context.Context) ([]model.Package, error)
	GetByIDFn    func(context.Context, string) (*model.Package, error)
	Packages     []model.Package
}

func (s *PackageRepositoryStub) ListActive(ctx context.Context) ([]model.Package, error) {
	if s.ListActiveFn != nil {
		return s.ListActiveFn(ctx)
	}
	var active []model.Package
	for _, p := range s.Packages {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *PackageRepositoryStub) GetByID(ctx context.Context, id string) (*model.Package, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	for _, p := range s.Packages {
		if p.ID == id {
			pkg := p
			return &pkg, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// LicenseRepositoryStub returns configured license counters.
type LicenseRepositoryStub struct {
	CountsFn func(context.Context, time.Time) (int, int, error)
	Total    int
	Active   int
}

func (s *LicenseRepositoryStub) Counts(ctx context.Context, now time.Time) (int, int, error) {
	if s.CountsFn != nil {
		return s.CountsFn(ctx, now)
	}
	return s.Total, s.Active, nil
}

// SessionRepositoryStub keeps sessions in memory.
type SessionRepositoryStub struct {
	mu        sync.Mutex
	Sessions  map[int64]model.Session
	TTLs      map[int64]time.Duration
	PutErr    error
	GetErr    error
	DeleteErr error
}

// NewSessionRepositoryStub returns an empty session store.
func NewSessionRepositoryStub() *SessionRepositoryStub {
	return &SessionRepositoryStub{Sessions: make(map[int64]model.Session), TTLs: make(map[int64]time.Duration)}
}

func (s *SessionRepositoryStub) Put(ctx context.Context, session *model.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return s.PutErr
	}
	if s.Sessions == nil {
		s.Sessions = make(map[int64]model.Session)
	}
	if s.TTLs == nil {
		s.TTLs = make(map[int64]time.Duration)
	}
	s.Sessions[session.UserID] = *session
	s.TTLs[session.UserID] = ttl
	return nil
}

func (s *SessionRepositoryStub) Get(ctx context.Context, userID int64) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	session, ok := s.Sessions[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &session, nil
}

func (s *SessionRepositoryStub) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Sessions, userID)
	return nil
}

var (
	_ repository.UserRepository    = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository   = (*OrderRepositoryStub)(nil)
	_ repository.PackageRepository = (*PackageRepositoryStub)(nil)
	_ repository.LicenseRepository = (*LicenseRepositoryStub)(nil)
	_ repository.SessionRepository = (*SessionRepositoryStub)(nil)
)
