package repository

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daffodils/florist-api/internal/model"
)

// MemoryStore backs the API in demo mode and the service tests. It is
// constructed and injected, never shared through a package-level variable,
// and implements every repository interface plus TxManager.
type MemoryStore struct {
	mu           sync.RWMutex
	products     map[uuid.UUID]model.Product
	orders       map[uuid.UUID]model.Order
	orderNumbers map[string]uuid.UUID
	admins       map[uuid.UUID]model.Admin
	contacts     map[uuid.UUID]model.Contact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:     make(map[uuid.UUID]model.Product),
		orders:       make(map[uuid.UUID]model.Order),
		orderNumbers: make(map[string]uuid.UUID),
		admins:       make(map[uuid.UUID]model.Admin),
		contacts:     make(map[uuid.UUID]model.Contact),
	}
}

// MemoryStore itself is the ProductRepository; the other repositories are
// thin views over the same store so one lock covers them all.
var (
	_ ProductRepository = (*MemoryStore)(nil)
	_ OrderRepository   = (*memoryOrders)(nil)
	_ AdminRepository   = (*memoryAdmins)(nil)
	_ ContactRepository = (*memoryContacts)(nil)
	_ TxManager         = (*MemoryStore)(nil)
)

func (s *MemoryStore) Orders() OrderRepository     { return &memoryOrders{s} }
func (s *MemoryStore) Admins() AdminRepository     { return &memoryAdmins{s} }
func (s *MemoryStore) Contacts() ContactRepository { return &memoryContacts{s} }

type memTxKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(memTxKey{}).(bool)
	return v
}

// The store holds its own write lock for the duration of a transaction, so
// repository calls made with the transaction context skip locking.
func (s *MemoryStore) rlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RLock()
	}
}

func (s *MemoryStore) runlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RUnlock()
	}
}

func (s *MemoryStore) wlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Lock()
	}
}

func (s *MemoryStore) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Unlock()
	}
}

// WithinTx serializes the whole transaction under the write lock and rolls
// back to a snapshot when fn fails, so a mid-sequence failure leaves no
// partial effect.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := maps.Clone(s.products)
	orders := maps.Clone(s.orders)
	orderNumbers := maps.Clone(s.orderNumbers)
	admins := maps.Clone(s.admins)
	contacts := maps.Clone(s.contacts)

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.products = products
		s.orders = orders
		s.orderNumbers = orderNumbers
		s.admins = admins
		s.contacts = contacts
		return err
	}
	return nil
}

// --- ProductRepository ---

func (s *MemoryStore) Create(ctx context.Context, p *model.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)

	var all []model.Product
	for _, p := range s.products {
		if f.Category != "" && string(p.Category) != f.Category {
			continue
		}
		if f.ProductType != "" && string(p.ProductType) != f.ProductType {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		if f.InStock != nil && p.InStock != *f.InStock {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
			continue
		}
		all = append(all, p)
	}

	desc := f.SortOrder != "asc"
	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case "name":
			less = all[i].Name < all[j].Name
		case "price":
			less = all[i].Price.LessThan(all[j].Price)
		case "stockQuantity":
			less = all[i].StockQuantity < all[j].StockQuantity
		default:
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		if desc {
			return !less
		}
		return less
	})

	return page(all, f.Limit, f.Offset), len(all), nil
}

func (s *MemoryStore) Update(ctx context.Context, p *model.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	p, ok := s.products[id]
	if !ok || p.StockQuantity < quantity {
		return ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return nil
}

func (s *MemoryStore) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	var out []model.Product
	for _, p := range s.products {
		if p.StockQuantity < threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockQuantity < out[j].StockQuantity })
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	return len(s.products), nil
}

// --- OrderRepository ---

func (s *MemoryStore) CreateOrder(ctx context.Context, o *model.Order) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, exists := s.orderNumbers[o.OrderNumber]; exists {
		return fmt.Errorf("insert order %s: %w", o.OrderNumber, ErrDuplicateOrderNumber)
	}
	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = uuid.New()
		o.Items[i].OrderID = o.ID
	}
	s.orders[o.ID] = *o
	s.orderNumbers[o.OrderNumber] = o.ID
	return nil
}

func (s *MemoryStore) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := s.attachProducts(o)
	return &cp, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)

	var all []model.Order
	for _, o := range s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.PaymentStatus != "" && string(o.PaymentStatus) != f.PaymentStatus {
			continue
		}
		if f.Search != "" && !containsFold(o.OrderNumber, f.Search) &&
			!containsFold(o.CustomerInfo.Name, f.Search) &&
			!containsFold(o.CustomerInfo.Email, f.Search) {
			continue
		}
		if f.DateFrom != nil && o.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && o.CreatedAt.After(*f.DateTo) {
			continue
		}
		all = append(all, s.attachProducts(o))
	}

	desc := f.SortOrder != "asc"
	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case "total":
			less = all[i].Pricing.Total.LessThan(all[j].Pricing.Total)
		case "status":
			less = all[i].Status < all[j].Status
		case "orderNumber":
			less = all[i].OrderNumber < all[j].OrderNumber
		default:
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		if desc {
			return !less
		}
		return less
	})

	return page(all, f.Limit, f.Offset), len(all), nil
}

func (s *MemoryStore) UpdateOrder(ctx context.Context, o *model.Order) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	cur, ok := s.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Status = o.Status
	cur.PaymentStatus = o.PaymentStatus
	cur.Notes = o.Notes
	cur.TrackingNumber = o.TrackingNumber
	cur.AdminNotes = o.AdminNotes
	cur.UpdatedAt = time.Now().UTC()
	s.orders[o.ID] = cur
	o.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *MemoryStore) AppendStatusChange(ctx context.Context, change *model.StatusChange) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	o, ok := s.orders[change.OrderID]
	if !ok {
		return ErrNotFound
	}
	change.ID = uuid.New()
	change.Timestamp = time.Now().UTC()
	o.StatusHistory = append(o.StatusHistory, *change)
	s.orders[o.ID] = o
	return nil
}

func (s *MemoryStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.orderNumbers, o.OrderNumber)
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) CountOrders(ctx context.Context) (int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	return len(s.orders), nil
}

func (s *MemoryStore) CountByStatus(ctx context.Context, status model.OrderStatus) (int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	n := 0
	for _, o := range s.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	n := 0
	for _, o := range s.orders {
		if !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) StatusBreakdown(ctx context.Context) ([]StatusAgg, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	byStatus := make(map[model.OrderStatus]*StatusAgg)
	for _, o := range s.orders {
		agg, ok := byStatus[o.Status]
		if !ok {
			agg = &StatusAgg{Status: o.Status}
			byStatus[o.Status] = agg
		}
		agg.Count++
		agg.TotalValue = agg.TotalValue.Add(o.Pricing.Total)
	}
	var out []StatusAgg
	for _, agg := range byStatus {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (s *MemoryStore) PaymentBreakdown(ctx context.Context) (map[model.PaymentStatus]int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	out := make(map[model.PaymentStatus]int)
	for _, o := range s.orders {
		out[o.PaymentStatus]++
	}
	return out, nil
}

func (s *MemoryStore) Revenue(ctx context.Context) (decimal.Decimal, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	total := decimal.Zero
	for _, o := range s.orders {
		if o.Status != model.StatusCancelled {
			total = total.Add(o.Pricing.Total)
		}
	}
	return total, nil
}

func (s *MemoryStore) MonthlyRevenue(ctx context.Context, since time.Time) ([]MonthlyAgg, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	type ym struct{ y, m int }
	byMonth := make(map[ym]*MonthlyAgg)
	for _, o := range s.orders {
		if o.CreatedAt.Before(since) || o.Status == model.StatusCancelled {
			continue
		}
		key := ym{o.CreatedAt.Year(), int(o.CreatedAt.Month())}
		agg, ok := byMonth[key]
		if !ok {
			agg = &MonthlyAgg{Year: key.y, Month: key.m}
			byMonth[key] = agg
		}
		agg.Orders++
		agg.Revenue = agg.Revenue.Add(o.Pricing.Total)
	}
	var out []MonthlyAgg
	for _, agg := range byMonth {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]model.Order, error) {
	orders, _, err := s.ListOrders(ctx, OrderFilter{Limit: limit, SortBy: "createdAt", SortOrder: "desc"})
	return orders, err
}

func (s *MemoryStore) attachProducts(o model.Order) model.Order {
	items := make([]model.OrderItem, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		if p, ok := s.products[items[i].ProductID]; ok {
			cp := p
			items[i].Product = &cp
		}
	}
	o.Items = items
	return o
}

// --- AdminRepository ---

func (s *MemoryStore) CreateAdmin(ctx context.Context, a *model.Admin) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	s.admins[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAdminByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	a, ok := s.admins[id]
	if !ok {
		return nil, nil
	}
	cp := a
	return &cp, nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, email) {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	for _, a := range s.admins {
		if a.Username == username {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	a, ok := s.admins[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	a.LastLogin = &now
	a.UpdatedAt = now
	s.admins[id] = a
	return nil
}

func (s *MemoryStore) CountAdmins(ctx context.Context) (int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	return len(s.admins), nil
}

// --- ContactRepository ---

func (s *MemoryStore) CreateContact(ctx context.Context, ct *model.Contact) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	ct.ID = uuid.New()
	ct.CreatedAt = time.Now().UTC()
	ct.UpdatedAt = ct.CreatedAt
	s.contacts[ct.ID] = *ct
	return nil
}

func (s *MemoryStore) GetContactByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	ct, ok := s.contacts[id]
	if !ok {
		return nil, nil
	}
	cp := ct
	return &cp, nil
}

func (s *MemoryStore) ListContacts(ctx context.Context, f ContactFilter) ([]model.Contact, int, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	var all []model.Contact
	for _, ct := range s.contacts {
		if f.Status != "" && string(ct.Status) != f.Status {
			continue
		}
		if f.InquiryType != "" && string(ct.InquiryType) != f.InquiryType {
			continue
		}
		all = append(all, ct)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (s *MemoryStore) UpdateContact(ctx context.Context, ct *model.Contact) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.contacts[ct.ID]; !ok {
		return ErrNotFound
	}
	ct.UpdatedAt = time.Now().UTC()
	s.contacts[ct.ID] = *ct
	return nil
}

func (s *MemoryStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.contacts[id]; !ok {
		return ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

type memoryOrders struct{ s *MemoryStore }

func (m *memoryOrders) Create(ctx context.Context, o *model.Order) error { return m.s.CreateOrder(ctx, o) }
func (m *memoryOrders) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.s.GetOrderByID(ctx, id)
}
func (m *memoryOrders) List(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	return m.s.ListOrders(ctx, f)
}
func (m *memoryOrders) Update(ctx context.Context, o *model.Order) error { return m.s.UpdateOrder(ctx, o) }
func (m *memoryOrders) AppendStatusChange(ctx context.Context, c *model.StatusChange) error {
	return m.s.AppendStatusChange(ctx, c)
}
func (m *memoryOrders) Delete(ctx context.Context, id uuid.UUID) error { return m.s.DeleteOrder(ctx, id) }
func (m *memoryOrders) Count(ctx context.Context) (int, error)        { return m.s.CountOrders(ctx) }
func (m *memoryOrders) CountByStatus(ctx context.Context, st model.OrderStatus) (int, error) {
	return m.s.CountByStatus(ctx, st)
}
func (m *memoryOrders) CountCreatedSince(ctx context.Context, t time.Time) (int, error) {
	return m.s.CountCreatedSince(ctx, t)
}
func (m *memoryOrders) StatusBreakdown(ctx context.Context) ([]StatusAgg, error) {
	return m.s.StatusBreakdown(ctx)
}
func (m *memoryOrders) PaymentBreakdown(ctx context.Context) (map[model.PaymentStatus]int, error) {
	return m.s.PaymentBreakdown(ctx)
}
func (m *memoryOrders) Revenue(ctx context.Context) (decimal.Decimal, error) { return m.s.Revenue(ctx) }
func (m *memoryOrders) MonthlyRevenue(ctx context.Context, t time.Time) ([]MonthlyAgg, error) {
	return m.s.MonthlyRevenue(ctx, t)
}
func (m *memoryOrders) Recent(ctx context.Context, n int) ([]model.Order, error) {
	return m.s.Recent(ctx, n)
}

type memoryAdmins struct{ s *MemoryStore }

func (m *memoryAdmins) Create(ctx context.Context, a *model.Admin) error { return m.s.CreateAdmin(ctx, a) }
func (m *memoryAdmins) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	return m.s.GetAdminByID(ctx, id)
}
func (m *memoryAdmins) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return m.s.GetByEmail(ctx, email)
}
func (m *memoryAdmins) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return m.s.GetByUsername(ctx, username)
}
func (m *memoryAdmins) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return m.s.UpdateLastLogin(ctx, id)
}
func (m *memoryAdmins) Count(ctx context.Context) (int, error) { return m.s.CountAdmins(ctx) }

type memoryContacts struct{ s *MemoryStore }

func (m *memoryContacts) Create(ctx context.Context, ct *model.Contact) error {
	return m.s.CreateContact(ctx, ct)
}
func (m *memoryContacts) GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	return m.s.GetContactByID(ctx, id)
}
func (m *memoryContacts) List(ctx context.Context, f ContactFilter) ([]model.Contact, int, error) {
	return m.s.ListContacts(ctx, f)
}
func (m *memoryContacts) Update(ctx context.Context, ct *model.Contact) error {
	return m.s.UpdateContact(ctx, ct)
}
func (m *memoryContacts) Delete(ctx context.Context, id uuid.UUID) error {
	return m.s.DeleteContact(ctx, id)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
