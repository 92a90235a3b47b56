package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/identity"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"gorm.io/gorm"
)

// memStore backs every fake repository so transactional operations can touch
// more than one collection.
type memStore struct {
	mu            sync.Mutex
	seq           int
	orders        map[string]model.Order
	prescriptions map[string]model.Prescription
	sellers       map[string]model.Seller
	products      map[string]model.Product
	admins        map[string]model.Admin
	writes        int
}

func newMemStore() *memStore {
	return &memStore{
		orders:        map[string]model.Order{},
		prescriptions: map[string]model.Prescription{},
		sellers:       map[string]model.Seller{},
		products:      map[string]model.Product{},
		admins:        map[string]model.Admin{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return prefix + "-" + strconv.Itoa(m.seq)
}

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	o.StatusHistory = append([]model.StatusHistoryEntry(nil), o.StatusHistory...)
	return o
}

type fakeOrderRepo struct{ m *memStore }

func (r fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o.ID = r.m.nextID("order")
	r.m.orders[o.ID] = cloneOrder(*o)
	r.m.writes++
	return nil
}

func (r fakeOrderRepo) FindByID(_ context.Context, id string) (*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r fakeOrderRepo) List(_ context.Context, q repository.OrderQuery) ([]model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	list := make([]model.Order, 0)
	for _, o := range r.m.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.UserID != "" && o.UserID != q.UserID {
			continue
		}
		if len(q.Locations) > 0 && !lo.Contains(q.Locations, o.Location) {
			continue
		}
		list = append(list, cloneOrder(o))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r fakeOrderRepo) UpdateStatus(_ context.Context, id string, status model.OrderStatus, note string, at time.Time) (*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = cloneOrder(o)
	o.ApplyStatus(status, note, at)
	r.m.orders[id] = o
	r.m.writes++
	c := cloneOrder(o)
	return &c, nil
}

func (r fakeOrderRepo) UpdateTracking(_ context.Context, id, trackingNumber string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.TrackingNumber = &trackingNumber
	o.UpdatedAt = at
	r.m.orders[id] = o
	r.m.writes++
	return nil
}

func (r fakeOrderRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.orders, id)
	r.m.writes++
	return nil
}

func (r fakeOrderRepo) Watch(repository.OrderQuery) realtime.Opener[model.Order] { return nil }

type fakePrescriptionRepo struct{ m *memStore }

func (r fakePrescriptionRepo) Create(_ context.Context, p *model.Prescription) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = r.m.nextID("rx")
	r.m.prescriptions[p.ID] = *p
	r.m.writes++
	return nil
}

func (r fakePrescriptionRepo) FindByID(_ context.Context, id string) (*model.Prescription, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.prescriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r fakePrescriptionRepo) List(_ context.Context, q repository.PrescriptionQuery) ([]model.Prescription, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	list := make([]model.Prescription, 0)
	for _, p := range r.m.prescriptions {
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		if q.SellerID != "" && p.AssignedSellerID != q.SellerID {
			continue
		}
		if len(q.Locations) > 0 && !lo.Contains(q.Locations, p.Location) {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r fakePrescriptionRepo) Update(_ context.Context, id string, fn repository.PrescriptionMutator) (*model.Prescription, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.prescriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	r.m.prescriptions[id] = p
	r.m.writes++
	return &p, nil
}

func (r fakePrescriptionRepo) Assign(_ context.Context, id, sellerID string, at time.Time, fn repository.AssignMutator) (*model.Prescription, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.prescriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s, ok := r.m.sellers[sellerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(&p, &s); err != nil {
		return nil, err
	}
	s.TotalOrders++
	s.UpdatedAt = at
	r.m.prescriptions[id] = p
	r.m.sellers[sellerID] = s
	r.m.writes += 2
	return &p, nil
}

func (r fakePrescriptionRepo) Complete(_ context.Context, id string, at time.Time, fn repository.PrescriptionMutator) (*model.Prescription, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.prescriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	r.m.prescriptions[id] = p
	r.m.writes++
	if s, ok := r.m.sellers[p.AssignedSellerID]; ok {
		s.CompletedOrders++
		s.UpdatedAt = at
		r.m.sellers[p.AssignedSellerID] = s
		r.m.writes++
	}
	return &p, nil
}

func (r fakePrescriptionRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.prescriptions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.prescriptions, id)
	r.m.writes++
	return nil
}

func (r fakePrescriptionRepo) Watch(repository.PrescriptionQuery) realtime.Opener[model.Prescription] {
	return nil
}

type fakeSellerRepo struct{ m *memStore }

func (r fakeSellerRepo) Create(_ context.Context, s *model.Seller) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s.ID = r.m.nextID("seller")
	r.m.sellers[s.ID] = *s
	r.m.writes++
	return nil
}

// put stores s under its own id without counting a write.
func (r fakeSellerRepo) put(s model.Seller) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.sellers[s.ID] = s
}

func (r fakeSellerRepo) FindByID(_ context.Context, id string) (*model.Seller, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sellers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r fakeSellerRepo) List(_ context.Context, q repository.SellerQuery) ([]model.Seller, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	list := make([]model.Seller, 0)
	for _, s := range r.m.sellers {
		if q.ActiveOnly && !s.Active {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r fakeSellerRepo) Update(_ context.Context, id string, fn func(*model.Seller) error) (*model.Seller, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sellers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(&s); err != nil {
		return nil, err
	}
	r.m.sellers[id] = s
	r.m.writes++
	return &s, nil
}

func (r fakeSellerRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sellers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.sellers, id)
	r.m.writes++
	return nil
}

func (r fakeSellerRepo) Watch(repository.SellerQuery) realtime.Opener[model.Seller] { return nil }

type fakeProductRepo struct{ m *memStore }

func (r fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = r.m.nextID("product")
	r.m.products[p.ID] = *p
	r.m.writes++
	return nil
}

func (r fakeProductRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r fakeProductRepo) List(_ context.Context, sellerID string) ([]model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	list := make([]model.Product, 0)
	for _, p := range r.m.products {
		if sellerID != "" && p.SellerID != sellerID {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r fakeProductRepo) Update(_ context.Context, id string, fn func(*model.Product) error) (*model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	r.m.products[id] = p
	r.m.writes++
	return &p, nil
}

func (r fakeProductRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.products, id)
	r.m.writes++
	return nil
}

type fakeAdminRepo struct {
	m         *memStore
	createErr error
}

func (r *fakeAdminRepo) Create(_ context.Context, a *model.Admin) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.admins[a.UID] = *a
	return nil
}

func (r *fakeAdminRepo) FindByUID(_ context.Context, uid string) (*model.Admin, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.admins[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAdminRepo) TouchLastLogin(_ context.Context, uid string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.admins[uid]
	if !ok {
		return repository.ErrNotFound
	}
	a.LastLogin = at
	r.m.admins[uid] = a
	return nil
}

func (r *fakeAdminRepo) UpdateLocation(_ context.Context, uid, location string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.admins[uid]
	if !ok {
		return repository.ErrNotFound
	}
	a.Location = location
	r.m.admins[uid] = a
	return nil
}

type fakeActivityRepo struct {
	mu   sync.Mutex
	list []model.Activity
	err  error
}

func (r *fakeActivityRepo) Create(_ context.Context, a *model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	a.ID = uint64(len(r.list) + 1)
	r.list = append(r.list, *a)
	return nil
}

func (r *fakeActivityRepo) ListRecent(_ context.Context, limit int) ([]model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.Activity, 0, limit)
	for i := len(r.list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.list[i])
	}
	return out, nil
}

func (r *fakeActivityRepo) ListByEntity(_ context.Context, entityType, entityID string) ([]model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Activity
	for _, a := range r.list {
		if a.EntityType == entityType && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) SetDB(*gorm.DB) {}

func (r *fakeActivityRepo) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.list))
	for _, a := range r.list {
		out = append(out, a.Kind)
	}
	return out
}

type fakeIdentity struct {
	users     map[string]fakeUser // by email
	tokens    map[string]string   // id token -> uid
	deleted   []string
	createErr error
	signInErr error
}

type fakeUser struct {
	uid, password, name string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: map[string]fakeUser{}, tokens: map[string]string{}}
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, password, displayName string) (*identity.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[email]; ok {
		return nil, identity.ErrEmailExists
	}
	uid := "uid-" + strconv.Itoa(len(f.users)+1)
	f.users[email] = fakeUser{uid: uid, password: password, name: displayName}
	return &identity.User{UID: uid, Email: email, DisplayName: displayName}, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	for email, u := range f.users {
		if u.uid == uid {
			delete(f.users, email)
		}
	}
	return nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return "", identity.ErrInvalidCredentials
	}
	tok := "idtoken-" + u.uid
	f.tokens[tok] = u.uid
	return tok, nil
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, idToken string) (*identity.User, error) {
	uid, ok := f.tokens[idToken]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return &identity.User{UID: uid}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
