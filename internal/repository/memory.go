package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ProjectSGH/pashumitra/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu                sync.RWMutex
	nextUserID        int64
	nextMedID         int64
	nextOrderID       int64
	nextNotifID       int64
	nextCampaignID    int64
	usersByID         map[int64]domain.User
	medicinesByID     map[int64]domain.Medicine
	ordersByID        map[int64]domain.Order
	notificationsByID map[int64]domain.Notification
	campaignsByID     map[int64]domain.Campaign
	registrations     map[int64]map[int64]bool // campaignID -> farmerID
	messagesByRoom    map[string][]domain.ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:        1,
		nextMedID:         1,
		nextOrderID:       1,
		nextNotifID:       1,
		nextCampaignID:    1,
		usersByID:         make(map[int64]domain.User),
		medicinesByID:     make(map[int64]domain.Medicine),
		ordersByID:        make(map[int64]domain.Order),
		notificationsByID: make(map[int64]domain.Notification),
		campaignsByID:     make(map[int64]domain.Campaign),
		registrations:     make(map[int64]map[int64]bool),
		messagesByRoom:    make(map[string][]domain.ChatMessage),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ MedicineRepository = (*MemoryStore)(nil)

// MedicineRepository implementation
func (m *MemoryStore) Create(ctx context.Context, med *domain.Medicine) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	med.ID = m.nextMedID
	m.nextMedID++
	med.Status = stockStatus(med.Quantity)
	med.CreatedAt = time.Now().UTC()
	med.UpdatedAt = med.CreatedAt
	m.medicinesByID[med.ID] = *med
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	med, ok := m.medicinesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := med
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, med *domain.Medicine) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.medicinesByID[med.ID]; !ok {
		return ErrNotFound
	}
	med.Status = stockStatus(med.Quantity)
	med.UpdatedAt = time.Now().UTC()
	m.medicinesByID[med.ID] = *med
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.medicinesByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.medicinesByID, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f MedicineFilter) ([]domain.Medicine, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Medicine, 0)
	for _, med := range m.medicinesByID {
		if !containsIgnoreCase(med.Name, f.NameSubstring) {
			continue
		}
		if f.Category != "" && !containsIgnoreCase(med.Category, f.Category) {
			continue
		}
		if f.StoreID != nil && med.StoreID != *f.StoreID {
			continue
		}
		if f.Community != nil && med.IsCommunity != *f.Community {
			continue
		}
		if f.MinPrice != nil && med.UnitPrice < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && med.UnitPrice > *f.MaxPrice {
			continue
		}
		out = append(out, med)
	}
	return out, nil
}

func (m *MemoryStore) DecrementStock(ctx context.Context, id, qty int64) (bool, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	med, ok := m.medicinesByID[id]
	if !ok {
		return false, ErrNotFound
	}
	if med.Quantity < qty {
		return false, nil
	}
	med.Quantity -= qty
	med.Status = stockStatus(med.Quantity)
	med.UpdatedAt = time.Now().UTC()
	m.medicinesByID[id] = med
	return true, nil
}

func stockStatus(qty int64) domain.MedicineStatus {
	if qty <= 0 {
		return domain.MedicineOutOfStock
	}
	return domain.MedicineInStock
}

// MemoryUsers wrapper type over the shared store
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	u.ID = mu.store.nextUserID
	mu.store.nextUserID++
	u.CreatedAt = time.Now().UTC()
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

// MemoryOrders wrapper type over the shared store
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func copyOrder(o domain.Order) domain.Order {
	if o.TransferredTo != nil {
		ti := *o.TransferredTo
		o.TransferredTo = &ti
	}
	return o
}

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.nextOrderID
	mo.store.nextOrderID++
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	mo.store.ordersByID[o.ID] = copyOrder(*o)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	mo.store.ordersByID[o.ID] = copyOrder(*o)
	return nil
}

func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByID {
		if f.FarmerID != nil && o.FarmerID != *f.FarmerID {
			continue
		}
		if f.StoreID != nil && o.StoreID != *f.StoreID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.Kind != nil && o.Kind != *f.Kind {
			continue
		}
		if f.TransferredToStoreID != nil {
			if o.TransferredTo == nil || o.TransferredTo.StoreID != *f.TransferredToStoreID {
				continue
			}
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (mo *MemoryOrders) HasPending(ctx context.Context, farmerID, medicineID int64) (bool, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	for _, o := range mo.store.ordersByID {
		if o.FarmerID == farmerID && o.MedicineID == medicineID && o.Status == domain.OrderStatusPending {
			return true, nil
		}
	}
	return false, nil
}

// MemoryNotifications wrapper type over the shared store
type MemoryNotifications struct{ store *MemoryStore }

func NewMemoryNotifications(store *MemoryStore) *MemoryNotifications {
	return &MemoryNotifications{store: store}
}

var _ NotificationRepository = (*MemoryNotifications)(nil)

func copyNotification(n domain.Notification) domain.Notification {
	n.Recipients = append([]int64(nil), n.Recipients...)
	n.ReadBy = append([]int64(nil), n.ReadBy...)
	return n
}

func (mn *MemoryNotifications) Create(ctx context.Context, n *domain.Notification) error {
	mn.store.wlock(ctx)
	defer mn.store.wunlock(ctx)
	n.ID = mn.store.nextNotifID
	mn.store.nextNotifID++
	n.CreatedAt = time.Now().UTC()
	mn.store.notificationsByID[n.ID] = copyNotification(*n)
	return nil
}

func (mn *MemoryNotifications) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	mn.store.rlock(ctx)
	defer mn.store.runlock(ctx)
	n, ok := mn.store.notificationsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyNotification(n)
	return &cp, nil
}

func (mn *MemoryNotifications) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error) {
	mn.store.rlock(ctx)
	defer mn.store.runlock(ctx)
	out := make([]domain.Notification, 0)
	for _, n := range mn.store.notificationsByID {
		if !containsID(n.Recipients, userID) {
			continue
		}
		if unreadOnly && containsID(n.ReadBy, userID) {
			continue
		}
		out = append(out, copyNotification(n))
	}
	return out, nil
}

func (mn *MemoryNotifications) MarkRead(ctx context.Context, id, userID int64) error {
	mn.store.wlock(ctx)
	defer mn.store.wunlock(ctx)
	n, ok := mn.store.notificationsByID[id]
	if !ok || !containsID(n.Recipients, userID) {
		return ErrNotFound
	}
	if !containsID(n.ReadBy, userID) {
		n = copyNotification(n)
		n.ReadBy = append(n.ReadBy, userID)
		mn.store.notificationsByID[id] = n
	}
	return nil
}

func (mn *MemoryNotifications) MarkAllRead(ctx context.Context, userID int64) error {
	mn.store.wlock(ctx)
	defer mn.store.wunlock(ctx)
	for id, n := range mn.store.notificationsByID {
		if containsID(n.Recipients, userID) && !containsID(n.ReadBy, userID) {
			n = copyNotification(n)
			n.ReadBy = append(n.ReadBy, userID)
			mn.store.notificationsByID[id] = n
		}
	}
	return nil
}

func (mn *MemoryNotifications) Delete(ctx context.Context, id int64) error {
	mn.store.wlock(ctx)
	defer mn.store.wunlock(ctx)
	if _, ok := mn.store.notificationsByID[id]; !ok {
		return ErrNotFound
	}
	delete(mn.store.notificationsByID, id)
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// MemoryCampaigns wrapper type over the shared store
type MemoryCampaigns struct{ store *MemoryStore }

func NewMemoryCampaigns(store *MemoryStore) *MemoryCampaigns {
	return &MemoryCampaigns{store: store}
}

var _ CampaignRepository = (*MemoryCampaigns)(nil)

func (mc *MemoryCampaigns) Create(ctx context.Context, c *domain.Campaign) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c.ID = mc.store.nextCampaignID
	mc.store.nextCampaignID++
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	mc.store.campaignsByID[c.ID] = *c
	return nil
}

func (mc *MemoryCampaigns) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.campaignsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (mc *MemoryCampaigns) Update(ctx context.Context, c *domain.Campaign) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.campaignsByID[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	mc.store.campaignsByID[c.ID] = *c
	return nil
}

func (mc *MemoryCampaigns) List(ctx context.Context, status *domain.CampaignStatus) ([]domain.Campaign, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.Campaign, 0)
	for _, c := range mc.store.campaignsByID {
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (mc *MemoryCampaigns) AddRegistration(ctx context.Context, campaignID, farmerID int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.campaignsByID[campaignID]; !ok {
		return ErrNotFound
	}
	regs := mc.store.registrations[campaignID]
	if regs == nil {
		regs = make(map[int64]bool)
		mc.store.registrations[campaignID] = regs
	}
	regs[farmerID] = true
	return nil
}

func (mc *MemoryCampaigns) HasRegistration(ctx context.Context, campaignID, farmerID int64) (bool, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	return mc.store.registrations[campaignID][farmerID], nil
}

func (mc *MemoryCampaigns) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	var n int64
	for id, c := range mc.store.campaignsByID {
		if c.Status == domain.CampaignActive && c.EndDate.Before(now) {
			c.Status = domain.CampaignExpired
			c.UpdatedAt = now
			mc.store.campaignsByID[id] = c
			n++
		}
	}
	return n, nil
}

// MemoryMessages wrapper type over the shared store
type MemoryMessages struct{ store *MemoryStore }

func NewMemoryMessages(store *MemoryStore) *MemoryMessages {
	return &MemoryMessages{store: store}
}

var _ MessageRepository = (*MemoryMessages)(nil)

func (mm *MemoryMessages) Create(ctx context.Context, msg *domain.ChatMessage) error {
	mm.store.wlock(ctx)
	defer mm.store.wunlock(ctx)
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	mm.store.messagesByRoom[msg.RoomID] = append(mm.store.messagesByRoom[msg.RoomID], *msg)
	return nil
}

func (mm *MemoryMessages) ListRoom(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	mm.store.rlock(ctx)
	defer mm.store.runlock(ctx)
	msgs := mm.store.messagesByRoom[roomID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
