package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ProjectSGH/pashumitra/internal/domain"
)

func TestMemoryMedicines_DecrementStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m := domain.Medicine{StoreID: 1, Name: "A", Quantity: 5, UnitPrice: 10}
	if err := store.Create(ctx, &m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Status != domain.MedicineInStock {
		t.Fatalf("derived status: %s", m.Status)
	}

	ok, err := store.DecrementStock(ctx, m.ID, 3)
	if err != nil || !ok {
		t.Fatalf("decrement: %v %v", ok, err)
	}
	got, _ := store.GetByID(ctx, m.ID)
	if got.Quantity != 2 {
		t.Fatalf("quantity expected 2, got %d", got.Quantity)
	}

	// insufficient stock leaves the item untouched
	ok, err = store.DecrementStock(ctx, m.ID, 3)
	if err != nil || ok {
		t.Fatalf("expected refusal: %v %v", ok, err)
	}
	got, _ = store.GetByID(ctx, m.ID)
	if got.Quantity != 2 {
		t.Fatalf("quantity changed on refused decrement: %d", got.Quantity)
	}

	// down to zero flips the status
	ok, _ = store.DecrementStock(ctx, m.ID, 2)
	if !ok {
		t.Fatalf("decrement to zero refused")
	}
	got, _ = store.GetByID(ctx, m.ID)
	if got.Status != domain.MedicineOutOfStock {
		t.Fatalf("expected Out of Stock, got %s", got.Status)
	}

	if _, err := store.DecrementStock(ctx, 999, 1); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryOrders_CopySemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)

	o := domain.Order{
		Kind: domain.OrderRegular, MedicineID: 1, StoreID: 1, FarmerID: 2,
		Quantity: 1, Status: domain.OrderStatusTransferred,
		TransferredTo: &domain.TransferInfo{StoreID: 3, StoreName: "B", TransferDate: time.Now()},
	}
	if err := orders.Create(ctx, &o); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := orders.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// mutating the returned copy must not leak into the store
	got.TransferredTo.StoreID = 99
	again, _ := orders.GetByID(ctx, o.ID)
	if again.TransferredTo.StoreID != 3 {
		t.Fatalf("transfer descriptor aliased: %d", again.TransferredTo.StoreID)
	}
}

func TestMemoryOrders_HasPendingAndFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)

	mk := func(farmer, med int64, status domain.OrderStatus) {
		o := domain.Order{Kind: domain.OrderCommunity, MedicineID: med, StoreID: 1, FarmerID: farmer, Quantity: 1, Status: status}
		if err := orders.Create(ctx, &o); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	mk(1, 10, domain.OrderStatusPending)
	mk(1, 11, domain.OrderStatusRejected)
	mk(2, 10, domain.OrderStatusPending)

	has, _ := orders.HasPending(ctx, 1, 10)
	if !has {
		t.Fatalf("expected pending for (1,10)")
	}
	has, _ = orders.HasPending(ctx, 1, 11)
	if has {
		t.Fatalf("rejected order counted as pending")
	}

	farmer := int64(1)
	list, _ := orders.List(ctx, OrderFilter{FarmerID: &farmer})
	if len(list) != 2 {
		t.Fatalf("farmer filter expected 2, got %d", len(list))
	}
	pending := domain.OrderStatusPending
	list, _ = orders.List(ctx, OrderFilter{FarmerID: &farmer, Status: &pending})
	if len(list) != 1 {
		t.Fatalf("status filter expected 1, got %d", len(list))
	}
}

func TestMemoryNotifications_ReadTracking(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	notifs := NewMemoryNotifications(store)

	n := domain.Notification{Recipients: []int64{1, 2}, Title: "t", Type: domain.NotifySystem}
	if err := notifs.Create(ctx, &n); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := notifs.MarkRead(ctx, n.ID, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ := notifs.ListForUser(ctx, 1, true)
	if len(unread) != 0 {
		t.Fatalf("still unread for 1")
	}
	unread, _ = notifs.ListForUser(ctx, 2, true)
	if len(unread) != 1 {
		t.Fatalf("read state leaked to 2")
	}

	if err := notifs.MarkRead(ctx, n.ID, 7); err != ErrNotFound {
		t.Fatalf("non-recipient mark read: %v", err)
	}
}

func TestMemoryCampaigns_ExpireEnded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	campaigns := NewMemoryCampaigns(store)

	now := time.Now().UTC()
	old := domain.Campaign{StoreID: 1, Title: "past", Capacity: 5, StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour), Status: domain.CampaignActive}
	cur := domain.Campaign{StoreID: 1, Title: "current", Capacity: 5, StartDate: now, EndDate: now.Add(24 * time.Hour), Status: domain.CampaignActive}
	if err := campaigns.Create(ctx, &old); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := campaigns.Create(ctx, &cur); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := campaigns.ExpireEnded(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("expire: n=%d err=%v", n, err)
	}
	got, _ := campaigns.GetByID(ctx, old.ID)
	if got.Status != domain.CampaignExpired {
		t.Fatalf("old campaign not expired")
	}
}

func TestMemoryCampaigns_RegistrationIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	campaigns := NewMemoryCampaigns(store)

	now := time.Now().UTC()
	c := domain.Campaign{StoreID: 1, Title: "drive", Capacity: 5, StartDate: now, EndDate: now.Add(24 * time.Hour), Status: domain.CampaignActive}
	if err := campaigns.Create(ctx, &c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := campaigns.AddRegistration(ctx, c.ID, 7); err != nil {
		t.Fatalf("add registration: %v", err)
	}
	// a repeated add is a no-op, not an error
	if err := campaigns.AddRegistration(ctx, c.ID, 7); err != nil {
		t.Fatalf("repeated add registration: %v", err)
	}
	has, err := campaigns.HasRegistration(ctx, c.ID, 7)
	if err != nil || !has {
		t.Fatalf("registration lost: has=%v err=%v", has, err)
	}
}

func TestMemoryMessages_RoomHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	messages := NewMemoryMessages(store)

	for i := 0; i < 5; i++ {
		m := domain.ChatMessage{ID: string(rune('a' + i)), RoomID: "1:2", SenderID: 1, ReceiverID: 2, Body: "hi"}
		if err := messages.Create(ctx, &m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	all, _ := messages.ListRoom(ctx, "1:2", 0)
	if len(all) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(all))
	}
	last, _ := messages.ListRoom(ctx, "1:2", 2)
	if len(last) != 2 || last[1].ID != "e" {
		t.Fatalf("limit should keep latest messages: %+v", last)
	}
	none, _ := messages.ListRoom(ctx, "9:9", 0)
	if len(none) != 0 {
		t.Fatalf("unexpected messages in empty room")
	}
}
