package service

import (
	"context"
	"errors"
	"time"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

// OrderService реализует жизненный цикл заказа: создание, одобрение, отказ,
// завершение и передача другому магазину.
type OrderService struct {
	medicines     repository.MedicineRepository
	orders        repository.OrderRepository
	users         repository.UserRepository
	notifications *NotificationService
	tx            repository.TxManager
}

func NewOrderService(
	medicines repository.MedicineRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	notifications *NotificationService,
	tx repository.TxManager,
) *OrderService {
	return &OrderService{
		medicines:     medicines,
		orders:        orders,
		users:         users,
		notifications: notifications,
		tx:            tx,
	}
}

var (
	ErrOutOfStock         = errors.New("medicine is out of stock")
	ErrInsufficientStock  = errors.New("requested quantity exceeds available quantity")
	ErrDistributionLimit  = errors.New("requested quantity exceeds distribution limit")
	ErrDuplicatePending   = errors.New("a pending request for this medicine already exists")
	ErrInvalidState       = errors.New("invalid state")
	ErrKindMismatch       = errors.New("order kind does not match medicine")
	ErrTransferToSelf     = errors.New("cannot transfer an order to its own store")
	ErrNotTransferTarget  = errors.New("order is not transferred to this store")
)

// CreateOrderInput carries the farmer's request; everything else is snapshotted
// from the referenced records.
type CreateOrderInput struct {
	Kind       domain.OrderKind
	MedicineID int64
	FarmerID   int64
	Quantity   int64
}

// Create validates the request against catalog state and persists a pending
// order. The stock check here is advisory; the binding check happens again at
// approval time inside a transaction.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.MedicineID <= 0 || in.FarmerID <= 0 || in.Quantity <= 0 {
		return nil, ErrInvalidInput
	}
	if in.Kind != domain.OrderRegular && in.Kind != domain.OrderCommunity {
		return nil, ErrInvalidInput
	}

	farmer, err := s.users.GetByID(ctx, in.FarmerID)
	if err != nil {
		return nil, err
	}
	if farmer.Role != domain.RoleFarmer {
		return nil, ErrForbidden
	}

	med, err := s.medicines.GetByID(ctx, in.MedicineID)
	if err != nil {
		return nil, err
	}
	if med.IsCommunity != (in.Kind == domain.OrderCommunity) {
		return nil, ErrKindMismatch
	}
	if med.Status != domain.MedicineInStock {
		return nil, ErrOutOfStock
	}
	if in.Quantity > med.Quantity {
		return nil, ErrInsufficientStock
	}
	if in.Kind == domain.OrderCommunity && in.Quantity > med.DistributionLimit {
		return nil, ErrDistributionLimit
	}
	dup, err := s.orders.HasPending(ctx, in.FarmerID, in.MedicineID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicatePending
	}

	o := domain.Order{
		Kind:           in.Kind,
		MedicineID:     med.ID,
		StoreID:        med.StoreID,
		FarmerID:       farmer.ID,
		FarmerName:     farmer.Name,
		FarmerContact:  farmer.Contact,
		FarmerLocation: farmer.Location,
		MedicineName:   med.Name,
		Quantity:       in.Quantity,
		Status:         domain.OrderStatusPending,
		RequestDate:    time.Now().UTC(),
	}
	if in.Kind == domain.OrderCommunity {
		o.IsFree = true
	} else {
		o.UnitPrice = med.UnitPrice
		o.TotalPrice = med.UnitPrice * float64(in.Quantity)
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, err
	}

	s.notifications.Send(ctx, []int64{o.StoreID}, "New medicine request",
		farmer.Name+" requested "+med.Name, domain.NotifyOrder)
	return &o, nil
}

// Approve re-validates stock and decrements it atomically with the status
// change.
func (s *OrderService) Approve(ctx context.Context, orderID, storeID int64, notes string) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.StoreID != storeID {
			return ErrForbidden
		}
		if o.Status != domain.OrderStatusPending {
			return ErrInvalidState
		}
		ok, err := s.medicines.DecrementStock(ctx, o.MedicineID, o.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientStock
		}
		now := time.Now().UTC()
		o.Status = domain.OrderStatusApproved
		o.ResponseDate = &now
		o.StoreNotes = notes
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{updated.FarmerID}, "Request approved",
		"Your request for "+updated.MedicineName+" was approved", domain.NotifyOrder)
	return updated, nil
}

// Reject declines a pending order; the catalog is untouched.
func (s *OrderService) Reject(ctx context.Context, orderID, storeID int64, notes string) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.StoreID != storeID {
		return nil, ErrForbidden
	}
	if o.Status != domain.OrderStatusPending {
		return nil, ErrInvalidState
	}
	now := time.Now().UTC()
	o.Status = domain.OrderStatusRejected
	o.ResponseDate = &now
	o.StoreNotes = notes
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{o.FarmerID}, "Request rejected",
		"Your request for "+o.MedicineName+" was rejected", domain.NotifyOrder)
	return o, nil
}

// Complete marks an approved order as handed over. Completing an already
// completed order re-sets the same fields. After an accepted transfer the order
// is still owned by the origin store, so the accepting store is authorized too.
func (s *OrderService) Complete(ctx context.Context, orderID, storeID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.StoreID != storeID && (o.TransferredTo == nil || o.TransferredTo.StoreID != storeID) {
		return nil, ErrForbidden
	}
	if o.Status != domain.OrderStatusApproved && o.Status != domain.OrderStatusCompleted {
		return nil, ErrInvalidState
	}
	now := time.Now().UTC()
	o.Status = domain.OrderStatusCompleted
	o.CompletionDate = &now
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{o.FarmerID}, "Order completed",
		"Your order for "+o.MedicineName+" is completed", domain.NotifyOrder)
	return o, nil
}

// Cancel lets the requesting farmer withdraw a pending order. Cancellation is
// a status, not a removal.
func (s *OrderService) Cancel(ctx context.Context, orderID, farmerID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.FarmerID != farmerID {
		return nil, ErrForbidden
	}
	if o.Status != domain.OrderStatusPending {
		return nil, ErrInvalidState
	}
	now := time.Now().UTC()
	o.Status = domain.OrderStatusCancelled
	o.ResponseDate = &now
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{o.StoreID}, "Request cancelled",
		o.FarmerName+" cancelled the request for "+o.MedicineName, domain.NotifyOrder)
	return o, nil
}

// Transfer hands a pending order off to another store, pending its acceptance.
func (s *OrderService) Transfer(ctx context.Context, orderID, storeID, targetStoreID int64, reason string) (*domain.Order, error) {
	if orderID <= 0 || targetStoreID <= 0 {
		return nil, ErrInvalidInput
	}
	if targetStoreID == storeID {
		return nil, ErrTransferToSelf
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.StoreID != storeID {
			return ErrForbidden
		}
		if o.Status != domain.OrderStatusPending {
			return ErrInvalidState
		}
		target, err := s.users.GetByID(ctx, targetStoreID)
		if err != nil {
			return err
		}
		if target.Role != domain.RoleStore {
			return ErrInvalidInput
		}
		o.Status = domain.OrderStatusTransferred
		o.TransferredTo = &domain.TransferInfo{
			StoreID:        target.ID,
			StoreName:      target.StoreName,
			TransferDate:   time.Now().UTC(),
			TransferReason: reason,
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{updated.FarmerID}, "Request transferred",
		"Your request for "+updated.MedicineName+" was passed to "+updated.TransferredTo.StoreName,
		domain.NotifyTransfer)
	s.notifications.Send(ctx, []int64{targetStoreID}, "Incoming transfer",
		"A request for "+updated.MedicineName+" was transferred to your store",
		domain.NotifyTransfer)
	return updated, nil
}

// AcceptTransfer is performed by the receiving store; the caller's identity
// comes from the verified session, never from request data.
func (s *OrderService) AcceptTransfer(ctx context.Context, orderID, callerStoreID int64, notes string) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusTransferred || o.TransferredTo == nil {
		return nil, ErrInvalidState
	}
	if o.TransferredTo.StoreID != callerStoreID {
		return nil, ErrNotTransferTarget
	}
	now := time.Now().UTC()
	o.Status = domain.OrderStatusApproved
	o.ResponseDate = &now
	o.StoreNotes = notes
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{o.FarmerID}, "Transfer accepted",
		o.TransferredTo.StoreName+" accepted your request for "+o.MedicineName,
		domain.NotifyTransfer)
	return o, nil
}

// RejectTransfer returns the order to the origin store's queue.
func (s *OrderService) RejectTransfer(ctx context.Context, orderID, callerStoreID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusTransferred || o.TransferredTo == nil {
		return nil, ErrInvalidState
	}
	if o.TransferredTo.StoreID != callerStoreID {
		return nil, ErrNotTransferTarget
	}
	o.Status = domain.OrderStatusPending
	o.TransferredTo = nil
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{o.StoreID}, "Transfer rejected",
		"The transfer of the request for "+o.MedicineName+" was rejected; it is back in your queue",
		domain.NotifyTransfer)
	return o, nil
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, f)
}
