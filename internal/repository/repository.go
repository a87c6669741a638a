package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ProjectSGH/pashumitra/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// MedicineFilter параметры фильтрации каталога
type MedicineFilter struct {
	NameSubstring string
	Category      string
	StoreID       *int64
	Community     *bool
	MinPrice      *float64
	MaxPrice      *float64
}

// OrderFilter narrows order listings. TransferredToStoreID selects orders
// currently pending acceptance by that store.
type OrderFilter struct {
	FarmerID             *int64
	StoreID              *int64
	Status               *domain.OrderStatus
	Kind                 *domain.OrderKind
	TransferredToStoreID *int64
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// MedicineRepository интерфейс репозитория каталога
type MedicineRepository interface {
	Create(ctx context.Context, m *domain.Medicine) error
	GetByID(ctx context.Context, id int64) (*domain.Medicine, error)
	Update(ctx context.Context, m *domain.Medicine) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f MedicineFilter) ([]domain.Medicine, error)
	// DecrementStock atomically takes qty from the item if enough is on hand,
	// deriving the new status. Returns ErrNotFound for a missing item and
	// false when stock is insufficient (item untouched).
	DecrementStock(ctx context.Context, id, qty int64) (bool, error)
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	// HasPending reports whether the farmer already has a pending order for
	// the medicine.
	HasPending(ctx context.Context, farmerID, medicineID int64) (bool, error)
}

// NotificationRepository is the persistence side of the notification sink.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id int64) error
}

// CampaignRepository интерфейс репозитория кампаний
type CampaignRepository interface {
	Create(ctx context.Context, c *domain.Campaign) error
	GetByID(ctx context.Context, id int64) (*domain.Campaign, error)
	Update(ctx context.Context, c *domain.Campaign) error
	List(ctx context.Context, status *domain.CampaignStatus) ([]domain.Campaign, error)
	// AddRegistration is idempotent; duplicate detection is HasRegistration's
	// concern and belongs to the caller's transaction.
	AddRegistration(ctx context.Context, campaignID, farmerID int64) error
	HasRegistration(ctx context.Context, campaignID, farmerID int64) (bool, error)
	// ExpireEnded flips active campaigns whose EndDate is before now to
	// expired and returns how many were touched.
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
}

// MessageRepository stores chat history per room.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.ChatMessage) error
	ListRoom(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
