package domain

import "time"

// Role separates the three account kinds the platform serves.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleStore  Role = "store"
	RoleDoctor Role = "doctor"
)

// User is a platform account. StoreName is set only for store accounts.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Role      Role      `json:"role" db:"role"`
	Name      string    `json:"name" db:"name"`
	Contact   string    `json:"contact" db:"contact"`
	Location  string    `json:"location" db:"location"`
	StoreName string    `json:"store_name,omitempty" db:"store_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MedicineStatus is derived from the on-hand quantity.
type MedicineStatus string

const (
	MedicineInStock    MedicineStatus = "In Stock"
	MedicineOutOfStock MedicineStatus = "Out of Stock"
)

// Medicine is a catalog entry owned by a single store. Community entries are
// donated stock with a per-farmer distribution limit instead of a price.
type Medicine struct {
	ID                int64          `json:"id" db:"id"`
	StoreID           int64          `json:"store_id" db:"store_id"`
	Name              string         `json:"name" db:"name"`
	Category          string         `json:"category" db:"category"`
	Quantity          int64          `json:"quantity" db:"quantity"`
	UnitPrice         float64        `json:"unit_price" db:"unit_price"`
	Status            MedicineStatus `json:"status" db:"status"`
	IsCommunity       bool           `json:"is_community" db:"is_community"`
	DistributionLimit int64          `json:"distribution_limit,omitempty" db:"distribution_limit"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// OrderKind distinguishes priced orders from community (donated) ones.
type OrderKind string

const (
	OrderRegular   OrderKind = "regular"
	OrderCommunity OrderKind = "community"
)

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusApproved    OrderStatus = "approved"
	OrderStatusRejected    OrderStatus = "rejected"
	OrderStatusCompleted   OrderStatus = "completed"
	OrderStatusCancelled   OrderStatus = "cancelled"
	OrderStatusTransferred OrderStatus = "transferred"
)

// TransferInfo records a pending hand-off to another store. It is present only
// while an order is transferred (and cleared again if the target rejects).
type TransferInfo struct {
	StoreID        int64     `json:"store_id" db:"transfer_store_id"`
	StoreName      string    `json:"store_name" db:"transfer_store_name"`
	TransferDate   time.Time `json:"transfer_date" db:"transfer_date"`
	TransferReason string    `json:"transfer_reason" db:"transfer_reason"`
}

// Order is a farmer's request against a store's catalog entry. Farmer and
// medicine fields are snapshotted at creation time so the order stays
// self-describing even if the referenced records change later.
type Order struct {
	ID             int64         `json:"id" db:"id"`
	Kind           OrderKind     `json:"kind" db:"kind"`
	MedicineID     int64         `json:"medicine_id" db:"medicine_id"`
	StoreID        int64         `json:"store_id" db:"store_id"`
	FarmerID       int64         `json:"farmer_id" db:"farmer_id"`
	FarmerName     string        `json:"farmer_name" db:"farmer_name"`
	FarmerContact  string        `json:"farmer_contact" db:"farmer_contact"`
	FarmerLocation string        `json:"farmer_location" db:"farmer_location"`
	MedicineName   string        `json:"medicine_name" db:"medicine_name"`
	Quantity       int64         `json:"quantity" db:"quantity"`
	UnitPrice      float64       `json:"unit_price" db:"unit_price"`
	TotalPrice     float64       `json:"total_price" db:"total_price"`
	IsFree         bool          `json:"is_free" db:"is_free"`
	Status         OrderStatus   `json:"status" db:"status"`
	StoreNotes     string        `json:"store_notes,omitempty" db:"store_notes"`
	TransferredTo  *TransferInfo `json:"transferred_to,omitempty"`
	RequestDate    time.Time     `json:"request_date" db:"request_date"`
	ResponseDate   *time.Time    `json:"response_date,omitempty" db:"response_date"`
	CompletionDate *time.Time    `json:"completion_date,omitempty" db:"completion_date"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// NotificationType classifies in-app notifications for client filtering.
type NotificationType string

const (
	NotifyOrder    NotificationType = "order"
	NotifyTransfer NotificationType = "transfer"
	NotifyCampaign NotificationType = "campaign"
	NotifyChat     NotificationType = "chat"
	NotifySystem   NotificationType = "system"
)

// Notification is addressed to one or more users; ReadBy tracks which of them
// have seen it.
type Notification struct {
	ID         int64            `json:"id" db:"id"`
	Recipients []int64          `json:"recipients"`
	Title      string           `json:"title" db:"title"`
	Message    string           `json:"message" db:"message"`
	Type       NotificationType `json:"type" db:"type"`
	ReadBy     []int64          `json:"read_by"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// IsReadBy reports whether the given user has read the notification.
func (n *Notification) IsReadBy(userID int64) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// CampaignStatus tracks the lifecycle of a health campaign.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignExpired   CampaignStatus = "expired"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Campaign is a store-run health event with limited seats. Registered is the
// number of farmers signed up and never exceeds Capacity.
type Campaign struct {
	ID          int64          `json:"id" db:"id"`
	StoreID     int64          `json:"store_id" db:"store_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Location    string         `json:"location" db:"location"`
	Capacity    int64          `json:"capacity" db:"capacity"`
	Registered  int64          `json:"registered" db:"registered"`
	StartDate   time.Time      `json:"start_date" db:"start_date"`
	EndDate     time.Time      `json:"end_date" db:"end_date"`
	Status      CampaignStatus `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// ChatMessage is one persisted line of a two-party conversation. RoomID is the
// sorted pair of participant IDs, so either side derives the same room.
type ChatMessage struct {
	ID         string    `json:"id" db:"id"`
	RoomID     string    `json:"room_id" db:"room_id"`
	SenderID   int64     `json:"sender_id" db:"sender_id"`
	ReceiverID int64     `json:"receiver_id" db:"receiver_id"`
	Body       string    `json:"body" db:"body"`
	SentAt     time.Time `json:"sent_at" db:"sent_at"`
}
