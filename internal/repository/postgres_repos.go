package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ProjectSGH/pashumitra/internal/domain"
)

// PGUsers репозиторий пользователей поверх Postgres
type PGUsers struct{ db *DB }

func NewPGUsers(db *DB) *PGUsers { return &PGUsers{db: db} }

var _ UserRepository = (*PGUsers)(nil)

var createUserQuery = `
	INSERT INTO users (role, name, contact, location, store_name)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at`

func (r *PGUsers) Create(ctx context.Context, u *domain.User) error {
	return r.db.ext(ctx).QueryRowxContext(ctx, createUserQuery,
		u.Role, u.Name, u.Contact, u.Location, u.StoreName).
		Scan(&u.ID, &u.CreatedAt)
}

var getUserQuery = `SELECT id, role, name, contact, location, store_name, created_at FROM users WHERE id = $1`

func (r *PGUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &u, getUserQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PGMedicines репозиторий каталога поверх Postgres
type PGMedicines struct{ db *DB }

func NewPGMedicines(db *DB) *PGMedicines { return &PGMedicines{db: db} }

var _ MedicineRepository = (*PGMedicines)(nil)

const medicineColumns = `id, store_id, name, category, quantity, unit_price, status, is_community, distribution_limit, created_at, updated_at`

var createMedicineQuery = `
	INSERT INTO medicines (store_id, name, category, quantity, unit_price, status, is_community, distribution_limit)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at, updated_at`

func (r *PGMedicines) Create(ctx context.Context, m *domain.Medicine) error {
	m.Status = stockStatus(m.Quantity)
	return r.db.ext(ctx).QueryRowxContext(ctx, createMedicineQuery,
		m.StoreID, m.Name, m.Category, m.Quantity, m.UnitPrice, m.Status, m.IsCommunity, m.DistributionLimit).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *PGMedicines) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	var m domain.Medicine
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &m,
		`SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

var updateMedicineQuery = `
	UPDATE medicines
	SET name = $2, category = $3, quantity = $4, unit_price = $5, status = $6,
	    is_community = $7, distribution_limit = $8, updated_at = now()
	WHERE id = $1`

func (r *PGMedicines) Update(ctx context.Context, m *domain.Medicine) error {
	m.Status = stockStatus(m.Quantity)
	res, err := r.db.ext(ctx).ExecContext(ctx, updateMedicineQuery,
		m.ID, m.Name, m.Category, m.Quantity, m.UnitPrice, m.Status, m.IsCommunity, m.DistributionLimit)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *PGMedicines) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ext(ctx).ExecContext(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *PGMedicines) List(ctx context.Context, f MedicineFilter) ([]domain.Medicine, error) {
	q := `SELECT ` + medicineColumns + ` FROM medicines WHERE 1=1`
	args := []interface{}{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		q += clause + argn(len(args))
	}
	if f.NameSubstring != "" {
		add(` AND name ILIKE '%' || `, f.NameSubstring)
		q += ` || '%'`
	}
	if f.Category != "" {
		add(` AND category ILIKE '%' || `, f.Category)
		q += ` || '%'`
	}
	if f.StoreID != nil {
		add(` AND store_id = `, *f.StoreID)
	}
	if f.Community != nil {
		add(` AND is_community = `, *f.Community)
	}
	if f.MinPrice != nil {
		add(` AND unit_price >= `, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(` AND unit_price <= `, *f.MaxPrice)
	}
	q += ` ORDER BY id`
	out := make([]domain.Medicine, 0)
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// DecrementStock is a compare-and-swap on the quantity column: the row is only
// touched when enough stock is on hand.
var decrementStockQuery = `
	UPDATE medicines
	SET quantity = quantity - $2,
	    status = CASE WHEN quantity - $2 <= 0 THEN 'Out of Stock' ELSE 'In Stock' END,
	    updated_at = now()
	WHERE id = $1 AND quantity >= $2`

func (r *PGMedicines) DecrementStock(ctx context.Context, id, qty int64) (bool, error) {
	res, err := r.db.ext(ctx).ExecContext(ctx, decrementStockQuery, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	var exists bool
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists,
		`SELECT EXISTS (SELECT 1 FROM medicines WHERE id = $1)`, id); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

// PGOrders репозиторий заказов поверх Postgres
type PGOrders struct{ db *DB }

func NewPGOrders(db *DB) *PGOrders { return &PGOrders{db: db} }

var _ OrderRepository = (*PGOrders)(nil)

const orderColumns = `id, kind, medicine_id, store_id, farmer_id, farmer_name, farmer_contact,
	farmer_location, medicine_name, quantity, unit_price, total_price, is_free, status,
	store_notes, transfer_store_id, transfer_store_name, transfer_date, transfer_reason,
	request_date, response_date, completion_date, created_at, updated_at`

type orderRow struct {
	domain.Order
	TransferStoreID   sql.NullInt64  `db:"transfer_store_id"`
	TransferStoreName sql.NullString `db:"transfer_store_name"`
	TransferDate      sql.NullTime   `db:"transfer_date"`
	TransferReason    sql.NullString `db:"transfer_reason"`
}

func (row orderRow) toOrder() domain.Order {
	o := row.Order
	if row.TransferStoreID.Valid {
		o.TransferredTo = &domain.TransferInfo{
			StoreID:        row.TransferStoreID.Int64,
			StoreName:      row.TransferStoreName.String,
			TransferDate:   row.TransferDate.Time,
			TransferReason: row.TransferReason.String,
		}
	}
	return o
}

func transferArgs(o *domain.Order) (storeID sql.NullInt64, storeName, reason sql.NullString, date sql.NullTime) {
	if o.TransferredTo == nil {
		return
	}
	storeID = sql.NullInt64{Int64: o.TransferredTo.StoreID, Valid: true}
	storeName = sql.NullString{String: o.TransferredTo.StoreName, Valid: true}
	reason = sql.NullString{String: o.TransferredTo.TransferReason, Valid: true}
	date = sql.NullTime{Time: o.TransferredTo.TransferDate, Valid: true}
	return
}

var createOrderQuery = `
	INSERT INTO orders (kind, medicine_id, store_id, farmer_id, farmer_name, farmer_contact,
		farmer_location, medicine_name, quantity, unit_price, total_price, is_free, status, request_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id, created_at, updated_at`

func (r *PGOrders) Create(ctx context.Context, o *domain.Order) error {
	return r.db.ext(ctx).QueryRowxContext(ctx, createOrderQuery,
		o.Kind, o.MedicineID, o.StoreID, o.FarmerID, o.FarmerName, o.FarmerContact,
		o.FarmerLocation, o.MedicineName, o.Quantity, o.UnitPrice, o.TotalPrice,
		o.IsFree, o.Status, o.RequestDate).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *PGOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var row orderRow
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &row,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o := row.toOrder()
	return &o, nil
}

var updateOrderQuery = `
	UPDATE orders
	SET status = $2, store_notes = $3, transfer_store_id = $4, transfer_store_name = $5,
	    transfer_date = $6, transfer_reason = $7, response_date = $8, completion_date = $9,
	    updated_at = now()
	WHERE id = $1`

func (r *PGOrders) Update(ctx context.Context, o *domain.Order) error {
	tsID, tsName, tsReason, tsDate := transferArgs(o)
	res, err := r.db.ext(ctx).ExecContext(ctx, updateOrderQuery,
		o.ID, o.Status, o.StoreNotes, tsID, tsName, tsDate, tsReason,
		o.ResponseDate, o.CompletionDate)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *PGOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		q += clause + argn(len(args))
	}
	if f.FarmerID != nil {
		add(` AND farmer_id = `, *f.FarmerID)
	}
	if f.StoreID != nil {
		add(` AND store_id = `, *f.StoreID)
	}
	if f.Status != nil {
		add(` AND status = `, *f.Status)
	}
	if f.Kind != nil {
		add(` AND kind = `, *f.Kind)
	}
	if f.TransferredToStoreID != nil {
		add(` AND transfer_store_id = `, *f.TransferredToStoreID)
	}
	q += ` ORDER BY request_date DESC`
	var rows []orderRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toOrder())
	}
	return out, nil
}

var hasPendingQuery = `
	SELECT EXISTS (
		SELECT 1 FROM orders
		WHERE farmer_id = $1 AND medicine_id = $2 AND status = 'pending'
	)`

func (r *PGOrders) HasPending(ctx context.Context, farmerID, medicineID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists, hasPendingQuery, farmerID, medicineID)
	return exists, err
}

// PGNotifications репозиторий уведомлений поверх Postgres
type PGNotifications struct{ db *DB }

func NewPGNotifications(db *DB) *PGNotifications { return &PGNotifications{db: db} }

var _ NotificationRepository = (*PGNotifications)(nil)

type notificationRow struct {
	ID         int64                   `db:"id"`
	Recipients pq.Int64Array           `db:"recipients"`
	Title      string                  `db:"title"`
	Message    string                  `db:"message"`
	Type       domain.NotificationType `db:"type"`
	ReadBy     pq.Int64Array           `db:"read_by"`
	CreatedAt  time.Time               `db:"created_at"`
}

func (row notificationRow) toNotification() domain.Notification {
	return domain.Notification{
		ID:         row.ID,
		Recipients: []int64(row.Recipients),
		Title:      row.Title,
		Message:    row.Message,
		Type:       row.Type,
		ReadBy:     []int64(row.ReadBy),
		CreatedAt:  row.CreatedAt,
	}
}

var createNotificationQuery = `
	INSERT INTO notifications (recipients, title, message, type, read_by)
	VALUES ($1, $2, $3, $4, '{}')
	RETURNING id, created_at`

func (r *PGNotifications) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.ext(ctx).QueryRowxContext(ctx, createNotificationQuery,
		pq.Int64Array(n.Recipients), n.Title, n.Message, n.Type).
		Scan(&n.ID, &n.CreatedAt)
}

const notificationColumns = `id, recipients, title, message, type, read_by, created_at`

func (r *PGNotifications) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var row notificationRow
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &row,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	n := row.toNotification()
	return &n, nil
}

func (r *PGNotifications) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE $1 = ANY(recipients)`
	if unreadOnly {
		q += ` AND NOT ($1 = ANY(read_by))`
	}
	q += ` ORDER BY created_at DESC`
	var rows []notificationRow
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &rows, q, userID); err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toNotification())
	}
	return out, nil
}

var markReadQuery = `
	UPDATE notifications SET read_by = array_append(read_by, $2)
	WHERE id = $1 AND $2 = ANY(recipients) AND NOT ($2 = ANY(read_by))`

func (r *PGNotifications) MarkRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ext(ctx).ExecContext(ctx, markReadQuery, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// already read, or not addressed to this user at all
	var exists bool
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND $2 = ANY(recipients))`,
		id, userID); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

var markAllReadQuery = `
	UPDATE notifications SET read_by = array_append(read_by, $1)
	WHERE $1 = ANY(recipients) AND NOT ($1 = ANY(read_by))`

func (r *PGNotifications) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ext(ctx).ExecContext(ctx, markAllReadQuery, userID)
	return err
}

func (r *PGNotifications) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ext(ctx).ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// PGCampaigns репозиторий кампаний поверх Postgres
type PGCampaigns struct{ db *DB }

func NewPGCampaigns(db *DB) *PGCampaigns { return &PGCampaigns{db: db} }

var _ CampaignRepository = (*PGCampaigns)(nil)

const campaignColumns = `id, store_id, title, description, location, capacity, registered,
	start_date, end_date, status, created_at, updated_at`

var createCampaignQuery = `
	INSERT INTO campaigns (store_id, title, description, location, capacity, registered, start_date, end_date, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at, updated_at`

func (r *PGCampaigns) Create(ctx context.Context, c *domain.Campaign) error {
	return r.db.ext(ctx).QueryRowxContext(ctx, createCampaignQuery,
		c.StoreID, c.Title, c.Description, c.Location, c.Capacity, c.Registered,
		c.StartDate, c.EndDate, c.Status).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PGCampaigns) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	var c domain.Campaign
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &c,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var updateCampaignQuery = `
	UPDATE campaigns
	SET title = $2, description = $3, location = $4, capacity = $5, registered = $6,
	    start_date = $7, end_date = $8, status = $9, updated_at = now()
	WHERE id = $1`

func (r *PGCampaigns) Update(ctx context.Context, c *domain.Campaign) error {
	res, err := r.db.ext(ctx).ExecContext(ctx, updateCampaignQuery,
		c.ID, c.Title, c.Description, c.Location, c.Capacity, c.Registered,
		c.StartDate, c.EndDate, c.Status)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *PGCampaigns) List(ctx context.Context, status *domain.CampaignStatus) ([]domain.Campaign, error) {
	q := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []interface{}{}
	if status != nil {
		q += ` WHERE status = $1`
		args = append(args, *status)
	}
	q += ` ORDER BY start_date`
	out := make([]domain.Campaign, 0)
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGCampaigns) AddRegistration(ctx context.Context, campaignID, farmerID int64) error {
	_, err := r.db.ext(ctx).ExecContext(ctx,
		`INSERT INTO campaign_registrations (campaign_id, farmer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		campaignID, farmerID)
	return err
}

func (r *PGCampaigns) HasRegistration(ctx context.Context, campaignID, farmerID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db.ext(ctx), &exists,
		`SELECT EXISTS (SELECT 1 FROM campaign_registrations WHERE campaign_id = $1 AND farmer_id = $2)`,
		campaignID, farmerID)
	return exists, err
}

var expireEndedQuery = `
	UPDATE campaigns SET status = 'expired', updated_at = now()
	WHERE status = 'active' AND end_date < $1`

func (r *PGCampaigns) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ext(ctx).ExecContext(ctx, expireEndedQuery, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PGMessages репозиторий сообщений чата поверх Postgres
type PGMessages struct{ db *DB }

func NewPGMessages(db *DB) *PGMessages { return &PGMessages{db: db} }

var _ MessageRepository = (*PGMessages)(nil)

var createMessageQuery = `
	INSERT INTO chat_messages (id, room_id, sender_id, receiver_id, body, sent_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

func (r *PGMessages) Create(ctx context.Context, m *domain.ChatMessage) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	_, err := r.db.ext(ctx).ExecContext(ctx, createMessageQuery,
		m.ID, m.RoomID, m.SenderID, m.ReceiverID, m.Body, m.SentAt)
	return err
}

var listRoomQuery = `
	SELECT id, room_id, sender_id, receiver_id, body, sent_at
	FROM (
		SELECT id, room_id, sender_id, receiver_id, body, sent_at
		FROM chat_messages WHERE room_id = $1
		ORDER BY sent_at DESC LIMIT $2
	) last ORDER BY sent_at ASC`

func (r *PGMessages) ListRoom(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	out := make([]domain.ChatMessage, 0)
	err := sqlx.SelectContext(ctx, r.db.ext(ctx), &out, listRoomQuery, roomID, limit)
	return out, err
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func argn(n int) string {
	return "$" + strconv.Itoa(n)
}
