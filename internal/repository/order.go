package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/ports/ordertx"
)

// AvailableOrdersQuery filters the pickup-ready orders feed.
type AvailableOrdersQuery struct {
	VendorID *int64
	Box      *geo.Box
	Cursor   string
	Limit    int
}

// activeStatuses are the in-flight statuses a driver holds at most one of.
var activeStatuses = []string{
	string(domain.StatusReadyForPickup),
	string(domain.StatusPickedUp),
	string(domain.StatusOutForDelivery),
}

const orderColumns = `o.id, o.user_id, o.vendor_id, o.driver_id, o.status,
       o.delivery_fee_amount, o.delivery_fee_currency, o.otp_code,
       o.delivery_lat, o.delivery_lon,
       o.assigned_at, o.picked_up_at, o.dispatched_at, o.delivered_at,
       o.created_at, o.updated_at`

// OrderRepo represents order repository.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			// The original panic value must survive; the rollback error
			// is secondary.
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

var _ ordertx.Repository = (*TxRepo)(nil)

// GetOrderForUpdate locks the order row and returns it with its vendor
// attached. The vendor row itself is not locked.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := r.tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, orderID)

	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d for update: %w", orderID, err)
	}

	var (
		v        domain.Vendor
		lat, lon *float64
	)
	err = r.tx.QueryRow(ctx,
		`SELECT id, name, lat, lon FROM vendors WHERE id = $1`, o.VendorID,
	).Scan(&v.ID, &v.Name, &lat, &lon)
	if err != nil {
		if !IsNotFound(err) {
			return nil, fmt.Errorf("get vendor %d: %w", o.VendorID, err)
		}
		return o, nil
	}
	if lat != nil && lon != nil {
		v.Location = &domain.Point{Lat: *lat, Lon: *lon}
	}
	o.Vendor = &v
	o.PickupPoint = v.Location
	return o, nil
}

// UpdateAssignment sets or clears the driver assignment.
func (r *TxRepo) UpdateAssignment(ctx context.Context, orderID int64, driverID *int64, assignedAt *time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET driver_id = $2, assigned_at = $3, updated_at = now()
        WHERE id = $1
    `, orderID, driverID, assignedAt)
	if err != nil {
		return fmt.Errorf("update assignment for order %d: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// SetStatus writes the new status and stamps the matching timestamp column.
// Each stamp is written at most once.
func (r *TxRepo) SetStatus(ctx context.Context, orderID int64, status domain.OrderStatus, at time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $2,
            picked_up_at  = CASE WHEN $2 = 'PICKED_UP' AND picked_up_at IS NULL THEN $3 ELSE picked_up_at END,
            dispatched_at = CASE WHEN $2 IN ('OUT_FOR_DELIVERY', 'DISPATCHED') AND dispatched_at IS NULL THEN $3 ELSE dispatched_at END,
            delivered_at  = CASE WHEN $2 = 'DELIVERED' AND delivered_at IS NULL THEN $3 ELSE delivered_at END,
            updated_at = $3
        WHERE id = $1
    `, orderID, string(status), at)
	if err != nil {
		return fmt.Errorf("set order %d status %s: %w", orderID, status, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// AppendEvent - append an audit record for a status change.
func (r *TxRepo) AppendEvent(ctx context.Context, e *domain.OrderEvent) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO order_events (order_id, from_status, to_status, actor_type, actor_id, note, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, e.OrderID, string(e.FromStatus), string(e.ToStatus), e.ActorType, e.ActorID, e.Note, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("append event for order %d: %w", e.OrderID, err)
	}
	return nil
}

// EarningExists reports whether an earning row exists for the order.
func (r *TxRepo) EarningExists(ctx context.Context, orderID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM driver_earnings WHERE order_id = $1)`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check earning for order %d: %w", orderID, err)
	}
	return exists, nil
}

// InsertEarning - insert a new earning row.
func (r *TxRepo) InsertEarning(ctx context.Context, e *domain.DriverEarning) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO driver_earnings (driver_id, order_id, gross_amount, commission_amount, net_amount, currency, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, e.DriverID, e.OrderID, e.Gross, e.Commission, e.Net, e.Currency, string(e.Status), e.CreatedAt).Scan(&e.ID)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert earning for order %d: %w", e.OrderID, err)
	}
	return nil
}

// Get - returns an order by its ID with vendor, customer and items attached.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if err := r.attach(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ActiveByDriver returns the driver's current in-flight order, or nil.
func (r *OrderRepo) ActiveByDriver(ctx context.Context, driverID int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+orderColumns+`
        FROM orders o
        WHERE o.driver_id = $1 AND o.status = ANY($2)
        ORDER BY o.assigned_at DESC NULLS LAST, o.id DESC
        LIMIT 1
    `, driverID, activeStatuses)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("active order for driver %d: %w", driverID, err)
	}
	if err := r.attach(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// HistoryByDriver returns a page of the driver's delivered orders, newest
// first, with an opaque cursor for the next page. An empty cursor means the
// last page was reached.
func (r *OrderRepo) HistoryByDriver(ctx context.Context, driverID int64, cursor string, limit int) ([]domain.Order, string, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.driver_id = $1 AND o.status = 'DELIVERED'`
	args := []any{driverID}

	if cursor != "" {
		ts, id, err := parseCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		q += fmt.Sprintf(` AND (o.created_at, o.id) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, ts, id)
	}
	q += fmt.Sprintf(` ORDER BY o.created_at DESC, o.id DESC LIMIT %d`, limit+1)

	orders, err := r.queryOrders(ctx, q, args...)
	if err != nil {
		return nil, "", fmt.Errorf("history for driver %d: %w", driverID, err)
	}
	return r.page(ctx, orders, limit)
}

// ListAvailable returns a page of unassigned pickup-ready orders. The box,
// when present, restricts results by vendor coordinates and is only a coarse
// pre-filter; callers do the exact distance check.
func (r *OrderRepo) ListAvailable(ctx context.Context, query AvailableOrdersQuery) ([]domain.Order, string, error) {
	q := `SELECT ` + orderColumns + `
        FROM orders o
        JOIN vendors v ON v.id = o.vendor_id
        WHERE o.driver_id IS NULL AND o.status = 'READY_FOR_PICKUP'`
	var args []any

	if query.VendorID != nil {
		q += fmt.Sprintf(` AND o.vendor_id = $%d`, len(args)+1)
		args = append(args, *query.VendorID)
	}
	if query.Box != nil {
		b := *query.Box
		q += fmt.Sprintf(` AND v.lat BETWEEN $%d AND $%d AND v.lon BETWEEN $%d AND $%d`,
			len(args)+1, len(args)+2, len(args)+3, len(args)+4)
		args = append(args, b.LatMin, b.LatMax, b.LonMin, b.LonMax)
	}
	if query.Cursor != "" {
		ts, id, err := parseCursor(query.Cursor)
		if err != nil {
			return nil, "", err
		}
		q += fmt.Sprintf(` AND (o.created_at, o.id) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, ts, id)
	}
	q += fmt.Sprintf(` ORDER BY o.created_at DESC, o.id DESC LIMIT %d`, query.Limit+1)

	orders, err := r.queryOrders(ctx, q, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list available orders: %w", err)
	}
	return r.page(ctx, orders, query.Limit)
}

// page trims the limit+1 overfetch, attaches relations and builds the next
// cursor from the last row of the page.
func (r *OrderRepo) page(ctx context.Context, orders []*domain.Order, limit int) ([]domain.Order, string, error) {
	next := ""
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next = encodeCursor(last.CreatedAt, last.ID)
	}
	if err := r.attach(ctx, orders); err != nil {
		return nil, "", err
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out, next, nil
}

func (r *OrderRepo) queryOrders(ctx context.Context, q string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// attach loads vendors, customers and line items for the given orders in
// three batched queries.
func (r *OrderRepo) attach(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	vendorIDs := make([]int64, 0, len(orders))
	userIDs := make([]int64, 0, len(orders))
	orderIDs := make([]int64, 0, len(orders))
	seenVendor := make(map[int64]bool, len(orders))
	seenUser := make(map[int64]bool, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		if !seenVendor[o.VendorID] {
			seenVendor[o.VendorID] = true
			vendorIDs = append(vendorIDs, o.VendorID)
		}
		if !seenUser[o.UserID] {
			seenUser[o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
	}

	vendors, err := r.vendorsByID(ctx, vendorIDs)
	if err != nil {
		return err
	}
	users, err := r.usersByID(ctx, userIDs)
	if err != nil {
		return err
	}
	items, err := r.itemsByOrder(ctx, orderIDs)
	if err != nil {
		return err
	}

	for _, o := range orders {
		if v, ok := vendors[o.VendorID]; ok {
			o.Vendor = v
			o.PickupPoint = v.Location
		}
		o.Customer = users[o.UserID]
		o.Items = items[o.ID]
	}
	return nil
}

func (r *OrderRepo) vendorsByID(ctx context.Context, ids []int64) (map[int64]*domain.Vendor, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, lat, lon FROM vendors WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.Vendor, len(ids))
	for rows.Next() {
		var (
			v        domain.Vendor
			lat, lon *float64
		)
		if err := rows.Scan(&v.ID, &v.Name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		if lat != nil && lon != nil {
			v.Location = &domain.Point{Lat: *lat, Lon: *lon}
		}
		out[v.ID] = &v
	}
	return out, rows.Err()
}

func (r *OrderRepo) usersByID(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, phone FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.User, len(ids))
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = &u
	}
	return out, rows.Err()
}

func (r *OrderRepo) itemsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, order_id, name, quantity, unit_price_amount, unit_price_currency
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY id
    `, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem)
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.Quantity,
			&it.UnitPrice.Amount, &it.UnitPrice.Currency); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		o        domain.Order
		status   string
		lat, lon *float64
	)
	err := row.Scan(&o.ID, &o.UserID, &o.VendorID, &o.DriverID, &status,
		&o.DeliveryFee.Amount, &o.DeliveryFee.Currency, &o.OTPCode,
		&lat, &lon,
		&o.AssignedAt, &o.PickedUpAt, &o.DispatchedAt, &o.DeliveredAt,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	if lat != nil && lon != nil {
		o.DeliveryPoint = &domain.Point{Lat: *lat, Lon: *lon}
	}
	return &o, nil
}

// encodeCursor renders a keyset cursor over (created_at, id).
func encodeCursor(t time.Time, id int64) string {
	return t.UTC().Format(time.RFC3339Nano) + "|" + strconv.FormatInt(id, 10)
}

// parseCursor parses a cursor produced by encodeCursor. Malformed input maps
// to apperr.ErrInvalid so handlers can answer 400 instead of 500.
func parseCursor(s string) (time.Time, int64, error) {
	ts, ids, ok := strings.Cut(s, "|")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("%w: malformed cursor", apperr.ErrInvalid)
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: malformed cursor timestamp", apperr.ErrInvalid)
	}
	id, err := strconv.ParseInt(ids, 10, 64)
	if err != nil || id <= 0 {
		return time.Time{}, 0, fmt.Errorf("%w: malformed cursor id", apperr.ErrInvalid)
	}
	return t, id, nil
}
