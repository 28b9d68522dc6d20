//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/ports/ordertx"
	"service-dispatch/internal/repository"
)

func createVendor(t *testing.T, name string, lat, lon float64) int64 {
	t.Helper()
	var id int64
	err := tcPool.QueryRow(context.Background(),
		`INSERT INTO vendors(name, lat, lon) VALUES($1, $2, $3) RETURNING id`,
		name, lat, lon).Scan(&id)
	require.NoError(t, err)
	return id
}

func createUser(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := tcPool.QueryRow(context.Background(),
		`INSERT INTO users(name, phone) VALUES($1, '+2348000000000') RETURNING id`,
		name).Scan(&id)
	require.NoError(t, err)
	return id
}

func createOrder(t *testing.T, userID, vendorID int64, status domain.OrderStatus, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := tcPool.QueryRow(context.Background(), `
		INSERT INTO orders(user_id, vendor_id, status, delivery_fee_amount, otp_code, delivery_lat, delivery_lon, created_at, updated_at)
		VALUES($1, $2, $3, 500, '123456', 6.5270, 3.3850, $4, $4)
		RETURNING id
	`, userID, vendorID, string(status), createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestOrderRepo_WithTx_SingleAcceptWinner(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	vendorID := createVendor(t, "Mama Put", 6.5244, 3.3792)
	userID := createUser(t, "Ada")
	orderID := createOrder(t, userID, vendorID, domain.StatusReadyForPickup, time.Now())

	const drivers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []int64
	)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(driverID int64) {
			defer wg.Done()
			err := repo.WithTx(ctx, func(tx ordertx.Repository) error {
				o, err := tx.GetOrderForUpdate(ctx, orderID)
				if err != nil {
					return err
				}
				if o.DriverID != nil {
					return apperr.ErrConflict
				}
				now := time.Now()
				if err := tx.UpdateAssignment(ctx, orderID, &driverID, &now); err != nil {
					return err
				}
				mu.Lock()
				winners = append(winners, driverID)
				mu.Unlock()
				return nil
			})
			if err != nil {
				require.ErrorIs(t, err, apperr.ErrConflict)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	require.Len(t, winners, 1, "exactly one driver must win the row lock race")

	var got *int64
	require.NoError(t, tcPool.QueryRow(ctx, `SELECT driver_id FROM orders WHERE id = $1`, orderID).Scan(&got))
	require.NotNil(t, got)
	require.Equal(t, winners[0], *got)
}

func TestOrderRepo_WithTx_PanicRollsBackAndRepanics(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	vendorID := createVendor(t, "Mama Put", 6.5244, 3.3792)
	userID := createUser(t, "Ada")
	orderID := createOrder(t, userID, vendorID, domain.StatusReadyForPickup, time.Now())

	driverID := int64(7)
	require.PanicsWithValue(t, "boom", func() {
		_ = repo.WithTx(ctx, func(tx ordertx.Repository) error {
			now := time.Now()
			if err := tx.UpdateAssignment(ctx, orderID, &driverID, &now); err != nil {
				return err
			}
			panic("boom")
		})
	})

	var got *int64
	require.NoError(t, tcPool.QueryRow(ctx, `SELECT driver_id FROM orders WHERE id = $1`, orderID).Scan(&got))
	require.Nil(t, got, "assignment must be rolled back after a panic")
}

func TestTxRepo_GetOrderForUpdate_Missing(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	err := repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, 9999)
		require.NoError(t, err)
		require.Nil(t, o)
		return nil
	})
	require.NoError(t, err)
}

func TestTxRepo_SetStatus_StampsTimestampOnce(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	vendorID := createVendor(t, "Mama Put", 6.5244, 3.3792)
	userID := createUser(t, "Ada")
	orderID := createOrder(t, userID, vendorID, domain.StatusReadyForPickup, time.Now())

	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	err := repo.WithTx(ctx, func(tx ordertx.Repository) error {
		if err := tx.SetStatus(ctx, orderID, domain.StatusPickedUp, first); err != nil {
			return err
		}
		return tx.SetStatus(ctx, orderID, domain.StatusPickedUp, second)
	})
	require.NoError(t, err)

	var pickedUpAt time.Time
	require.NoError(t, tcPool.QueryRow(ctx,
		`SELECT picked_up_at FROM orders WHERE id = $1`, orderID).Scan(&pickedUpAt))
	require.True(t, pickedUpAt.Equal(first), "picked_up_at must keep the first stamp")
}

func TestTxRepo_InsertEarning_DuplicateOrder(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	vendorID := createVendor(t, "Mama Put", 6.5244, 3.3792)
	userID := createUser(t, "Ada")
	orderID := createOrder(t, userID, vendorID, domain.StatusDelivered, time.Now())

	earning := func() *domain.DriverEarning {
		return &domain.DriverEarning{
			DriverID:   7,
			OrderID:    orderID,
			Gross:      500,
			Commission: 50,
			Net:        450,
			Currency:   "NGN",
			Status:     domain.EarningPending,
			CreatedAt:  time.Now(),
		}
	}

	err := repo.WithTx(ctx, func(tx ordertx.Repository) error {
		exists, err := tx.EarningExists(ctx, orderID)
		require.NoError(t, err)
		require.False(t, exists)
		return tx.InsertEarning(ctx, earning())
	})
	require.NoError(t, err)

	err = repo.WithTx(ctx, func(tx ordertx.Repository) error {
		exists, err := tx.EarningExists(ctx, orderID)
		require.NoError(t, err)
		require.True(t, exists)
		return tx.InsertEarning(ctx, earning())
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	var count int
	require.NoError(t, tcPool.QueryRow(ctx,
		`SELECT COUNT(*) FROM driver_earnings WHERE order_id = $1`, orderID).Scan(&count))
	require.Equal(t, 1, count)
}

func TestOrderRepo_ListAvailable_Pagination(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	vendorID := createVendor(t, "Mama Put", 6.5244, 3.3792)
	userID := createUser(t, "Ada")
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	first := createOrder(t, userID, vendorID, domain.StatusReadyForPickup, base)
	second := createOrder(t, userID, vendorID, domain.StatusReadyForPickup, base.Add(time.Minute))
	third := createOrder(t, userID, vendorID, domain.StatusReadyForPickup, base.Add(2*time.Minute))

	// Assigned and non-ready orders never show up in the feed.
	assigned := createOrder(t, userID, vendorID, domain.StatusReadyForPickup, base.Add(3*time.Minute))
	_, err := tcPool.Exec(ctx, `UPDATE orders SET driver_id = 42 WHERE id = $1`, assigned)
	require.NoError(t, err)
	createOrder(t, userID, vendorID, domain.StatusPending, base.Add(4*time.Minute))

	page1, cursor, err := repo.ListAvailable(ctx, repository.AvailableOrdersQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, cursor)
	require.Equal(t, third, page1[0].ID)
	require.Equal(t, second, page1[1].ID)
	require.NotNil(t, page1[0].Vendor)
	require.Equal(t, "Mama Put", page1[0].Vendor.Name)
	require.NotNil(t, page1[0].PickupPoint)

	page2, cursor2, err := repo.ListAvailable(ctx, repository.AvailableOrdersQuery{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.Empty(t, cursor2)
	require.Equal(t, first, page2[0].ID)
}

func TestOrderRepo_ListAvailable_BoxFilter(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	nearVendor := createVendor(t, "Near", 6.5244, 3.3792)
	farVendor := createVendor(t, "Far", 9.0765, 7.3986)
	userID := createUser(t, "Ada")
	nearOrder := createOrder(t, userID, nearVendor, domain.StatusReadyForPickup, time.Now())
	createOrder(t, userID, farVendor, domain.StatusReadyForPickup, time.Now())

	box := geo.BoundingBox(domain.Point{Lat: 6.5244, Lon: 3.3792}, 10)
	orders, _, err := repo.ListAvailable(ctx, repository.AvailableOrdersQuery{Box: &box, Limit: 20})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, nearOrder, orders[0].ID)
}

func TestOrderRepo_ListAvailable_BadCursor(t *testing.T) {
	resetTables(t)
	repo := repository.NewOrderRepo(tcPool)

	_, _, err := repo.ListAvailable(context.Background(), repository.AvailableOrdersQuery{Limit: 20, Cursor: "nonsense"})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestOrderRepo_ActiveByDriver(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	vendorID := createVendor(t, "Mama Put", 6.5244, 3.3792)
	userID := createUser(t, "Ada")
	orderID := createOrder(t, userID, vendorID, domain.StatusPickedUp, time.Now())
	_, err := tcPool.Exec(ctx, `UPDATE orders SET driver_id = 7, assigned_at = now() WHERE id = $1`, orderID)
	require.NoError(t, err)

	// Delivered orders are not active.
	done := createOrder(t, userID, vendorID, domain.StatusDelivered, time.Now())
	_, err = tcPool.Exec(ctx, `UPDATE orders SET driver_id = 7 WHERE id = $1`, done)
	require.NoError(t, err)

	active, err := repo.ActiveByDriver(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, orderID, active.ID)
	require.NotNil(t, active.Customer)
	require.Equal(t, "Ada", active.Customer.Name)

	none, err := repo.ActiveByDriver(ctx, 99)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestOrderRepo_HistoryByDriver(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	vendorID := createVendor(t, "Mama Put", 6.5244, 3.3792)
	userID := createUser(t, "Ada")
	base := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		id := createOrder(t, userID, vendorID, domain.StatusDelivered, base.Add(time.Duration(i)*time.Hour))
		_, err := tcPool.Exec(ctx, `UPDATE orders SET driver_id = 7 WHERE id = $1`, id)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	page1, cursor, err := repo.HistoryByDriver(ctx, 7, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, ids[2], page1[0].ID)
	require.Equal(t, ids[1], page1[1].ID)
	require.NotEmpty(t, cursor)

	page2, cursor2, err := repo.HistoryByDriver(ctx, 7, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.Equal(t, ids[0], page2[0].ID)
	require.Empty(t, cursor2)
}
