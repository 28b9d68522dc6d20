package vendorstatus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/ordertx"
	testlog "service-dispatch/internal/testutil"
)

type fakeRepo struct {
	mu     sync.Mutex
	order  *domain.Order
	events []domain.OrderEvent
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&fakeTx{r: r})
}

type fakeTx struct{ r *fakeRepo }

func (t *fakeTx) GetOrderForUpdate(_ context.Context, orderID int64) (*domain.Order, error) {
	if t.r.order == nil || t.r.order.ID != orderID {
		return nil, nil
	}
	cp := *t.r.order
	return &cp, nil
}

func (t *fakeTx) UpdateAssignment(_ context.Context, _ int64, driverID *int64, assignedAt *time.Time) error {
	t.r.order.DriverID = driverID
	t.r.order.AssignedAt = assignedAt
	return nil
}

func (t *fakeTx) SetStatus(_ context.Context, _ int64, status domain.OrderStatus, at time.Time) error {
	t.r.order.Status = status
	t.r.order.UpdatedAt = at
	return nil
}

func (t *fakeTx) AppendEvent(_ context.Context, e *domain.OrderEvent) error {
	t.r.events = append(t.r.events, *e)
	return nil
}

func (t *fakeTx) EarningExists(context.Context, int64) (bool, error)        { return false, nil }
func (t *fakeTx) InsertEarning(context.Context, *domain.DriverEarning) error { return nil }

type notifierStub struct {
	statusChanged int
	dispatched    int
	cancelled     int
}

func (n *notifierStub) StatusChanged(context.Context, *domain.Order) error {
	n.statusChanged++
	return nil
}

func (n *notifierStub) Dispatched(context.Context, *domain.Order) error {
	n.dispatched++
	return nil
}

func (n *notifierStub) Cancelled(context.Context, *domain.Order) error {
	n.cancelled++
	return nil
}

func vendorOrder(status domain.OrderStatus) *domain.Order {
	return &domain.Order{ID: 10, VendorID: 2, Status: status}
}

func newTestService(repo *fakeRepo, n *notifierStub) *Service {
	s := NewService(repo, n, time.Second, testlog.New().Logger())
	s.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestChange_PaidToDispatched(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{order: vendorOrder(domain.StatusPaid)}
	n := &notifierStub{}
	svc := newTestService(repo, n)

	o, err := svc.Change(context.Background(), 2, 10, domain.StatusDispatched)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDispatched, o.Status)
	require.Equal(t, domain.StatusDispatched, repo.order.Status)
	require.Equal(t, 1, n.dispatched)
	require.Equal(t, 1, n.statusChanged)
	require.Zero(t, n.cancelled)
	require.Len(t, repo.events, 1)
	require.Equal(t, domain.ActorVendor, repo.events[0].ActorType)
}

func TestChange_PaidToCancelled(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{order: vendorOrder(domain.StatusPaid)}
	n := &notifierStub{}
	svc := newTestService(repo, n)

	o, err := svc.Change(context.Background(), 2, 10, domain.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, o.Status)
	require.Equal(t, 1, n.cancelled)
	require.Zero(t, n.dispatched)
}

func TestChange_MatrixViolations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		from   domain.OrderStatus
		target domain.OrderStatus
	}{
		{"frozen pending", domain.StatusPending, domain.StatusReadyForPickup},
		{"frozen processing", domain.StatusProcessing, domain.StatusCancelled},
		{"terminal cancelled", domain.StatusCancelled, domain.StatusPaid},
		{"terminal completed", domain.StatusCompleted, domain.StatusReadyForPickup},
		{"terminal dispatched", domain.StatusDispatched, domain.StatusCancelled},
		{"paid to arbitrary", domain.StatusPaid, domain.StatusReadyForPickup},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeRepo{order: vendorOrder(tc.from)}
			svc := newTestService(repo, &notifierStub{})
			_, err := svc.Change(context.Background(), 2, 10, tc.target)
			require.ErrorIs(t, err, apperr.ErrInvalidState)
			require.Equal(t, tc.from, repo.order.Status, "status must not change")
		})
	}
}

func TestChange_OwnershipAndExistence(t *testing.T) {
	t.Parallel()

	t.Run("foreign vendor sees not found", func(t *testing.T) {
		repo := &fakeRepo{order: vendorOrder(domain.StatusPaid)}
		svc := newTestService(repo, &notifierStub{})
		_, err := svc.Change(context.Background(), 99, 10, domain.StatusDispatched)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("missing order", func(t *testing.T) {
		svc := newTestService(&fakeRepo{}, &notifierStub{})
		_, err := svc.Change(context.Background(), 2, 10, domain.StatusDispatched)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("unknown target status", func(t *testing.T) {
		repo := &fakeRepo{order: vendorOrder(domain.StatusPaid)}
		svc := newTestService(repo, &notifierStub{})
		_, err := svc.Change(context.Background(), 2, 10, "SHIPPED")
		require.ErrorIs(t, err, apperr.ErrInvalid)
	})
}

func TestUpdateOrderStatus_BypassesMatrix(t *testing.T) {
	t.Parallel()

	// PENDING is frozen for vendors, but the payment pathway may leave it.
	repo := &fakeRepo{order: vendorOrder(domain.StatusPending)}
	svc := newTestService(repo, &notifierStub{})

	err := svc.UpdateOrderStatus(context.Background(), 10, domain.StatusPaid)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, repo.order.Status)
	require.Len(t, repo.events, 1)
	require.Equal(t, domain.ActorSystem, repo.events[0].ActorType)
	require.Nil(t, repo.events[0].ActorID)
}

func TestUpdateOrderStatus_NoOpOnSameStatus(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{order: vendorOrder(domain.StatusPaid)}
	svc := newTestService(repo, &notifierStub{})

	require.NoError(t, svc.UpdateOrderStatus(context.Background(), 10, domain.StatusPaid))
	require.Empty(t, repo.events)
}

func TestUpdateOrderStatus_Errors(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeRepo{}, &notifierStub{})

	require.ErrorIs(t, svc.UpdateOrderStatus(context.Background(), 10, "SHIPPED"), apperr.ErrInvalid)
	require.ErrorIs(t, svc.UpdateOrderStatus(context.Background(), 10, domain.StatusPaid), apperr.ErrNotFound)
	require.ErrorIs(t, svc.UpdateOrderStatus(context.Background(), 0, domain.StatusPaid), apperr.ErrInvalid)
}
