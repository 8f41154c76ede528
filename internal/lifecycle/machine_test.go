package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunbird/internal/apperrors"
	"sunbird/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	bookings map[int64]*models.Booking
	conflict bool // force the conditional write to lose
}

func newMemStore(bookings ...*models.Booking) *memStore {
	s := &memStore{bookings: make(map[int64]*models.Booking)}
	for _, b := range bookings {
		copied := *b
		s.bookings[b.ID] = &copied
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (s *memStore) TransitionState(_ context.Context, booking *models.Booking, fromStatus, fromPayment string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict {
		return false, nil
	}
	current, ok := s.bookings[booking.ID]
	if !ok || current.Status != fromStatus || current.PaymentStatus != fromPayment {
		return false, nil
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	return true, nil
}

func (s *memStore) get(id int64) *models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

type memCapacity struct {
	mu       sync.Mutex
	released map[int64]int
}

func newMemCapacity() *memCapacity {
	return &memCapacity{released: make(map[int64]int)}
}

func (c *memCapacity) ReleaseSpots(_ context.Context, occurrenceID int64, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released[occurrenceID] += count
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	captures []string
	voids    []string
	refunds  []string
	fail     error
}

func (g *fakeGateway) Capture(_ context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.captures = append(g.captures, ref)
	return nil
}

func (g *fakeGateway) Void(_ context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.voids = append(g.voids, ref)
	return nil
}

func (g *fakeGateway) Refund(_ context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.refunds = append(g.refunds, ref)
	return nil
}

type fakeLocker struct {
	held bool
}

func (l *fakeLocker) Acquire(_ context.Context, _ int64) (func(), error) {
	if l.held {
		return nil, apperrors.ErrConcurrentAction
	}
	return func() {}, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *fakePublisher) Publish(subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func strptr(s string) *string { return &s }

func testBooking(status, paymentStatus string) *models.Booking {
	return &models.Booking{
		ID:             1,
		Reference:      "20260901120000-AB12CD",
		OccurrenceID:   10,
		OperatorID:     7,
		TouristID:      3,
		AdultCount:     2,
		ChildCount:     1,
		TotalAmount:    45000,
		CommissionBP:   1100,
		OperatorAmount: 40050,
		PlatformFee:    4950,
		PaymentRef:     strptr("pay_abc"),
		Status:         status,
		PaymentStatus:  paymentStatus,
	}
}

type fixture struct {
	machine  *Machine
	store    *memStore
	capacity *memCapacity
	gateway  *fakeGateway
	locker   *fakeLocker
	pub      *fakePublisher
}

func newFixture(b *models.Booking) *fixture {
	f := &fixture{
		store:    newMemStore(b),
		capacity: newMemCapacity(),
		gateway:  &fakeGateway{},
		locker:   &fakeLocker{},
		pub:      &fakePublisher{},
	}
	f.machine = NewMachine(f.store, f.capacity, f.gateway, f.locker, f.pub)
	return f
}

func TestConfirm(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))

	require.NoError(t, f.machine.Confirm(context.Background(), 1))

	got := f.store.get(1)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.Equal(t, models.PaymentAuthorized, got.PaymentStatus, "capture stays deferred")
	assert.NotNil(t, got.ConfirmedAt)
	assert.Empty(t, f.gateway.captures)
	assert.Contains(t, f.pub.subjects, models.EventBookingConfirmed)
}

func TestConfirmIdempotent(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))
	ctx := context.Background()

	require.NoError(t, f.machine.Confirm(ctx, 1))
	first := *f.store.get(1)

	require.NoError(t, f.machine.Confirm(ctx, 1))
	assert.Equal(t, first.Status, f.store.get(1).Status)
	assert.Equal(t, first.ConfirmedAt, f.store.get(1).ConfirmedAt)
}

func TestCapture(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentAuthorized))
	ctx := context.Background()

	require.NoError(t, f.machine.Capture(ctx, 1))

	got := f.store.get(1)
	assert.Equal(t, models.PaymentCaptured, got.PaymentStatus)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.NotNil(t, got.CapturedAt)
	assert.Equal(t, []string{"pay_abc"}, f.gateway.captures)
	assert.Contains(t, f.pub.subjects, models.EventPaymentCaptured)
}

func TestCaptureIdempotent(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentAuthorized))
	ctx := context.Background()

	require.NoError(t, f.machine.Capture(ctx, 1))
	require.NoError(t, f.machine.Capture(ctx, 1))

	assert.Len(t, f.gateway.captures, 1, "exactly one gateway capture")
}

func TestCapturePendingIsIllegal(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))

	err := f.machine.Capture(context.Background(), 1)
	assert.True(t, apperrors.IsIllegalTransition(err))
	assert.Empty(t, f.gateway.captures, "no gateway call on illegal transition")
}

func TestCaptureRefundedIsIllegal(t *testing.T) {
	f := newFixture(testBooking(models.BookingDeclined, models.PaymentRefunded))

	err := f.machine.Capture(context.Background(), 1)
	assert.True(t, apperrors.IsIllegalTransition(err))
	assert.Empty(t, f.gateway.captures)
}

func TestDeclineVoidsHold(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))

	require.NoError(t, f.machine.Decline(context.Background(), 1, "fully booked"))

	got := f.store.get(1)
	assert.Equal(t, models.BookingDeclined, got.Status)
	assert.Equal(t, models.PaymentRefunded, got.PaymentStatus)
	assert.NotNil(t, got.DeclinedAt)
	assert.Equal(t, []string{"pay_abc"}, f.gateway.voids)
	assert.Empty(t, f.gateway.refunds, "uncaptured hold is voided, not refunded")
	assert.Equal(t, 3, f.capacity.released[10])
	assert.Contains(t, f.pub.subjects, models.EventBookingDeclined)
	assert.Contains(t, f.pub.subjects, models.EventPaymentRefunded)
}

func TestDeclineIdempotent(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))
	ctx := context.Background()

	require.NoError(t, f.machine.Decline(ctx, 1, ""))
	require.NoError(t, f.machine.Decline(ctx, 1, ""))

	assert.Len(t, f.gateway.voids, 1, "no second refund call on duplicate decline")
	assert.Equal(t, 3, f.capacity.released[10], "spots released once")
}

func TestDeclineConfirmedIsIllegal(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentAuthorized))

	err := f.machine.Decline(context.Background(), 1, "")
	assert.True(t, apperrors.IsIllegalTransition(err))
	assert.Empty(t, f.gateway.voids)
}

func TestCancelVoidsUncapturedHold(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))

	require.NoError(t, f.machine.Cancel(context.Background(), 1, "changed plans"))

	got := f.store.get(1)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.Equal(t, models.PaymentRefunded, got.PaymentStatus)
	assert.Equal(t, []string{"pay_abc"}, f.gateway.voids)
	assert.Empty(t, f.gateway.refunds)
}

func TestCancelRefundsCapturedPayment(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentCaptured))

	require.NoError(t, f.machine.Cancel(context.Background(), 1, ""))

	got := f.store.get(1)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.Equal(t, models.PaymentRefunded, got.PaymentStatus)
	assert.Equal(t, []string{"pay_abc"}, f.gateway.refunds, "captured money must be refunded")
	assert.Empty(t, f.gateway.voids, "void only applies to uncaptured holds")
}

func TestCancelTerminalIsIllegal(t *testing.T) {
	for _, status := range []string{models.BookingCompleted, models.BookingDeclined} {
		t.Run(status, func(t *testing.T) {
			f := newFixture(testBooking(status, models.PaymentCaptured))
			err := f.machine.Cancel(context.Background(), 1, "")
			assert.True(t, apperrors.IsIllegalTransition(err))
		})
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentCaptured))

	require.NoError(t, f.machine.Complete(context.Background(), 1))

	got := f.store.get(1)
	assert.Equal(t, models.BookingCompleted, got.Status)
	assert.Equal(t, models.PaymentCaptured, got.PaymentStatus)
	assert.NotNil(t, got.CompletedAt)
}

func TestCompleteWithoutCaptureIsIllegal(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentAuthorized))

	err := f.machine.Complete(context.Background(), 1)
	assert.True(t, apperrors.IsIllegalTransition(err))
}

func TestLockedOutWriterIsRejected(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentAuthorized))
	f.locker.held = true

	err := f.machine.Capture(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrConcurrentAction)
	assert.Empty(t, f.gateway.captures, "losing writer makes no payment call")
}

func TestLostConditionalWriteIsRejected(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))
	f.store.conflict = true

	err := f.machine.Confirm(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrConcurrentAction)
}

func TestGatewayFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(testBooking(models.BookingConfirmed, models.PaymentAuthorized))
	f.gateway.fail = errors.New("gateway down")

	err := f.machine.Capture(context.Background(), 1)
	require.Error(t, err)

	got := f.store.get(1)
	assert.Equal(t, models.PaymentAuthorized, got.PaymentStatus,
		"state must not advance when the gateway call failed")
}

func TestUnknownBooking(t *testing.T) {
	f := newFixture(testBooking(models.BookingPending, models.PaymentAuthorized))

	err := f.machine.Confirm(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
