package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit/service-shareit/internal/domain/directory"
	"github.com/shareit/service-shareit/internal/platform/clock"
	"github.com/shareit/service-shareit/internal/platform/kafka"
	"github.com/shareit/service-shareit/internal/repository/memory"
)

const day = 24 * time.Hour

var t0 = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, ev kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// countingDirectory counts lookups so tests can assert that none happened.
type countingDirectory struct {
	directory.Directory
	mu      sync.Mutex
	lookups int
}

func (d *countingDirectory) FindUser(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	d.mu.Lock()
	d.lookups++
	d.mu.Unlock()
	return d.Directory.FindUser(ctx, id)
}

func (d *countingDirectory) FindItem(ctx context.Context, id uuid.UUID) (*directory.Item, error) {
	d.mu.Lock()
	d.lookups++
	d.mu.Unlock()
	return d.Directory.FindItem(ctx, id)
}

type testEnv struct {
	now       time.Time
	dir       *countingDirectory
	bookings  *memory.BookingStore
	comments  *memory.CommentStore
	requests  *memory.RequestStore
	publisher *recordingPublisher

	Bookings *BookingService
	Items    *ItemService
	Comments *CommentService
	Users    *UserService
	Requests *ItemRequestService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := memory.NewDirectory()
	env := &testEnv{
		now:       t0,
		dir:       &countingDirectory{Directory: dir},
		bookings:  memory.NewBookingStore(dir),
		comments:  memory.NewCommentStore(),
		requests:  memory.NewRequestStore(),
		publisher: &recordingPublisher{},
	}
	clk := clock.Func(func() time.Time { return env.now })
	log := zap.NewNop()

	env.Bookings = NewBookingService(env.bookings, env.dir, env.publisher, clk, log)
	env.Items = NewItemService(env.dir, env.bookings, env.comments, env.requests, clk, log)
	env.Comments = NewCommentService(env.comments, env.dir, env.Bookings, clk, log)
	env.Users = NewUserService(env.dir, log)
	env.Requests = NewItemRequestService(env.requests, env.dir, clk, log)
	return env
}

func (e *testEnv) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := directory.NewUser(uuid.New(), name, name+"@example.com")
	require.NoError(t, err)
	require.NoError(t, e.dir.SaveUser(context.Background(), u))
	return u.ID()
}

func (e *testEnv) item(t *testing.T, ownerID uuid.UUID, name string, available bool) uuid.UUID {
	t.Helper()
	dto, err := e.Items.CreateItem(context.Background(), ownerID, CreateItemRequest{
		Name:        name,
		Description: name + " for rent",
		Available:   &available,
	})
	require.NoError(t, err)
	return dto.ID
}

// book creates a booking of [start, end) relative to the current clock.
func (e *testEnv) book(t *testing.T, bookerID, itemID uuid.UUID, start, end time.Duration) *BookingDTO {
	t.Helper()
	b, err := e.Bookings.CreateBooking(context.Background(), bookerID, CreateBookingRequest{
		ItemID: itemID,
		Start:  e.now.Add(start),
		End:    e.now.Add(end),
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) decide(t *testing.T, bookingID, ownerID uuid.UUID, approved bool) *BookingDTO {
	t.Helper()
	b, err := e.Bookings.UpdateBookingStatus(context.Background(), bookingID, ownerID, approved)
	require.NoError(t, err)
	return b
}

var errBrokerDown = errors.New("broker down")
