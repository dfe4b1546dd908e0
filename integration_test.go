//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit/service-shareit/internal/application"
	"github.com/shareit/service-shareit/internal/cache"
	bookingDomain "github.com/shareit/service-shareit/internal/domain/booking"
	"github.com/shareit/service-shareit/internal/domain/directory"
	bookingEvents "github.com/shareit/service-shareit/internal/events"
	"github.com/shareit/service-shareit/internal/platform/database"
	"github.com/shareit/service-shareit/internal/platform/domain"
	"github.com/shareit/service-shareit/internal/platform/kafka"
	"github.com/shareit/service-shareit/internal/repository"
)

// TestPostgres_ApprovalRespectsOverlap verifies that two waiting bookings of
// the same period may coexist but only one of them can be approved.
func TestPostgres_ApprovalRespectsOverlap(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	stack := setupShareitStack(t, db, kafka.NoopPublisher{})
	ctx := context.Background()

	owner := seedUser(t, stack.Directory, "owner")
	alice := seedUser(t, stack.Directory, "alice")
	bob := seedUser(t, stack.Directory, "bob")
	itemID := seedItem(t, stack.Items, owner, "drill")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	req := application.CreateBookingRequest{ItemID: itemID, Start: start, End: start.Add(48 * time.Hour)}

	first, err := stack.Service.CreateBooking(ctx, alice, req)
	require.NoError(t, err)
	second, err := stack.Service.CreateBooking(ctx, bob, req)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusWaiting), first.Status)
	assert.Equal(t, "drill", first.Item.Name)
	assert.Equal(t, "alice", first.Booker.Name)

	approved, err := stack.Service.UpdateBookingStatus(ctx, first.ID, owner, true)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusApproved), approved.Status)
	assert.Equal(t, int64(2), approved.Version)

	_, err = stack.Service.UpdateBookingStatus(ctx, second.ID, owner, true)
	require.ErrorIs(t, err, bookingDomain.ErrPeriodUnavailable)

	_, err = stack.Service.CreateBooking(ctx, bob, application.CreateBookingRequest{
		ItemID: itemID,
		Start:  start.Add(24 * time.Hour),
		End:    start.Add(72 * time.Hour),
	})
	require.ErrorIs(t, err, bookingDomain.ErrPeriodUnavailable)

	// Back-to-back periods do not overlap.
	_, err = stack.Service.CreateBooking(ctx, bob, application.CreateBookingRequest{
		ItemID: itemID,
		Start:  start.Add(48 * time.Hour),
		End:    start.Add(72 * time.Hour),
	})
	require.NoError(t, err)

	ownerView, err := stack.Service.GetAllBookingsByItemOwner(ctx, owner, nil)
	require.NoError(t, err)
	assert.Len(t, ownerView, 3)

	waiting := bookingDomain.StatusWaiting
	bobWaiting, err := stack.Service.GetAllBookingsByUser(ctx, bob, &waiting)
	require.NoError(t, err)
	assert.Len(t, bobWaiting, 2)
	assert.True(t, bobWaiting[0].Start.After(bobWaiting[1].Start), "bookings are listed newest start first")

	stats, err := stack.Service.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
}

// TestPostgres_ConcurrentApprovalsAdmitOne races approvals of overlapping
// bookings through separate transactions.
func TestPostgres_ConcurrentApprovalsAdmitOne(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	stack := setupShareitStack(t, db, kafka.NoopPublisher{})
	ctx := context.Background()

	owner := seedUser(t, stack.Directory, "owner")
	itemID := seedItem(t, stack.Items, owner, "tent")
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	const n = 6
	ids := make([]uuid.UUID, n)
	for i := range ids {
		booker := seedUser(t, stack.Directory, "booker")
		dto, err := stack.Service.CreateBooking(ctx, booker, application.CreateBookingRequest{
			ItemID: itemID,
			Start:  start.Add(time.Duration(i) * time.Hour),
			End:    start.Add(time.Duration(i+24) * time.Hour),
		})
		require.NoError(t, err)
		ids[i] = dto.ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := stack.Service.UpdateBookingStatus(ctx, id, owner, true)
			if err == nil {
				mu.Lock()
				approved++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, bookingDomain.ErrPeriodUnavailable)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, approved)
	stats, err := stack.Service.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ByStatus[string(bookingDomain.StatusApproved)])
}

// TestPostgres_ExclusionConstraintRejectsOverlap writes rows around the
// repository to prove the database enforces the approved-overlap rule itself.
func TestPostgres_ExclusionConstraintRejectsOverlap(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	stack := setupShareitStack(t, db, kafka.NoopPublisher{})
	owner := seedUser(t, stack.Directory, "owner")
	booker := seedUser(t, stack.Directory, "booker")
	itemID := seedItem(t, stack.Items, owner, "kayak")

	now := time.Now().UTC().Truncate(time.Second)
	row := func(offset time.Duration) repository.BookingModel {
		return repository.BookingModel{
			ID:        uuid.New(),
			BookerID:  booker,
			ItemID:    itemID,
			StartDate: now.Add(offset),
			EndDate:   now.Add(offset + 48*time.Hour),
			Status:    string(bookingDomain.StatusApproved),
			Version:   2,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	first := row(24 * time.Hour)
	require.NoError(t, db.Omit("Booker", "Item").Create(&first).Error)

	clash := row(48 * time.Hour)
	err := db.Omit("Booker", "Item").Create(&clash).Error
	require.Error(t, err)
	assert.True(t, database.IsExclusionViolation(err), "expected exclusion violation, got %v", err)

	waiting := row(48 * time.Hour)
	waiting.Status = string(bookingDomain.StatusWaiting)
	require.NoError(t, db.Omit("Booker", "Item").Create(&waiting).Error)
}

// TestUserEvents_PopulateDirectory verifies that user.upserted events land in
// the Postgres user replica and that bookings can be made by that user.
func TestUserEvents_PopulateDirectory(t *testing.T) {
	db, cleanupPG := setupPostgres(t)
	defer cleanupPG()
	brokers, cleanupKafka := setupKafka(t)
	defer cleanupKafka()

	producer := kafka.NewProducer(brokers, zap.NewNop())
	defer func() { _ = producer.Close() }()
	stack := setupShareitStack(t, db, producer)

	consumer := bookingEvents.NewUserEventConsumer(brokers, "test-users-"+uuid.New().String()[:8], stack.Directory, zap.NewNop())
	defer func() { _ = consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	userID := uuid.New()
	publishTestEvent(t, brokers, directory.TopicUserEvents, "service-accounts", directory.EventUserUpserted,
		directory.UserUpsertedEvent{UserID: userID, Name: "Carol", Email: "carol@example.com"})

	require.Eventually(t, func() bool {
		_, err := stack.Directory.FindUser(context.Background(), userID)
		return err == nil
	}, 30*time.Second, 500*time.Millisecond, "user was not replicated")

	// A second upsert renames the user in place.
	publishTestEvent(t, brokers, directory.TopicUserEvents, "service-accounts", directory.EventUserUpserted,
		directory.UserUpsertedEvent{UserID: userID, Name: "Caroline", Email: "carol@example.com"})

	require.Eventually(t, func() bool {
		u, err := stack.Directory.FindUser(context.Background(), userID)
		return err == nil && u.Name() == "Caroline"
	}, 30*time.Second, 500*time.Millisecond, "user rename was not replicated")

	owner := seedUser(t, stack.Directory, "owner")
	itemID := seedItem(t, stack.Items, owner, "ladder")
	start := time.Now().UTC().Add(24 * time.Hour)

	created, err := stack.Service.CreateBooking(context.Background(), userID, application.CreateBookingRequest{
		ItemID: itemID,
		Start:  start,
		End:    start.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	ce := consumeOneEvent(t, brokers, bookingDomain.TopicBookingEvents, bookingDomain.EventRequested, 30*time.Second)
	var evt bookingDomain.LifecycleEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, created.ID, evt.BookingID)
	assert.Equal(t, owner, evt.OwnerID)
	assert.Equal(t, userID, evt.BookerID)
	assert.Equal(t, bookingDomain.StatusWaiting, evt.Status)

	_, err = stack.Service.UpdateBookingStatus(context.Background(), created.ID, owner, true)
	require.NoError(t, err)

	ce = consumeOneEvent(t, brokers, bookingDomain.TopicBookingEvents, bookingDomain.EventApproved, 30*time.Second)
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, created.ID, evt.BookingID)
	assert.Equal(t, bookingDomain.StatusApproved, evt.Status)
}

// TestDirectoryCache_RedisReadThrough verifies cached lookups and eviction on write.
func TestDirectoryCache_RedisReadThrough(t *testing.T) {
	db, cleanupPG := setupPostgres(t)
	defer cleanupPG()
	client, cleanupRedis := setupRedis(t)
	defer cleanupRedis()

	ctx := context.Background()
	store := repository.NewGormDirectory(db)
	cached := cache.NewDirectoryCache(store, client, time.Minute, zap.NewNop())

	owner := seedUser(t, cached, "owner")
	item, err := directory.NewItem(owner, "bike", "city bike", true, nil)
	require.NoError(t, err)
	require.NoError(t, cached.SaveItem(ctx, item))

	itemKey := "shareit:item:" + item.ID().String()
	userKey := "shareit:user:" + owner.String()

	got, err := cached.FindItem(ctx, item.ID())
	require.NoError(t, err)
	assert.Equal(t, "bike", got.Name())
	assert.Equal(t, int64(1), client.Exists(ctx, itemKey).Val())

	_, err = cached.FindUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), client.Exists(ctx, userKey).Val())

	name := "road bike"
	require.NoError(t, got.Update(directory.ItemPatch{Name: &name}))
	require.NoError(t, cached.SaveItem(ctx, got))
	assert.Equal(t, int64(0), client.Exists(ctx, itemKey).Val(), "write must evict the cached item")

	again, err := cached.FindItem(ctx, item.ID())
	require.NoError(t, err)
	assert.Equal(t, "road bike", again.Name())
	assert.Equal(t, int64(2), again.Version())

	// Misses are not cached.
	_, err = cached.FindItem(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

// TestPostgres_DuplicateEmailIsConflict verifies that the users email
// constraint surfaces as a conflict through the service.
func TestPostgres_DuplicateEmailIsConflict(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	stack := setupShareitStack(t, db, kafka.NoopPublisher{})

	_, err := stack.Users.CreateUser(ctx, application.CreateUserRequest{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	dup, err := directory.NewUser(uuid.New(), "Other Ann", "ann@example.com")
	require.NoError(t, err)
	err = stack.Directory.SaveUser(ctx, dup)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	_, err = stack.Users.CreateUser(ctx, application.CreateUserRequest{Name: "Other Ann", Email: "ann@example.com"})
	assert.True(t, domain.IsConflict(err))
}

// TestPostgres_ItemRequestsListAnswers verifies request listings and the
// request_id foreign key on items.
func TestPostgres_ItemRequestsListAnswers(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	stack := setupShareitStack(t, db, kafka.NoopPublisher{})
	asker := seedUser(t, stack.Directory, "asker")
	owner := seedUser(t, stack.Directory, "owner")

	req, err := stack.Requests.CreateItemRequest(ctx, asker, application.CreateItemRequestRequest{Description: "Need a generator"})
	require.NoError(t, err)

	available := true
	missing := uuid.New()
	_, err = stack.Items.CreateItem(ctx, owner, application.CreateItemRequest{
		Name: "Generator", Description: "Petrol generator", Available: &available, RequestID: &missing,
	})
	assert.True(t, domain.IsNotFound(err))

	answer, err := stack.Items.CreateItem(ctx, owner, application.CreateItemRequest{
		Name: "Generator", Description: "Petrol generator", Available: &available, RequestID: &req.ID,
	})
	require.NoError(t, err)

	own, err := stack.Requests.GetItemRequestsByRequester(ctx, asker)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, answer.ID, own[0].Items[0].ID)

	others, err := stack.Requests.GetOtherUserRequests(ctx, owner)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, req.ID, others[0].ID)
}
