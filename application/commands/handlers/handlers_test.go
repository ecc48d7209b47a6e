package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/application/commands"
	"marketplace/application/commands/bus"
	"marketplace/application/ports"
	"marketplace/domain/core/entities"
	"marketplace/domain/core/valueobjects"
	"marketplace/domain/events"
	"marketplace/infrastructure/persistence/memory"
	apperrors "marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ShopExists(ctx context.Context, shopID string) (bool, error) {
	args := m.Called(ctx, shopID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDirectory) ReviewExists(ctx context.Context, reviewID string) (bool, error) {
	args := m.Called(ctx, reviewID)
	return args.Bool(0), args.Error(1)
}

type countingMetrics struct {
	ports.NopMetrics
	published []string
	failed    []string
}

func (m *countingMetrics) EventPublished(eventType string, err error) {
	if err != nil {
		m.failed = append(m.failed, eventType)
		return
	}
	m.published = append(m.published, eventType)
}

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func ofType(eventType string) interface{} {
	return mock.MatchedBy(func(e events.DomainEvent) bool { return e.GetEventType() == eventType })
}

type fixture struct {
	shops     *memory.ShopTable
	reviews   *memory.ReviewTable
	replies   *memory.ReplyTable
	publisher *MockPublisher
	directory *MockDirectory
	metrics   *countingMetrics
	bus       *bus.CommandBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		shops:     memory.NewShopTable(clock),
		reviews:   memory.NewReviewTable(clock),
		replies:   memory.NewReplyTable(),
		publisher: &MockPublisher{},
		directory: &MockDirectory{},
		metrics:   &countingMetrics{},
	}
	logger := zap.NewNop()
	f.bus = bus.NewCommandBus(commands.NewValidator(nil), bus.LoggingMiddleware(logger))
	require.NoError(t, Register(f.bus,
		NewShopHandler(f.shops, f.publisher, f.metrics, clock, logger),
		NewReviewHandler(f.reviews, f.directory, f.publisher, f.metrics, clock, logger),
		NewReplyHandler(f.replies, f.directory, f.publisher, f.metrics, clock, logger),
	))
	return f
}

func ptr[T any](v T) *T { return &v }

func validShop() commands.CreateShopCommand {
	return commands.CreateShopCommand{
		ShopName: "Seoul Gukbap",
		SalesInfo: &commands.SalesInfoInput{
			OpenTime:  "09:00",
			CloseTime: "21:00",
			RestDays:  []valueobjects.Weekday{valueobjects.Sunday},
			IsOpen:    ptr(true),
		},
		AddressInfo: &commands.AddressInput{
			LotNumberAddress: "Seoul Jongno-gu 1-1",
			RoadNameAddress:  "Seoul Jongno-ro 1",
		},
		LatLon:        &commands.LatLonInput{Latitude: ptr(37.57), Longitude: ptr(126.98)},
		ShopImageInfo: &commands.ShopImageInput{MainImage: "https://img.example.com/main.png"},
		BranchInfo:    &commands.BranchInput{IsBranch: ptr(false)},
		CategoryInfo: &commands.CategoryInput{
			Category:       valueobjects.CategoryKorean,
			DetailCategory: []valueobjects.DetailCategory{valueobjects.DetailGukbap},
		},
		DeliveryTipPerDistanceList: []entities.DeliveryTip{{DistanceMeter: 1000, Tip: 2000}, {DistanceMeter: 3000, Tip: 3000}},
	}
}

func TestCreateShop(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and publishes the snapshot", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.On("Publish", ctx, ofType(events.TypeShopCreated)).Return(nil).Once()

		result, err := f.bus.Send(ctx, validShop())
		require.NoError(t, err)

		shop := result.(entities.Shop)
		assert.NotEmpty(t, shop.ShopID)
		assert.Equal(t, testNow, shop.CreatedAt)
		assert.Zero(t, shop.ReviewNumber)

		stored, err := f.shops.Get(ctx, shop.ShopID)
		require.NoError(t, err)
		assert.Equal(t, shop, stored)

		event := f.publisher.Calls[0].Arguments.Get(1).(events.ShopCreated)
		assert.Equal(t, shop, event.Shop)
		f.publisher.AssertExpectations(t)
	})

	t.Run("collects every violation", func(t *testing.T) {
		f := newFixture(t)
		cmd := validShop()
		cmd.ShopName = ""
		cmd.LatLon = &commands.LatLonInput{Latitude: ptr(35.68), Longitude: ptr(139.69)}
		cmd.BranchInfo = &commands.BranchInput{IsBranch: ptr(true)}

		_, err := f.bus.Send(ctx, cmd)

		var verrs *apperrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.HasCode(apperrors.CodeFieldRequired))
		assert.True(t, verrs.HasCode(apperrors.CodeRegionInvalid))
		assert.True(t, verrs.HasCode(apperrors.CodeBranchInfoInvalid))
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)

		count, _ := f.shops.Count(ctx)
		assert.Zero(t, count)
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)
		cmd := validShop()
		cmd.ShopID = "shop-1"

		_, err := f.bus.Send(ctx, cmd)
		require.NoError(t, err)
		_, err = f.bus.Send(ctx, cmd)

		status, derr := apperrors.Resolve(err)
		assert.Equal(t, 409, status)
		assert.Equal(t, "SHOP_ALREADY_EXISTS", derr.Code)
	})

	t.Run("publish failure is logged, not returned", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("broker unavailable"))

		result, err := f.bus.Send(ctx, validShop())
		require.NoError(t, err)

		_, err = f.shops.Get(ctx, result.(entities.Shop).ShopID)
		assert.NoError(t, err)
		assert.Equal(t, []string{events.TypeShopCreated}, f.metrics.failed)
	})
}

func TestDeleteShop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	created, err := f.bus.Send(ctx, validShop())
	require.NoError(t, err)
	id := created.(entities.Shop).ShopID

	_, err = f.bus.Send(ctx, commands.DeleteShopCommand{ShopID: id})
	require.NoError(t, err)

	raw, ok := f.shops.Raw(id)
	require.True(t, ok)
	assert.True(t, raw.IsDeleted())

	_, err = f.bus.Send(ctx, commands.DeleteShopCommand{ShopID: id})
	assert.True(t, apperrors.IsNotFound(err))

	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
	assert.Equal(t, []string{events.TypeShopCreated, events.TypeShopDeleted}, f.metrics.published)
}

func validReview(shopID string) commands.CreateReviewCommand {
	return commands.CreateReviewCommand{
		ShopID:        shopID,
		ReviewTitle:   "Great soup",
		ReviewContent: "Broth was rich and the kimchi was fresh.",
		ReviewScore:   ptr(4.5),
	}
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an existing shop", func(t *testing.T) {
		f := newFixture(t)
		f.directory.On("ShopExists", ctx, "missing").Return(false, nil)

		_, err := f.bus.Send(ctx, validReview("missing"))

		status, derr := apperrors.Resolve(err)
		assert.Equal(t, 404, status)
		assert.Equal(t, "SHOP_NOT_FOUND", derr.Code)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("catalog failure is an external error", func(t *testing.T) {
		f := newFixture(t)
		f.directory.On("ShopExists", ctx, "s1").Return(false, errors.New("connection refused"))

		_, err := f.bus.Send(ctx, validReview("s1"))

		status, derr := apperrors.Resolve(err)
		assert.Equal(t, 502, status)
		assert.Equal(t, "CATALOG_UNAVAILABLE", derr.Code)
	})

	t.Run("score out of range", func(t *testing.T) {
		f := newFixture(t)
		cmd := validReview("s1")
		cmd.ReviewScore = ptr(0.0)

		_, err := f.bus.Send(ctx, cmd)

		assert.True(t, apperrors.IsValidation(err))
		f.directory.AssertNotCalled(t, "ShopExists", mock.Anything, mock.Anything)
	})

	t.Run("creates and publishes", func(t *testing.T) {
		f := newFixture(t)
		f.directory.On("ShopExists", ctx, "s1").Return(true, nil)
		f.publisher.On("Publish", ctx, ofType(events.TypeReviewCreated)).Return(nil).Once()

		result, err := f.bus.Send(ctx, validReview("s1"))
		require.NoError(t, err)

		review := result.(entities.ShopReview)
		assert.Equal(t, "s1", review.ShopID)
		assert.False(t, review.HasReply)
		f.publisher.AssertExpectations(t)
	})
}

func TestDeleteReview_EventCarriesAggregateFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.directory.On("ShopExists", ctx, "s1").Return(true, nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	created, err := f.bus.Send(ctx, validReview("s1"))
	require.NoError(t, err)
	id := created.(entities.ShopReview).ReviewID

	_, err = f.bus.Send(ctx, commands.DeleteReviewCommand{ReviewID: id})
	require.NoError(t, err)

	deleted := f.publisher.Calls[1].Arguments.Get(1).(events.ReviewDeleted)
	assert.Equal(t, id, deleted.ReviewID)
	assert.Equal(t, "s1", deleted.ShopID)
	assert.Equal(t, 4.5, deleted.ReviewScore)

	_, err = f.bus.Send(ctx, commands.DeleteReviewCommand{ReviewID: id})
	assert.True(t, apperrors.IsNotFound(err))
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestReplyLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.directory.On("ReviewExists", ctx, "r1").Return(true, nil)
	f.directory.On("ReviewExists", ctx, "gone").Return(false, nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	_, err := f.bus.Send(ctx, commands.CreateReplyCommand{ReviewID: "gone", Content: "thanks"})
	_, derr := apperrors.Resolve(err)
	assert.Equal(t, "REVIEW_NOT_FOUND", derr.Code)

	created, err := f.bus.Send(ctx, commands.CreateReplyCommand{ReviewID: "r1", Content: "Thank you for visiting!"})
	require.NoError(t, err)
	reply := created.(entities.Reply)

	_, err = f.bus.Send(ctx, commands.CreateReplyCommand{ReviewID: "r1", Content: "second"})
	status, derr := apperrors.Resolve(err)
	assert.Equal(t, 409, status)
	assert.Equal(t, "REPLY_ALREADY_EXISTS", derr.Code)

	_, err = f.bus.Send(ctx, commands.DeleteReplyCommand{ReplyID: reply.ReplyID, ReviewID: "other"})
	status, derr = apperrors.Resolve(err)
	assert.Equal(t, 403, status)
	assert.Equal(t, "REPLY_NOT_OWNED", derr.Code)

	_, err = f.bus.Send(ctx, commands.DeleteReplyCommand{ReplyID: reply.ReplyID, ReviewID: "r1"})
	require.NoError(t, err)

	// the review can be answered again once the reply is gone
	_, err = f.bus.Send(ctx, commands.CreateReplyCommand{ReviewID: "r1", Content: "Welcome back"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.TypeReplyCreated,
		events.TypeReplyDeleted,
		events.TypeReplyCreated,
	}, f.metrics.published)
}

func TestDeleteReply_RequiresReviewID(t *testing.T) {
	f := newFixture(t)

	_, err := f.bus.Send(context.Background(), commands.DeleteReplyCommand{ReplyID: "rp1"})

	var verrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "review_id", verrs.Errors[0].Field)
}
