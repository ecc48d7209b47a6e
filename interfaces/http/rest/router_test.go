package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace/application/commands"
	"marketplace/application/commands/bus"
	cmdhandlers "marketplace/application/commands/handlers"
	"marketplace/application/ports"
	querybus "marketplace/application/queries/bus"
	queryhandlers "marketplace/application/queries/handlers"
	"marketplace/domain/core/entities"
	"marketplace/domain/events"
	"marketplace/infrastructure/persistence/cache"
	"marketplace/infrastructure/persistence/memory"
	"marketplace/pkg/common"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/observability"
	"marketplace/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, events.DomainEvent) error { return nil }

func (discardPublisher) PublishBatch(context.Context, []events.DomainEvent) error { return nil }

type staticDirectory bool

func (d staticDirectory) ShopExists(context.Context, string) (bool, error)   { return bool(d), nil }
func (d staticDirectory) ReviewExists(context.Context, string) (bool, error) { return bool(d), nil }

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

var _ ratelimit.Limiter = denyAll{}

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	shops := memory.NewShopTable(clock)
	reviews := memory.NewReviewTable(clock)
	replies := memory.NewReplyTable()

	commandBus := bus.NewCommandBus(commands.NewValidator(nil))
	require.NoError(t, cmdhandlers.Register(commandBus,
		cmdhandlers.NewShopHandler(shops, discardPublisher{}, ports.NopMetrics{}, clock, logger),
		cmdhandlers.NewReviewHandler(reviews, staticDirectory(true), discardPublisher{}, ports.NopMetrics{}, clock, logger),
		cmdhandlers.NewReplyHandler(replies, staticDirectory(true), discardPublisher{}, ports.NopMetrics{}, clock, logger),
	))

	memCache := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = memCache.Close() })
	opts := cache.Options{TTL: time.Minute, Logger: logger}
	queryBus := querybus.NewQueryBus()
	require.NoError(t, queryhandlers.NewCatalogHandler(
		cache.NewCachedRepository[entities.Shop](entities.KindShop, shops, memCache, apperrors.ErrShopNotFound, opts),
		cache.NewCachedRepository[entities.ShopReview](entities.KindReview, reviews, memCache, apperrors.ErrReviewNotFound, opts),
		cache.NewCachedRepository[entities.Reply](entities.KindReply, replies, memCache, apperrors.ErrReplyNotFound, opts),
		logger,
	).Register(queryBus))

	cfg.CommandBus = commandBus
	cfg.QueryBus = queryBus
	return NewRouter(cfg, logger).Setup()
}

func do(h http.Handler, method, target, body string) (*httptest.ResponseRecorder, common.APIResponse) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp common.APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestHealthAndReadiness(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		h := newTestRouter(t, RouterConfig{})
		rec, _ := do(h, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ready reports failing checks", func(t *testing.T) {
		h := newTestRouter(t, RouterConfig{Checks: map[string]ReadinessCheck{
			"store": func(context.Context) error { return nil },
			"cache": func(context.Context) error { return errors.New("connection refused") },
		}})
		rec, _ := do(h, http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})

	t.Run("metrics", func(t *testing.T) {
		h := newTestRouter(t, RouterConfig{Observer: observability.NewCollector("test")})
		do(h, http.MethodGet, "/health", "")
		rec, _ := do(h, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "test_")
	})
}

func TestMalformedRequests(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"missing body", http.MethodPost, "/api/v1/shops", ""},
		{"broken json", http.MethodPost, "/api/v1/reviews", `{"shop_id":`},
		{"unknown field", http.MethodPost, "/api/v1/replies", `{"review_id":"r1","content":"thanks","extra":1}`},
		{"missing review_id", http.MethodDelete, "/api/v1/replies/reply-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "REQUEST_MALFORMED", resp.Error.Code)
		})
	}
}

func TestValidationFailure(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec, resp := do(h, http.MethodPost, "/api/v1/reviews", `{"shop_id":"s1","review_title":"ok"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "field_errors")
}

func TestReviewAndReplyRoundTrip(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec, resp := do(h, http.MethodPost, "/api/v1/reviews",
		`{"review_id":"rv-1","shop_id":"s1","review_title":"Great","review_content":"Loved it","review_score":8}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)

	rec, _ = do(h, http.MethodGet, "/api/v1/reviews/rv-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(h, http.MethodPost, "/api/v1/replies", `{"reply_id":"rp-1","review_id":"rv-1","content":"Thanks"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp = do(h, http.MethodPost, "/api/v1/replies", `{"review_id":"rv-1","content":"Again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)

	rec, _ = do(h, http.MethodGet, "/api/v1/reviews/rv-1/reply", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rp-1"`)

	rec, _ = do(h, http.MethodDelete, "/api/v1/replies/rp-1?review_id=other", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(h, http.MethodDelete, "/api/v1/replies/rp-1?review_id=rv-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = do(h, http.MethodDelete, "/api/v1/replies/rp-1?review_id=rv-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "REPLY_NOT_FOUND", resp.Error.Code)
}

func TestListShopsIsPaginated(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec, resp := do(h, http.MethodGet, "/api/v1/shops?page=1&page_size=10", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	require.NotNil(t, resp.Meta.Pagination)
	assert.Equal(t, 0, resp.Meta.Pagination.Total)
	assert.Equal(t, 10, resp.Meta.Pagination.PageSize)
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	h := newTestRouter(t, RouterConfig{Limiter: denyAll{}})

	rec, resp := do(h, http.MethodDelete, "/api/v1/shops/s1", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", resp.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, _ = do(h, http.MethodGet, "/api/v1/shops/s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
