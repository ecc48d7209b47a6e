package handlers

import (
	"net/http"

	"marketplace/application/queries"
	querybus "marketplace/application/queries/bus"
	"marketplace/domain/core/entities"
	"marketplace/pkg/common"
	apperrors "marketplace/pkg/errors"

	"go.uber.org/zap"
)

// QueryHandler serves the catalog read endpoints.
type QueryHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryBus *querybus.QueryBus, errors *apperrors.ErrorHandler, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryBus: queryBus,
		errors:   errors,
		logger:   logger,
	}
}

// ListShops handles GET /shops
func (h *QueryHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	query := queries.ListShopsQuery{Pagination: common.ExtractPaginationParams(r)}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondPage(w, r, result.(common.Page[queries.ShopView]))
}

// GetShop handles GET /shops/{shopID}
func (h *QueryHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathParam(r, "shopID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.GetShopQuery{ShopID: shopID})
}

// ListShopReviews handles GET /shops/{shopID}/reviews
func (h *QueryHandler) ListShopReviews(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathParam(r, "shopID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	query := queries.ListShopReviewsQuery{ShopID: shopID, Pagination: common.ExtractPaginationParams(r)}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondPage(w, r, result.(common.Page[entities.ShopReview]))
}

// GetReview handles GET /reviews/{reviewID}
func (h *QueryHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathParam(r, "reviewID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.GetReviewQuery{ReviewID: reviewID})
}

// GetReviewReply handles GET /reviews/{reviewID}/reply
func (h *QueryHandler) GetReviewReply(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathParam(r, "reviewID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.GetReviewReplyQuery{ReviewID: reviewID})
}

// GetReply handles GET /replies/{replyID}
func (h *QueryHandler) GetReply(w http.ResponseWriter, r *http.Request) {
	replyID, err := pathParam(r, "replyID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.GetReplyQuery{ReplyID: replyID})
}

func (h *QueryHandler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondWithMeta(w, http.StatusOK, result, meta(r))
}

func respondPage[T any](w http.ResponseWriter, r *http.Request, page common.Page[T]) {
	m := meta(r)
	if m == nil {
		m = &common.MetaInfo{}
	}
	m.Pagination = page.Pagination
	common.RespondWithMeta(w, http.StatusOK, page.Items, m)
}
