package queries

import (
	"marketplace/domain/core/entities"
	"marketplace/pkg/common"
	apperrors "marketplace/pkg/errors"
)

// GetShopQuery reads one shop.
type GetShopQuery struct {
	ShopID string
}

func (q GetShopQuery) QueryName() string { return "GetShop" }

func (q GetShopQuery) Validate() error { return required("shop_id", q.ShopID) }

// ListShopsQuery reads one page of shops.
type ListShopsQuery struct {
	Pagination common.PaginationParams
}

func (q ListShopsQuery) QueryName() string { return "ListShops" }

func (q ListShopsQuery) Validate() error { return nil }

// ListShopReviewsQuery reads one page of a shop's reviews, newest first.
type ListShopReviewsQuery struct {
	ShopID     string
	Pagination common.PaginationParams
}

func (q ListShopReviewsQuery) QueryName() string { return "ListShopReviews" }

func (q ListShopReviewsQuery) Validate() error { return required("shop_id", q.ShopID) }

// GetReviewQuery reads one review.
type GetReviewQuery struct {
	ReviewID string
}

func (q GetReviewQuery) QueryName() string { return "GetReview" }

func (q GetReviewQuery) Validate() error { return required("review_id", q.ReviewID) }

// GetReviewReplyQuery reads the live reply of a review.
type GetReviewReplyQuery struct {
	ReviewID string
}

func (q GetReviewReplyQuery) QueryName() string { return "GetReviewReply" }

func (q GetReviewReplyQuery) Validate() error { return required("review_id", q.ReviewID) }

// GetReplyQuery reads one reply.
type GetReplyQuery struct {
	ReplyID string
}

func (q GetReplyQuery) QueryName() string { return "GetReply" }

func (q GetReplyQuery) Validate() error { return required("reply_id", q.ReplyID) }

// ShopView is a shop with its derived average score.
type ShopView struct {
	entities.Shop
	AverageScore float64 `json:"average_score"`
}

// NewShopView builds the read model of shop.
func NewShopView(shop entities.Shop) ShopView {
	return ShopView{Shop: shop, AverageScore: shop.AverageScore()}
}

func required(param, value string) error {
	if value == "" {
		return apperrors.ErrRequestMalformed.New().WithDetail("parameter", param)
	}
	return nil
}
