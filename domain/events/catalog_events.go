package events

import (
	"time"

	"marketplace/domain/core/entities"
)

// Shop Events

// ShopCreated carries the full snapshot of a new shop.
type ShopCreated struct {
	BaseEvent
	Shop entities.Shop `json:"shop"`
}

func NewShopCreated(shop entities.Shop, timestamp time.Time) ShopCreated {
	return ShopCreated{
		BaseEvent: newBase(shop.ShopID, TypeShopCreated, timestamp),
		Shop:      shop,
	}
}

// ShopDeleted is raised when a shop is soft-deleted
type ShopDeleted struct {
	BaseEvent
	ShopID string `json:"shop_id"`
}

func NewShopDeleted(shopID string, timestamp time.Time) ShopDeleted {
	return ShopDeleted{
		BaseEvent: newBase(shopID, TypeShopDeleted, timestamp),
		ShopID:    shopID,
	}
}

// Review Events

// ReviewCreated carries the full review, including the score the shop
// aggregate is updated with.
type ReviewCreated struct {
	BaseEvent
	Review entities.ShopReview `json:"review"`
}

func NewReviewCreated(review entities.ShopReview, timestamp time.Time) ReviewCreated {
	return ReviewCreated{
		BaseEvent: newBase(review.ReviewID, TypeReviewCreated, timestamp),
		Review:    review,
	}
}

// ReviewDeleted carries what the shop aggregate needs to back the review out.
type ReviewDeleted struct {
	BaseEvent
	ReviewID    string  `json:"review_id"`
	ShopID      string  `json:"shop_id"`
	ReviewScore float64 `json:"review_score"`
}

func NewReviewDeleted(review entities.ShopReview, timestamp time.Time) ReviewDeleted {
	return ReviewDeleted{
		BaseEvent:   newBase(review.ReviewID, TypeReviewDeleted, timestamp),
		ReviewID:    review.ReviewID,
		ShopID:      review.ShopID,
		ReviewScore: review.ReviewScore,
	}
}

// Reply Events

type ReplyCreated struct {
	BaseEvent
	Reply entities.Reply `json:"reply"`
}

func NewReplyCreated(reply entities.Reply, timestamp time.Time) ReplyCreated {
	return ReplyCreated{
		BaseEvent: newBase(reply.ReplyID, TypeReplyCreated, timestamp),
		Reply:     reply,
	}
}

type ReplyDeleted struct {
	BaseEvent
	ReplyID  string `json:"reply_id"`
	ReviewID string `json:"review_id"`
}

func NewReplyDeleted(reply entities.Reply, timestamp time.Time) ReplyDeleted {
	return ReplyDeleted{
		BaseEvent: newBase(reply.ReplyID, TypeReplyDeleted, timestamp),
		ReplyID:   reply.ReplyID,
		ReviewID:  reply.ReviewID,
	}
}

// Cache Events

// CacheCountReported is the periodic report of how many entities of a kind
// the cache currently holds.
type CacheCountReported struct {
	BaseEvent
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

func NewCacheCountReported(kind string, count int, timestamp time.Time) CacheCountReported {
	return CacheCountReported{
		BaseEvent: newBase(kind, TypeCacheCountReported, timestamp),
		Kind:      kind,
		Count:     count,
	}
}
