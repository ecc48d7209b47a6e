package commands

import (
	"time"

	"marketplace/domain/core/entities"
)

// CreateReviewCommand posts a review on an existing shop.
type CreateReviewCommand struct {
	ReviewID        string   `json:"review_id,omitempty"`
	ShopID          string   `json:"shop_id" validate:"required"`
	ReviewTitle     string   `json:"review_title" validate:"required"`
	ReviewContent   string   `json:"review_content" validate:"required"`
	ReviewScore     *float64 `json:"review_score" validate:"required"`
	ReviewPhotoList []string `json:"review_photo_list"`
}

func (CreateReviewCommand) CommandName() string { return "CreateReview" }

func (c CreateReviewCommand) ToReview(reviewID string, now time.Time) entities.ShopReview {
	return entities.ShopReview{
		ReviewID:        reviewID,
		ReviewTitle:     c.ReviewTitle,
		ShopID:          c.ShopID,
		ReviewContent:   c.ReviewContent,
		ReviewScore:     deref(c.ReviewScore),
		ReviewPhotoList: c.ReviewPhotoList,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// DeleteReviewCommand soft-deletes a review and backs it out of its shop's
// aggregate.
type DeleteReviewCommand struct {
	ReviewID string `json:"review_id" validate:"required"`
}

func (DeleteReviewCommand) CommandName() string { return "DeleteReview" }

// CreateReplyCommand answers a review. A review takes one live reply.
type CreateReplyCommand struct {
	ReplyID  string `json:"reply_id,omitempty"`
	ReviewID string `json:"review_id" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

func (CreateReplyCommand) CommandName() string { return "CreateReply" }

func (c CreateReplyCommand) ToReply(replyID string, now time.Time) entities.Reply {
	return entities.Reply{
		ReplyID:   replyID,
		ReviewID:  c.ReviewID,
		Content:   c.Content,
		CreatedAt: now,
	}
}

// DeleteReplyCommand soft-deletes a reply. ReviewID must name the review
// the reply belongs to.
type DeleteReplyCommand struct {
	ReplyID  string `json:"reply_id" validate:"required"`
	ReviewID string `json:"review_id" validate:"required"`
}

func (DeleteReplyCommand) CommandName() string { return "DeleteReply" }
