package entities

import "time"

// ShopReview is a customer's review of a shop. HasReply is derived from
// reply events.
type ShopReview struct {
	ReviewID        string     `json:"review_id" dynamodbav:"review_id"`
	ReviewTitle     string     `json:"review_title" dynamodbav:"review_title"`
	ShopID          string     `json:"shop_id" dynamodbav:"shop_id"`
	ReviewContent   string     `json:"review_content" dynamodbav:"review_content"`
	ReviewScore     float64    `json:"review_score" dynamodbav:"review_score"`
	ReviewPhotoList []string   `json:"review_photo_list" dynamodbav:"review_photo_list"`
	HasReply        bool       `json:"has_reply" dynamodbav:"has_reply"`
	CreatedAt       time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" dynamodbav:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
}

func (r ShopReview) EntityID() string { return r.ReviewID }

func (r ShopReview) IsDeleted() bool { return r.DeletedAt != nil }

func (r ShopReview) MarkDeleted(at time.Time) ShopReview {
	r.DeletedAt = &at
	r.UpdatedAt = at
	return r
}
