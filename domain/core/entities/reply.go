package entities

import "time"

// Reply is the shop owner's answer to a review. A review has at most one
// live reply.
type Reply struct {
	ReplyID   string     `json:"reply_id" dynamodbav:"reply_id"`
	ReviewID  string     `json:"review_id" dynamodbav:"review_id"`
	Content   string     `json:"content" dynamodbav:"content"`
	CreatedAt time.Time  `json:"created_at" dynamodbav:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
}

func (r Reply) EntityID() string { return r.ReplyID }

func (r Reply) IsDeleted() bool { return r.DeletedAt != nil }

func (r Reply) MarkDeleted(at time.Time) Reply {
	r.DeletedAt = &at
	return r
}
