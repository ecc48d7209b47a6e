package entities

import (
	"errors"
	"time"

	"marketplace/domain/core/valueobjects"
)

// Entity kinds. A kind prefixes the cache key of every entity.
const (
	KindShop   = "shop"
	KindReview = "review"
	KindReply  = "reply"
)

// ErrAggregateUnderflow is returned when a delta would drop the review count
// below zero.
var ErrAggregateUnderflow = errors.New("review_number cannot drop below zero")

// SalesInfo holds a shop's opening hours.
type SalesInfo struct {
	OpenTime  string                 `json:"open_time" dynamodbav:"open_time"`
	CloseTime string                 `json:"close_time" dynamodbav:"close_time"`
	RestDays  []valueobjects.Weekday `json:"rest_days" dynamodbav:"rest_days"`
	IsOpen    bool                   `json:"is_open" dynamodbav:"is_open"`
}

// AddressInfo holds both Korean address notations.
type AddressInfo struct {
	LotNumberAddress string  `json:"lot_number_address" dynamodbav:"lot_number_address"`
	RoadNameAddress  string  `json:"road_name_address" dynamodbav:"road_name_address"`
	DetailAddress    *string `json:"detail_address,omitempty" dynamodbav:"detail_address,omitempty"`
}

// LatLon is a WGS84 coordinate.
type LatLon struct {
	Latitude  float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude float64 `json:"longitude" dynamodbav:"longitude"`
}

// ShopImageInfo holds the main image and the gallery.
type ShopImageInfo struct {
	MainImage string   `json:"main_image" dynamodbav:"main_image"`
	ImageList []string `json:"image_list" dynamodbav:"image_list"`
}

// BranchInfo marks a shop as a branch. A branch must carry a name, a main
// store must not.
type BranchInfo struct {
	IsBranch   bool    `json:"is_branch" dynamodbav:"is_branch"`
	BranchName *string `json:"branch_name,omitempty" dynamodbav:"branch_name,omitempty"`
}

// CategoryInfo classifies the shop.
type CategoryInfo struct {
	Category       valueobjects.Category         `json:"category" dynamodbav:"category"`
	DetailCategory []valueobjects.DetailCategory `json:"detail_category" dynamodbav:"detail_category"`
}

// DeliveryTip is the fee charged up to a distance.
type DeliveryTip struct {
	DistanceMeter int `json:"distance_meter" dynamodbav:"distance_meter"`
	Tip           int `json:"tip" dynamodbav:"tip"`
}

// Shop is a store listed on the marketplace. TotalScore and ReviewNumber are
// maintained from review events, never written by clients.
type Shop struct {
	ShopID                     string        `json:"shop_id" dynamodbav:"shop_id"`
	ShopName                   string        `json:"shop_name" dynamodbav:"shop_name"`
	SalesInfo                  SalesInfo     `json:"sales_info" dynamodbav:"sales_info"`
	AddressInfo                AddressInfo   `json:"address_info" dynamodbav:"address_info"`
	LatLon                     LatLon        `json:"lat_lon" dynamodbav:"lat_lon"`
	ShopImageInfo              ShopImageInfo `json:"shop_image_info" dynamodbav:"shop_image_info"`
	BranchInfo                 BranchInfo    `json:"branch_info" dynamodbav:"branch_info"`
	CategoryInfo               CategoryInfo  `json:"category_info" dynamodbav:"category_info"`
	DeliveryTipPerDistanceList []DeliveryTip `json:"delivery_tip_per_distance_list" dynamodbav:"delivery_tip_per_distance_list"`
	TotalScore                 float64       `json:"total_score" dynamodbav:"total_score"`
	ReviewNumber               int           `json:"review_number" dynamodbav:"review_number"`
	ShopDescription            string        `json:"shop_description" dynamodbav:"shop_description"`
	CreatedAt                  time.Time     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt                  time.Time     `json:"updated_at" dynamodbav:"updated_at"`
	DeletedAt                  *time.Time    `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
}

// EntityID returns the shop's key.
func (s Shop) EntityID() string { return s.ShopID }

// IsDeleted reports whether the shop was soft-deleted.
func (s Shop) IsDeleted() bool { return s.DeletedAt != nil }

// MarkDeleted returns a copy stamped with the deletion time.
func (s Shop) MarkDeleted(at time.Time) Shop {
	s.DeletedAt = &at
	s.UpdatedAt = at
	return s
}

// AverageScore is TotalScore/ReviewNumber, and exactly 0 without reviews.
func (s Shop) AverageScore() float64 {
	if s.ReviewNumber == 0 {
		return 0
	}
	return s.TotalScore / float64(s.ReviewNumber)
}

// ApplyReviewDelta adds a review's score and count to the aggregate. Once the
// count returns to zero the total is reset so float residue cannot linger.
func (s *Shop) ApplyReviewDelta(scoreDelta float64, countDelta int, at time.Time) error {
	if s.ReviewNumber+countDelta < 0 {
		return ErrAggregateUnderflow
	}
	s.ReviewNumber += countDelta
	s.TotalScore += scoreDelta
	if s.ReviewNumber == 0 {
		s.TotalScore = 0
	}
	s.UpdatedAt = at
	return nil
}
