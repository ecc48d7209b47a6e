package validators

import (
	"strings"
	"testing"

	"marketplace/domain/core/entities"
	"marketplace/domain/core/valueobjects"
	"marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func validShop() entities.Shop {
	return entities.Shop{
		ShopID:   "s1",
		ShopName: "Daegu Makchang",
		SalesInfo: entities.SalesInfo{
			OpenTime:  "11:00",
			CloseTime: "22:00",
			RestDays:  []valueobjects.Weekday{valueobjects.Monday},
			IsOpen:    true,
		},
		LatLon: entities.LatLon{Latitude: 35.8, Longitude: 128.7},
		CategoryInfo: entities.CategoryInfo{
			Category:       valueobjects.CategoryKorean,
			DetailCategory: []valueobjects.DetailCategory{valueobjects.DetailKoreanBBQ},
		},
		DeliveryTipPerDistanceList: []entities.DeliveryTip{
			{DistanceMeter: 1000, Tip: 0},
			{DistanceMeter: 3000, Tip: 2000},
		},
	}
}

func TestShopValidator_BranchExclusivity(t *testing.T) {
	tests := []struct {
		name       string
		isBranch   bool
		branchName *string
		wantErr    bool
	}{
		{"branch with empty name", true, strPtr(""), true},
		{"branch with nil name", true, nil, true},
		{"branch with name", true, strPtr("X"), false},
		{"main store without name", false, nil, false},
		{"main store with empty name", false, strPtr(""), false},
		{"main store with name", false, strPtr("X"), true},
	}

	v := NewShopValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := validShop()
			shop.BranchInfo = entities.BranchInfo{IsBranch: tt.isBranch, BranchName: tt.branchName}

			verrs := errors.NewValidationErrors()
			v.Validate(shop, verrs)

			assert.Equal(t, tt.wantErr, verrs.HasErrors())
			assert.Equal(t, tt.wantErr, verrs.HasCode(errors.CodeBranchInfoInvalid))
		})
	}
}

func TestShopValidator_CollectsEveryViolation(t *testing.T) {
	shop := validShop()
	shop.LatLon = entities.LatLon{Latitude: 40.0, Longitude: 140.0}
	shop.SalesInfo.OpenTime = "25:00"
	shop.CategoryInfo.DetailCategory = []valueobjects.DetailCategory{valueobjects.DetailSushi}
	shop.DeliveryTipPerDistanceList = []entities.DeliveryTip{
		{DistanceMeter: 2000, Tip: 1000},
		{DistanceMeter: 2000, Tip: -1},
	}

	verrs := errors.NewValidationErrors()
	NewShopValidator(nil).Validate(shop, verrs)

	fields := make([]string, 0, len(verrs.Errors))
	for _, e := range verrs.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"lat_lon.latitude",
		"lat_lon.longitude",
		"sales_info.open_time",
		"category_info.detail_category[0]",
		"delivery_tip_per_distance_list[1].distance_meter",
		"delivery_tip_per_distance_list[1].tip",
	}, fields)
	assert.True(t, verrs.HasCode(errors.CodeRegionInvalid))
}

func TestShopValidator_ValidShop(t *testing.T) {
	verrs := errors.NewValidationErrors()
	NewShopValidator(nil).Validate(validShop(), verrs)
	assert.False(t, verrs.HasErrors(), verrs.Error())
}

func TestReviewValidator_ScoreRange(t *testing.T) {
	tests := []struct {
		score   float64
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{0.5, false},
		{10, false},
		{10.0001, true},
	}

	v := NewReviewValidator(nil)
	for _, tt := range tests {
		verrs := errors.NewValidationErrors()
		v.Validate(entities.ShopReview{ReviewScore: tt.score}, verrs)
		assert.Equal(t, tt.wantErr, verrs.HasErrors(), "score %v", tt.score)
	}
}

func TestReviewValidator_ContentAndPhotos(t *testing.T) {
	review := entities.ShopReview{
		ReviewScore:     8,
		ReviewContent:   strings.Repeat("맛", 201),
		ReviewPhotoList: []string{"https://cdn.example.com/a.jpg", "ftp://nope"},
	}

	verrs := errors.NewValidationErrors()
	NewReviewValidator(nil).Validate(review, verrs)

	assert.Len(t, verrs.Errors, 2)

	review.ReviewContent = strings.Repeat("맛", 200)
	review.ReviewPhotoList = review.ReviewPhotoList[:1]
	verrs = errors.NewValidationErrors()
	NewReviewValidator(nil).Validate(review, verrs)
	assert.False(t, verrs.HasErrors())
}

func TestReplyValidator_ContentLength(t *testing.T) {
	v := NewReplyValidator(nil)

	verrs := errors.NewValidationErrors()
	v.Validate(entities.Reply{Content: strings.Repeat("a", 100)}, verrs)
	assert.False(t, verrs.HasErrors())

	v.Validate(entities.Reply{Content: strings.Repeat("a", 101)}, verrs)
	assert.True(t, verrs.HasErrors())
}
