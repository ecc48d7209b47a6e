package validators

import (
	"fmt"
	"net/url"
	"unicode/utf8"

	"marketplace/domain/config"
	"marketplace/domain/core/entities"
	"marketplace/pkg/errors"
)

// ReviewValidator validates review business rules
type ReviewValidator struct {
	cfg *config.DomainConfig
}

func NewReviewValidator(cfg *config.DomainConfig) *ReviewValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ReviewValidator{cfg: cfg}
}

// Validate appends every rule the review breaks to verrs. The score must lie
// in (MinReviewScore, MaxReviewScore].
func (v *ReviewValidator) Validate(review entities.ShopReview, verrs *errors.ValidationErrors) {
	if review.ReviewScore <= v.cfg.MinReviewScore || review.ReviewScore > v.cfg.MaxReviewScore {
		verrs.Add("review_score", review.ReviewScore,
			fmt.Sprintf("review_score must be greater than %g and at most %g", v.cfg.MinReviewScore, v.cfg.MaxReviewScore))
	}

	if n := utf8.RuneCountInString(review.ReviewContent); n > v.cfg.MaxReviewContentLength {
		verrs.Add("review_content", n,
			fmt.Sprintf("review_content exceeds %d characters", v.cfg.MaxReviewContentLength))
	}
	if n := utf8.RuneCountInString(review.ReviewTitle); n > v.cfg.MaxReviewTitleLength {
		verrs.Add("review_title", review.ReviewTitle,
			fmt.Sprintf("review_title exceeds %d characters", v.cfg.MaxReviewTitleLength))
	}

	if len(review.ReviewPhotoList) > v.cfg.MaxReviewPhotos {
		verrs.Add("review_photo_list", len(review.ReviewPhotoList),
			fmt.Sprintf("at most %d photos are allowed", v.cfg.MaxReviewPhotos))
	}
	for i, photo := range review.ReviewPhotoList {
		if !isHTTPURL(photo) {
			verrs.Add(fmt.Sprintf("review_photo_list[%d]", i), photo, "photo must be an http(s) URL")
		}
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
