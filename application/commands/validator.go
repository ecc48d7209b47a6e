package commands

import (
	"time"

	"marketplace/application/commands/bus"
	"marketplace/domain/config"
	"marketplace/domain/core/validators"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/utils"
)

// Validator runs presence checks and business rules together so a request
// learns about every violation at once.
type Validator struct {
	cfg     *config.DomainConfig
	shops   *validators.ShopValidator
	reviews *validators.ReviewValidator
	replies *validators.ReplyValidator
}

// NewValidator creates a command validator; a nil config uses the defaults.
func NewValidator(cfg *config.DomainConfig) *Validator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Validator{
		cfg:     cfg,
		shops:   validators.NewShopValidator(cfg),
		reviews: validators.NewReviewValidator(cfg),
		replies: validators.NewReplyValidator(cfg),
	}
}

// Validate returns a *ValidationErrors listing every violation, or nil.
func (v *Validator) Validate(cmd bus.Command) error {
	verrs := apperrors.NewValidationErrors()
	verrs.Merge(utils.ValidateStruct(cmd))

	switch c := cmd.(type) {
	case CreateShopCommand:
		v.shops.Validate(c.ToShop(c.ShopID, time.Time{}), verrs)
	case CreateReviewCommand:
		review := c.ToReview(c.ReviewID, time.Time{})
		if c.ReviewScore == nil {
			// missing score is already reported by the presence check
			review.ReviewScore = v.cfg.MaxReviewScore
		}
		v.reviews.Validate(review, verrs)
	case CreateReplyCommand:
		v.replies.Validate(c.ToReply(c.ReplyID, time.Time{}), verrs)
	}

	if verrs.HasErrors() {
		return verrs
	}
	return nil
}

var _ bus.Validator = (*Validator)(nil)
