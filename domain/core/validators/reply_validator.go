package validators

import (
	"fmt"
	"unicode/utf8"

	"marketplace/domain/config"
	"marketplace/domain/core/entities"
	"marketplace/pkg/errors"
)

// ReplyValidator validates reply business rules
type ReplyValidator struct {
	cfg *config.DomainConfig
}

func NewReplyValidator(cfg *config.DomainConfig) *ReplyValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ReplyValidator{cfg: cfg}
}

func (v *ReplyValidator) Validate(reply entities.Reply, verrs *errors.ValidationErrors) {
	if n := utf8.RuneCountInString(reply.Content); n > v.cfg.MaxReplyContentLength {
		verrs.Add("content", n,
			fmt.Sprintf("content exceeds %d characters", v.cfg.MaxReplyContentLength))
	}
}
