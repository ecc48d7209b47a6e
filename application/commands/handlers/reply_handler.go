package handlers

import (
	"context"
	"errors"

	"marketplace/application/commands"
	"marketplace/application/ports"
	"marketplace/domain/core/entities"
	"marketplace/domain/core/valueobjects"
	"marketplace/domain/events"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

// ReplyHandler handles reply commands
type ReplyHandler struct {
	replies   ports.ReplyStore
	directory ports.CatalogDirectory
	events    eventSink
	now       utils.Clock
	logger    *zap.Logger
}

// NewReplyHandler creates a new reply handler
func NewReplyHandler(
	replies ports.ReplyStore,
	directory ports.CatalogDirectory,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	now utils.Clock,
	logger *zap.Logger,
) *ReplyHandler {
	return &ReplyHandler{
		replies:   replies,
		directory: directory,
		events:    eventSink{publisher: publisher, metrics: metrics, logger: logger},
		now:       now,
		logger:    logger,
	}
}

// Create stores the reply to an existing review that has no live reply yet.
func (h *ReplyHandler) Create(ctx context.Context, cmd commands.CreateReplyCommand) (entities.Reply, error) {
	exists, err := h.directory.ReviewExists(ctx, cmd.ReviewID)
	if err != nil {
		return entities.Reply{}, apperrors.ErrCatalogUnavailable.New().
			WithDetail("review_id", cmd.ReviewID).
			WithCause(err)
	}
	if !exists {
		return entities.Reply{}, apperrors.ErrReviewNotFound.New().WithDetail("review_id", cmd.ReviewID)
	}

	existing, err := h.replies.ListIDsBy(ctx, "review_id", cmd.ReviewID)
	if err != nil {
		return entities.Reply{}, err
	}
	if len(existing) > 0 {
		return entities.Reply{}, apperrors.ErrReplyAlreadyExists.New().
			WithDetail("review_id", cmd.ReviewID).
			WithDetail("reply_id", existing[0])
	}

	reply := cmd.ToReply(valueobjects.ResolveID(cmd.ReplyID), h.now())
	if err := h.replies.Create(ctx, reply); err != nil {
		if errors.Is(err, ports.ErrAlreadyExists) {
			return entities.Reply{}, apperrors.ErrReplyAlreadyExists.New().WithDetail("reply_id", reply.ReplyID)
		}
		return entities.Reply{}, err
	}

	h.events.publish(ctx, events.NewReplyCreated(reply, reply.CreatedAt))

	h.logger.Info("Reply created",
		zap.String("reply_id", reply.ReplyID),
		zap.String("review_id", reply.ReviewID),
	)
	return reply, nil
}

// Delete soft-deletes a reply that belongs to cmd.ReviewID.
func (h *ReplyHandler) Delete(ctx context.Context, cmd commands.DeleteReplyCommand) (entities.Reply, error) {
	current, err := h.replies.Get(ctx, cmd.ReplyID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return entities.Reply{}, apperrors.ErrReplyNotFound.New().WithDetail("reply_id", cmd.ReplyID)
		}
		return entities.Reply{}, err
	}
	if current.ReviewID != cmd.ReviewID {
		return entities.Reply{}, apperrors.ErrReplyNotOwned.New().
			WithDetail("reply_id", cmd.ReplyID).
			WithDetail("review_id", cmd.ReviewID)
	}

	at := h.now()
	reply, err := h.replies.SoftDelete(ctx, cmd.ReplyID, at)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return entities.Reply{}, apperrors.ErrReplyNotFound.New().WithDetail("reply_id", cmd.ReplyID)
		}
		return entities.Reply{}, err
	}

	h.events.publish(ctx, events.NewReplyDeleted(reply, at))

	h.logger.Info("Reply deleted",
		zap.String("reply_id", reply.ReplyID),
		zap.String("review_id", reply.ReviewID),
	)
	return reply, nil
}
