package handlers

import (
	"net/http"

	"marketplace/application/commands"
	"marketplace/application/commands/bus"
	"marketplace/pkg/common"
	apperrors "marketplace/pkg/errors"

	"go.uber.org/zap"
)

// CommandHandler serves the catalog write endpoints.
type CommandHandler struct {
	commandBus *bus.CommandBus
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(commandBus *bus.CommandBus, errors *apperrors.ErrorHandler, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		commandBus: commandBus,
		errors:     errors,
		logger:     logger,
	}
}

// CreateShop handles POST /shops
func (h *CommandHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreateShopCommand
	if err := decodeBody(w, r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.send(w, r, http.StatusCreated, cmd)
}

// DeleteShop handles DELETE /shops/{shopID}
func (h *CommandHandler) DeleteShop(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathParam(r, "shopID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.send(w, r, http.StatusOK, commands.DeleteShopCommand{ShopID: shopID})
}

// CreateReview handles POST /reviews
func (h *CommandHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreateReviewCommand
	if err := decodeBody(w, r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.send(w, r, http.StatusCreated, cmd)
}

// DeleteReview handles DELETE /reviews/{reviewID}
func (h *CommandHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathParam(r, "reviewID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.send(w, r, http.StatusOK, commands.DeleteReviewCommand{ReviewID: reviewID})
}

// CreateReply handles POST /replies
func (h *CommandHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreateReplyCommand
	if err := decodeBody(w, r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.send(w, r, http.StatusCreated, cmd)
}

// DeleteReply handles DELETE /replies/{replyID}?review_id=
func (h *CommandHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	replyID, err := pathParam(r, "replyID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	reviewID, err := queryParam(r, "review_id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.send(w, r, http.StatusOK, commands.DeleteReplyCommand{ReplyID: replyID, ReviewID: reviewID})
}

func (h *CommandHandler) send(w http.ResponseWriter, r *http.Request, status int, cmd bus.Command) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondWithMeta(w, status, result, meta(r))
}
