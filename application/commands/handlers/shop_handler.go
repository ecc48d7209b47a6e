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

// ShopHandler handles shop commands
type ShopHandler struct {
	shops  ports.ShopStore
	events eventSink
	now    utils.Clock
	logger *zap.Logger
}

// NewShopHandler creates a new shop handler
func NewShopHandler(
	shops ports.ShopStore,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	now utils.Clock,
	logger *zap.Logger,
) *ShopHandler {
	return &ShopHandler{
		shops:  shops,
		events: eventSink{publisher: publisher, metrics: metrics, logger: logger},
		now:    now,
		logger: logger,
	}
}

// Create stores a new shop and announces it with its full snapshot.
func (h *ShopHandler) Create(ctx context.Context, cmd commands.CreateShopCommand) (entities.Shop, error) {
	shop := cmd.ToShop(valueobjects.ResolveID(cmd.ShopID), h.now())

	if err := h.shops.Create(ctx, shop); err != nil {
		if errors.Is(err, ports.ErrAlreadyExists) {
			return entities.Shop{}, apperrors.ErrShopAlreadyExists.New().WithDetail("shop_id", shop.ShopID)
		}
		return entities.Shop{}, err
	}

	h.events.publish(ctx, events.NewShopCreated(shop, shop.CreatedAt))

	h.logger.Info("Shop created",
		zap.String("shop_id", shop.ShopID),
		zap.String("shop_name", shop.ShopName),
	)
	return shop, nil
}

// Delete soft-deletes a shop. A shop that is missing or already deleted
// yields SHOP_NOT_FOUND and no event.
func (h *ShopHandler) Delete(ctx context.Context, cmd commands.DeleteShopCommand) (entities.Shop, error) {
	at := h.now()
	shop, err := h.shops.SoftDelete(ctx, cmd.ShopID, at)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return entities.Shop{}, apperrors.ErrShopNotFound.New().WithDetail("shop_id", cmd.ShopID)
		}
		return entities.Shop{}, err
	}

	h.events.publish(ctx, events.NewShopDeleted(cmd.ShopID, at))

	h.logger.Info("Shop deleted", zap.String("shop_id", cmd.ShopID))
	return shop, nil
}
