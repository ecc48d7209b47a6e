package handlers

import (
	"marketplace/application/commands"
	"marketplace/application/commands/bus"
)

// Register binds every catalog command to its handler on b.
func Register(b *bus.CommandBus, shops *ShopHandler, reviews *ReviewHandler, replies *ReplyHandler) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateShopCommand{}, bus.Typed(shops.Create)},
		{commands.DeleteShopCommand{}, bus.Typed(shops.Delete)},
		{commands.CreateReviewCommand{}, bus.Typed(reviews.Create)},
		{commands.DeleteReviewCommand{}, bus.Typed(reviews.Delete)},
		{commands.CreateReplyCommand{}, bus.Typed(replies.Create)},
		{commands.DeleteReplyCommand{}, bus.Typed(replies.Delete)},
	}

	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
