// Package main runs the catalog projector behind an EventBridge rule.
package main

import (
	"context"
	"log"

	"marketplace/application/projections"
	domainevents "marketplace/domain/events"
	"marketplace/infrastructure/config"
	"marketplace/infrastructure/di"
	"marketplace/pkg/observability"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var (
	projector *projections.Projector
	tracer    *observability.Tracer
	logger    *zap.Logger
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, _, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	projector = container.Projector
	tracer = container.Tracer
	logger = container.Logger
}

// Handler applies one EventBridge delivery. The detail-type names the event
// and the detail carries its JSON body. A returned error makes EventBridge
// retry the delivery.
func Handler(ctx context.Context, event events.CloudWatchEvent) error {
	domainEvent, err := domainevents.Decode(event.DetailType, event.Detail)
	if err != nil {
		// Undecodable payloads never succeed on retry.
		logger.Error("Dropping undecodable event",
			zap.String("id", event.ID),
			zap.String("detail_type", event.DetailType),
			zap.Error(err),
		)
		return nil
	}

	if !projector.CanHandle(domainEvent.GetEventType()) {
		return nil
	}

	return tracer.TraceFunction(ctx, "projector."+domainEvent.GetEventType(), func(ctx context.Context) error {
		tracer.AddAnnotation(ctx, "event_id", domainEvent.GetEventID())
		return projector.Handle(ctx, domainEvent)
	})
}

func main() {
	lambda.Start(Handler)
}
