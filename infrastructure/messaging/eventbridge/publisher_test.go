package eventbridge

import (
	"context"
	"fmt"
	"testing"
	"time"

	"marketplace/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventBridge struct {
	calls  []*eventbridge.PutEventsInput
	failed int32
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	out := &eventbridge.PutEventsOutput{FailedEntryCount: f.failed}
	for i := range in.Entries {
		entry := types.PutEventsResultEntry{EventId: aws.String(fmt.Sprintf("eb-%d", i))}
		if int32(i) < f.failed {
			entry.ErrorCode = aws.String("InternalFailure")
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func TestPublisher_SplitsIntoBatchesOfTen(t *testing.T) {
	client := &fakeEventBridge{}
	p := NewPublisher(client, "catalog-bus", zap.NewNop())

	batch := make([]events.DomainEvent, 0, 23)
	for i := 0; i < 23; i++ {
		batch = append(batch, events.NewShopDeleted(fmt.Sprintf("s%d", i), time.Now()))
	}
	require.NoError(t, p.PublishBatch(context.Background(), batch))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].Entries, 10)
	assert.Len(t, client.calls[2].Entries, 3)

	entry := client.calls[0].Entries[0]
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeShopDeleted, aws.ToString(entry.DetailType))

	decoded, err := events.Decode(aws.ToString(entry.DetailType), []byte(aws.ToString(entry.Detail)))
	require.NoError(t, err)
	assert.Equal(t, "s0", decoded.GetAggregateID())
}

func TestPublisher_ReportsFailedEntries(t *testing.T) {
	p := NewPublisher(&fakeEventBridge{failed: 1}, "catalog-bus", zap.NewNop())

	err := p.Publish(context.Background(), events.NewShopDeleted("s1", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 events failed to publish")
}
