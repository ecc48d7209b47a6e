package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// CloudWatchAPI is the subset of the CloudWatch client used here.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchGauge publishes the cached entity count per kind.
type CloudWatchGauge struct {
	namespace string
	client    CloudWatchAPI
	now       func() time.Time
}

// NewCloudWatchGauge creates a new gauge publisher
func NewCloudWatchGauge(namespace string, client CloudWatchAPI, now func() time.Time) *CloudWatchGauge {
	return &CloudWatchGauge{
		namespace: namespace,
		client:    client,
		now:       now,
	}
}

// ReportCachedEntities sends the CachedEntities datum for kind.
func (g *CloudWatchGauge) ReportCachedEntities(ctx context.Context, kind string, count int) error {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(g.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("CachedEntities"),
				Dimensions: []types.Dimension{
					{
						Name:  aws.String("Kind"),
						Value: aws.String(kind),
					},
				},
				Value:     aws.Float64(float64(count)),
				Unit:      types.StandardUnitCount,
				Timestamp: aws.Time(g.now()),
			},
		},
	}

	if _, err := g.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("failed to put CachedEntities metric: %w", err)
	}
	return nil
}
