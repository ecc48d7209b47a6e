package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UpdateItemAPI is the DynamoDB call the window limiter needs.
type UpdateItemAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// WindowLimiter counts requests per key in fixed windows stored in DynamoDB,
// so the limit holds across Lambda invocations. The table is keyed by
// "pk" and should have TTL enabled on "ttl".
type WindowLimiter struct {
	client    UpdateItemAPI
	tableName string
	limit     int
	window    time.Duration
	now       func() time.Time
}

// NewWindowLimiter allows limit requests per key per window.
func NewWindowLimiter(client UpdateItemAPI, tableName string, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		client:    client,
		tableName: tableName,
		limit:     limit,
		window:    window,
		now:       time.Now,
	}
}

// Allow atomically increments the counter of the current window unless it
// already reached the limit. Store failures fail open and are returned so the
// caller can log them.
func (r *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowStart := r.now().Truncate(r.window)
	windowEnd := windowStart.Add(r.window)
	pk := fmt.Sprintf("ratelimit#%s#%d", key, windowStart.Unix())

	update := expression.
		Set(expression.Name("request_count"), expression.Plus(
			expression.IfNotExists(expression.Name("request_count"), expression.Value(0)),
			expression.Value(1),
		)).
		Set(expression.Name("ttl"), expression.Value(windowEnd.Add(time.Hour).Unix()))
	cond := expression.Or(
		expression.AttributeNotExists(expression.Name("request_count")),
		expression.Name("request_count").LessThan(expression.Value(r.limit)),
	)

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return true, fmt.Errorf("failed to build rate limit expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return true, fmt.Errorf("rate limiter error (failing open): %w", err)
	}
	return true, nil
}
