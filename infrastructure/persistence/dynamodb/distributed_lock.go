package dynamodb

import (
	"context"
	"fmt"
	"time"

	"marketplace/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DistributedLock provides distributed locking using DynamoDB conditional writes
type DistributedLock struct {
	client    API
	tableName string
	ownerID   string
	now       func() time.Time
	logger    *zap.Logger
}

// LockRecord represents a lock record in DynamoDB
type LockRecord struct {
	LockKey    string `dynamodbav:"lock_key"`
	LockID     string `dynamodbav:"lock_id"`
	Owner      string `dynamodbav:"owner"`
	AcquiredAt string `dynamodbav:"acquired_at"`
	ExpiresAt  string `dynamodbav:"expires_at"`
	TTL        int64  `dynamodbav:"ttl"` // Unix timestamp for DynamoDB TTL
}

// NewDistributedLock creates a new distributed lock instance. ownerID
// identifies this process in lock records.
func NewDistributedLock(client API, tableName, ownerID string, now func() time.Time, logger *zap.Logger) *DistributedLock {
	return &DistributedLock{
		client:    client,
		tableName: tableName,
		ownerID:   ownerID,
		now:       now,
		logger:    logger,
	}
}

// TryLock attempts to acquire resource once. An unexpired lock held by
// anyone, this owner included, is contention and reported as not acquired.
func (dl *DistributedLock) TryLock(ctx context.Context, resource string, ttl time.Duration) (func(context.Context) error, bool, error) {
	now := dl.now()
	expiresAt := now.Add(ttl)

	record := LockRecord{
		LockKey:    resource,
		LockID:     fmt.Sprintf("%s_%d", dl.ownerID, now.UnixNano()),
		Owner:      dl.ownerID,
		AcquiredAt: now.Format(time.RFC3339Nano),
		ExpiresAt:  expiresAt.Format(time.RFC3339Nano),
		TTL:        expiresAt.Unix(),
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal lock record: %w", err)
	}

	cond := expression.Name("lock_key").AttributeNotExists().
		Or(expression.Name("ttl").LessThan(expression.Value(now.Unix())))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = dl.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(dl.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			dl.logger.Debug("Failed to acquire lock - already held",
				zap.String("resource", resource),
				zap.String("owner", dl.ownerID),
			)
			return nil, false, nil
		}
		return nil, false, classify("PutItem", err)
	}

	dl.logger.Debug("Lock acquired successfully",
		zap.String("resource", resource),
		zap.String("lock_id", record.LockID),
		zap.Duration("duration", ttl),
	)

	release := func(ctx context.Context) error {
		return dl.release(ctx, resource, record.LockID)
	}
	return release, true, nil
}

// release deletes the lock record if it is still ours.
func (dl *DistributedLock) release(ctx context.Context, resource, lockID string) error {
	cond := expression.Name("lock_id").Equal(expression.Value(lockID)).
		And(expression.Name("owner").Equal(expression.Value(dl.ownerID)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = dl.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dl.tableName),
		Key: map[string]types.AttributeValue{
			"lock_key": &types.AttributeValueMemberS{Value: resource},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			dl.logger.Warn("Lock already released or owned by someone else",
				zap.String("resource", resource),
				zap.String("lock_id", lockID),
			)
			return nil
		}
		return classify("DeleteItem", err)
	}

	dl.logger.Debug("Lock released successfully",
		zap.String("resource", resource),
		zap.String("lock_id", lockID),
	)
	return nil
}

var _ ports.Locker = (*DistributedLock)(nil)
