package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/application/ports"
	apperrors "marketplace/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	attrDeletedAt = "deleted_at"
	attrUpdatedAt = "updated_at"
)

// API is the subset of the DynamoDB client used by this package.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TableConfig describes one entity table.
type TableConfig struct {
	TableName string
	// KeyAttribute is the partition key, e.g. "shop_id".
	KeyAttribute string
	// TouchUpdatedAt sets updated_at alongside deleted_at on soft delete.
	TouchUpdatedAt bool
}

// Table is a ports.Store over a single-key DynamoDB table. Records are
// soft-deleted by stamping deleted_at; every read filters them out.
type Table[T ports.Entity[T]] struct {
	client API
	config TableConfig
	logger *zap.Logger
}

// NewTable creates a new Table
func NewTable[T ports.Entity[T]](client API, config TableConfig, logger *zap.Logger) *Table[T] {
	return &Table[T]{
		client: client,
		config: config,
		logger: logger.With(zap.String("table", config.TableName)),
	}
}

func (t *Table[T]) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		t.config.KeyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

// Get reads a live record with a consistent read.
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.config.TableName),
		Key:            t.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return zero, classify("GetItem", err)
	}
	if result.Item == nil {
		return zero, ports.ErrNotFound
	}
	if _, deleted := result.Item[attrDeletedAt]; deleted {
		return zero, ports.ErrNotFound
	}

	return t.decode(result.Item)
}

// List scans every live record.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	items, err := t.scan(ctx, liveFilter(), nil)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(items))
	for _, item := range items {
		record, err := t.decode(item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ListIDs scans the keys of every live record.
func (t *Table[T]) ListIDs(ctx context.Context) ([]string, error) {
	return t.scanIDs(ctx, liveFilter())
}

// ListIDsBy scans the keys of live records whose field equals value.
func (t *Table[T]) ListIDsBy(ctx context.Context, field, value string) ([]string, error) {
	filter := liveFilter().And(expression.Name(field).Equal(expression.Value(value)))
	return t.scanIDs(ctx, filter)
}

// Count counts live records with a COUNT scan.
func (t *Table[T]) Count(ctx context.Context) (int, error) {
	expr, err := expression.NewBuilder().WithFilter(liveFilter()).Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(t.client, &dynamodb.ScanInput{
		TableName:                 aws.String(t.config.TableName),
		Select:                    types.SelectCount,
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, classify("Scan", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

// Create inserts a record unless its key already exists, deleted or not.
func (t *Table[T]) Create(ctx context.Context, record T) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name(t.config.KeyAttribute).AttributeNotExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(t.config.TableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ports.ErrAlreadyExists
		}
		return classify("PutItem", err)
	}

	t.logger.Debug("Record created", zap.String("id", record.EntityID()))
	return nil
}

// Put overwrites a record.
func (t *Table[T]) Put(ctx context.Context, record T) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.config.TableName),
		Item:      item,
	})
	if err != nil {
		return classify("PutItem", err)
	}
	return nil
}

// SoftDelete stamps deleted_at on a live record and returns the result.
func (t *Table[T]) SoftDelete(ctx context.Context, id string, at time.Time) (T, error) {
	update := expression.Set(expression.Name(attrDeletedAt), expression.Value(at))
	if t.config.TouchUpdatedAt {
		update = update.Set(expression.Name(attrUpdatedAt), expression.Value(at))
	}

	record, err := t.update(ctx, id, update, t.liveCondition())
	if errors.Is(err, errConditionFailed) {
		var zero T
		return zero, ports.ErrNotFound
	}
	if err == nil {
		t.logger.Debug("Record soft-deleted", zap.String("id", id))
	}
	return record, err
}

var errConditionFailed = errors.New("condition check failed")

// update applies an update expression guarded by cond and returns the new
// image. A failed guard is reported as errConditionFailed.
func (t *Table[T]) update(ctx context.Context, id string, update expression.UpdateBuilder, cond expression.ConditionBuilder) (T, error) {
	var zero T

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(cond).
		Build()
	if err != nil {
		return zero, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.config.TableName),
		Key:                       t.key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return zero, errConditionFailed
		}
		return zero, classify("UpdateItem", err)
	}

	return t.decode(result.Attributes)
}

// liveCondition matches an existing record that is not soft-deleted.
func (t *Table[T]) liveCondition() expression.ConditionBuilder {
	return expression.Name(t.config.KeyAttribute).AttributeExists().
		And(expression.Name(attrDeletedAt).AttributeNotExists())
}

func liveFilter() expression.ConditionBuilder {
	return expression.Name(attrDeletedAt).AttributeNotExists()
}

func (t *Table[T]) scanIDs(ctx context.Context, filter expression.ConditionBuilder) ([]string, error) {
	projection := expression.NamesList(expression.Name(t.config.KeyAttribute))
	items, err := t.scan(ctx, filter, &projection)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item[t.config.KeyAttribute].(*types.AttributeValueMemberS); ok {
			ids = append(ids, s.Value)
		}
	}
	return ids, nil
}

// scan walks every page of a filtered scan, optionally projected.
func (t *Table[T]) scan(ctx context.Context, filter expression.ConditionBuilder, projection *expression.ProjectionBuilder) ([]map[string]types.AttributeValue, error) {
	builder := expression.NewBuilder().WithFilter(filter)
	if projection != nil {
		builder = builder.WithProjection(*projection)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(t.config.TableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if projection != nil {
		input.ProjectionExpression = expr.Projection()
	}

	items := make([]map[string]types.AttributeValue, 0)
	paginator := dynamodb.NewScanPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify("Scan", err)
		}
		items = append(items, page.Items...)
	}

	t.logger.Debug("Scan completed", zap.Int("items", len(items)))
	return items, nil
}

func (t *Table[T]) decode(item map[string]types.AttributeValue) (T, error) {
	var record T
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return record, fmt.Errorf("failed to unmarshal %s record: %w", t.config.TableName, err)
	}
	return record, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// retryableCodes are the DynamoDB error codes worth retrying.
var retryableCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
}

// classify wraps an AWS error as a store error, marking throttling and
// server-side failures retryable.
func classify(operation string, err error) error {
	retryable := false
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		retryable = retryableCodes[apiErr.ErrorCode()]
	}
	return apperrors.NewDatabaseError(operation, err, retryable)
}
