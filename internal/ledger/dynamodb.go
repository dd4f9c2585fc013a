package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of *dynamodb.Client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBStore keeps records as items in one DynamoDB table with string hash key "id".
type DynamoDBStore struct {
	client DynamoDBAPI
	table  string
	logger *zap.Logger
}

// NewDynamoDBClient builds a client from the default AWS credential chain.
// A non-empty endpoint points the client at DynamoDB Local or LocalStack.
func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// NewDynamoDBStore wraps a client for the given table.
func NewDynamoDBStore(client DynamoDBAPI, table string, logger *zap.Logger) *DynamoDBStore {
	return &DynamoDBStore{
		client: client,
		table:  table,
		logger: logger,
	}
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// GetCount reads the counter item with a strongly consistent read
func (s *DynamoDBStore) GetCount(ctx context.Context) (int64, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(CounterKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	if len(out.Item) == 0 {
		return 0, nil
	}

	var rec CounterRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return 0, fmt.Errorf("failed to unmarshal counter record: %w", err)
	}
	return rec.Count, nil
}

// HasVisited checks for the marker item
func (s *DynamoDBStore) HasVisited(ctx context.Context, visitorID string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(s.table),
		Key:                  itemKey(VisitedKey(visitorID)),
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String("id"),
	})
	if err != nil {
		return false, err
	}
	return len(out.Item) > 0, nil
}

// MarkVisited puts the marker item guarded by attribute_not_exists(id)
func (s *DynamoDBStore) MarkVisited(ctx context.Context, visitorID string, at time.Time) (bool, error) {
	key := VisitedKey(visitorID)
	item, err := attributevalue.MarshalMap(VisitedRecord{ID: key, Visited: true, Timestamp: at})
	if err != nil {
		return false, fmt.Errorf("failed to marshal visited record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		s.logger.Debug("visited marker already present", zap.String("key", key))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IncrementCounter adds one with a single conditional update expression
func (s *DynamoDBStore) IncrementCounter(ctx context.Context) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              itemKey(CounterKey),
		UpdateExpression: aws.String("SET #count = if_not_exists(#count, :zero) + :inc"),
		ExpressionAttributeNames: map[string]string{
			"#count": "count",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}

	var rec CounterRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return 0, fmt.Errorf("failed to unmarshal counter record: %w", err)
	}
	return rec.Count, nil
}

// Ping describes the table
func (s *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	return err
}

// Close is a no-op; the SDK client holds no long-lived connections to release.
func (s *DynamoDBStore) Close() error {
	return nil
}
