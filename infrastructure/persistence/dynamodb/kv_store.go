package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// KVStore implements the key-value adapter port on a single DynamoDB table.
// Each logical key maps to one item; values are opaque JSON text.
type KVStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewKVStore creates a DynamoDB-backed key-value store
func NewKVStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *KVStore {
	return &KVStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// kvItem is the DynamoDB item structure for one key
type kvItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Key       string `dynamodbav:"ItemKey"`
	Value     string `dynamodbav:"ItemValue"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("KV#%s", key)},
		"SK": &types.AttributeValueMemberS{Value: "VALUE"},
	}
}

// Get retrieves the value for a key; the bool reports presence
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(key),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	if out.Item == nil {
		return "", false, nil
	}

	var item kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal key %q: %w", key, err)
	}

	return item.Value, true, nil
}

// Set stores a value under a key, overwriting any previous value
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	item := kvItem{
		PK:        fmt.Sprintf("KV#%s", key),
		SK:        "VALUE",
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal key %q: %w", key, err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to write key to DynamoDB",
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}

	return nil
}

// Remove deletes a key; deleting an absent key is a no-op
func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(key),
	}); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

// RemoveByPrefix deletes every key with the given prefix. Keys are found
// with a filtered scan on the stored logical key, then deleted one by one;
// a failed delete aborts the erasure so the caller does not proceed to
// sign-out with data left behind.
func (s *KVStore) RemoveByPrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("prefix cannot be empty")
	}

	filter := expression.BeginsWith(expression.Name("ItemKey"), prefix)
	proj := expression.NamesList(expression.Name("PK"), expression.Name("SK"))
	expr, err := expression.NewBuilder().WithFilter(filter).WithProjection(proj).Build()
	if err != nil {
		return fmt.Errorf("failed to build scan expression: %w", err)
	}

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return fmt.Errorf("failed to scan prefix %q: %w", prefix, err)
		}

		for _, item := range out.Items {
			if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"PK": item["PK"],
					"SK": item["SK"],
				},
			}); err != nil {
				return fmt.Errorf("failed to remove prefix %q: %w", prefix, err)
			}
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return nil
}
