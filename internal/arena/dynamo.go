package arena

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB key layout: one item per contestant.
const (
	pkPrefix = "MODEL#"
	skRating = "RATING"
)

// ErrConcurrentVote is returned when another vote updated a contestant
// between read and write.
var ErrConcurrentVote = errors.New("contestant changed during vote, retry")

// DynamoAPI is the subset of *dynamodb.Client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

// DynamoStore keeps contestants in a single DynamoDB table.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func contestantPK(id string) string {
	return pkPrefix + id
}

func (s *DynamoStore) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: contestantPK(id)},
		"SK": &types.AttributeValueMemberS{Value: skRating},
	}
}

func (s *DynamoStore) item(c Contestant) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", c.ID, err)
	}
	for k, v := range s.key(c.ID) {
		item[k] = v
	}
	return item, nil
}

// Get implements Store.
func (s *DynamoStore) Get(ctx context.Context, id string) (Contestant, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Contestant{}, false, fmt.Errorf("GetItem PK=%s: %w", contestantPK(id), err)
	}
	if result.Item == nil {
		return Contestant{}, false, nil
	}
	var c Contestant
	if err := attributevalue.UnmarshalMap(result.Item, &c); err != nil {
		return Contestant{}, false, fmt.Errorf("unmarshal PK=%s: %w", contestantPK(id), err)
	}
	return c, true, nil
}

// Put implements Store.
func (s *DynamoStore) Put(ctx context.Context, c Contestant) error {
	item, err := s.item(c)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s: %w", contestantPK(c.ID), err)
	}
	return nil
}

// SaveMatch implements Store. Both items are written in one transaction,
// conditioned on each vote count being one less than the new value.
func (s *DynamoStore) SaveMatch(ctx context.Context, a, b Contestant) error {
	var items []types.TransactWriteItem
	for _, c := range []Contestant{a, b} {
		item, err := s.item(c)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           &s.tableName,
				Item:                item,
				ConditionExpression: aws.String("totalVotes = :prev"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":prev": &types.AttributeValueMemberN{Value: strconv.Itoa(c.TotalVotes - 1)},
				},
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var cancelled *types.TransactionCanceledException
		if errors.As(err, &cancelled) {
			return fmt.Errorf("%w: %v", ErrConcurrentVote, err)
		}
		return fmt.Errorf("TransactWriteItems %s vs %s: %w", a.ID, b.ID, err)
	}
	return nil
}

// List implements Store.
func (s *DynamoStore) List(ctx context.Context) ([]Contestant, error) {
	var (
		out   []Contestant
		start map[string]types.AttributeValue
	)
	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        &s.tableName,
			FilterExpression: aws.String("SK = :sk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sk": &types.AttributeValueMemberS{Value: skRating},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("Scan %s: %w", s.tableName, err)
		}

		var page []Contestant
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal contestants: %w", err)
		}
		out = append(out, page...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		start = result.LastEvaluatedKey
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
