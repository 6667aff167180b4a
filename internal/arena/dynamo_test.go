package arena

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// memDynamo is an in-memory DynamoAPI keyed by PK. Scan returns one item
// per page to exercise pagination.
type memDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func newMemDynamo() *memDynamo {
	return &memDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func pkOf(item map[string]types.AttributeValue) string {
	return item["PK"].(*types.AttributeValueMemberS).Value
}

func (m *memDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: m.items[pkOf(in.Key)]}, nil
}

func (m *memDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.items[pkOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *memDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	startAfter := ""
	if in.ExclusiveStartKey != nil {
		startAfter = pkOf(in.ExclusiveStartKey)
	}
	for i, k := range keys {
		if startAfter != "" && k <= startAfter {
			continue
		}
		out := &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{m.items[k]}}
		if i < len(keys)-1 {
			out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": m.items[k]["PK"], "SK": m.items[k]["SK"]}
		}
		return out, nil
	}
	return &dynamodb.ScanOutput{}, nil
}

func (m *memDynamo) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	for _, ti := range in.TransactItems {
		prev := ti.Put.ExpressionAttributeValues[":prev"].(*types.AttributeValueMemberN).Value
		current, ok := m.items[pkOf(ti.Put.Item)]
		if !ok {
			return nil, &types.TransactionCanceledException{}
		}
		if current["totalVotes"].(*types.AttributeValueMemberN).Value != prev {
			return nil, &types.TransactionCanceledException{}
		}
	}
	for _, ti := range in.TransactItems {
		m.items[pkOf(ti.Put.Item)] = ti.Put.Item
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func TestDynamoStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newMemDynamo()
	s := NewDynamoStore(db, "brainrot")

	for _, id := range []string{"c", "a", "b"} {
		if err := s.Put(ctx, Contestant{ID: id, Model: id, Rating: InitialRating}); err != nil {
			t.Fatal(err)
		}
	}

	item := db.items["MODEL#a"]
	if item["SK"].(*types.AttributeValueMemberS).Value != skRating {
		t.Errorf("SK = %v", item["SK"])
	}

	c, found, err := s.Get(ctx, "a")
	if err != nil || !found || c.Rating != InitialRating {
		t.Errorf("Get() = %+v, %v, %v", c, found, err)
	}
	if _, found, _ := s.Get(ctx, "zzz"); found {
		t.Error("Get() found a missing contestant")
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "a" || all[2].ID != "c" {
		t.Errorf("List() = %+v", all)
	}
}

func TestDynamoStore_SaveMatch(t *testing.T) {
	ctx := context.Background()
	s := NewDynamoStore(newMemDynamo(), "brainrot")
	a := &Arena{Store: s}

	for _, id := range []string{"a", "b"} {
		if err := s.Put(ctx, Contestant{ID: id, Rating: InitialRating}); err != nil {
			t.Fatal(err)
		}
	}

	if _, _, err := a.Vote(ctx, "a", "b", WinA); err != nil {
		t.Fatalf("Vote() error: %v", err)
	}
	got, _, _ := s.Get(ctx, "a")
	if got.Rating != 1016 || got.TotalVotes != 1 {
		t.Errorf("after vote = %+v", got)
	}

	// A stale copy loses the race.
	stale := Contestant{ID: "a", Rating: 1000}
	other, _, _ := s.Get(ctx, "b")
	sa, sb := ApplyMatch(stale, other, WinA, fixedNow)
	if err := s.SaveMatch(ctx, sa, sb); !errors.Is(err, ErrConcurrentVote) {
		t.Errorf("error = %v, want ErrConcurrentVote", err)
	}
}
