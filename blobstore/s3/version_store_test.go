package s3

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu      sync.Mutex
	items   map[string]map[string]types.AttributeValue
	putErr  error
	queries int
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return nil, m.putErr
	}

	ns := params.Item["ns"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := ns + ":" + version

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(#v)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++

	ns := params.ExpressionAttributeValues[":ns"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["ns"].(*types.AttributeValueMemberS).Value == ns {
			items = append(items, item)
		}
	}

	number := func(item map[string]types.AttributeValue) uint64 {
		n, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return n
	}
	sort.Slice(items, func(i, j int) bool { return number(items[i]) > number(items[j]) })

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func TestVersionStore_NoVersion(t *testing.T) {
	store := NewVersionStore(newMockDDBClient(), "termcluster-versions", "s3://b/c/")
	_, err := store.Current(context.Background())
	assert.ErrorIs(t, err, ErrNoVersion)
}

func TestVersionStore_PublishAndCurrent(t *testing.T) {
	ctx := context.Background()
	store := NewVersionStore(newMockDDBClient(), "termcluster-versions", "s3://b/c/")

	for i := 1; i <= 11; i++ {
		v, err := store.Publish(ctx, fmt.Sprintf("centroids-%03d.csv.zst", i), 128)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), v.Number)
	}

	// Numeric, not lexical, ordering: 11 > 9.
	cur, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, Version{Number: 11, Blob: "centroids-011.csv.zst", Clusters: 128}, cur)
}

func TestVersionStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	a := NewVersionStore(ddb, "t", "s3://b/a/")
	b := NewVersionStore(ddb, "t", "s3://b/b/")

	_, err := a.Publish(ctx, "a.csv", 2)
	require.NoError(t, err)

	_, err = b.Current(ctx)
	assert.ErrorIs(t, err, ErrNoVersion)
}

func TestVersionStore_ConcurrentPublish(t *testing.T) {
	ctx := context.Background()
	store := NewVersionStore(newMockDDBClient(), "t", "s3://b/c/")
	_, err := store.Publish(ctx, "v1.csv", 2)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := store.Publish(ctx, fmt.Sprintf("v%d.csv", id+2), 2)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	assert.Greater(t, successes, 0, "at least one publisher should succeed")
}

func TestVersionStore_APIErrorCode(t *testing.T) {
	ddb := newMockDDBClient()
	ddb.putErr = &smithy.GenericAPIError{Code: "ConditionalCheckFailedException", Message: "lost race"}
	store := NewVersionStore(ddb, "t", "ns")

	_, err := store.Publish(context.Background(), "v.csv", 1)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	ddb.putErr = &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException"}
	_, err = store.Publish(context.Background(), "v.csv", 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrConcurrentModification)
}

func TestDecodeVersion_Invalid(t *testing.T) {
	_, err := decodeVersion(map[string]types.AttributeValue{})
	assert.Error(t, err)

	_, err = decodeVersion(map[string]types.AttributeValue{
		"version": &types.AttributeValueMemberN{Value: "x"},
		"blob":    &types.AttributeValueMemberS{Value: "b"},
	})
	assert.Error(t, err)
}
