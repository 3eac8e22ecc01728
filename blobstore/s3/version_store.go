package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// DDBClient is the subset of the DynamoDB API used by VersionStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var (
	// ErrConcurrentModification is returned when another publisher committed
	// the same version number first.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrNoVersion is returned by Current before the first Publish.
	ErrNoVersion = errors.New("no centroid version published")
)

// Version is one published centroid set.
type Version struct {
	Number   uint64
	Blob     string
	Clusters int
}

// VersionStore keeps the CURRENT centroid version pointer in DynamoDB.
//
// Centroid blobs are immutable; publishing a new set writes a new blob and
// then appends a version row. Workers resolve the newest row once at startup.
//
// Table schema:
//   - Partition key: ns (string)
//   - Sort key: version (number)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name termcluster-versions \
//	  --attribute-definitions AttributeName=ns,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=ns,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type VersionStore struct {
	client    DDBClient
	table     string
	namespace string
}

// NewVersionStore creates a VersionStore for namespace (typically the
// "s3://bucket/prefix" the blobs live under).
func NewVersionStore(client DDBClient, table, namespace string) *VersionStore {
	return &VersionStore{client: client, table: table, namespace: namespace}
}

// NewVersionStoreFromConfig builds the DynamoDB client from cfg.
func NewVersionStoreFromConfig(cfg aws.Config, table, namespace string) *VersionStore {
	return NewVersionStore(dynamodb.NewFromConfig(cfg), table, namespace)
}

// Current returns the newest published version.
func (s *VersionStore) Current(ctx context.Context) (Version, error) {
	resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("ns = :ns"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ns": &types.AttributeValueMemberS{Value: s.namespace},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Version{}, fmt.Errorf("query centroid version: %w", err)
	}
	if len(resp.Items) == 0 {
		return Version{}, ErrNoVersion
	}
	return decodeVersion(resp.Items[0])
}

// Publish records blob as the next version. It fails with
// ErrConcurrentModification if another publisher won the same version number.
func (s *VersionStore) Publish(ctx context.Context, blob string, clusters int) (Version, error) {
	next := Version{Number: 1, Blob: blob, Clusters: clusters}
	cur, err := s.Current(ctx)
	switch {
	case err == nil:
		next.Number = cur.Number + 1
	case !errors.Is(err, ErrNoVersion):
		return Version{}, err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"ns":       &types.AttributeValueMemberS{Value: s.namespace},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(next.Number, 10)},
			"blob":     &types.AttributeValueMemberS{Value: blob},
			"clusters": &types.AttributeValueMemberN{Value: strconv.Itoa(clusters)},
		},
		ConditionExpression:      aws.String("attribute_not_exists(#v)"),
		ExpressionAttributeNames: map[string]string{"#v": "version"},
	})
	if err != nil {
		if isConditionFailed(err) {
			return Version{}, ErrConcurrentModification
		}
		return Version{}, fmt.Errorf("publish centroid version: %w", err)
	}
	return next, nil
}

func isConditionFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return true
	}
	// Wrapped or re-serialized errors only keep the API error code.
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func decodeVersion(item map[string]types.AttributeValue) (Version, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Version{}, errors.New("invalid version attribute in DynamoDB")
	}
	blobAttr, ok := item["blob"].(*types.AttributeValueMemberS)
	if !ok {
		return Version{}, errors.New("invalid blob attribute in DynamoDB")
	}

	number, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("parse version: %w", err)
	}

	v := Version{Number: number, Blob: blobAttr.Value}
	if clustersAttr, ok := item["clusters"].(*types.AttributeValueMemberN); ok {
		if v.Clusters, err = strconv.Atoi(clustersAttr.Value); err != nil {
			return Version{}, fmt.Errorf("parse clusters: %w", err)
		}
	}
	return v, nil
}
