// Package dynamostore implements the record store on Amazon DynamoDB.
package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	smithymiddleware "github.com/aws/smithy-go/middleware"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/domain/record"
)

// Client is the subset of the DynamoDB API the store uses.
type Client interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// Store is a repository.Store backed by one DynamoDB table keyed by clientesId.
type Store struct {
	client   Client
	table    string
	pageSize int32
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the Scan Limit. Zero leaves paging to DynamoDB (1 MB pages).
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = int32(n) //nolint:gosec // bounded by config validation
		}
	}
}

// New creates a store over client and table.
func New(client Client, table string, opts ...Option) *Store {
	s := &Store{client: client, table: table}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
// endpoint overrides the service URL (DynamoDB Local) when non-empty.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(endpoint))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// EnsureTable creates the table when it does not exist. Used against
// DynamoDB Local; production tables are provisioned outside the service.
func EnsureTable(ctx context.Context, client Client, table string) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		return nil
	}
	var rnfe *ddbtypes.ResourceNotFoundException
	if !errors.As(err, &rnfe) {
		return fmt.Errorf("DescribeTable(%s): %w", table, err)
	}

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: ddbtypes.BillingModePayPerRequest,
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String(record.IDField), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String(record.IDField), KeyType: ddbtypes.KeyTypeHash},
		},
	})
	if err != nil {
		return fmt.Errorf("CreateTable(%s): %w", table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", table, err)
	}
	return nil
}

func (s *Store) key(id string) (map[string]ddbtypes.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]string{record.IDField: id})
}

// Get implements repository.Store.
func (s *Store) Get(ctx context.Context, id string) (*record.Record, error) {
	key, err := s.key(id)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(s.table), Key: key})
	if err != nil {
		return nil, classify(repository.OpGet, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return fromItem(out.Item)
}

// Put implements repository.Store.
func (s *Store) Put(ctx context.Context, r *record.Record) error {
	if _, err := repository.RequireID(r); err != nil {
		return err
	}
	item, err := toItem(r)
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(s.table), Item: item}); err != nil {
		return classify(repository.OpPut, err)
	}
	return nil
}

// UpdateField implements repository.Store. The key attribute is rejected by
// DynamoDB itself with a ValidationException.
func (s *Store) UpdateField(ctx context.Context, id, field string, value record.Value) (repository.UpdateResult, error) {
	key, err := s.key(id)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	av, err := toAttributeValue(value)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key,
		UpdateExpression:          aws.String("SET #field = :value"),
		ExpressionAttributeNames:  map[string]string{"#field": field},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{":value": av},
		ReturnValues:              ddbtypes.ReturnValueUpdatedNew,
	})
	if err != nil {
		return repository.UpdateResult{}, classify(repository.OpUpdate, err)
	}
	attrs, err := fromItem(out.Attributes)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	return repository.UpdateResult{
		Attributes:       attrs,
		ResponseMetadata: metadata(out.ResultMetadata),
	}, nil
}

// Delete implements repository.Store.
func (s *Store) Delete(ctx context.Context, id string) (repository.DeleteResult, error) {
	key, err := s.key(id)
	if err != nil {
		return repository.DeleteResult{}, err
	}
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: aws.String(s.table), Key: key})
	if err != nil {
		return repository.DeleteResult{}, classify(repository.OpDelete, err)
	}
	return repository.DeleteResult{ResponseMetadata: metadata(out.ResultMetadata)}, nil
}

// Scan implements repository.Store. The token is the clientesId of
// LastEvaluatedKey.
func (s *Store) Scan(ctx context.Context, token string) (repository.Page, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(s.table)}
	if s.pageSize > 0 {
		in.Limit = aws.Int32(s.pageSize)
	}
	if token != "" {
		start, err := s.key(token)
		if err != nil {
			return repository.Page{}, err
		}
		in.ExclusiveStartKey = start
	}

	out, err := s.client.Scan(ctx, in)
	if err != nil {
		return repository.Page{}, classify(repository.OpScan, err)
	}

	page := repository.Page{Items: make([]*record.Record, 0, len(out.Items))}
	for _, item := range out.Items {
		r, err := fromItem(item)
		if err != nil {
			return repository.Page{}, err
		}
		page.Items = append(page.Items, r)
	}

	if len(out.LastEvaluatedKey) > 0 {
		var last struct {
			ID string `dynamodbav:"clientesId"`
		}
		if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &last); err != nil || last.ID == "" {
			return repository.Page{}, fmt.Errorf("%w: %v", repository.ErrInvalidToken, out.LastEvaluatedKey)
		}
		page.Next = last.ID
	}
	return page, nil
}

func metadata(md smithymiddleware.Metadata) repository.Metadata {
	id, _ := awsmiddleware.GetRequestIDMetadata(md)
	return repository.NewMetadata(id)
}

// classify turns service-reported failures into repository.StoreError.
// Transport failures and cancellations pass through unchanged.
func classify(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &repository.StoreError{
			Op:      op,
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
			Err:     err,
		}
	}
	return err
}
