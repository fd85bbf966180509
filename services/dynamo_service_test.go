package services

import (
	"context"
	"errors"
	"testing"

	"satex_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transactStub implements just enough of DynamoAPI to script
// TransactWriteItems outcomes.
type transactStub struct {
	DynamoAPI
	calls   int
	results []error
}

func (s *transactStub) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	err := s.results[s.calls]
	s.calls++
	if err != nil {
		return nil, err
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func conflictErr() error {
	return &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("TransactionConflict")},
			{Code: aws.String("None")},
		},
	}
}

func conditionErr() error {
	return &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
}

func TestTransactWriteRetriesConflicts(t *testing.T) {
	stub := &transactStub{results: []error{conflictErr(), conflictErr(), nil}}
	ds := &DynamoService{Client: stub}

	err := ds.TransactWrite(context.Background(), []types.TransactWriteItem{})
	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls)
}

func TestTransactWriteGivesUpAfterRetries(t *testing.T) {
	stub := &transactStub{results: []error{conflictErr(), conflictErr(), conflictErr()}}
	ds := &DynamoService{Client: stub}

	err := ds.TransactWrite(context.Background(), []types.TransactWriteItem{})
	require.Error(t, err)
	assert.Equal(t, transactRetries, stub.calls)
}

func TestTransactWriteConditionFailureNeverRetried(t *testing.T) {
	stub := &transactStub{results: []error{conditionErr()}}
	ds := &DynamoService{Client: stub}

	err := ds.TransactWrite(context.Background(), []types.TransactWriteItem{})
	assert.ErrorIs(t, err, ErrConditionFailed)
	assert.Equal(t, 1, stub.calls)
}

func TestTransactWriteOtherErrorsSurfaceImmediately(t *testing.T) {
	boom := errors.New("throttled")
	stub := &transactStub{results: []error{boom}}
	ds := &DynamoService{Client: stub}

	err := ds.TransactWrite(context.Background(), []types.TransactWriteItem{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stub.calls)
}

func TestGetItemNotFound(t *testing.T) {
	_, dynamo := newTestDynamo()

	_, err := dynamo.GetItem(context.Background(), models.UsersTable, MarshalKey("userId", "ghost"))
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateItemRequiresKeyAndExpression(t *testing.T) {
	_, dynamo := newTestDynamo()

	_, err := dynamo.UpdateItem(context.Background(), models.UsersTable, "SET x = :x", nil, nil, nil)
	assert.Error(t, err)
	_, err = dynamo.UpdateItem(context.Background(), models.UsersTable, "", MarshalKey("userId", "nova"), nil, nil)
	assert.Error(t, err)
}
