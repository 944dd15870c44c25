package store_dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/models"
)

// AccountIdIndex is the GSI keyed on accountId, sorted by createdAt.
const AccountIdIndex = "accountId-index"

// DynamoDBAPI is the subset of the DynamoDB client used by the run ledger.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type RunStore interface {
	Insert(context.Context, models.Run) error
	GetById(context.Context, string) (models.Run, error)
	GetByAccountId(context.Context, string) ([]models.Run, error)
	UpdateStatus(ctx context.Context, runId string, status string, attempts int) error
}

type RunDatabaseStore struct {
	DB        DynamoDBAPI
	TableName string
	now       func() time.Time
}

func NewRunDatabaseStore(db DynamoDBAPI, tableName string) *RunDatabaseStore {
	return &RunDatabaseStore{DB: db, TableName: tableName, now: time.Now}
}

func (r *RunDatabaseStore) Insert(ctx context.Context, run models.Run) error {
	item, err := attributevalue.MarshalMap(run)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrMarshaling, err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("runId"))).
		Build()
	if err != nil {
		return fmt.Errorf("error building expression: %w", err)
	}

	_, err = r.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.TableName),
		Item:                      item,
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	})
	if err != nil {
		return fmt.Errorf("%w: error inserting run: %w", errors.ErrDynamoDB, err)
	}

	return nil
}

func (r *RunDatabaseStore) GetById(ctx context.Context, runId string) (models.Run, error) {
	run := models.Run{RunId: runId}
	response, err := r.DB.GetItem(ctx, &dynamodb.GetItemInput{
		Key: run.GetKey(), TableName: aws.String(r.TableName),
	})
	if err != nil {
		return models.Run{}, fmt.Errorf("%w: error getting run: %w", errors.ErrDynamoDB, err)
	}
	if response.Item == nil {
		return models.Run{}, errors.ErrNoRecordsFound
	}

	err = attributevalue.UnmarshalMap(response.Item, &run)
	if err != nil {
		return run, fmt.Errorf("%w: %w", errors.ErrUnmarshaling, err)
	}

	return run, nil
}

func (r *RunDatabaseStore) GetByAccountId(ctx context.Context, accountId string) ([]models.Run, error) {
	runs := []models.Run{}

	expr, err := expression.NewBuilder().WithKeyCondition(
		expression.Key("accountId").Equal(expression.Value(accountId)),
	).Build()
	if err != nil {
		return runs, fmt.Errorf("error building expression: %w", err)
	}

	response, err := r.DB.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.TableName),
		IndexName:                 aws.String(AccountIdIndex),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		KeyConditionExpression:    expr.KeyCondition(),
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return runs, fmt.Errorf("%w: error querying runs: %w", errors.ErrDynamoDB, err)
	}

	err = attributevalue.UnmarshalListOfMaps(response.Items, &runs)
	if err != nil {
		return runs, fmt.Errorf("%w: %w", errors.ErrUnmarshaling, err)
	}

	return runs, nil
}

func (r *RunDatabaseStore) UpdateStatus(ctx context.Context, runId string, status string, attempts int) error {
	update := expression.Set(expression.Name("status"), expression.Value(status)).
		Set(expression.Name("attempts"), expression.Value(attempts)).
		Set(expression.Name("updatedAt"), expression.Value(r.now().Unix()))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("runId"))).
		Build()
	if err != nil {
		return fmt.Errorf("error building expression: %w", err)
	}

	_, err = r.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.TableName),
		Key:                       models.Run{RunId: runId}.GetKey(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("%w: error updating run status: %w", errors.ErrDynamoDB, err)
	}

	return nil
}
