package test

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pennsieve/account-provisioner/internal/store_dynamodb"
)

// Shared table names for store tests
const (
	TEST_RUNS_TABLE = "test-runs-table"
)

// LocalDynamoDBAvailable reports whether DYNAMODB_URL points at a local DynamoDB.
func LocalDynamoDBAvailable() bool {
	return os.Getenv("DYNAMODB_URL") != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetClient() *dynamodb.Client {
	testDBUri := getEnv("DYNAMODB_URL", "http://localhost:8000")

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy_secret", "1234")),
	)
	if err != nil {
		panic(err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(testDBUri)
	})
}

// CreateRunsTable creates the runs table with the accountId GSI sorted by createdAt.
// An existing table is left as is.
func CreateRunsTable(client *dynamodb.Client, tableName string) error {
	_, err := client.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("runId"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("accountId"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("createdAt"), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("runId"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(store_dynamodb.AccountIdIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("accountId"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("createdAt"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		if isTableExistsError(err) {
			return nil
		}
		return err
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	return waiter.Wait(context.TODO(), &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}, 30*time.Second)
}

func DeleteTable(client *dynamodb.Client, tableName string) error {
	_, err := client.DeleteTable(context.TODO(), &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	return err
}

// ClearRunsTable removes every item from a runs table.
func ClearRunsTable(client *dynamodb.Client, tableName string) error {
	scanResult, err := client.Scan(context.TODO(), &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return err
	}

	for _, item := range scanResult.Items {
		_, err = client.DeleteItem(context.TODO(), &dynamodb.DeleteItemInput{
			TableName: aws.String(tableName),
			Key:       map[string]types.AttributeValue{"runId": item["runId"]},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func isTableExistsError(err error) bool {
	return strings.Contains(err.Error(), "ResourceInUseException") ||
		strings.Contains(err.Error(), "preexisting table")
}
