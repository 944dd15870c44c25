package utils

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// GetDynamoDBEndpoint returns the DynamoDB endpoint URL for testing
func GetDynamoDBEndpoint() string {
	if endpoint := os.Getenv("DYNAMODB_URL"); endpoint != "" {
		return endpoint
	}
	return ""
}

// IsLocalEnv reports whether ENV selects the docker/test setup.
func IsLocalEnv() bool {
	envValue := os.Getenv("ENV")
	return envValue == "DOCKER" || envValue == "TEST"
}

// LoadAWSConfig loads AWS configuration with test-aware settings.
// Outside TEST/DOCKER the default credential chain and region are used.
func LoadAWSConfig(ctx context.Context) (aws.Config, error) {
	if IsLocalEnv() && GetDynamoDBEndpoint() != "" {
		return config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")))
	}

	return config.LoadDefaultConfig(ctx)
}

// DynamoDBOptions points the DynamoDB client at DYNAMODB_URL in TEST/DOCKER.
// Every other service keeps its regional endpoint.
func DynamoDBOptions() []func(*dynamodb.Options) {
	endpoint := GetDynamoDBEndpoint()
	if !IsLocalEnv() || endpoint == "" {
		return nil
	}
	return []func(*dynamodb.Options){
		func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		},
	}
}
