package container

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pennsieve/account-provisioner/internal/clients"
	"github.com/pennsieve/account-provisioner/internal/service"
	"github.com/pennsieve/account-provisioner/internal/store_dynamodb"
	"github.com/pennsieve/account-provisioner/internal/utils"
)

// DependencyContainer defines the interface for dependency injection
type DependencyContainer interface {
	OrganizationsClient() clients.OrganizationsAPI
	ServiceCatalogClient() clients.ServiceCatalogAPI
	STSClient() clients.STSAPI
	SSMClient() clients.SSMAPI
	DynamoDBClient() store_dynamodb.DynamoDBAPI
	// RunStore is nil when no runs table is configured.
	RunStore() store_dynamodb.RunStore
	Recorder() service.Recorder
}

// Container implements the production dependency container. Clients are built
// lazily from one aws.Config.
type Container struct {
	awsConfig           aws.Config
	organizationsClient *organizations.Client
	serviceCatalog      *servicecatalog.Client
	stsClient           *sts.Client
	ssmClient           *ssm.Client
	dynamoClient        *dynamodb.Client
	runStore            store_dynamodb.RunStore
	recorder            service.Recorder

	// Configuration
	runsTable string
}

func NewContainer(ctx context.Context) (*Container, error) {
	awsConfig, err := utils.LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &Container{
		awsConfig: awsConfig,
	}, nil
}

func NewContainerWithConfig(awsConfig aws.Config) *Container {
	return &Container{
		awsConfig: awsConfig,
	}
}

func (c *Container) OrganizationsClient() clients.OrganizationsAPI {
	if c.organizationsClient == nil {
		c.organizationsClient = organizations.NewFromConfig(c.awsConfig)
	}
	return c.organizationsClient
}

func (c *Container) ServiceCatalogClient() clients.ServiceCatalogAPI {
	if c.serviceCatalog == nil {
		c.serviceCatalog = servicecatalog.NewFromConfig(c.awsConfig)
	}
	return c.serviceCatalog
}

func (c *Container) STSClient() clients.STSAPI {
	if c.stsClient == nil {
		c.stsClient = sts.NewFromConfig(c.awsConfig)
	}
	return c.stsClient
}

func (c *Container) SSMClient() clients.SSMAPI {
	if c.ssmClient == nil {
		c.ssmClient = ssm.NewFromConfig(c.awsConfig)
	}
	return c.ssmClient
}

func (c *Container) DynamoDBClient() store_dynamodb.DynamoDBAPI {
	if c.dynamoClient == nil {
		c.dynamoClient = dynamodb.NewFromConfig(c.awsConfig, utils.DynamoDBOptions()...)
	}
	return c.dynamoClient
}

func (c *Container) RunStore() store_dynamodb.RunStore {
	if c.runsTable == "" {
		return nil
	}
	if c.runStore == nil {
		c.runStore = store_dynamodb.NewRunDatabaseStore(c.DynamoDBClient(), c.runsTable)
	}
	return c.runStore
}

// Recorder falls back to a NopRecorder when runs are not persisted.
func (c *Container) Recorder() service.Recorder {
	if c.recorder == nil {
		if store := c.RunStore(); store != nil {
			c.recorder = service.NewRunRecorder(store)
		} else {
			c.recorder = service.NopRecorder{}
		}
	}
	return c.recorder
}

func (c *Container) SetConfig(runsTable string) {
	if runsTable != c.runsTable {
		c.runStore = nil
		c.recorder = nil
	}
	c.runsTable = runsTable
}
