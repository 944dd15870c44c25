package container

import (
	"github.com/pennsieve/account-provisioner/internal/clients"
	"github.com/pennsieve/account-provisioner/internal/service"
	"github.com/pennsieve/account-provisioner/internal/store_dynamodb"
)

// MockContainer implements the container interface with mocked dependencies for unit tests
type MockContainer struct {
	MockOrganizationsClient  clients.OrganizationsAPI
	MockServiceCatalogClient clients.ServiceCatalogAPI
	MockSTSClient            clients.STSAPI
	MockSSMClient            clients.SSMAPI
	MockDynamoDBClient       store_dynamodb.DynamoDBAPI
	MockRunStore             store_dynamodb.RunStore
	MockRecorder             service.Recorder
}

func NewMockContainer() *MockContainer {
	return &MockContainer{}
}

func (c *MockContainer) OrganizationsClient() clients.OrganizationsAPI {
	return c.MockOrganizationsClient
}

func (c *MockContainer) ServiceCatalogClient() clients.ServiceCatalogAPI {
	return c.MockServiceCatalogClient
}

func (c *MockContainer) STSClient() clients.STSAPI {
	return c.MockSTSClient
}

func (c *MockContainer) SSMClient() clients.SSMAPI {
	return c.MockSSMClient
}

func (c *MockContainer) DynamoDBClient() store_dynamodb.DynamoDBAPI {
	return c.MockDynamoDBClient
}

func (c *MockContainer) RunStore() store_dynamodb.RunStore {
	return c.MockRunStore
}

// Recorder wraps MockRunStore in a RunRecorder unless MockRecorder is set.
func (c *MockContainer) Recorder() service.Recorder {
	if c.MockRecorder != nil {
		return c.MockRecorder
	}
	if c.MockRunStore != nil {
		return service.NewRunRecorder(c.MockRunStore)
	}
	return service.NopRecorder{}
}
