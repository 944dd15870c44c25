// Package mocks holds testify fakes for the AWS client interfaces and the run ledger.
package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/mock"

	"github.com/pennsieve/account-provisioner/internal/models"
)

type MockOrganizations struct {
	mock.Mock
}

func (m *MockOrganizations) DescribeAccount(ctx context.Context, params *organizations.DescribeAccountInput, _ ...func(*organizations.Options)) (*organizations.DescribeAccountOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organizations.DescribeAccountOutput), args.Error(1)
}

func (m *MockOrganizations) DescribeOrganization(ctx context.Context, params *organizations.DescribeOrganizationInput, _ ...func(*organizations.Options)) (*organizations.DescribeOrganizationOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organizations.DescribeOrganizationOutput), args.Error(1)
}

func (m *MockOrganizations) InviteAccountToOrganization(ctx context.Context, params *organizations.InviteAccountToOrganizationInput, _ ...func(*organizations.Options)) (*organizations.InviteAccountToOrganizationOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organizations.InviteAccountToOrganizationOutput), args.Error(1)
}

type MockServiceCatalog struct {
	mock.Mock
}

func (m *MockServiceCatalog) SearchProducts(ctx context.Context, params *servicecatalog.SearchProductsInput, _ ...func(*servicecatalog.Options)) (*servicecatalog.SearchProductsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*servicecatalog.SearchProductsOutput), args.Error(1)
}

func (m *MockServiceCatalog) ListProvisioningArtifacts(ctx context.Context, params *servicecatalog.ListProvisioningArtifactsInput, _ ...func(*servicecatalog.Options)) (*servicecatalog.ListProvisioningArtifactsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*servicecatalog.ListProvisioningArtifactsOutput), args.Error(1)
}

func (m *MockServiceCatalog) ProvisionProduct(ctx context.Context, params *servicecatalog.ProvisionProductInput, _ ...func(*servicecatalog.Options)) (*servicecatalog.ProvisionProductOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*servicecatalog.ProvisionProductOutput), args.Error(1)
}

func (m *MockServiceCatalog) DescribeProvisionedProduct(ctx context.Context, params *servicecatalog.DescribeProvisionedProductInput, _ ...func(*servicecatalog.Options)) (*servicecatalog.DescribeProvisionedProductOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*servicecatalog.DescribeProvisionedProductOutput), args.Error(1)
}

type MockSTS struct {
	mock.Mock
}

func (m *MockSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sts.GetCallerIdentityOutput), args.Error(1)
}

type MockSSM struct {
	mock.Mock
}

func (m *MockSSM) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ssm.GetParametersByPathOutput), args.Error(1)
}

type MockDynamoDB struct {
	mock.Mock
}

func (m *MockDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *MockDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *MockDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.UpdateItemOutput), args.Error(1)
}

func (m *MockDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

type MockRunStore struct {
	mock.Mock
}

func (m *MockRunStore) Insert(ctx context.Context, run models.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunStore) GetById(ctx context.Context, runId string) (models.Run, error) {
	args := m.Called(ctx, runId)
	return args.Get(0).(models.Run), args.Error(1)
}

func (m *MockRunStore) GetByAccountId(ctx context.Context, accountId string) ([]models.Run, error) {
	args := m.Called(ctx, accountId)
	return args.Get(0).([]models.Run), args.Error(1)
}

func (m *MockRunStore) UpdateStatus(ctx context.Context, runId string, status string, attempts int) error {
	args := m.Called(ctx, runId, status, attempts)
	return args.Error(0)
}
