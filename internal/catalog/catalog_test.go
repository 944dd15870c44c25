package catalog

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountErrors "github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/logging"
	"github.com/pennsieve/account-provisioner/internal/mocks"
)

const factoryName = "AWS Control Tower Account Factory"

func newTestCatalog(client *mocks.MockServiceCatalog) *Catalog {
	c := New(client)
	c.Logger = logging.NewLogger(io.Discard)
	return c
}

func TestFindProductIDPrefersExactName(t *testing.T) {
	client := new(mocks.MockServiceCatalog)
	client.On("SearchProducts", mock.Anything, mock.MatchedBy(func(in *servicecatalog.SearchProductsInput) bool {
		return len(in.Filters["FullTextSearch"]) == 1 && in.Filters["FullTextSearch"][0] == factoryName
	})).Return(&servicecatalog.SearchProductsOutput{
		ProductViewSummaries: []types.ProductViewSummary{
			{ProductId: aws.String("prod-other"), Name: aws.String("AWS Control Tower Account Factory Customizations")},
			{ProductId: aws.String("prod-factory"), Name: aws.String(factoryName)},
		},
	}, nil)

	productId, err := newTestCatalog(client).FindProductID(context.Background(), factoryName)

	require.NoError(t, err)
	assert.Equal(t, "prod-factory", productId)
}

func TestFindProductIDFallsBackToFirstMatch(t *testing.T) {
	client := new(mocks.MockServiceCatalog)
	client.On("SearchProducts", mock.Anything, mock.Anything).Return(&servicecatalog.SearchProductsOutput{
		ProductViewSummaries: []types.ProductViewSummary{
			{ProductId: aws.String("prod-1"), Name: aws.String("Account Factory v2")},
			{ProductId: aws.String("prod-2"), Name: aws.String("Account Factory v3")},
		},
	}, nil)

	productId, err := newTestCatalog(client).FindProductID(context.Background(), factoryName)

	require.NoError(t, err)
	assert.Equal(t, "prod-1", productId)
}

func TestFindProductIDNotFound(t *testing.T) {
	client := new(mocks.MockServiceCatalog)
	client.On("SearchProducts", mock.Anything, mock.Anything).Return(&servicecatalog.SearchProductsOutput{}, nil)

	_, err := newTestCatalog(client).FindProductID(context.Background(), factoryName)

	assert.ErrorIs(t, err, accountErrors.ErrProductNotFound)
}

func TestFindProductIDClientError(t *testing.T) {
	client := new(mocks.MockServiceCatalog)
	client.On("SearchProducts", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

	_, err := newTestCatalog(client).FindProductID(context.Background(), factoryName)

	assert.ErrorIs(t, err, accountErrors.ErrSearchProducts)
}

func TestSelectArtifactIDPicksNewestActive(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	client := new(mocks.MockServiceCatalog)
	client.On("ListProvisioningArtifacts", mock.Anything, mock.MatchedBy(func(in *servicecatalog.ListProvisioningArtifactsInput) bool {
		return aws.ToString(in.ProductId) == "prod-factory"
	})).Return(&servicecatalog.ListProvisioningArtifactsOutput{
		ProvisioningArtifactDetails: []types.ProvisioningArtifactDetail{
			{Id: aws.String("pa-old"), Active: aws.Bool(true), CreatedTime: &older},
			{Id: aws.String("pa-current"), Active: aws.Bool(true), CreatedTime: &newer},
			{Id: aws.String("pa-inactive"), Active: aws.Bool(false), CreatedTime: &newest},
		},
	}, nil)

	artifactId, err := newTestCatalog(client).SelectArtifactID(context.Background(), "prod-factory")

	require.NoError(t, err)
	assert.Equal(t, "pa-current", artifactId)
}

func TestSelectArtifactIDNotFound(t *testing.T) {
	client := new(mocks.MockServiceCatalog)
	client.On("ListProvisioningArtifacts", mock.Anything, mock.Anything).Return(&servicecatalog.ListProvisioningArtifactsOutput{}, nil)

	_, err := newTestCatalog(client).SelectArtifactID(context.Background(), "prod-factory")

	assert.ErrorIs(t, err, accountErrors.ErrArtifactNotFound)
}

func TestSelectArtifactIDClientError(t *testing.T) {
	client := new(mocks.MockServiceCatalog)
	client.On("ListProvisioningArtifacts", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := newTestCatalog(client).SelectArtifactID(context.Background(), "prod-factory")

	assert.ErrorIs(t, err, accountErrors.ErrListArtifacts)
}

func TestSelectArtifact(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	t.Run("skips deprecated", func(t *testing.T) {
		got, ok := SelectArtifact([]types.ProvisioningArtifactDetail{
			{Id: aws.String("a"), CreatedTime: &created},
			{Id: aws.String("b"), CreatedTime: &later, Guidance: types.ProvisioningArtifactGuidanceDeprecated},
		})
		require.True(t, ok)
		assert.Equal(t, "a", aws.ToString(got.Id))
	})

	t.Run("first when no creation times", func(t *testing.T) {
		got, ok := SelectArtifact([]types.ProvisioningArtifactDetail{{Id: aws.String("a")}, {Id: aws.String("b")}})
		require.True(t, ok)
		assert.Equal(t, "a", aws.ToString(got.Id))
	})

	t.Run("dated beats undated", func(t *testing.T) {
		got, ok := SelectArtifact([]types.ProvisioningArtifactDetail{{Id: aws.String("a")}, {Id: aws.String("b"), CreatedTime: &created}})
		require.True(t, ok)
		assert.Equal(t, "b", aws.ToString(got.Id))
	})

	t.Run("all inactive falls back to full list", func(t *testing.T) {
		got, ok := SelectArtifact([]types.ProvisioningArtifactDetail{
			{Id: aws.String("a"), Active: aws.Bool(false), CreatedTime: &created},
			{Id: aws.String("b"), Active: aws.Bool(false), CreatedTime: &later},
		})
		require.True(t, ok)
		assert.Equal(t, "b", aws.ToString(got.Id))
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := SelectArtifact(nil)
		assert.False(t, ok)
	})
}

func TestSelectProduct(t *testing.T) {
	_, ok := SelectProduct(nil, factoryName)
	assert.False(t, ok)
}
