// Package catalog resolves the Service Catalog product and version used to vend accounts.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog/types"
	"github.com/pennsieve/account-provisioner/internal/clients"
	"github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/logging"
)

const fullTextSearchFilter = "FullTextSearch"

type Catalog struct {
	Client clients.ServiceCatalogAPI
	Logger *slog.Logger
}

func New(client clients.ServiceCatalogAPI) *Catalog {
	return &Catalog{Client: client, Logger: logging.Default}
}

// FindProductID searches by full text and prefers a product whose name matches
// exactly, falling back to the first hit.
func (c *Catalog) FindProductID(ctx context.Context, name string) (string, error) {
	response, err := c.Client.SearchProducts(ctx, &servicecatalog.SearchProductsInput{
		Filters: map[string][]string{fullTextSearchFilter: {name}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrSearchProducts, err)
	}

	summary, ok := SelectProduct(response.ProductViewSummaries, name)
	if !ok {
		return "", fmt.Errorf("%w: %q", errors.ErrProductNotFound, name)
	}

	productId := aws.ToString(summary.ProductId)
	c.Logger.Info("product resolved",
		slog.String("productName", aws.ToString(summary.Name)),
		slog.String("productId", productId),
		slog.Int("matches", len(response.ProductViewSummaries)))
	return productId, nil
}

// SelectArtifactID lists the product's versions and picks one with SelectArtifact.
func (c *Catalog) SelectArtifactID(ctx context.Context, productId string) (string, error) {
	response, err := c.Client.ListProvisioningArtifacts(ctx, &servicecatalog.ListProvisioningArtifactsInput{
		ProductId: aws.String(productId),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrListArtifacts, err)
	}

	artifact, ok := SelectArtifact(response.ProvisioningArtifactDetails)
	if !ok {
		return "", fmt.Errorf("%w: product %s", errors.ErrArtifactNotFound, productId)
	}

	artifactId := aws.ToString(artifact.Id)
	c.Logger.Info("provisioning artifact resolved",
		slog.String("productId", productId),
		slog.String("artifactId", artifactId),
		slog.String("artifactName", aws.ToString(artifact.Name)))
	return artifactId, nil
}

// SelectProduct returns the summary named exactly name, else the first summary.
func SelectProduct(summaries []types.ProductViewSummary, name string) (types.ProductViewSummary, bool) {
	if len(summaries) == 0 {
		return types.ProductViewSummary{}, false
	}
	for _, s := range summaries {
		if aws.ToString(s.Name) == name {
			return s, true
		}
	}
	return summaries[0], true
}

// SelectArtifact returns the most recently created artifact that is active and not
// deprecated. If none of those carry a creation time the first one wins. When every
// artifact is inactive or deprecated, the same rule is applied to the full list.
func SelectArtifact(details []types.ProvisioningArtifactDetail) (types.ProvisioningArtifactDetail, bool) {
	if len(details) == 0 {
		return types.ProvisioningArtifactDetail{}, false
	}

	candidates := make([]types.ProvisioningArtifactDetail, 0, len(details))
	for _, d := range details {
		if d.Active != nil && !*d.Active {
			continue
		}
		if d.Guidance == types.ProvisioningArtifactGuidanceDeprecated {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		candidates = details
	}

	best := candidates[0]
	for _, d := range candidates[1:] {
		if d.CreatedTime == nil {
			continue
		}
		if best.CreatedTime == nil || d.CreatedTime.After(*best.CreatedTime) {
			best = d
		}
	}
	return best, true
}
