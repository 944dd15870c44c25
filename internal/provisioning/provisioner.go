// Package provisioning vends a new account through the Account Factory product and
// waits for the provisioned product to settle.
package provisioning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog"
	"github.com/google/uuid"
	"github.com/pennsieve/account-provisioner/internal/catalog"
	"github.com/pennsieve/account-provisioner/internal/clients"
	"github.com/pennsieve/account-provisioner/internal/config"
	"github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/logging"
	"github.com/pennsieve/account-provisioner/internal/mappers"
	"github.com/pennsieve/account-provisioner/internal/models"
	"github.com/pennsieve/account-provisioner/internal/poller"
	"github.com/pennsieve/account-provisioner/internal/service"
	"github.com/pennsieve/account-provisioner/internal/slug"
)

const (
	StatusAvailable = "AVAILABLE"
	StatusError     = "ERROR"
	StatusTainted   = "TAINTED"
)

// IsTerminal reports whether polling stops at status. ERROR and TAINTED end the
// loop exactly like AVAILABLE.
var IsTerminal = poller.In(StatusAvailable, StatusError, StatusTainted)

// Submission identifies a provisioning request that was accepted.
type Submission struct {
	Run        models.Run
	Parameters []models.ProvisioningParameter
}

// Outcome is the final state of a provisioning run.
type Outcome struct {
	RunId                  string
	ProvisionedProductId   string
	ProvisionedProductName string
	Status                 string
	Attempts               int
}

func (o Outcome) Succeeded() bool {
	return o.Status == StatusAvailable
}

type Provisioner struct {
	ServiceCatalog clients.ServiceCatalogAPI
	Catalog        *catalog.Catalog
	Parameters     *ParameterBuilder
	Poller         *poller.Poller
	Recorder       service.Recorder
	ProductName    string
	Logger         *slog.Logger
}

func New(sc clients.ServiceCatalogAPI, org clients.OrganizationsAPI, recorder service.Recorder, cfg config.Config) *Provisioner {
	if recorder == nil {
		recorder = service.NopRecorder{}
	}
	return &Provisioner{
		ServiceCatalog: sc,
		Catalog:        catalog.New(sc),
		Parameters: NewParameterBuilder(org, Identity{
			ManagedOrganizationalUnit: cfg.ManagedOrganizationalUnit,
			SSOUserFirstName:          cfg.SSOUserFirstName,
			SSOUserLastName:           cfg.SSOUserLastName,
		}),
		Poller:      poller.New(cfg.ProvisionInterval),
		Recorder:    recorder,
		ProductName: cfg.ProductName,
		Logger:      logging.Default,
	}
}

// Submit resolves the product and version, builds parameters and issues
// ProvisionProduct. Every failure here is returned to the caller.
func (p *Provisioner) Submit(ctx context.Context, accountId string) (Submission, error) {
	productId, err := p.Catalog.FindProductID(ctx, p.ProductName)
	if err != nil {
		return Submission{}, err
	}
	artifactId, err := p.Catalog.SelectArtifactID(ctx, productId)
	if err != nil {
		return Submission{}, err
	}
	params, account, err := p.Parameters.Build(ctx, accountId)
	if err != nil {
		return Submission{}, err
	}

	name := slug.Make(account.Name)
	runId := uuid.NewString()
	response, err := p.ServiceCatalog.ProvisionProduct(ctx, &servicecatalog.ProvisionProductInput{
		ProductId:              aws.String(productId),
		ProvisioningArtifactId: aws.String(artifactId),
		ProvisionedProductName: aws.String(name),
		ProvisioningParameters: mappers.ProvisioningParametersToServiceCatalog(params),
		ProvisionToken:         aws.String(runId),
	})
	if err != nil {
		return Submission{}, fmt.Errorf("%w: %w", errors.ErrProvisionProduct, err)
	}
	if response.RecordDetail == nil || aws.ToString(response.RecordDetail.ProvisionedProductId) == "" {
		return Submission{}, fmt.Errorf("%w: response carried no provisioned product id", errors.ErrProvisionProduct)
	}

	run := p.Recorder.Started(ctx, models.Run{
		RunId:                  runId,
		Kind:                   models.RunKindProvision,
		AccountId:              accountId,
		Handle:                 aws.ToString(response.RecordDetail.ProvisionedProductId),
		ProvisionedProductName: name,
	})

	p.Logger.Info("provisioning submitted",
		slog.String("runId", run.RunId),
		slog.String("accountId", accountId),
		slog.String("provisionedProductId", run.Handle),
		slog.String("provisionedProductName", name))
	return Submission{Run: run, Parameters: params}, nil
}

// Status is a single DescribeProvisionedProduct probe.
func (p *Provisioner) Status(ctx context.Context, provisionedProductId string) (string, error) {
	response, err := p.ServiceCatalog.DescribeProvisionedProduct(ctx, &servicecatalog.DescribeProvisionedProductInput{
		Id: aws.String(provisionedProductId),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrDescribeProvisionedProduct, err)
	}
	if response.ProvisionedProductDetail == nil {
		return "", fmt.Errorf("%w: no detail for %s", errors.ErrDescribeProvisionedProduct, provisionedProductId)
	}
	return string(response.ProvisionedProductDetail.Status), nil
}

// Wait polls the provisioned product until it reaches a terminal status.
func (p *Provisioner) Wait(ctx context.Context, run models.Run) (poller.Result, error) {
	pl := *p.Poller
	pl.OnStatus = func(ctx context.Context, status string, attempt int) {
		p.Recorder.Observed(ctx, run.RunId, status, attempt)
	}
	return pl.Poll(ctx, func(ctx context.Context) (string, error) {
		return p.Status(ctx, run.Handle)
	}, IsTerminal)
}

// Run submits and then waits. A terminal ERROR or TAINTED status is reported in
// the Outcome, not as an error.
func (p *Provisioner) Run(ctx context.Context, accountId string) (Outcome, error) {
	submission, err := p.Submit(ctx, accountId)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		RunId:                  submission.Run.RunId,
		ProvisionedProductId:   submission.Run.Handle,
		ProvisionedProductName: submission.Run.ProvisionedProductName,
	}

	result, err := p.Wait(ctx, submission.Run)
	outcome.Status = result.Status
	outcome.Attempts = result.Attempts
	if err != nil {
		return outcome, err
	}

	p.Logger.Info("provisioning finished",
		slog.String("runId", outcome.RunId),
		slog.String("provisionedProductId", outcome.ProvisionedProductId),
		slog.String("status", outcome.Status),
		slog.Int("attempts", outcome.Attempts))
	return outcome, nil
}
