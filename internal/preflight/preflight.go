// Package preflight verifies the caller can reach STS and the organization before
// any mutating request is made.
package preflight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pennsieve/account-provisioner/internal/clients"
	"github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/logging"
)

type Identity struct {
	CallerAccount       string
	CallerArn           string
	OrganizationId      string
	ManagementAccountId string
	FeatureSet          string
}

// IsManagementAccount reports whether the caller is the organization's management account.
func (i Identity) IsManagementAccount() bool {
	return i.CallerAccount != "" && i.CallerAccount == i.ManagementAccountId
}

type Checker struct {
	STS           clients.STSAPI
	Organizations clients.OrganizationsAPI
	Logger        *slog.Logger
}

func NewChecker(stsClient clients.STSAPI, org clients.OrganizationsAPI) *Checker {
	return &Checker{STS: stsClient, Organizations: org, Logger: logging.Default}
}

func (c *Checker) Check(ctx context.Context) (Identity, error) {
	caller, err := c.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: caller identity: %w", errors.ErrPrerequisites, err)
	}

	identity := Identity{
		CallerAccount: aws.ToString(caller.Account),
		CallerArn:     aws.ToString(caller.Arn),
	}

	org, err := c.Organizations.DescribeOrganization(ctx, &organizations.DescribeOrganizationInput{})
	if err != nil {
		return identity, fmt.Errorf("%w: %w: %w", errors.ErrPrerequisites, errors.ErrDescribeOrganization, err)
	}
	if org.Organization != nil {
		identity.OrganizationId = aws.ToString(org.Organization.Id)
		identity.ManagementAccountId = aws.ToString(org.Organization.MasterAccountId)
		identity.FeatureSet = string(org.Organization.FeatureSet)
	}

	level := slog.LevelInfo
	if !identity.IsManagementAccount() {
		level = slog.LevelWarn
	}
	c.Logger.Log(ctx, level, "prerequisites checked",
		slog.String("callerAccount", identity.CallerAccount),
		slog.String("callerArn", identity.CallerArn),
		slog.String("organizationId", identity.OrganizationId),
		slog.String("managementAccountId", identity.ManagementAccountId),
		slog.Bool("managementAccount", identity.IsManagementAccount()))
	return identity, nil
}
