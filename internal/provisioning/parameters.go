package provisioning

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/pennsieve/account-provisioner/internal/clients"
	"github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/mappers"
	"github.com/pennsieve/account-provisioner/internal/models"
)

// Identity is the static part of the Account Factory parameters.
type Identity struct {
	ManagedOrganizationalUnit string
	SSOUserFirstName          string
	SSOUserLastName           string
}

type ParameterBuilder struct {
	Organizations clients.OrganizationsAPI
	Identity      Identity
}

func NewParameterBuilder(org clients.OrganizationsAPI, identity Identity) *ParameterBuilder {
	return &ParameterBuilder{Organizations: org, Identity: identity}
}

// Build reads the account's email and name and returns the six Account Factory
// parameters in their fixed order. Lookup failures are returned as-is, without retry.
func (b *ParameterBuilder) Build(ctx context.Context, accountId string) ([]models.ProvisioningParameter, models.Account, error) {
	response, err := b.Organizations.DescribeAccount(ctx, &organizations.DescribeAccountInput{
		AccountId: aws.String(accountId),
	})
	if err != nil {
		var notFound *orgtypes.AccountNotFoundException
		if stderrors.As(err, &notFound) {
			return nil, models.Account{}, fmt.Errorf("%w: %s: %w", errors.ErrAccountNotFound, accountId, err)
		}
		return nil, models.Account{}, fmt.Errorf("%w: %s: %w", errors.ErrDescribeAccount, accountId, err)
	}
	if response.Account == nil {
		return nil, models.Account{}, fmt.Errorf("%w: %s", errors.ErrAccountNotFound, accountId)
	}

	account := mappers.OrganizationsAccountToAccount(accountId, response.Account)
	return Parameters(account, b.Identity), account, nil
}

// Parameters assembles the ordered parameter list for account.
func Parameters(account models.Account, identity Identity) []models.ProvisioningParameter {
	return []models.ProvisioningParameter{
		{Key: models.ParamAccountEmail, Value: account.Email},
		{Key: models.ParamAccountName, Value: account.Name},
		{Key: models.ParamManagedOrganizationalUnit, Value: identity.ManagedOrganizationalUnit},
		{Key: models.ParamSSOUserEmail, Value: account.Email},
		{Key: models.ParamSSOUserFirstName, Value: identity.SSOUserFirstName},
		{Key: models.ParamSSOUserLastName, Value: identity.SSOUserLastName},
	}
}
