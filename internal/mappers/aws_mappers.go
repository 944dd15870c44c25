package mappers

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	sctypes "github.com/aws/aws-sdk-go-v2/service/servicecatalog/types"
	"github.com/pennsieve/account-provisioner/internal/models"
)

// OrganizationsAccountToAccount converts the DescribeAccount payload, keeping the
// requested id when the payload omits it.
func OrganizationsAccountToAccount(accountId string, account *orgtypes.Account) models.Account {
	if account == nil {
		return models.Account{AccountId: accountId}
	}

	id := aws.ToString(account.Id)
	if id == "" {
		id = accountId
	}

	return models.Account{
		AccountId:    id,
		Email:        aws.ToString(account.Email),
		Name:         aws.ToString(account.Name),
		JoinedMethod: string(account.JoinedMethod),
		Status:       string(account.Status),
	}
}

// ProvisioningParametersToServiceCatalog preserves order and sends every value verbatim.
func ProvisioningParametersToServiceCatalog(params []models.ProvisioningParameter) []sctypes.ProvisioningParameter {
	out := make([]sctypes.ProvisioningParameter, 0, len(params))
	for _, p := range params {
		out = append(out, sctypes.ProvisioningParameter{
			Key:   aws.String(p.Key),
			Value: aws.String(p.Value),
		})
	}
	return out
}
