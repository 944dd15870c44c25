package mappers

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennsieve/account-provisioner/internal/models"
)

func TestOrganizationsAccountToAccount(t *testing.T) {
	account := OrganizationsAccountToAccount("940482448078", &orgtypes.Account{
		Id:           aws.String("940482448078"),
		Email:        aws.String("sandbox@example.com"),
		Name:         aws.String("Research Sandbox"),
		JoinedMethod: orgtypes.AccountJoinedMethodInvited,
		Status:       orgtypes.AccountStatusActive,
	})

	assert.Equal(t, models.Account{
		AccountId:    "940482448078",
		Email:        "sandbox@example.com",
		Name:         "Research Sandbox",
		JoinedMethod: "INVITED",
		Status:       "ACTIVE",
	}, account)
}

func TestOrganizationsAccountToAccountFallsBackToRequestedId(t *testing.T) {
	assert.Equal(t, "111122223333", OrganizationsAccountToAccount("111122223333", &orgtypes.Account{}).AccountId)
	assert.Equal(t, "111122223333", OrganizationsAccountToAccount("111122223333", nil).AccountId)
}

func TestProvisioningParametersToServiceCatalog(t *testing.T) {
	params := []models.ProvisioningParameter{
		{Key: models.ParamAccountEmail, Value: "a@example.com"},
		{Key: models.ParamAccountName, Value: "Team A"},
	}

	out := ProvisioningParametersToServiceCatalog(params)

	require.Len(t, out, 2)
	assert.Equal(t, "AccountEmail", aws.ToString(out[0].Key))
	assert.Equal(t, "a@example.com", aws.ToString(out[0].Value))
	assert.Equal(t, "AccountName", aws.ToString(out[1].Key))
	assert.Equal(t, "Team A", aws.ToString(out[1].Value))
}
