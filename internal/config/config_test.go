package config

import (
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountErrors "github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/mocks"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultProductName, cfg.ProductName)
	assert.Equal(t, 30*time.Second, cfg.ProvisionInterval)
	assert.Equal(t, 20*time.Second, cfg.EnrollInterval)
	assert.Equal(t, "Invitation to join the organization", cfg.InviteNotes)
	assert.False(t, cfg.StopOnRejection)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TARGET_ACCOUNT_ID", "940482448078")
	t.Setenv("MANAGED_ORGANIZATIONAL_UNIT", "Sandbox (ou-abcd-12345678)")
	t.Setenv("SSO_USER_FIRST_NAME", "Ada")
	t.Setenv("SSO_USER_LAST_NAME", "Lovelace")
	t.Setenv("PROVISION_POLL_INTERVAL", "5s")
	t.Setenv("STOP_ON_REJECTION", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "940482448078", cfg.TargetAccountId)
	assert.Equal(t, "Sandbox (ou-abcd-12345678)", cfg.ManagedOrganizationalUnit)
	assert.Equal(t, 5*time.Second, cfg.ProvisionInterval)
	assert.True(t, cfg.StopOnRejection)
	assert.NoError(t, cfg.ValidateProvisioning())
}

func TestLoadError(t *testing.T) {
	t.Setenv("ENROLL_POLL_INTERVAL", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.ErrorIs(t, err, accountErrors.ErrConfig)
	assert.True(t, strings.Contains(err.Error(), "parse env:"))
}

func TestValidateProvisioningListsMissingFields(t *testing.T) {
	cfg := Config{TargetAccountId: "940482448078", ProductName: DefaultProductName, ProvisionInterval: time.Second}

	err := cfg.ValidateProvisioning()

	require.Error(t, err)
	assert.ErrorIs(t, err, accountErrors.ErrConfig)
	assert.Contains(t, err.Error(), "MANAGED_ORGANIZATIONAL_UNIT")
	assert.Contains(t, err.Error(), "SSO_USER_FIRST_NAME")
	assert.Contains(t, err.Error(), "SSO_USER_LAST_NAME")
	assert.NotContains(t, err.Error(), "TARGET_ACCOUNT_ID")
}

func TestValidateEnrollment(t *testing.T) {
	assert.Error(t, Config{EnrollInterval: time.Second}.ValidateEnrollment())
	assert.NoError(t, Config{TargetAccountId: "940482448078", EnrollInterval: time.Second}.ValidateEnrollment())
}

func TestApplySSMWithoutPathIsNoop(t *testing.T) {
	client := new(mocks.MockSSM)
	cfg := Config{ManagedOrganizationalUnit: "ou-1"}

	require.NoError(t, cfg.ApplySSM(context.Background(), client))
	assert.Equal(t, "ou-1", cfg.ManagedOrganizationalUnit)
	client.AssertNotCalled(t, "GetParametersByPath", mock.Anything, mock.Anything)
}

func TestApplySSMOverlaysParameters(t *testing.T) {
	client := new(mocks.MockSSM)
	cfg := Config{SSMParameterPath: "account-provisioner/dev/", ManagedOrganizationalUnit: "from-env", ProvisionInterval: 30 * time.Second}

	client.On("GetParametersByPath", mock.Anything, mock.MatchedBy(func(in *ssm.GetParametersByPathInput) bool {
		return aws.ToString(in.Path) == "/account-provisioner/dev" && in.NextToken == nil
	})).Return(&ssm.GetParametersByPathOutput{
		Parameters: []types.Parameter{
			{Name: aws.String("/account-provisioner/dev/managed-organizational-unit"), Value: aws.String("Sandbox (ou-jefs-1f8d3s88)")},
			{Name: aws.String("/account-provisioner/dev/sso-user-first-name"), Value: aws.String("Ada")},
		},
		NextToken: aws.String("page-2"),
	}, nil).Once()
	client.On("GetParametersByPath", mock.Anything, mock.MatchedBy(func(in *ssm.GetParametersByPathInput) bool {
		return aws.ToString(in.NextToken) == "page-2"
	})).Return(&ssm.GetParametersByPathOutput{
		Parameters: []types.Parameter{
			{Name: aws.String("/account-provisioner/dev/sso-user-last-name"), Value: aws.String("Lovelace")},
			{Name: aws.String("/account-provisioner/dev/provision-poll-interval"), Value: aws.String("1m")},
			{Name: aws.String("/account-provisioner/dev/unrelated"), Value: aws.String("ignored")},
		},
	}, nil).Once()

	require.NoError(t, cfg.ApplySSM(context.Background(), client))

	assert.Equal(t, "Sandbox (ou-jefs-1f8d3s88)", cfg.ManagedOrganizationalUnit)
	assert.Equal(t, "Ada", cfg.SSOUserFirstName)
	assert.Equal(t, "Lovelace", cfg.SSOUserLastName)
	assert.Equal(t, time.Minute, cfg.ProvisionInterval)
	client.AssertExpectations(t)
}

func TestApplySSMRejectsBadValues(t *testing.T) {
	client := new(mocks.MockSSM)
	cfg := Config{SSMParameterPath: "/p"}
	client.On("GetParametersByPath", mock.Anything, mock.Anything).Return(&ssm.GetParametersByPathOutput{
		Parameters: []types.Parameter{{Name: aws.String("/p/stop-on-rejection"), Value: aws.String("maybe")}},
	}, nil)

	err := cfg.ApplySSM(context.Background(), client)

	assert.ErrorIs(t, err, accountErrors.ErrConfig)
}

func TestApplySSMPropagatesClientErrors(t *testing.T) {
	client := new(mocks.MockSSM)
	cfg := Config{SSMParameterPath: "/p"}
	client.On("GetParametersByPath", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	err := cfg.ApplySSM(context.Background(), client)

	assert.ErrorIs(t, err, accountErrors.ErrConfig)
	assert.Contains(t, err.Error(), "access denied")
}

func TestRegisterFlagsOverrideEnv(t *testing.T) {
	cfg := Config{
		TargetAccountId:   "111111111111",
		ProductName:       DefaultProductName,
		ProvisionInterval: 30 * time.Second,
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	err := fs.Parse([]string{"-account-id", "222222222222", "-provision-interval", "5s", "-stop-on-rejection"})

	require.NoError(t, err)
	assert.Equal(t, "222222222222", cfg.TargetAccountId)
	assert.Equal(t, 5*time.Second, cfg.ProvisionInterval)
	assert.True(t, cfg.StopOnRejection)
	assert.Equal(t, DefaultProductName, cfg.ProductName)
}
