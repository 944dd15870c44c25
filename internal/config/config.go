package config

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/caarlos0/env/v11"
	"github.com/pennsieve/account-provisioner/internal/errors"
)

const DefaultProductName = "AWS Control Tower Account Factory"

// Config carries everything the provisioning and enrollment flows need that is
// not read from AWS at run time.
type Config struct {
	Env string `env:"ENV" envDefault:"dev"`

	TargetAccountId           string `env:"TARGET_ACCOUNT_ID"`
	ManagedOrganizationalUnit string `env:"MANAGED_ORGANIZATIONAL_UNIT"`
	SSOUserFirstName          string `env:"SSO_USER_FIRST_NAME"`
	SSOUserLastName           string `env:"SSO_USER_LAST_NAME"`

	ProductName       string        `env:"PRODUCT_NAME" envDefault:"AWS Control Tower Account Factory"`
	ProvisionInterval time.Duration `env:"PROVISION_POLL_INTERVAL" envDefault:"30s"`

	EnrollInterval  time.Duration `env:"ENROLL_POLL_INTERVAL" envDefault:"20s"`
	InviteNotes     string        `env:"INVITE_NOTES" envDefault:"Invitation to join the organization"`
	StopOnRejection bool          `env:"STOP_ON_REJECTION" envDefault:"false"`

	RunsTable        string `env:"RUNS_TABLE"`
	SSMParameterPath string `env:"SSM_PARAMETER_PATH"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrConfig, err)
	}
	return cfg, nil
}

// RegisterFlags binds command line flags to c. The current field values become
// the flag defaults, so flags override the environment.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.TargetAccountId, "account-id", c.TargetAccountId, "target AWS account id")
	fs.StringVar(&c.ManagedOrganizationalUnit, "ou", c.ManagedOrganizationalUnit, "managed organizational unit, e.g. \"Sandbox (ou-xxxx-xxxxxxxx)\"")
	fs.StringVar(&c.SSOUserFirstName, "sso-first-name", c.SSOUserFirstName, "SSO user first name")
	fs.StringVar(&c.SSOUserLastName, "sso-last-name", c.SSOUserLastName, "SSO user last name")
	fs.StringVar(&c.ProductName, "product", c.ProductName, "Service Catalog product name")
	fs.DurationVar(&c.ProvisionInterval, "provision-interval", c.ProvisionInterval, "provisioned product poll interval")
	fs.DurationVar(&c.EnrollInterval, "enroll-interval", c.EnrollInterval, "account join poll interval")
	fs.StringVar(&c.InviteNotes, "notes", c.InviteNotes, "invitation notes")
	fs.BoolVar(&c.StopOnRejection, "stop-on-rejection", c.StopOnRejection, "stop when the invitation is rejected")
	fs.StringVar(&c.RunsTable, "runs-table", c.RunsTable, "DynamoDB runs table (optional)")
	fs.StringVar(&c.SSMParameterPath, "ssm-path", c.SSMParameterPath, "SSM parameter path to overlay (optional)")
}

// SSMParametersClient is the paginated SSM call used by ApplySSM.
type SSMParametersClient = ssm.GetParametersByPathAPIClient

// ApplySSM overlays values stored under SSMParameterPath. Parameter leaf names
// are the kebab-case field names, e.g. <path>/managed-organizational-unit.
// Nothing happens when no path is configured.
func (c *Config) ApplySSM(ctx context.Context, client SSMParametersClient) error {
	if c.SSMParameterPath == "" {
		return nil
	}

	path := "/" + strings.Trim(c.SSMParameterPath, "/")
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(false),
		WithDecryption: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("%w: error reading SSM parameters under %s: %w", errors.ErrConfig, path, err)
		}
		for _, p := range page.Parameters {
			name := strings.TrimPrefix(aws.ToString(p.Name), path+"/")
			if err := c.set(name, aws.ToString(p.Value)); err != nil {
				return fmt.Errorf("%w: %w", errors.ErrConfig, err)
			}
		}
	}
	return nil
}

func (c *Config) set(name, value string) error {
	switch name {
	case "target-account-id":
		c.TargetAccountId = value
	case "managed-organizational-unit":
		c.ManagedOrganizationalUnit = value
	case "sso-user-first-name":
		c.SSOUserFirstName = value
	case "sso-user-last-name":
		c.SSOUserLastName = value
	case "product-name":
		c.ProductName = value
	case "invite-notes":
		c.InviteNotes = value
	case "runs-table":
		c.RunsTable = value
	case "provision-poll-interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		c.ProvisionInterval = d
	case "enroll-poll-interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		c.EnrollInterval = d
	case "stop-on-rejection":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		c.StopOnRejection = b
	}
	return nil
}

// ValidateProvisioning checks the fields the Account Factory parameters need.
func (c Config) ValidateProvisioning() error {
	var missing []string
	if c.TargetAccountId == "" {
		missing = append(missing, "TARGET_ACCOUNT_ID")
	}
	if c.ManagedOrganizationalUnit == "" {
		missing = append(missing, "MANAGED_ORGANIZATIONAL_UNIT")
	}
	if c.SSOUserFirstName == "" {
		missing = append(missing, "SSO_USER_FIRST_NAME")
	}
	if c.SSOUserLastName == "" {
		missing = append(missing, "SSO_USER_LAST_NAME")
	}
	if c.ProductName == "" {
		missing = append(missing, "PRODUCT_NAME")
	}
	if c.ProvisionInterval <= 0 {
		missing = append(missing, "PROVISION_POLL_INTERVAL")
	}
	return missingError(missing)
}

func (c Config) ValidateEnrollment() error {
	var missing []string
	if c.TargetAccountId == "" {
		missing = append(missing, "TARGET_ACCOUNT_ID")
	}
	if c.EnrollInterval <= 0 {
		missing = append(missing, "ENROLL_POLL_INTERVAL")
	}
	return missingError(missing)
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing or invalid %s", errors.ErrConfig, strings.Join(missing, ", "))
}
