package errors

import (
	"errors"
	"fmt"
)

// Configuration and bootstrap errors
var ErrConfig = errors.New("error loading configuration")
var ErrAWSConfig = errors.New("error loading AWS config")
var ErrPrerequisites = errors.New("prerequisite check failed")

// Organizations errors
var ErrDescribeAccount = errors.New("error describing account")
var ErrAccountNotFound = errors.New("account not found")
var ErrDescribeOrganization = errors.New("error describing organization")
var ErrInviteRejected = errors.New("invitation rejected")

// Service Catalog errors
var ErrSearchProducts = errors.New("error searching products")
var ErrProductNotFound = errors.New("product not found")
var ErrListArtifacts = errors.New("error listing provisioning artifacts")
var ErrArtifactNotFound = errors.New("provisioning artifact not found")
var ErrProvisionProduct = errors.New("error provisioning product")
var ErrDescribeProvisionedProduct = errors.New("error describing provisioned product")

// Run ledger errors
var ErrMarshaling = errors.New("error marshaling item")
var ErrUnmarshaling = errors.New("error unmarshaling item")
var ErrDynamoDB = errors.New("error performing action on DynamoDB table")
var ErrNoRecordsFound = errors.New("error no records found")
var ErrRunsTableNotConfigured = errors.New("runs table not configured")

// Event handler errors
var ErrUnsupportedEvent = errors.New("unsupported event")
var ErrUnsupportedRunKind = errors.New("unsupported run kind")

// HandlerError formats error messages for handlers
func HandlerError(handlerName string, handlerError error) string {
	return fmt.Sprintf("%s: %s", handlerName, handlerError.Error())
}
