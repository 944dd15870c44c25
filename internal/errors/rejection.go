package errors

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// RejectionKind tags the reason Organizations refused an invitation request.
type RejectionKind string

const (
	RejectionAccountOwnerNotVerified      RejectionKind = "account-owner-unverified"
	RejectionOrganizationsNotInUse        RejectionKind = "organizations-not-in-use"
	RejectionConcurrentModification       RejectionKind = "concurrent-modification"
	RejectionConstraintViolation          RejectionKind = "constraint-violation"
	RejectionDuplicateAccount             RejectionKind = "duplicate-account"
	RejectionFinalizingOrganization       RejectionKind = "finalizing-organization"
	RejectionHandshakeConstraintViolation RejectionKind = "handshake-constraint-violation"
	RejectionInvalidInput                 RejectionKind = "invalid-input"
	RejectionServiceException             RejectionKind = "service-exception"
	RejectionTooManyRequests              RejectionKind = "too-many-requests"
	RejectionUnclassified                 RejectionKind = "unclassified"
)

var rejectionKindsByCode = map[string]RejectionKind{
	"AccountOwnerNotVerifiedException":      RejectionAccountOwnerNotVerified,
	"AWSOrganizationsNotInUseException":     RejectionOrganizationsNotInUse,
	"ConcurrentModificationException":       RejectionConcurrentModification,
	"ConstraintViolationException":          RejectionConstraintViolation,
	"DuplicateAccountException":             RejectionDuplicateAccount,
	"FinalizingOrganizationException":       RejectionFinalizingOrganization,
	"HandshakeConstraintViolationException": RejectionHandshakeConstraintViolation,
	"InvalidInputException":                 RejectionInvalidInput,
	"ServiceException":                      RejectionServiceException,
	"TooManyRequestsException":              RejectionTooManyRequests,
}

var rejectionLabels = map[RejectionKind]string{
	RejectionAccountOwnerNotVerified:      "Account owner not verified",
	RejectionOrganizationsNotInUse:        "AWS Organizations not in use",
	RejectionConcurrentModification:       "Concurrent modification",
	RejectionConstraintViolation:          "Constraint violation",
	RejectionDuplicateAccount:             "Duplicate account",
	RejectionFinalizingOrganization:       "Finalizing organization",
	RejectionHandshakeConstraintViolation: "Handshake constraint violation",
	RejectionInvalidInput:                 "Invalid input",
	RejectionServiceException:             "Service exception",
	RejectionTooManyRequests:              "Too many requests",
	RejectionUnclassified:                 "Unexpected error",
}

// RejectionKinds lists every classified kind, in the order Organizations documents them.
func RejectionKinds() []RejectionKind {
	return []RejectionKind{
		RejectionAccountOwnerNotVerified,
		RejectionOrganizationsNotInUse,
		RejectionConcurrentModification,
		RejectionConstraintViolation,
		RejectionDuplicateAccount,
		RejectionFinalizingOrganization,
		RejectionHandshakeConstraintViolation,
		RejectionInvalidInput,
		RejectionServiceException,
		RejectionTooManyRequests,
	}
}

// Label is the human readable name logged alongside the vendor message.
func (k RejectionKind) Label() string {
	if label, ok := rejectionLabels[k]; ok {
		return label
	}
	return rejectionLabels[RejectionUnclassified]
}

// Rejection is a classified refusal of an invitation request.
type Rejection struct {
	Kind    RejectionKind
	Code    string
	Message string
	Err     error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind.Label(), r.Message)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// ClassifyRejection maps an Organizations error onto a Rejection. It returns nil for a nil error.
func ClassifyRejection(err error) *Rejection {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		kind, ok := rejectionKindsByCode[apiErr.ErrorCode()]
		if !ok {
			kind = RejectionUnclassified
		}
		return &Rejection{
			Kind:    kind,
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
			Err:     err,
		}
	}

	return &Rejection{Kind: RejectionUnclassified, Message: err.Error(), Err: err}
}
