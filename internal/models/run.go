package models

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type RunKind string

const (
	RunKindProvision RunKind = "provision"
	RunKindEnroll    RunKind = "enroll"
)

// Status recorded before the first poll.
const RunStatusSubmitted = "SUBMITTED"

// Run is the ledger record of one provisioning or enrollment execution.
type Run struct {
	RunId                  string  `dynamodbav:"runId" json:"runId"`
	Kind                   RunKind `dynamodbav:"kind" json:"kind"`
	AccountId              string  `dynamodbav:"accountId" json:"accountId"`
	Handle                 string  `dynamodbav:"handle" json:"handle"`
	ProvisionedProductName string  `dynamodbav:"provisionedProductName,omitempty" json:"provisionedProductName,omitempty"`
	Status                 string  `dynamodbav:"status" json:"status"`
	Attempts               int     `dynamodbav:"attempts" json:"attempts"`
	Rejection              string  `dynamodbav:"rejection,omitempty" json:"rejection,omitempty"`
	CreatedAt              int64   `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt              int64   `dynamodbav:"updatedAt" json:"updatedAt"`
}

func (i Run) GetKey() map[string]types.AttributeValue {
	runId, err := attributevalue.Marshal(i.RunId)
	if err != nil {
		panic(err)
	}

	return map[string]types.AttributeValue{"runId": runId}
}
