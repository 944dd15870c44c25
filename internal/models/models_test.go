package models

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGetKey(t *testing.T) {
	key := Run{RunId: "run-1", AccountId: "123456789012"}.GetKey()

	require.Len(t, key, 1)
	runId, ok := key["runId"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "run-1", runId.Value)
}
