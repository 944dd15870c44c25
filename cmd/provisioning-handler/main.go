package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pennsieve/account-provisioner/internal/handler"
)

func main() {
	// Start the Lambda handler for EventBridge events
	lambda.Start(handler.ProvisioningEventHandler)
}
