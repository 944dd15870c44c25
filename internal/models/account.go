package models

// Account is the Organizations view of a member account.
type Account struct {
	AccountId    string `json:"accountId"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	JoinedMethod string `json:"joinedMethod,omitempty"`
	Status       string `json:"status,omitempty"`
}

// ProvisioningParameter is one key/value pair sent verbatim to ProvisionProduct.
type ProvisioningParameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

const (
	ParamAccountEmail              = "AccountEmail"
	ParamAccountName               = "AccountName"
	ParamManagedOrganizationalUnit = "ManagedOrganizationalUnit"
	ParamSSOUserEmail              = "SSOUserEmail"
	ParamSSOUserFirstName          = "SSOUserFirstName"
	ParamSSOUserLastName           = "SSOUserLastName"
)
