package shopify

// customersByEmailQuery finds at most one customer by exact email
// (query string is e.g. "email:jane@example.com")
const customersByEmailQuery = `
query FindCustomer($query: String!) {
  customers(first: 1, query: $query) {
    edges {
      node {
        id
        email
      }
    }
  }
}
`

// customerCreateMutation creates a customer with the style metafield set in
// the same call, so the account never exists without the field.
const customerCreateMutation = `
mutation CreateCustomerWithStyleDNA($input: CustomerInput!) {
  customerCreate(input: $input) {
    customer {
      id
      email
      metafield(namespace: "custom", key: "style_dna") {
        value
      }
    }
    userErrors {
      field
      message
    }
  }
}
`

// metafieldsSetMutation writes a single metafield scoped to one owner.
// Preferred over customerUpdate: narrower side-effect surface.
const metafieldsSetMutation = `
mutation MetafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields {
      id
      value
    }
    userErrors {
      field
      message
    }
  }
}
`

// customerSendInviteMutation triggers the account-invitation email
const customerSendInviteMutation = `
mutation SendInvite($customerId: ID!) {
  customerSendAccountInviteEmail(customerId: $customerId) {
    customer {
      id
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetafieldInput sets a metafield inside a CustomerInput
type MetafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// MetafieldsSetInput is the input of the metafieldsSet mutation
type MetafieldsSetInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// EmailMarketingConsentInput defaults new accounts to opted-out consent
type EmailMarketingConsentInput struct {
	MarketingState      string `json:"marketingState"`
	MarketingOptInLevel string `json:"marketingOptInLevel"`
}

// CustomerCreateInput is the CustomerInput used by customerCreate
type CustomerCreateInput struct {
	Email                 string                      `json:"email"`
	EmailMarketingConsent *EmailMarketingConsentInput `json:"emailMarketingConsent,omitempty"`
	Metafields            []MetafieldInput            `json:"metafields,omitempty"`
}
