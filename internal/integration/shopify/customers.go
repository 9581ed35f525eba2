package shopify

import (
	"context"

	"github.com/colabah/style-dna-service/internal/domain"
)

// customersQueryData is the payload of the customer search query
type customersQueryData struct {
	Customers struct {
		Edges []struct {
			Node struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"customers"`
}

// customerCreateData is the payload of the customerCreate mutation
type customerCreateData struct {
	CustomerCreate struct {
		Customer *struct {
			ID        string `json:"id"`
			Email     string `json:"email"`
			Metafield *struct {
				Value string `json:"value"`
			} `json:"metafield"`
		} `json:"customer"`
		UserErrors []graphqlUserError `json:"userErrors"`
	} `json:"customerCreate"`
}

// metafieldsSetData is the payload of the metafieldsSet mutation
type metafieldsSetData struct {
	MetafieldsSet struct {
		Metafields []struct {
			ID    string `json:"id"`
			Value string `json:"value"`
		} `json:"metafields"`
		UserErrors []graphqlUserError `json:"userErrors"`
	} `json:"metafieldsSet"`
}

// sendInviteData is the payload of the customerSendAccountInviteEmail mutation
type sendInviteData struct {
	CustomerSendAccountInviteEmail struct {
		Customer *struct {
			ID string `json:"id"`
		} `json:"customer"`
		UserErrors []graphqlUserError `json:"userErrors"`
	} `json:"customerSendAccountInviteEmail"`
}

// FindByEmail looks up an existing customer with the exact email. Returns
// domain.ErrCustomerNotFound when no customer matches; a failing query is an
// upstream error, never treated as not-found.
func (c *Client) FindByEmail(ctx context.Context, email string) (*domain.CustomerRecord, error) {
	c.log.Debug("Looking up customer by email: %s", email)

	data, err := postGraphQL[customersQueryData](ctx, c, "findByEmail", customersByEmailQuery, map[string]any{
		"query": "email:" + email,
	})
	if err != nil {
		return nil, err
	}

	edges := data.Customers.Edges
	if len(edges) == 0 {
		return nil, domain.ErrCustomerNotFound
	}

	// The search may return several matches; first result wins
	node := edges[0].Node
	return &domain.CustomerRecord{ID: node.ID, Email: node.Email}, nil
}

// Create provisions a new customer with single-opt-in marketing consent and
// the style metafield set at creation time. Mutation userErrors come back as
// field errors, not as a transport error.
func (c *Client) Create(ctx context.Context, email, styleValue string) (*domain.CustomerRecord, []domain.FieldError, error) {
	c.log.Info("Creating customer account for %s", email)

	input := CustomerCreateInput{
		Email: email,
		EmailMarketingConsent: &EmailMarketingConsentInput{
			MarketingState:      "NOT_SUBSCRIBED",
			MarketingOptInLevel: "SINGLE_OPT_IN",
		},
		Metafields: []MetafieldInput{{
			Namespace: domain.StyleMetafieldNamespace,
			Key:       domain.StyleMetafieldKey,
			Type:      domain.StyleMetafieldType,
			Value:     styleValue,
		}},
	}

	data, err := postGraphQL[customerCreateData](ctx, c, "customerCreate", customerCreateMutation, map[string]any{
		"input": input,
	})
	if err != nil {
		return nil, nil, err
	}

	if errs := data.CustomerCreate.UserErrors; len(errs) > 0 {
		return nil, fieldErrors(errs), nil
	}

	created := data.CustomerCreate.Customer
	if created == nil {
		return nil, nil, domain.NewUpstreamError("customerCreate", 0, domain.ErrUpstream)
	}

	record := &domain.CustomerRecord{ID: created.ID, Email: created.Email}
	if created.Metafield != nil {
		record.StyleMetafield = created.Metafield.Value
	}

	c.log.Info("Created customer %s", record.ID)
	return record, nil, nil
}

// SetStyleMetafield writes the style value onto one customer and returns the
// post-write value as confirmation.
func (c *Client) SetStyleMetafield(ctx context.Context, customerID, value string) (string, []domain.FieldError, error) {
	c.log.Debug("Setting style metafield for %s", customerID)

	data, err := postGraphQL[metafieldsSetData](ctx, c, "metafieldsSet", metafieldsSetMutation, map[string]any{
		"metafields": []MetafieldsSetInput{{
			OwnerID:   customerID,
			Namespace: domain.StyleMetafieldNamespace,
			Key:       domain.StyleMetafieldKey,
			Type:      domain.StyleMetafieldType,
			Value:     value,
		}},
	})
	if err != nil {
		return "", nil, err
	}

	if errs := data.MetafieldsSet.UserErrors; len(errs) > 0 {
		return "", fieldErrors(errs), nil
	}

	saved := ""
	if fields := data.MetafieldsSet.Metafields; len(fields) > 0 {
		saved = fields[0].Value
	}

	c.log.Info("Saved style metafield for %s", customerID)
	return saved, nil, nil
}

// SendInvite triggers the account-invitation email for a freshly created
// customer. Callers treat failures as non-fatal.
func (c *Client) SendInvite(ctx context.Context, customerID string) error {
	c.log.Debug("Sending account invite for %s", customerID)

	data, err := postGraphQL[sendInviteData](ctx, c, "sendInvite", customerSendInviteMutation, map[string]any{
		"customerId": customerID,
	})
	if err != nil {
		return err
	}

	if errs := data.CustomerSendAccountInviteEmail.UserErrors; len(errs) > 0 {
		return domain.NewBusinessError("sendInvite", fieldErrors(errs))
	}

	c.log.Info("Sent account invite for %s", customerID)
	return nil
}
