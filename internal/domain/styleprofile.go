package domain

// Metafield slot written by this app on the Shopify customer record.
const (
	StyleMetafieldNamespace = "custom"
	StyleMetafieldKey       = "style_dna"
	StyleMetafieldType      = "single_line_text_field"
)

// SaveMode identifies which entry path produced a style submission
type SaveMode string

const (
	ModeAdmin   SaveMode = "admin"
	ModeSession SaveMode = "session"
	ModeProxy   SaveMode = "proxy"
)

// StyleProfileRequest is the validated input of one workflow run.
// Exactly one of CustomerID/Email resolution paths is taken per call.
type StyleProfileRequest struct {
	CustomerID string
	Email      string
	StyleValue string
	Mode       SaveMode
}

// FieldError mirrors a Shopify userError: a field path plus a message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CustomerRecord is the remote customer as far as this app reads it
type CustomerRecord struct {
	ID             string
	Email          string
	StyleMetafield string
}

// WorkflowOutcome is the terminal result of one upsert run. It is built
// once per request and handed to the response formatter unchanged.
type WorkflowOutcome struct {
	Succeeded       bool
	CustomerID      string
	Email           string
	SavedValue      string
	ExistingAccount bool
	Guest           bool
	Message         string
	Errors          []FieldError
}

// GuestOutcome is the degraded result for storefront visitors without a
// session: nothing is written remotely, the theme keeps the value client-side.
func GuestOutcome() WorkflowOutcome {
	return WorkflowOutcome{
		Succeeded: true,
		Guest:     true,
		Message:   "Style saved locally",
	}
}
