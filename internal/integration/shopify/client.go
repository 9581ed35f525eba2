package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/colabah/style-dna-service/internal/domain"
	"github.com/colabah/style-dna-service/internal/metrics"
	"github.com/colabah/style-dna-service/pkg/logger"
)

// Client is an Admin GraphQL API client scoped to one installed shop
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	log         *logger.Logger
	metrics     metrics.StyleMetrics
}

// Config is the Admin API configuration for the client
type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// NewClient creates a new Shopify Admin GraphQL client
func NewClient(cfg Config, m metrics.StyleMetrics, log *logger.Logger) *Client {
	// Normalize the shop domain: strip scheme and trailing slashes
	shopDomain := cfg.ShopDomain
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	shopDomain = strings.TrimSuffix(shopDomain, "/")

	return &Client{
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, cfg.APIVersion),
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:     log,
		metrics: m,
	}
}

// graphqlError is a top-level GraphQL error, distinct from mutation userErrors
type graphqlError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// graphqlResponse is the GraphQL envelope with a typed data payload
type graphqlResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}

// graphqlUserError mirrors the userErrors shape of Admin API mutations
type graphqlUserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// fieldErrors converts mutation userErrors to domain field errors
func fieldErrors(userErrors []graphqlUserError) []domain.FieldError {
	out := make([]domain.FieldError, 0, len(userErrors))
	for _, ue := range userErrors {
		out = append(out, domain.FieldError{
			Field:   strings.Join(ue.Field, "."),
			Message: ue.Message,
		})
	}
	return out
}

// postGraphQL executes one GraphQL document against the Admin API. Top-level
// GraphQL errors and non-200 responses come back as upstream errors; mutation
// userErrors are left inside the typed payload for the caller to interpret.
func postGraphQL[T any](ctx context.Context, c *Client, operation, query string, variables map[string]any) (*T, error) {
	reqBody := map[string]any{
		"query":     query,
		"variables": variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveAdminCall(operation, err == nil, time.Since(start).Seconds())
	if err != nil {
		c.log.Error("Admin API request failed for %s: %v", operation, err)
		return nil, domain.NewUpstreamError(operation, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewUpstreamError(operation, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("Admin API returned status %d for %s: %s", resp.StatusCode, operation, string(body))
		return nil, domain.NewUpstreamError(operation, resp.StatusCode,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out graphqlResponse[T]
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, domain.NewUpstreamError(operation, resp.StatusCode,
			fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if len(out.Errors) > 0 {
		messages := make([]string, len(out.Errors))
		for i, gqlErr := range out.Errors {
			messages[i] = gqlErr.Message
		}
		c.log.Error("Admin API GraphQL errors for %s: %s", operation, strings.Join(messages, "; "))
		return nil, domain.NewUpstreamError(operation, resp.StatusCode,
			fmt.Errorf("graphql errors: %s", strings.Join(messages, "; ")))
	}

	return &out.Data, nil
}
