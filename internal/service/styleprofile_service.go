package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/colabah/style-dna-service/internal/alerts"
	"github.com/colabah/style-dna-service/internal/domain"
	"github.com/colabah/style-dna-service/internal/kafka/producer"
	"github.com/colabah/style-dna-service/internal/metrics"
	"github.com/colabah/style-dna-service/pkg/logger"
)

// CustomerDirectory is the remote customer-management capability the workflow
// runs against. The Shopify Admin API client implements it; tests inject a fake.
type CustomerDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.CustomerRecord, error)
	Create(ctx context.Context, email, styleValue string) (*domain.CustomerRecord, []domain.FieldError, error)
	SetStyleMetafield(ctx context.Context, customerID, value string) (string, []domain.FieldError, error)
	SendInvite(ctx context.Context, customerID string) error
}

// Options are the behavioral flags of the workflow
type Options struct {
	AllowGuest bool
	SendInvite bool
}

// StyleProfileService runs the upsert-customer-style-profile workflow
type StyleProfileService struct {
	directory CustomerDirectory
	opts      Options
	metrics   metrics.StyleMetrics
	events    producer.ProfileProducer
	alerts    alerts.Notifier
	validate  *validator.Validate
	log       *logger.Logger

	// Serializes resolve-or-create per email so two concurrent submissions
	// for the same address cannot both take the creation branch.
	upsertGroup singleflight.Group
}

// NewStyleProfileService creates a new workflow service. The events producer
// and the alerts notifier may be nil; both are best-effort side channels.
func NewStyleProfileService(directory CustomerDirectory, opts Options, m metrics.StyleMetrics,
	events producer.ProfileProducer, notifier alerts.Notifier, log *logger.Logger) *StyleProfileService {
	return &StyleProfileService{
		directory: directory,
		opts:      opts,
		metrics:   m,
		events:    events,
		alerts:    notifier,
		validate:  validator.New(),
		log:       log,
	}
}

// CustomerGID builds a customer admin GID from the numeric id the app proxy
// passes in logged_in_customer_id.
func CustomerGID(numericID string) string {
	return "gid://shopify/Customer/" + numericID
}

// SaveForCustomer writes the style value onto an already-identified customer.
// Business rejections come back inside the outcome; transport failures as error.
func (s *StyleProfileService) SaveForCustomer(ctx context.Context, req domain.StyleProfileRequest) (domain.WorkflowOutcome, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		s.metrics.IncSave(string(req.Mode), metrics.ResultValidationError)
		return domain.WorkflowOutcome{}, domain.NewValidationError("customerId", "customer id is required")
	}
	if strings.TrimSpace(req.StyleValue) == "" {
		s.metrics.IncSave(string(req.Mode), metrics.ResultValidationError)
		return domain.WorkflowOutcome{}, domain.NewValidationError("style", "style is required")
	}

	saved, fieldErrs, err := s.directory.SetStyleMetafield(ctx, req.CustomerID, req.StyleValue)
	if err != nil {
		s.metrics.IncSave(string(req.Mode), metrics.ResultUpstreamError)
		s.alertError("style metafield write failed: " + err.Error())
		return domain.WorkflowOutcome{}, err
	}
	if len(fieldErrs) > 0 {
		s.log.Warn("Style write rejected for %s: %s", req.CustomerID, fieldErrs[0].Message)
		s.metrics.IncSave(string(req.Mode), metrics.ResultBusinessError)
		return domain.WorkflowOutcome{
			CustomerID: req.CustomerID,
			Errors:     fieldErrs,
		}, nil
	}

	outcome := domain.WorkflowOutcome{
		Succeeded:  true,
		CustomerID: req.CustomerID,
		SavedValue: saved,
	}

	s.metrics.IncSave(string(req.Mode), metrics.ResultSuccess)
	s.publishSaved(outcome, req.Mode)

	return outcome, nil
}

// SaveForSession handles the storefront session route. Visitors without a
// session get the degraded guest outcome: nothing is written remotely, the
// theme keeps the value in local storage.
func (s *StyleProfileService) SaveForSession(ctx context.Context, loggedInCustomerID, styleValue string) (domain.WorkflowOutcome, error) {
	if strings.TrimSpace(styleValue) == "" {
		s.metrics.IncSave(string(domain.ModeSession), metrics.ResultValidationError)
		return domain.WorkflowOutcome{}, domain.NewValidationError("style", "style is required")
	}

	if strings.TrimSpace(loggedInCustomerID) == "" {
		if !s.opts.AllowGuest {
			return domain.WorkflowOutcome{}, domain.ErrAuthContext
		}
		s.log.Info("Guest user, style DNA kept client-side only")
		s.metrics.IncGuestSave()
		return domain.GuestOutcome(), nil
	}

	return s.SaveForCustomer(ctx, domain.StyleProfileRequest{
		CustomerID: CustomerGID(loggedInCustomerID),
		StyleValue: styleValue,
		Mode:       domain.ModeSession,
	})
}

// CreateOrUpdate handles the anonymous account-creation route: resolve the
// email, update the existing customer or provision a new one with the style
// metafield set at creation time, then best-effort send the invite email.
func (s *StyleProfileService) CreateOrUpdate(ctx context.Context, email, styleValue string) (domain.WorkflowOutcome, error) {
	if strings.TrimSpace(email) == "" {
		s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultValidationError)
		return domain.WorkflowOutcome{}, domain.NewValidationError("email", "email is required")
	}
	if strings.TrimSpace(styleValue) == "" {
		s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultValidationError)
		return domain.WorkflowOutcome{}, domain.NewValidationError("style", "style is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultValidationError)
		return domain.WorkflowOutcome{}, domain.NewValidationError("email", "invalid email address")
	}

	// Concurrent submissions for one address share a single execution
	v, err, _ := s.upsertGroup.Do(strings.ToLower(strings.TrimSpace(email)), func() (interface{}, error) {
		return s.upsertByEmail(ctx, email, styleValue)
	})
	if err != nil {
		return domain.WorkflowOutcome{}, err
	}
	return v.(domain.WorkflowOutcome), nil
}

// upsertByEmail is the resolve-then-branch body of CreateOrUpdate
func (s *StyleProfileService) upsertByEmail(ctx context.Context, email, styleValue string) (domain.WorkflowOutcome, error) {
	record, err := s.directory.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrCustomerNotFound) {
		s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultUpstreamError)
		s.alertError("customer lookup failed: " + err.Error())
		return domain.WorkflowOutcome{}, err
	}

	if record != nil {
		s.log.Info("Customer exists for %s, updating style DNA", email)

		saved, fieldErrs, err := s.directory.SetStyleMetafield(ctx, record.ID, styleValue)
		if err != nil {
			s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultUpstreamError)
			s.alertError("style metafield write failed: " + err.Error())
			return domain.WorkflowOutcome{}, err
		}
		if len(fieldErrs) > 0 {
			s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultBusinessError)
			return domain.WorkflowOutcome{
				CustomerID:      record.ID,
				Email:           email,
				ExistingAccount: true,
				Errors:          fieldErrs,
			}, nil
		}

		outcome := domain.WorkflowOutcome{
			Succeeded:       true,
			CustomerID:      record.ID,
			Email:           email,
			SavedValue:      saved,
			ExistingAccount: true,
			Message:         "Your Style DNA has been saved to your existing account",
		}
		s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultSuccess)
		s.publishSaved(outcome, domain.ModeProxy)
		return outcome, nil
	}

	created, fieldErrs, err := s.directory.Create(ctx, email, styleValue)
	if err != nil {
		s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultUpstreamError)
		s.alertError("customer create failed: " + err.Error())
		return domain.WorkflowOutcome{}, err
	}
	if len(fieldErrs) > 0 {
		s.log.Warn("Customer create rejected for %s: %s", email, fieldErrs[0].Message)
		s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultBusinessError)
		return domain.WorkflowOutcome{
			Email:  email,
			Errors: fieldErrs,
		}, nil
	}

	s.metrics.IncCustomerCreated()

	outcome := domain.WorkflowOutcome{
		Succeeded:  true,
		CustomerID: created.ID,
		Email:      created.Email,
		SavedValue: created.StyleMetafield,
		Message:    "Account created! Check your email to set your password.",
	}

	if s.opts.SendInvite {
		// Invite failure never rolls back the created account
		if err := s.directory.SendInvite(ctx, created.ID); err != nil {
			s.log.Warn("Account invite failed for %s: %v", created.ID, err)
			s.metrics.IncInviteFailed()
			s.alertError("account invite failed for " + email + ": " + err.Error())
		} else {
			s.metrics.IncInviteSent()
		}
	}

	s.metrics.IncSave(string(domain.ModeProxy), metrics.ResultSuccess)
	s.publishSaved(outcome, domain.ModeProxy)
	s.publishCreated(outcome)

	return outcome, nil
}

// publishSaved emits the saved event when a producer is wired
func (s *StyleProfileService) publishSaved(outcome domain.WorkflowOutcome, mode domain.SaveMode) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishProfileSaved(outcome, mode); err != nil {
		s.log.Warn("Failed to publish profile saved event: %v", err)
	}
}

// publishCreated emits the customer-created event when a producer is wired
func (s *StyleProfileService) publishCreated(outcome domain.WorkflowOutcome) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCustomerCreated(outcome); err != nil {
		s.log.Warn("Failed to publish customer created event: %v", err)
	}
}

// alertError pings the ops channel when a notifier is wired
func (s *StyleProfileService) alertError(msg string) {
	if s.alerts == nil {
		return
	}
	s.alerts.AlertError(msg)
}
