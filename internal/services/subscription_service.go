package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-subscribe/internal/config"
	"github.com/prefeitura-rio/app-subscribe/internal/hubspot"
	"github.com/prefeitura-rio/app-subscribe/internal/models"
	"github.com/prefeitura-rio/app-subscribe/internal/observability"
	"github.com/prefeitura-rio/app-subscribe/internal/token"
	"github.com/prefeitura-rio/app-subscribe/internal/utils"
	"go.uber.org/zap"
)

// SubscriptionService holds the immutable collaborators of the
// contact-request orchestrator: configuration, the remote contact API
// and the optional token codec. It is safe for concurrent use; all
// per-request state lives on the Flow it creates.
type SubscriptionService struct {
	cfg    *config.Config
	api    hubspot.API
	codec  token.Codec
	logger *zap.Logger

	// enrollWG tracks fire-and-forget enrollments so tests and shutdown
	// can wait for them; request handling never does.
	enrollWG sync.WaitGroup
}

// NewSubscriptionService constructs the orchestrator. codec may be nil
// when no encryption key is configured, which disables the token entry
// path and the synthetic token property.
func NewSubscriptionService(cfg *config.Config, api hubspot.API, codec token.Codec) *SubscriptionService {
	return &SubscriptionService{
		cfg:    cfg,
		api:    api,
		codec:  codec,
		logger: observability.Logger().Named("subscription"),
	}
}

// Flow is the request-scoped state of one classified request. Dispatch
// runs at most once no matter how many times the result or the
// predicates are queried.
type Flow struct {
	svc     *SubscriptionService
	signals models.RequestSignals
	once    sync.Once
	result  models.Result
}

// NewFlow binds the orchestrator to one request's signals.
func (s *SubscriptionService) NewFlow(signals models.RequestSignals) *Flow {
	return &Flow{svc: s, signals: signals}
}

// Result classifies the request and runs the single action it calls
// for. Subsequent calls return the already-computed result without
// touching the remote API.
func (f *Flow) Result(ctx context.Context) *models.Result {
	f.once.Do(func() {
		f.dispatch(ctx)
		if f.result.Decided() {
			observability.FlowOutcomes.WithLabelValues(string(f.result.Status)).Inc()
		}
	})
	return &f.result
}

// IsSignedUp reports whether the request resolved to an existing
// contact. Forces dispatch.
func (f *Flow) IsSignedUp(ctx context.Context) bool {
	r := f.Result(ctx)
	return r.Contact != nil && r.Contact.VID > 0
}

// ShowSettings reports whether the caller should render the settings
// view. Forces dispatch.
func (f *Flow) ShowSettings(ctx context.Context) bool {
	return f.Result(ctx).Status == models.StatusSettings || f.IsSignedUp(ctx)
}

// dispatch evaluates the guards in strict precedence order; the first
// match wins and every other branch is skipped for this request.
// Opt-out runs first so a contact can always unsubscribe regardless of
// stale form data; a posted vid is the strongest existing-contact
// signal and is gated on the settings nonce.
func (f *Flow) dispatch(ctx context.Context) {
	signals := f.signals

	if signals.OptOutVerified {
		f.optOut(ctx)
		return
	}

	if vid := positiveInt(signals.Field("vid")); vid > 0 {
		if signals.SettingsVerified {
			f.update(ctx, vid)
		} else {
			// Malformed or expired settings form
			f.conclude(models.StatusSignup, models.MessageError, nil)
		}
		return
	}

	if email := utils.SanitizeEmail(signals.Field("email")); email != "" {
		switch {
		case signals.SettingsVerified:
			// A settings nonce with an email and no vid is a new
			// contact completing the settings form
			f.create(ctx, email)
		case signals.SignupVerified:
			f.check(ctx, email)
		default:
			f.conclude(models.StatusSignup, models.MessageError, nil)
		}
		return
	}

	if id := positiveInt(signals.SubscriptionID); id > 0 {
		f.fetchByID(ctx, id)
		return
	}

	if signals.SubscriptionToken != "" {
		if email := f.svc.decodeToken(signals.SubscriptionToken); email != "" {
			f.fetchByEmail(ctx, email)
		} else {
			f.conclude(models.StatusSignup, models.MessageNotFound, nil)
		}
		return
	}

	// No guard matched: no remote call, result stays undecided and the
	// caller renders the bare sign-up form.
}

// check looks up a contact by email on the sign-up path.
func (f *Flow) check(ctx context.Context, email string) bool {
	contact, err := f.svc.api.GetContactByEmail(ctx, email)
	if err == hubspot.ErrNotFound {
		// New contact: show the settings form to collect the rest
		snapshot := models.NewContactSnapshot()
		snapshot.Set("email", email)
		f.conclude(models.StatusSettings, "", snapshot)
		return true
	}

	if err == nil && contact.VID > 0 {
		if f.svc.isOptedOut(contact) {
			f.conclude(models.StatusSuccess, models.MessageOptOut, nil)
			return false
		}

		if f.svc.cfg.SignupWorkflowID != "" {
			if contact.Property("token") != "" {
				// Fully signed up already; re-send the settings link
				f.conclude(models.StatusSuccess, models.MessageSignedUp, nil)
				f.svc.enroll(f.svc.cfg.SignupWorkflowID, email)
				return true
			}
			// Contact exists but never completed settings
			snapshot := models.NewContactSnapshot()
			snapshot.VID = contact.VID
			snapshot.Set("email", contact.Property("email"))
			f.conclude(models.StatusSettings, "", snapshot)
			return true
		}

		// No signup workflow configured: straight to settings
		f.conclude(models.StatusSettings, "", snapshotFromContact(contact))
		return true
	}

	f.conclude(models.StatusError, models.MessageSignupError, nil)
	return false
}

// create builds the property list from the posted fields and creates a
// new remote contact.
func (f *Flow) create(ctx context.Context, email string) bool {
	properties, snapshot := f.svc.serializeProperties(f.signals, "create")

	contact, err := f.svc.api.CreateContact(ctx, properties)
	if err != nil {
		f.conclude(models.StatusError, models.MessageSignupError, nil)
		return false
	}

	snapshot.VID = contact.VID
	f.conclude(models.StatusSuccess, f.svc.settingsSavedMessage(contact.VID), snapshot)
	f.svc.enroll(f.svc.cfg.SignupWorkflowID, email)
	return true
}

// update posts the property list to an existing contact.
func (f *Flow) update(ctx context.Context, vid int) bool {
	properties, snapshot := f.svc.serializeProperties(f.signals, "update")
	snapshot.VID = vid

	if err := f.svc.api.UpdateContact(ctx, vid, properties); err != nil {
		f.conclude(models.StatusError, models.MessageUpdateError, nil)
		return false
	}

	f.conclude(models.StatusSuccess, f.svc.settingsSavedMessage(vid), snapshot)
	f.svc.enroll(f.svc.cfg.UpdateWorkflowID, f.signals.Field("email"))
	return true
}

// optOut unsubscribes the posted email from the configured list.
func (f *Flow) optOut(ctx context.Context) bool {
	email := utils.SanitizeEmail(f.signals.Field("email"))
	if email != "" && f.svc.cfg.PortalID != "" && f.svc.cfg.SubscriptionID != "" {
		err := f.svc.api.SetSubscriptionStatus(ctx, email, f.svc.cfg.SubscriptionID, f.svc.cfg.PortalID, false)
		if err == nil {
			f.conclude(models.StatusSuccess, models.MessageOptOut, nil)
			return true
		}
	}

	f.conclude(models.StatusError, models.MessageOptOutError, nil)
	return false
}

// fetchByID resolves the subscription-id query entry path.
func (f *Flow) fetchByID(ctx context.Context, vid int) bool {
	contact, err := f.svc.api.GetContactByID(ctx, vid)
	return f.processFetch(contact, err)
}

// fetchByEmail resolves the subscription-token query entry path.
func (f *Flow) fetchByEmail(ctx context.Context, email string) bool {
	contact, err := f.svc.api.GetContactByEmail(ctx, email)
	return f.processFetch(contact, err)
}

// processFetch turns a profile fetch outcome into a result. Any
// failure, including 404, reads as "settings not found" rather than an
// error: lookup links are long-lived and go stale.
func (f *Flow) processFetch(contact *hubspot.Contact, err error) bool {
	if err == nil && contact != nil {
		if f.svc.isOptedOut(contact) {
			f.conclude(models.StatusSuccess, models.MessageOptOut, nil)
			return false
		}
		if utils.SanitizeEmail(contact.Property("email")) != "" {
			f.conclude(models.StatusSettings, "", snapshotFromContact(contact))
			return true
		}
	}

	f.conclude(models.StatusSignup, models.MessageNotFound, nil)
	return false
}

// conclude records the request's final status, resolved message and
// snapshot.
func (f *Flow) conclude(status models.Status, messageKey string, snapshot *models.ContactSnapshot) {
	f.result = models.Result{
		Status:  status,
		Contact: snapshot,
	}
	if messageKey != "" {
		f.result.Message = f.svc.cfg.Messages.Get(messageKey)
	}
}

// settingsSavedMessage resolves the saved message with its edit link.
func (s *SubscriptionService) settingsSavedMessage(vid int) string {
	link := fmt.Sprintf("?subscription-id=%d", vid)
	return fmt.Sprintf(s.cfg.Messages.Get(models.MessageSettingsSaved), link)
}

// isOptedOut reports whether a fetched contact is unsubscribed, either
// globally or from the configured list.
func (s *SubscriptionService) isOptedOut(contact *hubspot.Contact) bool {
	if contact.Property("hs_email_optout") == "true" {
		return true
	}
	return s.cfg.SubscriptionID != "" &&
		contact.Property("hs_email_optout_"+s.cfg.SubscriptionID) == "true"
}

// decodeToken decrypts a subscription token into an email address.
// Any failure, wrong key included, reads as "token not usable".
func (s *SubscriptionService) decodeToken(tok string) string {
	if s.codec == nil {
		return ""
	}
	plaintext, err := s.codec.Decrypt(tok)
	if err != nil {
		return ""
	}
	return utils.SanitizeEmail(plaintext)
}

// enroll dispatches a fire-and-forget workflow enrollment. The outcome
// never changes the already-decided result; failures are only logged.
func (s *SubscriptionService) enroll(workflowID, email string) {
	if workflowID == "" {
		return
	}
	email = utils.SanitizeEmail(email)
	if email == "" {
		return
	}

	s.enrollWG.Add(1)
	go func() {
		defer s.enrollWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.api.EnrollInWorkflow(ctx, workflowID, email); err != nil {
			observability.WorkflowEnrollments.WithLabelValues(workflowID, "failure").Inc()
			s.logger.Warn("workflow enrollment failed",
				zap.String("workflow", workflowID),
				zap.String("email", observability.MaskEmail(email)),
				zap.Error(err))
			return
		}
		observability.WorkflowEnrollments.WithLabelValues(workflowID, "success").Inc()
	}()
}

// WaitForEnrollments blocks until in-flight enrollments finish. Used on
// shutdown.
func (s *SubscriptionService) WaitForEnrollments() {
	s.enrollWG.Wait()
}

// snapshotFromContact copies a fetched profile wholesale into a
// snapshot.
func snapshotFromContact(contact *hubspot.Contact) *models.ContactSnapshot {
	snapshot := models.NewContactSnapshot()
	snapshot.VID = contact.VID
	for key, value := range contact.Properties {
		snapshot.Set(key, value.Value)
	}
	return snapshot
}

// positiveInt parses a positive integer, returning 0 for anything else.
func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
