package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-subscribe/internal/config"
	"github.com/prefeitura-rio/app-subscribe/internal/models"
	"github.com/prefeitura-rio/app-subscribe/internal/observability"
	"github.com/prefeitura-rio/app-subscribe/internal/services"
	"github.com/prefeitura-rio/app-subscribe/internal/utils"
	"go.uber.org/zap"
)

// NonceField is the posted field carrying the anti-forgery nonce.
const NonceField = "hubspot_contacts_nonce"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SubscriptionResponse is the contract returned to the client-side
// form handler.
type SubscriptionResponse struct {
	Status      models.Status           `json:"status"`
	Message     string                  `json:"message"`
	ContactData *models.ContactSnapshot `json:"contact_data"`
}

// FormStateResponse extends SubscriptionResponse with the rendering
// predicates and fresh nonces the client needs to build its forms.
type FormStateResponse struct {
	Status       models.Status           `json:"status,omitempty"`
	Message      string                  `json:"message,omitempty"`
	ContactData  *models.ContactSnapshot `json:"contact_data"`
	SignedUp     bool                    `json:"signed_up"`
	ShowSettings bool                    `json:"show_settings"`
	Nonces       map[string]string       `json:"nonces"`
}

// SubscriptionHandler routes inbound form actions into the
// orchestrator.
type SubscriptionHandler struct {
	service *services.SubscriptionService
	nonces  *services.NonceService
	cfg     *config.Config
}

// NewSubscriptionHandler wires the handler to its collaborators.
func NewSubscriptionHandler(service *services.SubscriptionService, nonces *services.NonceService, cfg *config.Config) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, nonces: nonces, cfg: cfg}
}

// GetFormState godoc
// @Summary Get subscription form state
// @Description Classifies the current request (subscription-id or subscription-token query parameters) and returns the status, contact snapshot, rendering predicates and fresh action nonces.
// @Tags subscription
// @Produce json
// @Param subscription-id query int false "Contact id from a settings link"
// @Param subscription-token query string false "Encrypted settings token from an email link"
// @Success 200 {object} FormStateResponse
// @Failure 500 {object} ErrorResponse
// @Router /subscription [get]
func (h *SubscriptionHandler) GetFormState(c *gin.Context) {
	flow := h.service.NewFlow(h.buildSignals(c, ""))
	result := flow.Result(c.Request.Context())

	nonces := make(map[string]string, 3)
	for _, action := range []string{services.ActionSignup, services.ActionSettings, services.ActionOptOut} {
		nonce, err := h.nonces.Issue(c.Request.Context(), action)
		if err != nil {
			observability.Logger().Error("failed to issue nonce",
				zap.String("action", action), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to prepare form"})
			return
		}
		nonces[action] = nonce
	}

	c.JSON(http.StatusOK, FormStateResponse{
		Status:       result.Status,
		Message:      result.Message,
		ContactData:  result.Contact,
		SignedUp:     flow.IsSignedUp(c.Request.Context()),
		ShowSettings: flow.ShowSettings(c.Request.Context()),
		Nonces:       nonces,
	})
}

// SignUp godoc
// @Summary Sign up an email address
// @Description Checks whether the posted email already has a contact and decides between the settings form, a confirmation message and an error.
// @Tags subscription
// @Accept x-www-form-urlencoded
// @Produce json
// @Param hubspot_contact[email] formData string true "Email address"
// @Param hubspot_contacts_nonce formData string true "Signup nonce"
// @Success 200 {object} SubscriptionResponse
// @Failure 500 {string} string "error message"
// @Router /subscription/signup [post]
func (h *SubscriptionHandler) SignUp(c *gin.Context) {
	h.handleAction(c, services.ActionSignup, utils.AuditActionSignup)
}

// Update godoc
// @Summary Save contact settings
// @Description Creates the contact when only an email is posted, updates it when a vid is posted. Both require a settings nonce.
// @Tags subscription
// @Accept x-www-form-urlencoded
// @Produce json
// @Param hubspot_contact[vid] formData int false "Existing contact id"
// @Param hubspot_contacts_nonce formData string true "Settings nonce"
// @Success 200 {object} SubscriptionResponse
// @Failure 500 {string} string "error message"
// @Router /subscription/update [post]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	h.handleAction(c, services.ActionSettings, utils.AuditActionUpdate)
}

// OptOut godoc
// @Summary Opt a contact out of the mailing list
// @Description Unsubscribes the posted email from the configured subscription. Requires an opt-out nonce.
// @Tags subscription
// @Accept x-www-form-urlencoded
// @Produce json
// @Param hubspot_contact[email] formData string true "Email address"
// @Param hubspot_contacts_nonce formData string true "Opt-out nonce"
// @Success 200 {object} SubscriptionResponse
// @Failure 500 {string} string "error message"
// @Router /subscription/opt-out [post]
func (h *SubscriptionHandler) OptOut(c *gin.Context) {
	h.handleAction(c, services.ActionOptOut, utils.AuditActionOptOut)
}

// handleAction runs one posted action through the orchestrator and
// writes the JSON contract. Error results answer 500 with just the
// message so the client-side handler can show it verbatim.
func (h *SubscriptionHandler) handleAction(c *gin.Context, action, auditAction string) {
	signals := h.buildSignals(c, action)
	flow := h.service.NewFlow(signals)
	result := flow.Result(c.Request.Context())

	vid := 0
	if result.Contact != nil {
		vid = result.Contact.VID
	}
	utils.LogSubscriptionEvent(utils.GetAuditContextFromGin(c), auditAction,
		string(result.Status), signals.Field("email"), vid)

	if result.Status == models.StatusError {
		c.JSON(http.StatusInternalServerError, result.Message)
		return
	}

	c.JSON(http.StatusOK, SubscriptionResponse{
		Status:      result.Status,
		Message:     result.Message,
		ContactData: result.Contact,
	})
}

// buildSignals assembles the request's immutable signals. Only the
// nonce matching the route's action is verified; the classifier sees
// every other flag as false.
func (h *SubscriptionHandler) buildSignals(c *gin.Context, action string) models.RequestSignals {
	signals := models.RequestSignals{
		Fields:            c.PostFormMap(h.cfg.FormContainer),
		SubscriptionID:    c.Query("subscription-id"),
		SubscriptionToken: c.Query("subscription-token"),
	}

	nonce := c.PostForm(NonceField)
	switch action {
	case services.ActionSignup:
		signals.SignupVerified = h.nonces.Verify(c.Request.Context(), action, nonce)
	case services.ActionSettings:
		signals.SettingsVerified = h.nonces.Verify(c.Request.Context(), action, nonce)
	case services.ActionOptOut:
		signals.OptOutVerified = h.nonces.Verify(c.Request.Context(), action, nonce)
	}

	return signals
}
