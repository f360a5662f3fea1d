// Package hubspot is a thin client for the HubSpot contacts v1 API.
// Every operation is a single request/response with no retry; a
// transport error or non-2xx response is classified uniformly as
// failure and callers never see the raw API error body.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/prefeitura-rio/app-subscribe/internal/observability"
	"github.com/prefeitura-rio/app-subscribe/internal/utils/httpclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means the contact does not exist (HTTP 404).
	ErrNotFound = errors.New("hubspot: contact not found")
	// ErrRemote covers every other failed call: transport errors,
	// non-2xx responses and API-level error bodies.
	ErrRemote = errors.New("hubspot: remote call failed")
	// ErrNoData means the call succeeded but the body was not usable.
	ErrNoData = errors.New("hubspot: response carried no data")
)

// Contact is the profile payload returned by fetch calls.
type Contact struct {
	VID        int                      `json:"vid"`
	Properties map[string]PropertyValue `json:"properties"`
}

// PropertyValue wraps a single property value in the API's envelope.
type PropertyValue struct {
	Value string `json:"value"`
}

// Property returns a property value from the profile, or "" when the
// property is absent.
func (c *Contact) Property(key string) string {
	if c == nil {
		return ""
	}
	return c.Properties[key].Value
}

// Property is one entry of the property list sent on create/update.
// Value is a string for text properties, a bool for checkboxes and an
// int for the reserved vid property.
type Property struct {
	Property string      `json:"property"`
	Value    interface{} `json:"value"`
}

// API is the surface the orchestrator depends on; tests substitute a
// recording fake.
type API interface {
	GetContactByID(ctx context.Context, vid int) (*Contact, error)
	GetContactByEmail(ctx context.Context, email string) (*Contact, error)
	CreateContact(ctx context.Context, properties []Property) (*Contact, error)
	UpdateContact(ctx context.Context, vid int, properties []Property) error
	EnrollInWorkflow(ctx context.Context, workflowID, email string) error
	SetSubscriptionStatus(ctx context.Context, email, subscriptionID, portalID string, subscribed bool) error
}

// Client implements API against the HubSpot HTTP endpoints.
type Client struct {
	baseURL string
	apiKey  string
	pool    *httpclient.HTTPClientPool
	logger  *zap.Logger
}

// NewClient builds a client authenticated by API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		pool:    httpclient.GetGlobalPool(),
		logger:  observability.Logger().Named("hubspot"),
	}
}

// contactURL builds a contacts v1 endpoint URL with the API key
// appended as the authentication parameter.
func (c *Client) contactURL(endpoint string) string {
	return fmt.Sprintf("%s/contacts/v1/%s?hapikey=%s", c.baseURL, endpoint, url.QueryEscape(c.apiKey))
}

// GetContactByID fetches a contact profile by its numeric id.
func (c *Client) GetContactByID(ctx context.Context, vid int) (*Contact, error) {
	return c.fetchContact(ctx, "get_contact_by_id", c.contactURL(fmt.Sprintf("contact/vid/%d/profile", vid)))
}

// GetContactByEmail fetches a contact profile by email address.
func (c *Client) GetContactByEmail(ctx context.Context, email string) (*Contact, error) {
	return c.fetchContact(ctx, "get_contact_by_email", c.contactURL(fmt.Sprintf("contact/email/%s/profile", url.PathEscape(email))))
}

func (c *Client) fetchContact(ctx context.Context, operation, endpoint string) (*Contact, error) {
	body, status, err := c.do(ctx, operation, http.MethodGet, endpoint, nil)
	if err != nil {
		observability.RemoteAPICalls.WithLabelValues(operation, "failure").Inc()
		return nil, err
	}
	if status == http.StatusNotFound {
		observability.RemoteAPICalls.WithLabelValues(operation, "not_found").Inc()
		return nil, ErrNotFound
	}
	if status < 200 || status > 299 {
		observability.RemoteAPICalls.WithLabelValues(operation, "failure").Inc()
		return nil, ErrRemote
	}
	observability.RemoteAPICalls.WithLabelValues(operation, "success").Inc()

	var contact Contact
	if err := json.Unmarshal(body, &contact); err != nil || contact.VID == 0 {
		return nil, ErrNoData
	}
	return &contact, nil
}

// CreateContact creates a new contact from the serialized property
// list. A 2xx response carrying an API-level error status still counts
// as a failure.
func (c *Client) CreateContact(ctx context.Context, properties []Property) (*Contact, error) {
	payload, err := json.Marshal(map[string]interface{}{"properties": properties})
	if err != nil {
		return nil, err
	}
	body, status, err := c.do(ctx, "create_contact", http.MethodPost, c.contactURL("contact"), payload)
	if err != nil || status < 200 || status > 299 {
		observability.RemoteAPICalls.WithLabelValues("create_contact", "failure").Inc()
		return nil, ErrRemote
	}

	var result struct {
		Status string `json:"status"`
		VID    int    `json:"vid"`
	}
	// An undecodable body is "no data", not a failure
	_ = json.Unmarshal(body, &result)
	if result.Status == "error" {
		observability.RemoteAPICalls.WithLabelValues("create_contact", "failure").Inc()
		return nil, ErrRemote
	}
	observability.RemoteAPICalls.WithLabelValues("create_contact", "success").Inc()
	return &Contact{VID: result.VID}, nil
}

// UpdateContact posts the serialized property list to an existing
// contact.
func (c *Client) UpdateContact(ctx context.Context, vid int, properties []Property) error {
	payload, err := json.Marshal(map[string]interface{}{"properties": properties})
	if err != nil {
		return err
	}
	endpoint := c.contactURL(fmt.Sprintf("contact/vid/%d/profile", vid))
	body, status, err := c.do(ctx, "update_contact", http.MethodPost, endpoint, payload)
	if err != nil || status < 200 || status > 299 {
		observability.RemoteAPICalls.WithLabelValues("update_contact", "failure").Inc()
		return ErrRemote
	}

	var result struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &result)
	if result.Status == "error" {
		observability.RemoteAPICalls.WithLabelValues("update_contact", "failure").Inc()
		return ErrRemote
	}
	observability.RemoteAPICalls.WithLabelValues("update_contact", "success").Inc()
	return nil
}

// EnrollInWorkflow enrolls a contact into an automation workflow.
func (c *Client) EnrollInWorkflow(ctx context.Context, workflowID, email string) error {
	endpoint := fmt.Sprintf("%s/automation/v2/workflows/%s/enrollments/contacts/%s?hapikey=%s",
		c.baseURL, url.PathEscape(workflowID), url.PathEscape(email), url.QueryEscape(c.apiKey))
	_, status, err := c.do(ctx, "enroll_in_workflow", http.MethodPost, endpoint, nil)
	if err != nil || status < 200 || status > 299 {
		observability.RemoteAPICalls.WithLabelValues("enroll_in_workflow", "failure").Inc()
		return ErrRemote
	}
	observability.RemoteAPICalls.WithLabelValues("enroll_in_workflow", "success").Inc()
	return nil
}

// SetSubscriptionStatus flips a contact's subscription flag for one
// mailing list. Unsubscribing from all lists is not supported by the
// endpoint, so callers pass the configured subscription id.
func (c *Client) SetSubscriptionStatus(ctx context.Context, email, subscriptionID, portalID string, subscribed bool) error {
	payload, err := json.Marshal(map[string]interface{}{
		"subscriptionStatuses": []map[string]interface{}{
			{"id": subscriptionID, "subscribed": subscribed},
		},
	})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/email/public/v1/subscriptions/%s?portalId=%s&hapikey=%s",
		c.baseURL, url.PathEscape(email), url.QueryEscape(portalID), url.QueryEscape(c.apiKey))
	_, status, err := c.do(ctx, "set_subscription_status", http.MethodPut, endpoint, payload)
	if err != nil || status < 200 || status > 299 {
		observability.RemoteAPICalls.WithLabelValues("set_subscription_status", "failure").Inc()
		return ErrRemote
	}
	observability.RemoteAPICalls.WithLabelValues("set_subscription_status", "success").Inc()
	return nil
}

// do issues one HTTP request through the pooled clients and returns the
// raw body and status code. Transport-level errors surface as ErrRemote.
func (c *Client) do(ctx context.Context, operation, method, endpoint string, payload []byte) ([]byte, int, error) {
	ctx, span := otel.Tracer("hubspot").Start(ctx, "hubspot."+operation,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("hubspot.operation", operation),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, ErrRemote
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.pool.Get()
	defer c.pool.Put(client)

	resp, err := client.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("remote call failed",
			zap.String("operation", operation),
			zap.Error(err))
		return nil, 0, ErrRemote
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		body = nil
	}
	return body, resp.StatusCode, nil
}
