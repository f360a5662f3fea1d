package models

import "encoding/json"

// Status describes the state of the subscription flow after a request
// has been classified and handled.
type Status string

const (
	StatusError    Status = "error"
	StatusSuccess  Status = "success"
	StatusSignup   Status = "signup"
	StatusSettings Status = "settings"
)

// ContactSnapshot holds the orchestrator's view of a single contact for
// the duration of one request. VID is the remote contact id (0 means
// the contact has not been created yet); Properties holds one string
// value per configured property key, with checkbox properties stored as
// "true" or "".
type ContactSnapshot struct {
	VID        int
	Properties map[string]string
}

// NewContactSnapshot returns an empty snapshot ready to be populated.
func NewContactSnapshot() *ContactSnapshot {
	return &ContactSnapshot{Properties: map[string]string{}}
}

// Email returns the snapshot's email property, if any.
func (s *ContactSnapshot) Email() string {
	if s == nil {
		return ""
	}
	return s.Properties["email"]
}

// Set stores a property value on the snapshot.
func (s *ContactSnapshot) Set(key, value string) {
	if s.Properties == nil {
		s.Properties = map[string]string{}
	}
	s.Properties[key] = value
}

// MarshalJSON flattens the snapshot into a single object so clients can
// refill form fields directly: {"vid": 42, "email": "...", ...}.
func (s *ContactSnapshot) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(s.Properties)+1)
	for k, v := range s.Properties {
		flat[k] = v
	}
	if s.VID > 0 {
		flat["vid"] = s.VID
	}
	return json.Marshal(flat)
}

// Result is the normalized outcome of one classified request.
type Result struct {
	Status  Status           `json:"status"`
	Message string           `json:"message"`
	Contact *ContactSnapshot `json:"contact_data"`
}

// Decided reports whether the classifier reached a conclusion for this
// request. An undecided result means "show the bare sign-up form".
func (r *Result) Decided() bool {
	return r.Status != ""
}

// RequestSignals carries everything the orchestrator may consult about
// the current request. It is assembled once by the HTTP layer and
// immutable afterwards.
type RequestSignals struct {
	// Fields holds the posted values found under the form container,
	// keyed by property key (plus "vid").
	Fields map[string]string

	// SubscriptionID and SubscriptionToken are query parameters used on
	// the lookup entry paths.
	SubscriptionID    string
	SubscriptionToken string

	// Verified nonce flags, one per action. At most one is expected to
	// be true for a given request.
	OptOutVerified   bool
	SettingsVerified bool
	SignupVerified   bool
}

// Field returns a posted field value, or "" when absent.
func (s RequestSignals) Field(key string) string {
	return s.Fields[key]
}
