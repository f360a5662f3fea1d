package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/prefeitura-rio/app-subscribe/internal/config"
	"github.com/prefeitura-rio/app-subscribe/internal/hubspot"
	"github.com/prefeitura-rio/app-subscribe/internal/logging"
	"github.com/prefeitura-rio/app-subscribe/internal/models"
)

func TestMain(m *testing.M) {
	if err := logging.InitLogger(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeAPI is a recording stand-in for the HubSpot client.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	contactsByEmail map[string]*hubspot.Contact
	contactsByID    map[int]*hubspot.Contact

	fetchErr  error
	createErr error
	updateErr error
	optOutErr error
	enrollErr error

	createdVID int
	created    [][]hubspot.Property
	updated    map[int][]hubspot.Property
	enrolled   []string
	optOuts    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		contactsByEmail: map[string]*hubspot.Contact{},
		contactsByID:    map[int]*hubspot.Contact{},
		updated:         map[int][]hubspot.Property{},
		createdVID:      101,
	}
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) enrollments() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.enrolled...)
}

func (f *fakeAPI) GetContactByID(_ context.Context, vid int) (*hubspot.Contact, error) {
	f.record("get_contact_by_id")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if contact, ok := f.contactsByID[vid]; ok {
		return contact, nil
	}
	return nil, hubspot.ErrNotFound
}

func (f *fakeAPI) GetContactByEmail(_ context.Context, email string) (*hubspot.Contact, error) {
	f.record("get_contact_by_email")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if contact, ok := f.contactsByEmail[email]; ok {
		return contact, nil
	}
	return nil, hubspot.ErrNotFound
}

func (f *fakeAPI) CreateContact(_ context.Context, properties []hubspot.Property) (*hubspot.Contact, error) {
	f.record("create_contact")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	f.created = append(f.created, properties)
	f.mu.Unlock()
	return &hubspot.Contact{VID: f.createdVID}, nil
}

func (f *fakeAPI) UpdateContact(_ context.Context, vid int, properties []hubspot.Property) error {
	f.record("update_contact")
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	f.updated[vid] = properties
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) EnrollInWorkflow(_ context.Context, workflowID, email string) error {
	f.record("enroll_in_workflow")
	f.mu.Lock()
	f.enrolled = append(f.enrolled, workflowID+"|"+email)
	f.mu.Unlock()
	return f.enrollErr
}

func (f *fakeAPI) SetSubscriptionStatus(_ context.Context, email, subscriptionID, portalID string, subscribed bool) error {
	f.record("set_subscription_status")
	f.mu.Lock()
	f.optOuts = append(f.optOuts, fmt.Sprintf("%s|%s|%s|%v", email, subscriptionID, portalID, subscribed))
	f.mu.Unlock()
	return f.optOutErr
}

// testConfig returns a minimal working configuration. Tests mutate the
// returned value before constructing the service.
func testConfig() *config.Config {
	return &config.Config{
		HubSpotAPIKey:  "test-key",
		PortalID:       "62515",
		SubscriptionID: "789",
		FormContainer:  "hubspot_contact",
		PropertySchema: models.DefaultPropertySchema(),
		Messages:       models.DefaultMessages(),
	}
}

// existingContact builds a fetched-profile payload.
func existingContact(vid int, props map[string]string) *hubspot.Contact {
	contact := &hubspot.Contact{VID: vid, Properties: map[string]hubspot.PropertyValue{}}
	for key, value := range props {
		contact.Properties[key] = hubspot.PropertyValue{Value: value}
	}
	return contact
}
