package services

import (
	"context"
	"testing"

	"github.com/prefeitura-rio/app-subscribe/internal/hubspot"
	"github.com/prefeitura-rio/app-subscribe/internal/models"
	"github.com/prefeitura-rio/app-subscribe/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_NoSignals(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{})
	result := flow.Result(context.Background())

	assert.False(t, result.Decided())
	assert.False(t, flow.IsSignedUp(context.Background()))
	assert.False(t, flow.ShowSettings(context.Background()))
	assert.Equal(t, 0, api.callCount())
}

func TestFlow_DispatchesOnce(t *testing.T) {
	api := newFakeAPI()
	api.contactsByEmail["a@example.com"] = existingContact(42, map[string]string{"email": "a@example.com"})
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:         map[string]string{"email": "a@example.com"},
		SignupVerified: true,
	})

	ctx := context.Background()
	first := flow.Result(ctx)
	second := flow.Result(ctx)
	flow.IsSignedUp(ctx)
	flow.ShowSettings(ctx)

	assert.Same(t, first, second)
	assert.Equal(t, 1, api.callCount(), "predicates and repeat calls must not re-dispatch")
}

func TestFlow_OptOutPrecedence(t *testing.T) {
	// An opt-out request with stale form data attached must still opt
	// out and must touch no other remote operation.
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields: map[string]string{
			"email": "a@example.com",
			"vid":   "42",
		},
		OptOutVerified:   true,
		SettingsVerified: true,
		SignupVerified:   true,
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, models.DefaultMessages()[models.MessageOptOut], result.Message)
	require.Len(t, api.optOuts, 1)
	assert.Equal(t, "a@example.com|789|62515|false", api.optOuts[0])
	assert.Equal(t, 1, api.callCount())
}

func TestFlow_OptOut_RemoteFailure(t *testing.T) {
	api := newFakeAPI()
	api.optOutErr = hubspot.ErrRemote
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:         map[string]string{"email": "a@example.com"},
		OptOutVerified: true,
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusError, result.Status)
	assert.Equal(t, models.DefaultMessages()[models.MessageOptOutError], result.Message)
}

func TestFlow_OptOut_MissingConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PortalID = ""
	api := newFakeAPI()
	svc := NewSubscriptionService(cfg, api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:         map[string]string{"email": "a@example.com"},
		OptOutVerified: true,
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusError, result.Status)
	assert.Equal(t, 0, api.callCount())
}

func TestFlow_OptOut_InvalidEmail(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:         map[string]string{"email": "not-an-email"},
		OptOutVerified: true,
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusError, result.Status)
	assert.Equal(t, 0, api.callCount())
}

func TestFlow_VidWithoutSettingsVerification(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields: map[string]string{
			"vid":   "42",
			"email": "a@example.com",
		},
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusSignup, result.Status)
	assert.Equal(t, models.DefaultMessages()[models.MessageError], result.Message)
	assert.Equal(t, 0, api.callCount(), "unverified settings form must not reach the remote API")
}

func TestFlow_Update(t *testing.T) {
	cfg := testConfig()
	cfg.UpdateWorkflowID = "77"
	api := newFakeAPI()
	svc := NewSubscriptionService(cfg, api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields: map[string]string{
			"vid":   "42",
			"email": "a@example.com",
		},
		SettingsVerified: true,
	})
	result := flow.Result(context.Background())
	svc.WaitForEnrollments()

	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Contains(t, result.Message, "?subscription-id=42")
	require.NotNil(t, result.Contact)
	assert.Equal(t, 42, result.Contact.VID)
	assert.Equal(t, "a@example.com", result.Contact.Email())

	require.Contains(t, api.updated, 42)
	assert.Equal(t, []string{"77|a@example.com"}, api.enrollments())
	assert.True(t, flow.IsSignedUp(context.Background()))
	assert.True(t, flow.ShowSettings(context.Background()))
}

func TestFlow_Update_RemoteFailure(t *testing.T) {
	api := newFakeAPI()
	api.updateErr = hubspot.ErrRemote
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields: map[string]string{
			"vid":   "42",
			"email": "a@example.com",
		},
		SettingsVerified: true,
	})
	result := flow.Result(context.Background())
	svc.WaitForEnrollments()

	assert.Equal(t, models.StatusError, result.Status)
	assert.Equal(t, models.DefaultMessages()[models.MessageUpdateError], result.Message)
	assert.Nil(t, result.Contact)
	assert.Empty(t, api.enrollments())
}

func TestFlow_Create(t *testing.T) {
	cfg := testConfig()
	cfg.SignupWorkflowID = "55"
	api := newFakeAPI()
	svc := NewSubscriptionService(cfg, api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:           map[string]string{"email": "a@example.com"},
		SettingsVerified: true,
	})
	result := flow.Result(context.Background())
	svc.WaitForEnrollments()

	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Contains(t, result.Message, "?subscription-id=101")
	require.NotNil(t, result.Contact)
	assert.Equal(t, 101, result.Contact.VID)

	require.Len(t, api.created, 1)
	assert.Equal(t, []string{"55|a@example.com"}, api.enrollments())
}

func TestFlow_Create_RemoteFailure(t *testing.T) {
	api := newFakeAPI()
	api.createErr = hubspot.ErrRemote
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:           map[string]string{"email": "a@example.com"},
		SettingsVerified: true,
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusError, result.Status)
	assert.Equal(t, models.DefaultMessages()[models.MessageSignupError], result.Message)
}

func TestFlow_Check(t *testing.T) {
	tests := []struct {
		name             string
		signupWorkflowID string
		contact          *hubspot.Contact
		fetchErr         error
		wantStatus       models.Status
		wantMessage      string
		wantEnrollments  int
	}{
		{
			name:        "unknown email shows settings form",
			wantStatus:  models.StatusSettings,
			wantMessage: "",
		},
		{
			name: "opted out globally",
			contact: existingContact(42, map[string]string{
				"email":           "a@example.com",
				"hs_email_optout": "true",
			}),
			wantStatus:  models.StatusSuccess,
			wantMessage: models.DefaultMessages()[models.MessageOptOut],
		},
		{
			name: "opted out of the configured list",
			contact: existingContact(42, map[string]string{
				"email":               "a@example.com",
				"hs_email_optout_789": "true",
			}),
			wantStatus:  models.StatusSuccess,
			wantMessage: models.DefaultMessages()[models.MessageOptOut],
		},
		{
			name:             "signed up with token re-sends confirmation",
			signupWorkflowID: "55",
			contact: existingContact(42, map[string]string{
				"email": "a@example.com",
				"token": "opaque",
			}),
			wantStatus:      models.StatusSuccess,
			wantMessage:     models.DefaultMessages()[models.MessageSignedUp],
			wantEnrollments: 1,
		},
		{
			name:             "signed up without token resumes settings",
			signupWorkflowID: "55",
			contact: existingContact(42, map[string]string{
				"email": "a@example.com",
			}),
			wantStatus: models.StatusSettings,
		},
		{
			name: "no workflow goes straight to settings",
			contact: existingContact(42, map[string]string{
				"email": "a@example.com",
			}),
			wantStatus: models.StatusSettings,
		},
		{
			name:        "remote failure",
			fetchErr:    hubspot.ErrRemote,
			wantStatus:  models.StatusError,
			wantMessage: models.DefaultMessages()[models.MessageSignupError],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.SignupWorkflowID = tt.signupWorkflowID
			api := newFakeAPI()
			api.fetchErr = tt.fetchErr
			if tt.contact != nil {
				api.contactsByEmail["a@example.com"] = tt.contact
			}
			svc := NewSubscriptionService(cfg, api, nil)

			flow := svc.NewFlow(models.RequestSignals{
				Fields:         map[string]string{"email": "a@example.com"},
				SignupVerified: true,
			})
			result := flow.Result(context.Background())
			svc.WaitForEnrollments()

			assert.Equal(t, tt.wantStatus, result.Status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, result.Message)
			}
			assert.Len(t, api.enrollments(), tt.wantEnrollments)
		})
	}
}

func TestFlow_Check_SnapshotForNewContact(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:         map[string]string{"email": "New@Example.COM"},
		SignupVerified: true,
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusSettings, result.Status)
	require.NotNil(t, result.Contact)
	assert.Equal(t, 0, result.Contact.VID)
	assert.Equal(t, "new@example.com", result.Contact.Email())
	assert.False(t, flow.IsSignedUp(context.Background()))
	assert.True(t, flow.ShowSettings(context.Background()))
}

func TestFlow_EmailWithoutVerification(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields: map[string]string{"email": "a@example.com"},
	})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusSignup, result.Status)
	assert.Equal(t, models.DefaultMessages()[models.MessageError], result.Message)
	assert.Equal(t, 0, api.callCount())
}

func TestFlow_InvalidEmailFallsThrough(t *testing.T) {
	// A malformed email never reaches the remote API; with no other
	// signal the request stays undecided.
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:         map[string]string{"email": "not-an-email"},
		SignupVerified: true,
	})
	result := flow.Result(context.Background())

	assert.False(t, result.Decided())
	assert.Equal(t, 0, api.callCount())
}

func TestFlow_FetchByID(t *testing.T) {
	tests := []struct {
		name       string
		contact    *hubspot.Contact
		fetchErr   error
		wantStatus models.Status
		wantVID    int
	}{
		{
			name: "found shows settings",
			contact: existingContact(7, map[string]string{
				"email":      "a@example.com",
				"newsletter": "true",
			}),
			wantStatus: models.StatusSettings,
			wantVID:    7,
		},
		{
			name:       "not found reads as stale link",
			wantStatus: models.StatusSignup,
		},
		{
			name:       "remote failure reads as stale link",
			fetchErr:   hubspot.ErrRemote,
			wantStatus: models.StatusSignup,
		},
		{
			name: "opted out",
			contact: existingContact(7, map[string]string{
				"email":           "a@example.com",
				"hs_email_optout": "true",
			}),
			wantStatus: models.StatusSuccess,
		},
		{
			name:       "profile without email reads as stale link",
			contact:    existingContact(7, map[string]string{"first_name": "Ana"}),
			wantStatus: models.StatusSignup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.fetchErr = tt.fetchErr
			if tt.contact != nil {
				api.contactsByID[7] = tt.contact
			}
			svc := NewSubscriptionService(testConfig(), api, nil)

			flow := svc.NewFlow(models.RequestSignals{SubscriptionID: "7"})
			result := flow.Result(context.Background())

			assert.Equal(t, tt.wantStatus, result.Status)
			if tt.wantStatus == models.StatusSignup {
				assert.Equal(t, models.DefaultMessages()[models.MessageNotFound], result.Message)
			}
			if tt.wantVID > 0 {
				require.NotNil(t, result.Contact)
				assert.Equal(t, tt.wantVID, result.Contact.VID)
				assert.Equal(t, "true", result.Contact.Properties["newsletter"])
			}
		})
	}
}

func TestFlow_FetchByID_InvalidID(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	for _, id := range []string{"0", "-3", "abc", ""} {
		flow := svc.NewFlow(models.RequestSignals{SubscriptionID: id})
		result := flow.Result(context.Background())
		assert.False(t, result.Decided(), "id %q", id)
	}
	assert.Equal(t, 0, api.callCount())
}

func TestFlow_TokenEntry(t *testing.T) {
	codec, err := token.NewLegacyCodec("operator-secret")
	require.NoError(t, err)
	encoded, err := codec.Encrypt("a@example.com")
	require.NoError(t, err)

	api := newFakeAPI()
	api.contactsByEmail["a@example.com"] = existingContact(42, map[string]string{
		"email": "a@example.com",
	})
	svc := NewSubscriptionService(testConfig(), api, codec)

	flow := svc.NewFlow(models.RequestSignals{SubscriptionToken: encoded})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusSettings, result.Status)
	require.NotNil(t, result.Contact)
	assert.Equal(t, 42, result.Contact.VID)
}

func TestFlow_TokenEntry_Invalid(t *testing.T) {
	codec, err := token.NewLegacyCodec("operator-secret")
	require.NoError(t, err)

	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, codec)

	flow := svc.NewFlow(models.RequestSignals{SubscriptionToken: "garbage!!"})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusSignup, result.Status)
	assert.Equal(t, models.DefaultMessages()[models.MessageNotFound], result.Message)
	assert.Equal(t, 0, api.callCount())
}

func TestFlow_TokenEntry_NoCodec(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	flow := svc.NewFlow(models.RequestSignals{SubscriptionToken: "anything"})
	result := flow.Result(context.Background())

	assert.Equal(t, models.StatusSignup, result.Status)
	assert.Equal(t, 0, api.callCount())
}

func TestEnroll_FailureDoesNotChangeResult(t *testing.T) {
	cfg := testConfig()
	cfg.SignupWorkflowID = "55"
	api := newFakeAPI()
	api.enrollErr = hubspot.ErrRemote
	svc := NewSubscriptionService(cfg, api, nil)

	flow := svc.NewFlow(models.RequestSignals{
		Fields:           map[string]string{"email": "a@example.com"},
		SettingsVerified: true,
	})
	result := flow.Result(context.Background())
	svc.WaitForEnrollments()

	assert.Equal(t, models.StatusSuccess, result.Status)
}

func TestEnroll_SkipsBlankWorkflowAndEmail(t *testing.T) {
	api := newFakeAPI()
	svc := NewSubscriptionService(testConfig(), api, nil)

	svc.enroll("", "a@example.com")
	svc.enroll("55", "")
	svc.enroll("55", "not-an-email")
	svc.WaitForEnrollments()

	assert.Empty(t, api.enrollments())
}

func TestPositiveInt(t *testing.T) {
	assert.Equal(t, 42, positiveInt("42"))
	assert.Equal(t, 0, positiveInt("0"))
	assert.Equal(t, 0, positiveInt("-1"))
	assert.Equal(t, 0, positiveInt("4.2"))
	assert.Equal(t, 0, positiveInt(""))
}
