package models

// Message keys resolved against the configured catalog.
const (
	MessageError         = "error"
	MessageSignedUp      = "signed_up"
	MessageUpdateError   = "update_error"
	MessageSignupError   = "signup_error"
	MessageSettingsSaved = "settings_saved"
	MessageNotFound      = "not_found"
	MessageOptOut        = "opt_out"
	MessageOptOutError   = "opt_out_error"
)

// Messages maps message keys to operator-configurable display text.
// Values may contain markup; settings_saved takes the edit link as a
// %s parameter.
type Messages map[string]string

// DefaultMessages returns the built-in message catalog.
func DefaultMessages() Messages {
	return Messages{
		MessageError:         "Sorry, an error occurred, please try again.",
		MessageSignedUp:      "You're already signed up! Please check your inbox for a confirmation message with a link to change your settings.",
		MessageUpdateError:   "Failed to update your data, please try again.",
		MessageSignupError:   "Failed to create your subscription, please try again.",
		MessageSettingsSaved: `Your settings have been saved. <a href="%s">Edit Settings</a>`,
		MessageNotFound:      "Your settings could not be found.",
		MessageOptOut:        "You have opted out of all email subscriptions. To opt back in, use the link in one of the emails you've already received. If you've recently opted back in, please allow 5-10 minutes.",
		MessageOptOutError:   "Sorry, an error occurred. Please try again and if the problem persists, contact us.",
	}
}

// Get resolves a message key, falling back to the default catalog for
// keys the operator did not override.
func (m Messages) Get(key string) string {
	if msg, ok := m[key]; ok {
		return msg
	}
	return DefaultMessages()[key]
}

// Merge overlays operator overrides on the default catalog.
func (m Messages) Merge(overrides Messages) Messages {
	merged := make(Messages, len(m)+len(overrides))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
