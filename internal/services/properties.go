package services

import (
	"net/url"

	"github.com/prefeitura-rio/app-subscribe/internal/hubspot"
	"github.com/prefeitura-rio/app-subscribe/internal/models"
	"github.com/prefeitura-rio/app-subscribe/internal/utils"
	"go.uber.org/zap"
)

// defaultPhoneRegion is assumed for tel properties posted without a
// country prefix.
const defaultPhoneRegion = "BR"

// serializeProperties converts the posted fields into the wire-format
// property list for a create or update call, and the matching snapshot.
// Checkbox properties serialize to boolean presence and snapshot-store
// "true"/""; email is validated and lower-normalized; vid coerces to a
// non-negative integer; tel values are validated phone numbers;
// everything else passes through text sanitization.
func (s *SubscriptionService) serializeProperties(signals models.RequestSignals, operation string) ([]hubspot.Property, *models.ContactSnapshot) {
	properties := make([]hubspot.Property, 0, len(s.cfg.PropertySchema)+1)
	snapshot := models.NewContactSnapshot()

	for _, def := range s.cfg.PropertySchema {
		value := signals.Field(def.Key)

		if def.Type == models.PropertyTypeCheckbox {
			properties = append(properties, hubspot.Property{Property: def.Key, Value: value != ""})
			if value != "" {
				snapshot.Set(def.Key, "true")
			} else {
				snapshot.Set(def.Key, "")
			}
			continue
		}

		switch {
		case def.Key == "email":
			value = utils.SanitizeEmail(value)
		case def.Key == "vid":
			vid := positiveInt(value)
			properties = append(properties, hubspot.Property{Property: def.Key, Value: vid})
			snapshot.Set(def.Key, value)
			continue
		case def.Type == models.PropertyTypeTel:
			value = utils.SanitizePhone(value, defaultPhoneRegion)
		default:
			value = utils.SanitizeText(value)
		}

		properties = append(properties, hubspot.Property{Property: def.Key, Value: value})
		snapshot.Set(def.Key, value)
	}

	// The synthetic token property carries the encrypted settings link
	// embedded in outbound emails. Only issued when both a signup
	// workflow and an encryption key are configured.
	if s.cfg.SignupWorkflowID != "" && s.codec != nil {
		if encrypted, err := s.codec.Encrypt(snapshot.Email()); err == nil {
			properties = append(properties, hubspot.Property{
				Property: "token",
				Value:    url.QueryEscape(encrypted),
			})
		} else {
			s.logger.Warn("failed to issue settings token", zap.Error(err))
		}
	}

	s.logger.Debug("serialized contact properties",
		zap.String("operation", operation),
		zap.Int("count", len(properties)))

	return properties, snapshot
}
