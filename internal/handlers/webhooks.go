package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/handlers/render"
	"github.com/campuscoin/api/internal/logger"
	"github.com/campuscoin/api/internal/models"
)

const maxWebhookBody = 1 << 20 // 1 MiB

type webhookUserService interface {
	Onboard(ctx context.Context, identity models.Identity) (models.User, error)
	SyncUpdated(ctx context.Context, identity models.Identity) error
	SyncDeleted(ctx context.Context, externalID string) error
}

// identityEvent is the delivery envelope the identity provider posts.
// Only the fields we act on are decoded.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID                    string `json:"id"`
		FirstName             string `json:"first_name"`
		LastName              string `json:"last_name"`
		PrimaryEmailAddressID string `json:"primary_email_address_id"`
		EmailAddresses        []struct {
			ID           string `json:"id"`
			EmailAddress string `json:"email_address"`
			Verification struct {
				Status string `json:"status"`
			} `json:"verification"`
		} `json:"email_addresses"`
	} `json:"data"`
}

func (e identityEvent) primaryEmail() string {
	for _, addr := range e.Data.EmailAddresses {
		if addr.ID == e.Data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	for _, addr := range e.Data.EmailAddresses {
		if addr.Verification.Status == "verified" {
			return addr.EmailAddress
		}
	}
	if len(e.Data.EmailAddresses) > 0 {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (e identityEvent) fullName() string {
	return strings.TrimSpace(e.Data.FirstName + " " + e.Data.LastName)
}

func handleIdentityWebhook(userService webhookUserService, secret string, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			l.Error("Webhook secret not configured")
			render.ServiceError(w, "Webhook secret not configured", http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			render.ServiceError(w, "Failed to read body", http.StatusBadRequest)
			return
		}

		if err := verifyWebhookSignature(r.Header, body, secret); err != nil {
			switch {
			case errors.Is(err, errMissingWebhookHeaders):
				render.ServiceError(w, "Missing webhook headers", http.StatusBadRequest)
			default:
				l.Warn("Invalid webhook signature", "webhook_id", r.Header.Get("svix-id"))
				render.ServiceError(w, "Invalid signature", http.StatusUnauthorized)
			}
			return
		}

		var event identityEvent
		if err := json.Unmarshal(body, &event); err != nil {
			render.ServiceError(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}

		l.Info("Received identity webhook", "type", event.Type)

		switch event.Type {
		case "user.created":
			err = syncCreated(r.Context(), userService, event)
		case "user.updated":
			err = syncUpdated(r.Context(), userService, event)
		case "user.deleted":
			if event.Data.ID != "" {
				err = userService.SyncDeleted(r.Context(), event.Data.ID)
			}
		default:
			l.Debug("Ignoring unhandled event type", "type", event.Type)
		}

		// Delivery errors are logged but acknowledged anyway: the
		// provider retries on non-2xx, and a poisoned event would
		// retry forever
		if err != nil {
			l.Error("Failed to process identity webhook", "type", event.Type, "error", err)
		}

		render.JSON(w, map[string]bool{"received": true})
	})
}

func syncCreated(ctx context.Context, userService webhookUserService, event identityEvent) error {
	if event.Data.ID == "" {
		return nil
	}
	email := event.primaryEmail()
	if email == "" {
		return nil
	}

	_, err := userService.Onboard(ctx, models.Identity{
		ExternalID: event.Data.ID,
		Email:      email,
		FullName:   event.fullName(),
	})
	return err
}

func syncUpdated(ctx context.Context, userService webhookUserService, event identityEvent) error {
	if event.Data.ID == "" {
		return nil
	}

	err := userService.SyncUpdated(ctx, models.Identity{
		ExternalID: event.Data.ID,
		Email:      event.primaryEmail(),
		FullName:   event.fullName(),
	})
	if errors.Is(err, apperrors.ErrUserNotFound) {
		// Not onboarded yet, first login will create them
		return nil
	}
	return err
}

var errMissingWebhookHeaders = errors.New("missing webhook headers")
var errBadWebhookSignature = errors.New("signature mismatch")

// verifyWebhookSignature checks the Svix-style HMAC-SHA256 signature
// over "{id}.{timestamp}.{body}". The signature header may carry
// several space separated "v1,<base64>" candidates; any match passes.
func verifyWebhookSignature(header http.Header, body []byte, secret string) error {
	id := header.Get("svix-id")
	timestamp := header.Get("svix-timestamp")
	signature := header.Get("svix-signature")
	if id == "" || timestamp == "" || signature == "" {
		return errMissingWebhookHeaders
	}

	secret = strings.TrimPrefix(secret, "whsec_")
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key = []byte(secret)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidate := range strings.Split(signature, " ") {
		version, value, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(value), []byte(expected)) {
			return nil
		}
	}

	return errBadWebhookSignature
}
