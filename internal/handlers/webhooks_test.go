package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscoin/api/internal/logger"
	"github.com/campuscoin/api/internal/models"
)

type fakeWebhookUserService struct {
	onboarded []models.Identity
	updated   []models.Identity
	deleted   []string
}

func (f *fakeWebhookUserService) Onboard(_ context.Context, identity models.Identity) (models.User, error) {
	f.onboarded = append(f.onboarded, identity)
	return models.User{}, nil
}

func (f *fakeWebhookUserService) SyncUpdated(_ context.Context, identity models.Identity) error {
	f.updated = append(f.updated, identity)
	return nil
}

func (f *fakeWebhookUserService) SyncDeleted(_ context.Context, externalID string) error {
	f.deleted = append(f.deleted, externalID)
	return nil
}

const testWebhookSecret = "whsec_dGVzdC1zaWduaW5nLXNlY3JldA=="

// sign builds the Svix headers for a payload the way the provider does
func signPayload(t *testing.T, secret string, body string) http.Header {
	t.Helper()

	id := "msg_test"
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	require.NoError(t, err)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "." + body))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	header := http.Header{}
	header.Set("svix-id", id)
	header.Set("svix-timestamp", timestamp)
	header.Set("svix-signature", "v1,"+signature)
	return header
}

func TestIdentityWebhook(t *testing.T) {
	t.Parallel()

	newRequest := func(body string, header http.Header) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(body))
		for key, values := range header {
			for _, v := range values {
				r.Header.Add(key, v)
			}
		}
		return r
	}

	userCreatedBody := `{
		"type": "user.created",
		"data": {
			"id": "user_2abcDEF",
			"first_name": "Maria",
			"last_name": "Lopez",
			"primary_email_address_id": "em_1",
			"email_addresses": [
				{"id": "em_2", "email_address": "secondary@campus.edu"},
				{"id": "em_1", "email_address": "maria@campus.edu"}
			]
		}
	}`

	t.Run("user created onboards with primary email", func(t *testing.T) {
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(userCreatedBody, signPayload(t, testWebhookSecret, userCreatedBody)))

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, service.onboarded, 1)
		assert.Equal(t, "user_2abcDEF", service.onboarded[0].ExternalID)
		assert.Equal(t, "maria@campus.edu", service.onboarded[0].Email)
		assert.Equal(t, "Maria Lopez", service.onboarded[0].FullName)
	})

	t.Run("user updated syncs", func(t *testing.T) {
		body := `{"type": "user.updated", "data": {"id": "user_1", "first_name": "New", "last_name": "Name"}}`
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(body, signPayload(t, testWebhookSecret, body)))

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, service.updated, 1)
		assert.Equal(t, "New Name", service.updated[0].FullName)
	})

	t.Run("user deleted syncs", func(t *testing.T) {
		body := `{"type": "user.deleted", "data": {"id": "user_1"}}`
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(body, signPayload(t, testWebhookSecret, body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"user_1"}, service.deleted)
	})

	t.Run("unhandled event acknowledged and ignored", func(t *testing.T) {
		body := `{"type": "session.created", "data": {"id": "sess_1"}}`
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(body, signPayload(t, testWebhookSecret, body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, service.onboarded)
		assert.Empty(t, service.updated)
		assert.Empty(t, service.deleted)
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		header := signPayload(t, testWebhookSecret, userCreatedBody)
		header.Set("svix-signature", "v1,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(userCreatedBody, header))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, service.onboarded)
	})

	t.Run("tampered body rejected", func(t *testing.T) {
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		header := signPayload(t, testWebhookSecret, userCreatedBody)
		tampered := strings.Replace(userCreatedBody, "Maria", "Mallory", 1)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(tampered, header))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing headers rejected", func(t *testing.T) {
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(userCreatedBody, http.Header{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no secret configured fails closed", func(t *testing.T) {
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, "", logger.NewNoOp())

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(userCreatedBody, signPayload(t, testWebhookSecret, userCreatedBody)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("multiple signatures any match passes", func(t *testing.T) {
		service := &fakeWebhookUserService{}
		h := handleIdentityWebhook(service, testWebhookSecret, logger.NewNoOp())

		header := signPayload(t, testWebhookSecret, userCreatedBody)
		header.Set("svix-signature", "v1,bm90LXRoaXMtb25l "+header.Get("svix-signature"))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(userCreatedBody, header))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
