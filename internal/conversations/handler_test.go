package conversations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prospecta_backend/platform/logger"
	"prospecta_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

func newTestRouter(dispatches *fakeDispatches, store *fakeStore, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := newTestService(dispatches, store)
	h := NewHandler(svc, validator.New(), token, logger.New("development"))

	r := gin.New()
	r.POST("/api/v1/webhook/evolution", h.HandleProviderEvent)
	return r
}

func postWebhook(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) WebhookResponse {
	t.Helper()

	var resp WebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandleProviderEventRecordsMessage(t *testing.T) {
	dispatches := &fakeDispatches{byPhone: map[string]Dispatch{
		"5541999998888@s.whatsapp.net": {LeadName: "Padaria Central"},
	}}
	store := &fakeStore{}
	r := newTestRouter(dispatches, store, "")

	w := postWebhook(t, r, "/api/v1/webhook/evolution", upsertPayload("5541999998888@s.whatsapp.net", "MSG-1", "oi", false))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp := decodeResponse(t, w); !resp.Success {
		t.Errorf("success = false, want true: %+v", resp)
	}
	if len(store.entries) != 1 {
		t.Errorf("stored %d entries, want 1", len(store.entries))
	}
}

func TestHandleProviderEventAcknowledgesNoMatch(t *testing.T) {
	// An event for an uncontacted number is a successful no-op, not an error.
	r := newTestRouter(&fakeDispatches{}, &fakeStore{}, "")

	w := postWebhook(t, r, "/api/v1/webhook/evolution", upsertPayload("5599000000000@s.whatsapp.net", "MSG-9", "quem fala?", false))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Errorf("success = false, want true")
	}
	if resp.Message != "no dispatch for contact" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHandleProviderEventRejectsMalformedPayload(t *testing.T) {
	r := newTestRouter(&fakeDispatches{}, &fakeStore{}, "")

	w := postWebhook(t, r, "/api/v1/webhook/evolution", `{"event": "messages.upsert", "data": {`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Success {
		t.Error("success = true for malformed payload")
	}
}

func TestHandleProviderEventRejectsMissingMessageID(t *testing.T) {
	r := newTestRouter(&fakeDispatches{}, &fakeStore{}, "")

	payload := upsertPayload("5541999998888@s.whatsapp.net", "", "oi", false)
	w := postWebhook(t, r, "/api/v1/webhook/evolution", payload)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestHandleProviderEventTokenCheck(t *testing.T) {
	dispatches := &fakeDispatches{byPhone: map[string]Dispatch{
		"5541999998888@s.whatsapp.net": {LeadName: "Padaria Central"},
	}}
	r := newTestRouter(dispatches, &fakeStore{}, "s3cret")

	payload := upsertPayload("5541999998888@s.whatsapp.net", "MSG-1", "oi", false)

	w := postWebhook(t, r, "/api/v1/webhook/evolution", payload)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", w.Code)
	}

	w = postWebhook(t, r, "/api/v1/webhook/evolution?token=wrong", payload)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}

	w = postWebhook(t, r, "/api/v1/webhook/evolution?token=s3cret", payload)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}
