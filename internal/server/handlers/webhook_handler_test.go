package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/scheduler"
)

type fakeMessaging struct {
	handled int
	err     error
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != "secret" {
		return "", errors.New("bad token")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(context.Context, models.WebhookPayload) error {
	f.handled++
	return f.err
}

func (f *fakeMessaging) SendOutbound(context.Context, models.OutboundMessageRequest) error {
	return nil
}

type fakeDigest struct{ err error }

func (f fakeDigest) SendDigest(context.Context) error { return f.err }

func serve(h gin.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h(c)
	c.Writer.WriteHeaderNow()
	return rec
}

func TestWebhookVerify(t *testing.T) {
	h := NewWebhookHandler(&fakeMessaging{}, nil, nil)

	rec := serve(h.Verify, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	rec = serve(h.Verify, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=42", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookReceiveAlwaysAcknowledges(t *testing.T) {
	svc := &fakeMessaging{}
	h := NewWebhookHandler(svc, nil, nil)

	rec := serve(h.Receive, http.MethodPost, "/webhook", `{"entry":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.handled)

	svc.err = errors.New("mongo down")
	rec = serve(h.Receive, http.MethodPost, "/webhook", `{"entry":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.handled)

	rec = serve(h.Receive, http.MethodPost, "/webhook", `{not json`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.handled)
}

func TestSendDigest(t *testing.T) {
	tests := []struct {
		name   string
		digest DigestSender
		want   int
	}{
		{"sent", fakeDigest{}, http.StatusAccepted},
		{"no sender", nil, http.StatusServiceUnavailable},
		{"no manager", fakeDigest{err: scheduler.ErrDigestDisabled}, http.StatusServiceUnavailable},
		{"delivery failed", fakeDigest{err: fmt.Errorf("send weekly report: %w", errors.New("timeout"))}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebhookHandler(&fakeMessaging{}, tt.digest, nil)
			rec := serve(h.SendDigest, http.MethodPost, "/digest", "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
