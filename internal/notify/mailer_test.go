package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fournil/internal/config"
	apperrors "fournil/internal/errors"
)

func newTestMailer(apiURL string) *HTTPMailer {
	return NewHTTPMailer(config.MailerConfig{
		APIURL:     apiURL,
		APIKey:     "test-key",
		From:       "commande@fournil.example",
		AdminEmail: "admin@fournil.example",
		Timeout:    5 * time.Second,
	}, zap.NewNop())
}

func sampleOrderEmail(customerEmail string) OrderEmail {
	return OrderEmail{
		CustomerName:  "Aicha",
		CustomerEmail: customerEmail,
		Phone:         "0470000000",
		Items: []OrderEmailItem{
			{ProductName: "Baghrir", Options: "", Quantity: 2, TotalPrice: decimal.RequireFromString("1.60")},
		},
		TotalPrice: decimal.RequireFromString("1.60"),
	}
}

func TestHTTPMailer_SendsAdminAndCustomerCopies(t *testing.T) {
	var payloads []emailPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p emailPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mailer := newTestMailer(srv.URL)
	err := mailer.SendOrderConfirmation(context.Background(), sampleOrderEmail("aicha@example.com"))
	require.NoError(t, err)

	require.Len(t, payloads, 2)
	assert.Equal(t, []string{"admin@fournil.example"}, payloads[0].To)
	assert.Equal(t, []string{"aicha@example.com"}, payloads[1].To)
	assert.Contains(t, payloads[1].HTML, "2x Baghrir")
	assert.Contains(t, payloads[1].HTML, "1.60€")
}

func TestHTTPMailer_NoCustomerEmailSkipsCustomerCopy(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mailer := newTestMailer(srv.URL)
	err := mailer.SendOrderConfirmation(context.Background(), sampleOrderEmail(""))
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the admin copy goes out")
}

func TestHTTPMailer_APIFailureIsNotificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	mailer := newTestMailer(srv.URL)
	err := mailer.SendOrderConfirmation(context.Background(), sampleOrderEmail("aicha@example.com"))

	require.Error(t, err)
	_, ok := apperrors.IsNotificationError(err)
	assert.True(t, ok)
}

func TestHTTPMailer_TransportFailureIsNotificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	mailer := newTestMailer(srv.URL)
	err := mailer.SendPasswordReset(context.Background(), "aicha@example.com", "token")

	require.Error(t, err)
	_, ok := apperrors.IsNotificationError(err)
	assert.True(t, ok)
}

func TestNoopMailer_AlwaysSucceeds(t *testing.T) {
	mailer := NewNoopMailer(zap.NewNop())

	assert.NoError(t, mailer.SendOrderConfirmation(context.Background(), sampleOrderEmail("x@example.com")))
	assert.NoError(t, mailer.SendPasswordReset(context.Background(), "x@example.com", "t"))
	assert.NoError(t, mailer.SendMagicLink(context.Background(), "x@example.com", "t"))
}
