package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fournil/internal/config"
	apperrors "fournil/internal/errors"
)

type OrderEmailItem struct {
	ProductName string
	Options     string
	Quantity    int
	TotalPrice  decimal.Decimal
}

type OrderEmail struct {
	CustomerName  string
	CustomerEmail string
	Phone         string
	Items         []OrderEmailItem
	TotalPrice    decimal.Decimal
}

// Mailer is the outbound email surface. HTTPMailer and NoopMailer both
// satisfy it.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, email OrderEmail) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendMagicLink(ctx context.Context, to, token string) error
}

// HTTPMailer sends through a Resend-style JSON email API. Every send
// failure comes back as a NotificationError; callers decide whether that
// is fatal.
type HTTPMailer struct {
	client     *http.Client
	apiURL     string
	apiKey     string
	from       string
	adminEmail string
	logger     *zap.Logger
}

func NewHTTPMailer(cfg config.MailerConfig, logger *zap.Logger) *HTTPMailer {
	return &HTTPMailer{
		client:     &http.Client{Timeout: cfg.Timeout},
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		adminEmail: cfg.AdminEmail,
		logger:     logger,
	}
}

type emailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendOrderConfirmation notifies the bakery and, when the customer left
// an email, sends them a confirmation copy.
func (m *HTTPMailer) SendOrderConfirmation(ctx context.Context, email OrderEmail) error {
	details := formatItems(email.Items)

	if m.adminEmail != "" {
		adminBody := fmt.Sprintf(
			"<h1>Nouvelle commande 🥖</h1><p>Client: %s<br>Téléphone: %s</p><ul>%s</ul><p><strong>Total: %s€</strong></p>",
			email.CustomerName, email.Phone, details, email.TotalPrice.StringFixed(2),
		)
		if err := m.send(ctx, emailPayload{
			From:    m.from,
			To:      []string{m.adminEmail},
			Subject: fmt.Sprintf("Nouvelle commande de %s", email.CustomerName),
			HTML:    adminBody,
		}); err != nil {
			return err
		}
	}

	if email.CustomerEmail == "" {
		return nil
	}

	customerBody := fmt.Sprintf(
		"<h1>Confirmation de commande 🥖</h1><p>Bonjour %s,</p><p>Nous avons bien reçu votre commande !</p><ul>%s</ul>"+
			"<p><strong>Total: %s€</strong></p><p>Vous serez informé par SMS de la date pour récupérer votre commande.</p>",
		email.CustomerName, details, email.TotalPrice.StringFixed(2),
	)
	return m.send(ctx, emailPayload{
		From:    m.from,
		To:      []string{email.CustomerEmail},
		Subject: "Confirmation de votre commande",
		HTML:    customerBody,
	})
}

func (m *HTTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(
		"<p>Une réinitialisation de mot de passe a été demandée pour ce compte.</p><p>Code: <strong>%s</strong></p>",
		token,
	)
	return m.send(ctx, emailPayload{
		From:    m.from,
		To:      []string{to},
		Subject: "Réinitialisation du mot de passe",
		HTML:    body,
	})
}

func (m *HTTPMailer) SendMagicLink(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(
		"<p>Voici votre code de connexion sans mot de passe.</p><p>Code: <strong>%s</strong></p>",
		token,
	)
	return m.send(ctx, emailPayload{
		From:    m.from,
		To:      []string{to},
		Subject: "Connexion sans mot de passe",
		HTML:    body,
	})
}

func (m *HTTPMailer) send(ctx context.Context, payload emailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewNotificationError("encoding email payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewNotificationError("building email request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return apperrors.NewNotificationError("sending email", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewNotificationError(
			fmt.Sprintf("email API returned status %d", resp.StatusCode), nil)
	}

	m.logger.Debug("email sent", zap.Strings("to", payload.To), zap.String("subject", payload.Subject))
	return nil
}

func formatItems(items []OrderEmailItem) string {
	var b strings.Builder
	for _, item := range items {
		options := ""
		if item.Options != "" {
			options = fmt.Sprintf(" (%s)", item.Options)
		}
		fmt.Fprintf(&b, "<li>%dx %s%s - %s€</li>",
			item.Quantity, item.ProductName, options, item.TotalPrice.StringFixed(2))
	}
	return b.String()
}

// NoopMailer is used when no API key is configured. Sends are logged and
// reported as successful so checkout never degrades in development.
type NoopMailer struct {
	logger *zap.Logger
}

func NewNoopMailer(logger *zap.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

func (m *NoopMailer) SendOrderConfirmation(_ context.Context, email OrderEmail) error {
	m.logger.Info("email disabled, skipping order confirmation",
		zap.String("customer", email.CustomerName))
	return nil
}

func (m *NoopMailer) SendPasswordReset(_ context.Context, to, _ string) error {
	m.logger.Info("email disabled, skipping password reset", zap.String("to", to))
	return nil
}

func (m *NoopMailer) SendMagicLink(_ context.Context, to, _ string) error {
	m.logger.Info("email disabled, skipping magic link", zap.String("to", to))
	return nil
}
