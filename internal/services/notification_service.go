// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/greenhydro/subsidy-backend/internal/config"
	"github.com/greenhydro/subsidy-backend/internal/models"
)

// NotificationService mails the operations mailbox about workflow events.
type NotificationService struct {
	config *config.Config
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

var decisionTemplate = template.Must(template.New("decision").Parse(`
<p>Document <strong>{{.DocumentID}}</strong> ({{.DocumentType}}) has been <strong>{{.Status}}</strong>.</p>
<p>Certifier: {{.Certifier}}</p>
{{if .Amount}}<p>Disbursed: {{.Amount}} token units (tx {{.TxHash}})</p>{{end}}
`))

var fundsTemplate = template.Must(template.New("funds").Parse(`
<p>Pool <strong>{{.Pool}}</strong> could not cover a disbursement of {{.Requested}} token units
(available: {{.Available}}). Top up the pool before retrying.</p>
`))

// NotifyDecision reports a terminal decision to operations.
func (s *NotificationService) NotifyDecision(document *models.Document, certifierWallet string, record *models.DisbursementRecord) error {
	data := map[string]interface{}{
		"DocumentID":   document.ID.String(),
		"DocumentType": document.DocumentType,
		"Status":       string(document.Status),
		"Certifier":    certifierWallet,
	}
	if record != nil {
		data["Amount"] = record.Amount
		data["TxHash"] = record.TxHash
	}

	subject := fmt.Sprintf("Document %s %s", document.ID, document.Status)
	body, err := s.render(decisionTemplate, data)
	if err != nil {
		return err
	}
	return s.sendEmail(s.config.Email.OpsEmail, subject, body)
}

// NotifyInsufficientFunds surfaces a pool shortfall to the operator; this is
// never retried automatically.
func (s *NotificationService) NotifyInsufficientFunds(poolName string, requested, available int64) error {
	body, err := s.render(fundsTemplate, map[string]interface{}{
		"Pool":      poolName,
		"Requested": requested,
		"Available": available,
	})
	if err != nil {
		return err
	}
	return s.sendEmail(s.config.Email.OpsEmail, "Subsidy pool out of funds", body)
}

func (s *NotificationService) render(tmpl *template.Template, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" || to == "" {
		// Email not configured, just log
		logrus.WithField("subject", subject).Info("Email notification skipped (SMTP not configured)")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}
