// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendGroupConfirmedEmails notifies every participant that their group
// confirmed. Failures for individual recipients are logged, not returned;
// one bad mailbox must not hide the confirmation from everyone else.
func (s *NotificationService) SendGroupConfirmedEmails(detail *GroupDetail) error {
	recipients, err := s.participantEmails(detail.ID)
	if err != nil {
		return err
	}

	tmpl := s.getEmailTemplate("group_confirmed")

	data := map[string]interface{}{
		"ProductName":   detail.Product.Name,
		"TotalUnits":    detail.CurrentUnits,
		"BusinessCount": detail.BusinessCount,
		"SavingsUSD":    fmt.Sprintf("%.2f", detail.EstimatedSavingsUSD),
		"GroupURL":      fmt.Sprintf("%s/groups/%s", s.config.Frontend.BaseURL, detail.ID),
	}
	if detail.ConfirmedOrder != nil && detail.ConfirmedOrder.ScheduledStartAt != nil {
		data["DeliveryDate"] = detail.ConfirmedOrder.ScheduledStartAt.Format("Monday, January 2")
	}

	subject := "Buying Group Confirmed - " + detail.Product.Name
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	for _, recipient := range recipients {
		if err := s.sendEmail(recipient, subject, body); err != nil {
			logrus.WithError(err).WithField("recipient", recipient).Error("failed to send group confirmation email")
		}
	}
	return nil
}

// SendGroupApprovalRequestEmail tells the supplier a group hit capacity
// below the participant floor and is waiting on their decision.
func (s *NotificationService) SendGroupApprovalRequestEmail(detail *GroupDetail) error {
	var supplier models.Business
	if err := s.db.First(&supplier, "id = ?", detail.SupplierBusinessID).Error; err != nil {
		return fmt.Errorf("failed to load supplier for approval request: %w", err)
	}
	if supplier.Email == "" {
		return fmt.Errorf("supplier %s has no email address", supplier.ID)
	}

	tmpl := s.getEmailTemplate("group_approval_request")

	data := map[string]interface{}{
		"ProductName":   detail.Product.Name,
		"TotalUnits":    detail.CurrentUnits,
		"BusinessCount": detail.BusinessCount,
		"MinBusinesses": detail.MinBusinessesRequired,
		"ApprovalURL":   fmt.Sprintf("%s/supplier/groups/%s", s.config.Frontend.BaseURL, detail.ID),
	}

	subject := "Group Awaiting Approval - " + detail.Product.Name
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(supplier.Email, subject, body)
}

// participantEmails collects the distinct addresses of every business in
// the group's ledger.
func (s *NotificationService) participantEmails(groupID uuid.UUID) ([]string, error) {
	var recipients []string
	if err := s.db.Model(&models.Business{}).
		Joins("JOIN group_commitments ON group_commitments.business_id = businesses.id").
		Where("group_commitments.group_id = ? AND businesses.email <> ''", groupID).
		Distinct().
		Order("businesses.email ASC").
		Pluck("businesses.email", &recipients).Error; err != nil {
		return nil, fmt.Errorf("failed to collect recipients: %w", err)
	}
	return recipients, nil
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email skipped, SMTP not configured")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"group_confirmed": {
			Subject: "Buying Group Confirmed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Your buying group is confirmed!</h2>
	<p>The group buy for <strong>{{.ProductName}}</strong> reached its goal.</p>
	<ul>
		<li>Total units: {{.TotalUnits}}</li>
		<li>Participating businesses: {{.BusinessCount}}</li>
		<li>Estimated group savings: ${{.SavingsUSD}}</li>
	</ul>
	{{if .DeliveryDate}}<p>Consolidated delivery is scheduled for {{.DeliveryDate}}.</p>{{end}}
	<a href="{{.GroupURL}}">View your group</a>
	<p>Best regards,<br>GreenSupply Team</p>
</body>
</html>`,
		},
		"group_approval_request": {
			Subject: "Group Awaiting Approval",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>A buying group needs your decision</h2>
	<p>The group buy for <strong>{{.ProductName}}</strong> has pledged all {{.TotalUnits}} units,
	but only {{.BusinessCount}} of the {{.MinBusinesses}} required businesses have joined.</p>
	<p>You can approve the order anyway, or wait for more participants.</p>
	<a href="{{.ApprovalURL}}">Review the group</a>
	<p>Best regards,<br>GreenSupply Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
