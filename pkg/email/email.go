package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type FollowUpReminderData struct {
	Name         string
	LeadName     string
	LeadCompany  string
	FollowUpDate time.Time
	Notes        string
}

type DailyDigestData struct {
	Name             string
	Date             string
	VisitsMade       int64
	LeadsCreated     int64
	FollowUpsToday   int64
	FollowUpsOverdue int64
	QuotationsMade   int64
}

type ApprovalDecisionData struct {
	Name         string
	DocumentKind string // "Quotation" or "Invoice"
	Number       string
	Decision     string
	Note         string
}

func NewEmailService(apiKey, from string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      from,
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	log.Printf("Resend API response: Status: %d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to OGCS CRM", "welcome.html", data)
}

func (s *EmailService) SendFollowUpReminder(email string, data FollowUpReminderData) error {
	subject := fmt.Sprintf("Follow-up due: %s", data.LeadName)
	return s.sendTemplateEmail(email, subject, "followup_reminder.html", data)
}

func (s *EmailService) SendDailyDigest(email string, data DailyDigestData) error {
	subject := fmt.Sprintf("Your activity summary for %s", data.Date)
	return s.sendTemplateEmail(email, subject, "daily_digest.html", data)
}

func (s *EmailService) SendApprovalDecision(email string, data ApprovalDecisionData) error {
	subject := fmt.Sprintf("%s %s %s", data.DocumentKind, data.Number, data.Decision)
	return s.sendTemplateEmail(email, subject, "approval_decision.html", data)
}
