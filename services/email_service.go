package services

import (
	"database/sql"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"chip-quotation-backend/models"

	"golang.org/x/net/html"
)

// convertHTMLToText converts an HTML email body to plain text.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	return strings.TrimSpace(result)
}

// EmailService sends quote workflow emails. Templates live in the
// email_template table keyed by type, with built-in fallbacks so a
// fresh database still sends something sensible.
type EmailService struct {
	db *sql.DB
}

// NewEmailService creates a new email service instance
func NewEmailService(db *sql.DB) *EmailService {
	return &EmailService{db: db}
}

type emailTemplate struct {
	Subject string
	Body    string
}

var defaultTemplates = map[string]emailTemplate{
	"quote_submitted": {
		Subject: "报价单 {{quote_number}} 已提交审批",
		Body: `<p>{{user_name}} 您好，</p>
<p>报价单 <b>{{quote_number}}</b>（{{title}}）已提交审批。</p>
<p>客户：{{customer_name}}<br>金额：{{currency}} {{total_amount}}</p>`,
	},
	"quote_approved": {
		Subject: "报价单 {{quote_number}} 已批准",
		Body: `<p>{{user_name}} 您好，</p>
<p>报价单 <b>{{quote_number}}</b>（{{title}}）已批准，可以发送给客户。</p>
<p>客户：{{customer_name}}<br>金额：{{currency}} {{total_amount}}</p>`,
	},
	"quote_rejected": {
		Subject: "报价单 {{quote_number}} 已驳回",
		Body: `<p>{{user_name}} 您好，</p>
<p>报价单 <b>{{quote_number}}</b>（{{title}}）已被驳回，请修改后重新提交。</p>`,
	},
}

// getTemplate loads a template override from the database, falling
// back to the built-in default for the type.
func (es *EmailService) getTemplate(templateType string) emailTemplate {
	var tpl emailTemplate
	err := es.db.QueryRow(
		`SELECT subject, body FROM email_template WHERE template_type = $1 AND is_default = true`,
		templateType,
	).Scan(&tpl.Subject, &tpl.Body)
	if err == nil {
		return tpl
	}
	return defaultTemplates[templateType]
}

// SendQuoteStatusEmail sends the workflow email for a quote status
// change to the given recipient.
func (es *EmailService) SendQuoteStatusEmail(templateType string, quote *models.Quote, recipientName, recipientEmail string) error {
	tpl := es.getTemplate(templateType)
	if tpl.Subject == "" {
		return fmt.Errorf("no email template for type %q", templateType)
	}

	variables := map[string]string{
		"quote_number":  quote.QuoteNumber,
		"title":         quote.Title,
		"quote_type":    quote.QuoteType,
		"customer_name": quote.CustomerName,
		"currency":      quote.Currency,
		"total_amount":  fmt.Sprintf("%.2f", quote.TotalAmount),
		"status":        quote.Status,
		"user_name":     recipientName,
	}

	subject := applyVariables(tpl.Subject, variables)
	body := convertHTMLToText(applyVariables(tpl.Body, variables))

	return sendEmail(recipientEmail, subject, body)
}

func applyVariables(templateStr string, variables map[string]string) string {
	result := templateStr
	for key, value := range variables {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{%s}}", key), value)
	}
	return result
}

// sendEmail sends one plain-text email over SMTP. Server settings come
// from the environment.
func sendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	if host == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}
	if port == "" {
		port = "587"
	}

	auth := smtp.PlainAuth("", user, password, host)

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(host+":"+port, auth, from, []string{to}, msg)
}
