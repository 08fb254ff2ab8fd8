// Package mail отправляет уведомления через SendGrid-совместимый
// HTTP API. Тема и тело письма рендерятся из шаблонов, хранящихся
// в базе данных.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
	"time"

	"contractdesk/internal/domain"
)

type Client struct {
	cfg        *Config
	httpClient *http.Client
}

func NewClient(cfg *Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// templateData — поля договора, доступные в шаблонах писем.
type templateData struct {
	Number         string
	Company        string
	ExpirationDate string
	State          string
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []emailContent    `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send рендерит шаблон данными договора и отправляет письмо адресату.
func (c *Client) Send(ctx context.Context, to string, tmpl *domain.MailTemplate, contract *domain.Contract) error {
	if c.cfg.APIKey == "" {
		return fmt.Errorf("mail client is not configured: api key is empty")
	}

	data := templateData{
		Number:  contract.Number,
		Company: contract.Company,
		State:   contract.State,
	}
	if contract.ExpirationDate != nil {
		data.ExpirationDate = contract.ExpirationDate.Format("2006-01-02")
	}

	subject, err := renderTemplate("subject", tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to render subject of template %s: %w", tmpl.Name, err)
	}
	body, err := renderTemplate("body", tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render body of template %s: %w", tmpl.Name, err)
	}

	payload := sendRequest{
		Personalizations: []personalization{
			{To: []emailAddress{{Email: to}}},
		},
		From:    emailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject: subject,
		Content: []emailContent{
			{Type: "text/plain", Value: body},
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func renderTemplate(name, text string, data templateData) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
