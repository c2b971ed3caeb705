// services/email_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"auracoins-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultResendURL = "https://api.resend.com"

// EmailService talks to the Resend transactional email API and owns the
// email outbox table. The redemption flow only enqueues rows; the outbox
// worker calls Send.
type EmailService struct {
	DB        *gorm.DB
	BaseURL   string
	APIKey    string
	FromEmail string
	Client    *http.Client
}

func NewEmailService(db *gorm.DB) *EmailService {
	from := os.Getenv("RESEND_FROM_EMAIL")
	if from == "" {
		from = "onboarding@resend.dev"
	}
	return &EmailService{
		DB:        db,
		BaseURL:   defaultResendURL,
		APIKey:    os.Getenv("RESEND_API_KEY"),
		FromEmail: from,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendEmailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendEmailResponse struct {
	ID string `json:"id"`
}

// Send submits one email to the provider and returns the provider message
// id. Any provider-side 4xx/5xx collapses into ErrDeliveryFailed — the
// caller decides whether to retry.
func (s *EmailService) Send(toAddress, subject, htmlBody string) (string, error) {
	if s.APIKey == "" {
		return "", fmt.Errorf("%w: RESEND_API_KEY not configured", ErrDeliveryFailed)
	}

	payload, err := json.Marshal(sendEmailRequest{
		From:    s.FromEmail,
		To:      toAddress,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return "", fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequest("POST", s.BaseURL+"/emails", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Resend returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: provider status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	var out sendEmailResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	return out.ID, nil
}

// RedemptionEmailData feeds the confirmation template
type RedemptionEmailData struct {
	UserName       string
	RewardName     string
	Platform       string
	RedemptionCode string
	AuracoinsSpent int64
	CashbackEarned int64
}

var redemptionEmailTmpl = template.Must(template.New("redemption").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Confirmación de Canje - AuraCoins</title>
  </head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 40px 30px; text-align: center; border-radius: 10px 10px 0 0;">
      <h1 style="color: white; margin: 0; font-size: 32px;">&iexcl;Canje Exitoso!</h1>
    </div>
    <div style="background: #ffffff; padding: 40px 30px; border-radius: 0 0 10px 10px; border: 1px solid #e0e0e0;">
      <p style="font-size: 18px;">Hola <strong style="color: #667eea;">{{.UserName}}</strong>,</p>
      <p>Tu canje de recompensa ha sido procesado exitosamente. Aqu&iacute; est&aacute;n los detalles:</p>
      <div style="background: #f9f9f9; padding: 25px; border-radius: 8px; border-left: 4px solid #667eea;">
        <table style="width: 100%; border-collapse: collapse;">
          <tr>
            <td style="padding: 8px 0; color: #666666;"><strong>Recompensa:</strong></td>
            <td style="padding: 8px 0; text-align: right;"><strong>{{.RewardName}}</strong></td>
          </tr>
          <tr>
            <td style="padding: 8px 0; color: #666666;"><strong>Plataforma:</strong></td>
            <td style="padding: 8px 0; text-align: right;"><strong>{{.Platform}}</strong></td>
          </tr>
          <tr>
            <td style="padding: 8px 0; color: #666666;"><strong>AuraCoins gastados:</strong></td>
            <td style="padding: 8px 0; text-align: right;"><strong>{{.AuracoinsSpent}}</strong></td>
          </tr>
          {{if gt .CashbackEarned 0}}
          <tr>
            <td style="padding: 8px 0; color: #666666;"><strong>Cashback ganado:</strong></td>
            <td style="padding: 8px 0; text-align: right; color: #10b981;"><strong>+{{.CashbackEarned}} AuraCoins</strong></td>
          </tr>
          {{end}}
        </table>
      </div>
      <div style="background: #fff3cd; border: 3px solid #ffc107; padding: 30px 20px; border-radius: 12px; margin: 30px 0; text-align: center;">
        <p style="margin: 0 0 15px 0; font-size: 14px; color: #856404; font-weight: bold;">TU C&Oacute;DIGO DE CANJE:</p>
        <p style="margin: 0; font-size: 36px; font-weight: bold; color: #856404; letter-spacing: 6px; font-family: 'Courier New', monospace;">{{.RedemptionCode}}</p>
      </div>
      <p style="font-size: 14px; color: #004085;"><strong>Importante: Guarda este c&oacute;digo de forma segura. Necesitar&aacute;s usarlo para activar tu tarjeta de regalo.</strong></p>
      <p style="font-size: 14px; color: #666666;">El equipo de AuraCoins</p>
    </div>
  </body>
</html>`))

// BuildRedemptionEmail renders the fixed confirmation template.
func BuildRedemptionEmail(data RedemptionEmailData) (subject, htmlBody string, err error) {
	var buf bytes.Buffer
	if err := redemptionEmailTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render redemption email: %w", err)
	}
	return fmt.Sprintf("✅ Canje Exitoso - %s", data.RewardName), buf.String(), nil
}

// EnqueueRedemptionEmail renders the confirmation and writes a pending
// outbox row. Delivery happens in the outbox worker, detached from the
// redemption's success response.
func (s *EmailService) EnqueueRedemptionEmail(userID string, reward *models.Reward, redemption *models.Redemption) error {
	var profile models.Profile
	if err := s.DB.Where("id = ?", userID).First(&profile).Error; err != nil {
		return fmt.Errorf("fetch profile for email: %w", err)
	}

	subject, htmlBody, err := BuildRedemptionEmail(RedemptionEmailData{
		UserName:       profile.Name,
		RewardName:     reward.Title,
		Platform:       string(reward.Platform),
		RedemptionCode: redemption.RedemptionCode,
		AuracoinsSpent: redemption.AuracoinsSpent,
		CashbackEarned: redemption.CashbackEarned,
	})
	if err != nil {
		return err
	}

	notification := models.EmailNotification{
		ID:        uuid.NewString(),
		UserID:    userID,
		ToAddress: profile.Email,
		Subject:   subject,
		HTMLBody:  htmlBody,
		Status:    models.NotificationPending,
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}
