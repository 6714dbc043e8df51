package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// PushService sends quote workflow push notifications through the FCM
// HTTP v1 API. Reviewers get a push when a quote is submitted; the
// author gets one on approval or rejection.
type PushService struct {
	projectID   string
	db          *sql.DB
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

type serviceAccountCredentials struct {
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`
}

// NewPushService reads the Firebase service account file and prepares
// an OAuth2 token source for the messaging scope.
func NewPushService(credentialsPath string, db *sql.DB) (*PushService, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("credentials path is required")
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file: %v", err)
	}

	var creds serviceAccountCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("error parsing credentials: %v", err)
	}

	privateKey := strings.ReplaceAll(creds.PrivateKey, "\\n", "\n")
	config := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{"https://www.googleapis.com/auth/firebase.messaging"},
		TokenURL:   creds.TokenURI,
	}

	return &PushService{
		projectID:   creds.ProjectID,
		db:          db,
		httpClient:  &http.Client{},
		tokenSource: config.TokenSource(context.Background()),
	}, nil
}

// SendNotification sends one push notification to a device token.
func (p *PushService) SendNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("device token cannot be empty")
	}

	oauthToken, err := p.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("error getting OAuth token: %v", err)
	}

	if data == nil {
		data = map[string]string{}
	}
	message := map[string]interface{}{
		"message": map[string]interface{}{
			"token": token,
			"notification": map[string]string{
				"title": title,
				"body":  body,
			},
			"data": data,
			"webpush": map[string]interface{}{
				"fcm_options": map[string]interface{}{
					"link": data["action"],
				},
			},
		},
	}

	endpoint := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", p.projectID)
	return p.sendHTTPv1Request(ctx, endpoint, oauthToken.AccessToken, message)
}

// SendNotificationToUser sends a push to one user. A user with no
// registered device token is not an error.
func (p *PushService) SendNotificationToUser(ctx context.Context, userID int, title, body string, data map[string]string) error {
	var fcmToken string
	err := p.db.QueryRow(`SELECT fcm_token FROM users WHERE id = $1 AND fcm_token IS NOT NULL AND fcm_token != ''`, userID).Scan(&fcmToken)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("error fetching device token for user %d: %v", userID, err)
	}
	return p.SendNotification(ctx, fcmToken, title, body, data)
}

// SendNotificationToRole sends a push to every user with a role, used
// to notify all reviewers when a quote is submitted.
func (p *PushService) SendNotificationToRole(ctx context.Context, roleName, title, body string, data map[string]string) error {
	rows, err := p.db.Query(
		`SELECT fcm_token FROM users WHERE role_name = $1 AND fcm_token IS NOT NULL AND fcm_token != ''`,
		roleName,
	)
	if err != nil {
		return fmt.Errorf("error fetching device tokens: %v", err)
	}
	defer rows.Close()

	var failures int
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			continue
		}
		if err := p.SendNotification(ctx, token, title, body, data); err != nil {
			failures++
			log.Printf("push to reviewer failed: %v", err)
		}
	}
	if failures > 0 {
		log.Printf("failed to send %d reviewer notifications", failures)
	}
	return rows.Err()
}

// NotifyQuoteEvent sends a push to one user and records the
// notification row. A push failure still records the row.
func (p *PushService) NotifyQuoteEvent(ctx context.Context, userID int, title, body, action string) error {
	if err := p.SendNotificationToUser(ctx, userID, title, body, map[string]string{"action": action}); err != nil {
		log.Printf("push to user %d failed: %v", userID, err)
	}

	_, err := p.db.Exec(`
		INSERT INTO notifications (user_id, message, status, action, created_at, updated_at)
		VALUES ($1, $2, 'unread', $3, NOW(), NOW())
	`, userID, body, action)
	if err != nil {
		return fmt.Errorf("error saving notification: %v", err)
	}
	return nil
}

// SaveDeviceToken saves or replaces a user's device token.
func (p *PushService) SaveDeviceToken(userID int, token string) error {
	_, err := p.db.Exec(`UPDATE users SET fcm_token = $1 WHERE id = $2`, token, userID)
	if err != nil {
		return fmt.Errorf("error saving device token: %v", err)
	}
	return nil
}

// RemoveDeviceToken clears a user's device token on logout.
func (p *PushService) RemoveDeviceToken(userID int) error {
	_, err := p.db.Exec(`UPDATE users SET fcm_token = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error removing device token: %v", err)
	}
	return nil
}

func (p *PushService) sendHTTPv1Request(ctx context.Context, endpoint, accessToken string, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResp map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err == nil {
			return fmt.Errorf("FCM API error (status %d): %v", resp.StatusCode, errorResp)
		}
		return fmt.Errorf("FCM API error: status code %d", resp.StatusCode)
	}
	return nil
}
