package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	loginBaseURL = "https://login.microsoftonline.com"
	graphBaseURL = "https://graph.microsoft.com/v1.0"

	// Page size for message listing. Graph caps $top at 1000 for mail.
	pageSize = 50
)

// Client is a minimal Microsoft Graph mail client using the
// client-credentials flow. Tokens are cached until shortly before expiry.
type Client struct {
	tenantID     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(tenantID, clientID, clientSecret string) *Client {
	return &Client{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// EmailAddress is the nested Graph address object.
type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// Message is the subset of the Graph message resource this service reads.
type Message struct {
	ID               string      `json:"id"`
	ConversationID   string      `json:"conversationId"`
	Subject          string      `json:"subject"`
	BodyPreview      string      `json:"bodyPreview"`
	HasAttachments   bool        `json:"hasAttachments"`
	ReceivedDateTime time.Time   `json:"receivedDateTime"`
	From             *Recipient  `json:"from"`
	ToRecipients     []Recipient `json:"toRecipients"`
}

type messageListResponse struct {
	Value    []Message `json:"value"`
	NextLink string    `json:"@odata.nextLink"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {"https://graph.microsoft.com/.default"},
	}

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", loginBaseURL, c.tenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	// Renew a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

// ListMessages returns messages from the given well-known folder
// ("inbox", "sentitems") of a mailbox, received at or after since.
func (c *Client) ListMessages(ctx context.Context, mailbox, folder string, since time.Time) ([]Message, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"$top":     {fmt.Sprintf("%d", pageSize)},
		"$orderby": {"receivedDateTime desc"},
		"$filter":  {fmt.Sprintf("receivedDateTime ge %s", since.UTC().Format(time.RFC3339))},
	}
	next := fmt.Sprintf("%s/users/%s/mailFolders/%s/messages?%s",
		graphBaseURL, url.PathEscape(mailbox), folder, query.Encode())

	var messages []Message
	for next != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create message request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("message request failed: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("message request for %s returned status %d", mailbox, resp.StatusCode)
		}

		var page messageListResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode message response: %w", err)
		}
		resp.Body.Close()

		messages = append(messages, page.Value...)
		next = page.NextLink
	}

	return messages, nil
}
