package meals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	tokenPath       = "/oauth/v2/token"
	currentWeekPath = "/rest/v1/week/active"
)

// Client is a client for the canteen API
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a new canteen API client
func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: c.baseURL + tokenPath,
			// The server expects client_id/client_secret in the POST body,
			// next to grant_type, username and password.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Login exchanges user credentials for an access token (grant_type=password).
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauthConfig().PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	return token, nil
}

// CurrentWeek fetches the active week's meal schedule.
func (c *Client) CurrentWeek(ctx context.Context, accessToken string) (*CurrentWeekResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+currentWeekPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var week CurrentWeekResponse
	if err := json.Unmarshal(body, &week); err != nil {
		return nil, fmt.Errorf("unmarshal current week: %w", err)
	}
	return &week, nil
}
