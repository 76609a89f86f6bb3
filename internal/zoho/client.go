package zoho

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"optilink/internal/config"
)

// Message is the subset of the Zoho Mail list-view payload the pipeline needs.
type Message struct {
	MessageID    string `json:"messageId"`
	FromAddress  string `json:"fromAddress"`
	Sender       string `json:"sender"`
	Subject      string `json:"subject"`
	Summary      string `json:"summary"`
	ReceivedTime string `json:"receivedTime"`
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Status struct {
		Code        int    `json:"code"`
		Description string `json:"description"`
	} `json:"status"`
	Data json.RawMessage `json:"data"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.ZohoTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.ZohoRateLimitRPS),
	}
}

// ListMessages pages through the account inbox view until a short page. Pages
// use Zoho's 1-based start offset.
func (c *Client) ListMessages(ctx context.Context, max int) ([]Message, error) {
	limit := c.cfg.ZohoPageSize
	if limit <= 0 {
		limit = 200
	}

	all := make([]Message, 0)
	start := 1
	for {
		if max > 0 && len(all) >= max {
			return all[:max], nil
		}

		body, err := c.fetchJSON(ctx, fmt.Sprintf("accounts/%s/messages/view", c.cfg.ZohoAccountID), map[string]string{
			"start": strconv.Itoa(start),
			"limit": strconv.Itoa(limit),
		})
		if err != nil {
			return nil, err
		}

		var page []Message
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < limit {
			break
		}
		start += limit
	}

	if max > 0 && len(all) > max {
		all = all[:max]
	}
	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.ZohoAPIToken) == "" {
		return nil, errors.New("missing ZOHO_API_TOKEN")
	}
	if strings.TrimSpace(c.cfg.ZohoAccountID) == "" {
		return nil, errors.New("missing ZOHO_ACCOUNT_ID")
	}

	baseURL := strings.TrimRight(c.cfg.ZohoAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Zoho-oauthtoken "+c.cfg.ZohoAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("zoho status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("zoho api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if apiResp.Status.Code != 200 {
			return nil, fmt.Errorf("zoho api unsuccessful: code=%d %s", apiResp.Status.Code, apiResp.Status.Description)
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("zoho request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
