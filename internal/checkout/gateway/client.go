package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

type validateRequest struct {
	SenderIdentifier string `json:"senderIdentifier"`
	ConfirmationCode string `json:"confirmationCode"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
}

type validateResult struct {
	statusCode int
	body       []byte
}

// Client calls the external transfer-validation endpoint. Transport errors
// flow through a circuit breaker; HTTP rejections do not trip it, they are
// answers, not outages.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[validateResult]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	settings := gobreaker.Settings{
		Name:    "payment-validation",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[validateResult](settings),
	}
}

// Validate posts the confirmation payload to path. A 2xx response means the
// transfer checked out; any other status carries a JSON {error} message that
// is returned verbatim as a RejectionError.
func (c *Client) Validate(ctx context.Context, path string, req validateRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal validation request: %w", err)
	}

	result, err := c.breaker.Execute(func() (validateResult, error) {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if reqErr != nil {
			return validateResult{}, reqErr
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, doErr := c.http.Do(httpReq)
		if doErr != nil {
			return validateResult{}, doErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return validateResult{}, readErr
		}
		return validateResult{statusCode: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if result.statusCode >= 200 && result.statusCode < 300 {
		return nil
	}

	var rejection struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(result.body, &rejection); err != nil || rejection.Error == "" {
		return &RejectionError{Message: "payment validation failed"}
	}
	return &RejectionError{Message: rejection.Error}
}
