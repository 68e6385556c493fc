package joke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed joke fetch.
type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindDecode
	KindMissingField
)

// Error is a classified joke collaborator failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("joke fetch failed: %v", e.Err)
	}
	return "joke fetch failed"
}

func (e *Error) Unwrap() error { return e.Err }

const defaultBaseURL = "https://icanhazdadjoke.com/"

// Client fetches one-liners from icanhazdadjoke.
type Client struct {
	// BaseURL is overridable for tests.
	BaseURL string

	http *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		BaseURL: defaultBaseURL,
		http:    httpClient,
	}
}

// Random fetches a single joke.
func (c *Client) Random(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindTransport
		if isTimeout(err) {
			kind = KindTimeout
		}
		return "", &Error{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}

	if !gjson.ValidBytes(body) {
		return "", &Error{Kind: KindDecode}
	}

	j := gjson.GetBytes(body, "joke")
	if !j.Exists() || j.String() == "" {
		return "", &Error{Kind: KindMissingField}
	}

	return j.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
