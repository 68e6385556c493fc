package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed weather lookup so the handler can map it to a
// deterministic user-facing reply.
type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindAuth
	KindNotFound
	KindDecode
)

// Error is a classified weather collaborator failure.
type Error struct {
	Kind   Kind
	City   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("weather lookup for %q failed: %v", e.City, e.Err)
	}
	if e.Reason != "" {
		return fmt.Sprintf("weather lookup for %q failed: %s", e.City, e.Reason)
	}
	return fmt.Sprintf("weather lookup for %q failed", e.City)
}

func (e *Error) Unwrap() error { return e.Err }

// Report holds current conditions for one city. Optional fields are pointers
// because the API omits them for some stations.
type Report struct {
	City        string
	Description string
	Temp        float64
	FeelsLike   *float64
	Humidity    *int64
	WindSpeed   *float64
}

const defaultBaseURL = "http://api.openweathermap.org/data/2.5/weather"

// Client talks to the OpenWeatherMap current-weather endpoint.
type Client struct {
	// BaseURL is overridable for tests.
	BaseURL string

	apiKey string
	http   *http.Client
}

func NewClient(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		BaseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Current fetches current conditions for city in metric units.
func (c *Client) Current(ctx context.Context, city string) (Report, error) {
	q := url.Values{}
	q.Set("appid", c.apiKey)
	q.Set("q", city)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Report{}, &Error{Kind: KindTransport, City: city, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindTransport
		if isTimeout(err) {
			kind = KindTimeout
		}
		return Report{}, &Error{Kind: kind, City: city, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Report{}, &Error{Kind: KindTransport, City: city, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Report{}, &Error{Kind: KindAuth, City: city}
	case resp.StatusCode == http.StatusNotFound:
		return Report{}, &Error{Kind: KindNotFound, City: city}
	case resp.StatusCode >= 400:
		return Report{}, &Error{Kind: KindTransport, City: city, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if !gjson.ValidBytes(body) {
		return Report{}, &Error{Kind: KindDecode, City: city}
	}
	data := gjson.ParseBytes(body)

	// The API sometimes reports failures inside a 200 body; cod may be a
	// number or a string.
	if cod := data.Get("cod"); cod.Exists() && cod.String() != "200" {
		return Report{}, &Error{Kind: KindNotFound, City: city, Reason: data.Get("message").String()}
	}

	temp := data.Get("main.temp")
	if !temp.Exists() {
		return Report{}, &Error{Kind: KindDecode, City: city, Reason: "temperature missing"}
	}

	rep := Report{
		City:        city,
		Description: "No description available",
		Temp:        temp.Float(),
	}
	if desc := data.Get("weather.0.description"); desc.Exists() {
		rep.Description = desc.String()
	}
	if v := data.Get("main.feels_like"); v.Exists() {
		f := v.Float()
		rep.FeelsLike = &f
	}
	if v := data.Get("main.humidity"); v.Exists() {
		h := v.Int()
		rep.Humidity = &h
	}
	if v := data.Get("wind.speed"); v.Exists() {
		w := v.Float()
		rep.WindSpeed = &w
	}

	return rep, nil
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
