package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	log "log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DatetimeLayout is the naive local datetime format accepted for event bounds.
const DatetimeLayout = "2006-01-02 15:04"

// Kind classifies a failed calendar operation.
type Kind int

const (
	KindUnavailable Kind = iota
	KindAuth
	KindInvalidTimezone
	KindBadTime
	KindRejected
)

// Error is a classified calendar collaborator failure. Message carries the
// API's own rejection text when Kind is KindRejected.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("calendar: %s", e.Message)
	}
	return "calendar operation failed"
}

func (e *Error) Unwrap() error { return e.Err }

// Event is one entry to create. Start and End are naive local datetimes in
// DatetimeLayout; the client localizes them in its configured timezone.
type Event struct {
	Summary     string
	Description string
	Start       string
	End         string
}

// Client creates events in the user's primary Google Calendar. Authentication
// relies on a cached token with silent refresh; the interactive consent flow
// lives in Setup and is never run from request handling.
type Client struct {
	timezone        string
	credentialsFile string
	tokenFile       string
}

func NewClient(timezone, credentialsFile, tokenFile string) *Client {
	return &Client{
		timezone:        timezone,
		credentialsFile: credentialsFile,
		tokenFile:       tokenFile,
	}
}

// CreateEvent inserts ev with a 30-minutes-before popup reminder and returns
// the shareable event link. Start/End ordering is not validated; the API
// receives them as given.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (string, error) {
	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return "", &Error{Kind: KindInvalidTimezone, Err: err}
	}

	start, err := time.ParseInLocation(DatetimeLayout, ev.Start, loc)
	if err != nil {
		return "", &Error{Kind: KindBadTime, Err: err}
	}
	end, err := time.ParseInLocation(DatetimeLayout, ev.End, loc)
	if err != nil {
		return "", &Error{Kind: KindBadTime, Err: err}
	}

	svc, err := c.service(ctx)
	if err != nil {
		return "", err
	}

	item := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: c.timezone},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: c.timezone},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       []*gcal.EventReminder{{Method: "popup", Minutes: 30}},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	log.Info("Creating calendar event", "summary", ev.Summary, "start", ev.Start, "end", ev.End)

	created, err := svc.Events.Insert("primary", item).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return "", &Error{Kind: KindRejected, Message: gerr.Message, Err: err}
		}
		return "", &Error{Kind: KindUnavailable, Err: err}
	}

	link := created.HtmlLink
	if link == "" {
		link = "No link available"
	}

	log.Info("Calendar event created", "link", link)
	return link, nil
}

func (c *Client) service(ctx context.Context) (*gcal.Service, error) {
	cfg, err := c.oauthConfig()
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}

	tok, err := c.loadToken()
	if err != nil {
		return nil, &Error{Kind: KindAuth, Err: err}
	}

	src := cfg.TokenSource(ctx, tok)

	// Force the refresh here so an expired grant surfaces as an auth failure
	// before the insert, and persist the rotated token.
	fresh, err := src.Token()
	if err != nil {
		return nil, &Error{Kind: KindAuth, Err: err}
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := c.saveToken(fresh); err != nil {
			log.Warn("Failed to save refreshed token", "path", c.tokenFile, "err", err)
		}
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	return svc, nil
}

func (c *Client) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(c.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &tok, nil
}

func (c *Client) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(c.tokenFile, data, 0o600)
}
