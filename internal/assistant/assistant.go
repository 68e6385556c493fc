package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	log "log/slog"

	"aide/internal/calendar"
	"aide/internal/reminder"
	"aide/internal/weather"
)

// WeatherService is the weather collaborator contract.
type WeatherService interface {
	Current(ctx context.Context, city string) (weather.Report, error)
}

// JokeService is the joke collaborator contract.
type JokeService interface {
	Random(ctx context.Context) (string, error)
}

// CalendarService is the calendar collaborator contract; CreateEvent returns
// a shareable event link.
type CalendarService interface {
	CreateEvent(ctx context.Context, ev calendar.Event) (string, error)
}

// Options wires an Assistant. Nil collaborators are allowed: the matching
// intents degrade to fixed "not configured" replies instead of failing.
type Options struct {
	Store    *reminder.Store
	Weather  WeatherService
	Jokes    JokeService
	Calendar CalendarService

	DefaultCity string
	Timezone    string
	Location    *time.Location

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Assistant is the command dispatcher: it normalizes an utterance, walks the
// rule table in priority order, and returns the first matching handler's
// reply.
type Assistant struct {
	rules []Rule

	store    *reminder.Store
	weather  WeatherService
	jokes    JokeService
	calendar CalendarService

	defaultCity string
	timezone    string
	location    *time.Location
	now         func() time.Time
}

var calendarPattern = regexp.MustCompile(
	`(?i)(?:add calendar event|schedule event)\s+'(?P<title>[^']*)'\s+from\s+'(?P<start>[^']*)'\s+to\s+'(?P<end>[^']*)'(?:\s+description\s+'(?P<description>[^']*)')?`)

func New(opts Options) *Assistant {
	a := &Assistant{
		store:       opts.Store,
		weather:     opts.Weather,
		jokes:       opts.Jokes,
		calendar:    opts.Calendar,
		defaultCity: opts.DefaultCity,
		timezone:    opts.Timezone,
		location:    opts.Location,
		now:         opts.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}

	a.rules = []Rule{
		{
			Intent: "greeting",
			Match:  ExactSet{"hello", "hi", "hey", "hey assistant", "good morning", "good afternoon", "good evening"},
			Handle: a.handleGreeting,
		},
		{
			Intent: "time",
			Match:  ExactSet{"what time is it", "current time", "time now", "tell me the time"},
			Handle: a.handleTime,
		},
		{
			Intent: "date",
			Match:  ExactSet{"what is today's date", "date today", "tell me the date", "today's date"},
			Handle: a.handleDate,
		},
		{
			Intent: "weather_city",
			Match:  PrefixAny{"weather in ", "forecast for "},
			Handle: a.handleWeatherCity,
		},
		{
			Intent: "weather_default",
			Match:  ExactSet{"weather", "forecast"},
			Handle: a.handleWeatherDefault,
		},
		{
			Intent: "music",
			Match:  PrefixAny{"play music ", "play song ", "search youtube for "},
			Handle: a.handleMusic,
		},
		{
			Intent: "reminder_set",
			Match:  PrefixAny{"remind me to "},
			Handle: a.handleReminderSet,
		},
		{
			Intent: "reminder_list",
			Match:  ExactSet{"show reminders", "what are my reminders", "list reminders", "read reminders"},
			Handle: a.handleReminderList,
		},
		{
			Intent: "calendar_event",
			Match:  Pattern{Prefixes: []string{"add calendar event ", "schedule event "}, Re: calendarPattern},
			Handle: a.handleCalendarEvent,
		},
		{
			Intent: "joke",
			Match:  ExactSet{"tell me a joke", "make me laugh", "tell a joke", "joke"},
			Handle: a.handleJoke,
		},
		{
			Intent: "farewell",
			Match:  ExactSet{"goodbye", "exit", "stop listening", "stop", "shut down", "that's all"},
			Handle: a.handleFarewell,
		},
	}

	return a
}

// Dispatch processes one utterance to completion and always returns a reply.
// Empty input short-circuits before the rule table; unmatched input gets the
// fallback reply echoing the normalized command.
func (a *Assistant) Dispatch(ctx context.Context, raw string) string {
	cmd := strings.ToLower(strings.TrimSpace(raw))
	if cmd == "" {
		return "No command received."
	}

	for _, rule := range a.rules {
		m, ok := rule.Match.Match(cmd)
		if !ok {
			continue
		}
		reply := rule.Handle(ctx, m)
		log.Info("Command recognized", "intent", rule.Intent, "command", cmd)
		return reply
	}

	log.Info("Command not recognized", "command", cmd)
	return fmt.Sprintf("Sorry, I didn't fully understand: '%s'. Could you try rephrasing or asking differently?", cmd)
}
