package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "log/slog"

	"aide/internal/calendar"
	"aide/internal/joke"
	"aide/internal/weather"
)

func (a *Assistant) handleGreeting(ctx context.Context, m Match) string {
	return "Hello there! How can I assist you?"
}

func (a *Assistant) handleTime(ctx context.Context, m Match) string {
	if a.location == nil {
		return "Sorry, I had trouble getting the current time."
	}
	now := a.now().In(a.location)
	return fmt.Sprintf("The current time is %s (%s).", now.Format("03:04 PM"), a.timezone)
}

func (a *Assistant) handleDate(ctx context.Context, m Match) string {
	return fmt.Sprintf("Today's date is %s.", a.now().Format("January 02, 2006"))
}

func (a *Assistant) handleWeatherCity(ctx context.Context, m Match) string {
	city := m.Rest
	if city == "" || city == "?" {
		return "Which city's weather would you like? Please say 'weather in [City Name]'."
	}
	return a.weatherReport(ctx, city)
}

func (a *Assistant) handleWeatherDefault(ctx context.Context, m Match) string {
	return a.weatherReport(ctx, a.defaultCity)
}

func (a *Assistant) weatherReport(ctx context.Context, city string) string {
	if a.weather == nil {
		return "Weather API key is not configured. Cannot fetch weather."
	}

	rep, err := a.weather.Current(ctx, city)
	if err != nil {
		log.Warn("Weather lookup failed", "city", city, "err", err)
		return weatherApology(err, city)
	}

	report := fmt.Sprintf("The weather in %s is currently %s. The temperature is %.1f degrees Celsius",
		capitalize(city), rep.Description, rep.Temp)
	if rep.FeelsLike != nil {
		report += fmt.Sprintf(", feeling like %.1f degrees.", *rep.FeelsLike)
	} else {
		report += "."
	}
	if rep.Humidity != nil {
		report += fmt.Sprintf(" Humidity is at %d percent.", *rep.Humidity)
	}
	if rep.WindSpeed != nil {
		report += fmt.Sprintf(" Wind speed is %.1f meters per second.", *rep.WindSpeed)
	}
	return report
}

func weatherApology(err error, city string) string {
	var werr *weather.Error
	if !errors.As(err, &werr) {
		return fmt.Sprintf("An unexpected error occurred while fetching weather for %s.", city)
	}

	switch werr.Kind {
	case weather.KindAuth:
		return "Authentication failed for weather service. Check API key."
	case weather.KindNotFound:
		if werr.Reason != "" {
			return fmt.Sprintf("Sorry, I couldn't find weather data for %s. Reason: %s", city, werr.Reason)
		}
		return fmt.Sprintf("Sorry, I couldn't find the city: %s.", city)
	case weather.KindTimeout:
		return "Sorry, the request to the weather service timed out."
	case weather.KindTransport:
		return fmt.Sprintf("Sorry, I couldn't connect to the weather service. Error: %v", werr.Err)
	case weather.KindDecode:
		if werr.Reason == "temperature missing" {
			return fmt.Sprintf("Sorry, I couldn't get the temperature details for %s.", city)
		}
		return fmt.Sprintf("Error parsing weather data for %s. Unexpected data format.", city)
	}
	return fmt.Sprintf("An unexpected error occurred while fetching weather for %s.", city)
}

func (a *Assistant) handleMusic(ctx context.Context, m Match) string {
	query := m.Rest
	if query == "" {
		return "What music, song, or video would you like me to search for on YouTube?"
	}

	searchURL := "https://www.youtube.com/results?search_query=" + strings.ReplaceAll(query, " ", "+")
	log.Info("Music search requested", "query", query, "url", searchURL)
	return fmt.Sprintf("Okay, I looked up '%s' on YouTube. You can try this link: %s", query, searchURL)
}

func (a *Assistant) handleReminderSet(ctx context.Context, m Match) string {
	text := m.Rest
	if text == "" {
		return "What should I remind you about? Please say 'remind me to [your task]'."
	}

	a.store.Append(text)
	return fmt.Sprintf("Okay, I will remember: '%s'.", text)
}

func (a *Assistant) handleReminderList(ctx context.Context, m Match) string {
	return a.store.RenderAll()
}

const calendarUsage = "To add an event, please use the format: " +
	"add calendar event 'Title' from 'YYYY-MM-DD HH:MM' to 'YYYY-MM-DD HH:MM' description 'Details'"

func (a *Assistant) handleCalendarEvent(ctx context.Context, m Match) string {
	if m.Groups == nil {
		return calendarUsage
	}

	ev := calendar.Event{
		Summary:     m.Groups["title"],
		Description: m.Groups["description"],
		Start:       m.Groups["start"],
		End:         m.Groups["end"],
	}

	// Validate the datetimes before reaching for the collaborator. Start vs
	// end ordering is deliberately not checked.
	if _, err := time.Parse(calendar.DatetimeLayout, ev.Start); err != nil {
		return "The date/time format seems incorrect. Please use 'YYYY-MM-DD HH:MM'."
	}
	if _, err := time.Parse(calendar.DatetimeLayout, ev.End); err != nil {
		return "The date/time format seems incorrect. Please use 'YYYY-MM-DD HH:MM'."
	}

	if a.calendar == nil {
		return "Cannot access Google Calendar service. Please check setup and authentication."
	}

	link, err := a.calendar.CreateEvent(ctx, ev)
	if err != nil {
		log.Warn("Calendar event creation failed", "summary", ev.Summary, "err", err)
		return a.calendarApology(err)
	}

	return fmt.Sprintf("Event '%s' created successfully! You can view it here: %s", ev.Summary, link)
}

func (a *Assistant) calendarApology(err error) string {
	var cerr *calendar.Error
	if !errors.As(err, &cerr) {
		return "An unexpected error occurred while creating the calendar event."
	}

	switch cerr.Kind {
	case calendar.KindUnavailable, calendar.KindAuth:
		return "Cannot access Google Calendar service. Please check setup and authentication."
	case calendar.KindInvalidTimezone:
		return fmt.Sprintf("The configured timezone '%s' is invalid. Please check your .env file.", a.timezone)
	case calendar.KindBadTime:
		return "Sorry, I couldn't understand the date or time. Please use the format 'YYYY-MM-DD HH:MM'."
	case calendar.KindRejected:
		return fmt.Sprintf("An error occurred creating the calendar event: %s", cerr.Message)
	}
	return "An unexpected error occurred while creating the calendar event."
}

func (a *Assistant) handleJoke(ctx context.Context, m Match) string {
	if a.jokes == nil {
		return "Sorry, I couldn't connect to the joke service right now."
	}

	text, err := a.jokes.Random(ctx)
	if err != nil {
		log.Warn("Joke fetch failed", "err", err)
		return jokeApology(err)
	}
	return text
}

func jokeApology(err error) string {
	var jerr *joke.Error
	if !errors.As(err, &jerr) {
		return "Sorry, an unexpected error occurred while getting a joke."
	}

	switch jerr.Kind {
	case joke.KindTimeout:
		return "Sorry, the joke service took too long to respond."
	case joke.KindTransport:
		return "Sorry, I couldn't connect to the joke service right now."
	case joke.KindDecode:
		return "Sorry, the joke service gave a response I couldn't understand."
	case joke.KindMissingField:
		return "Sorry, I couldn't get the joke text from the service."
	}
	return "Sorry, an unexpected error occurred while getting a joke."
}

func (a *Assistant) handleFarewell(ctx context.Context, m Match) string {
	// Acknowledges the intent only; the server keeps running.
	return "Okay, goodbye!"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
