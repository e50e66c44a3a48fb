package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"printer-scheduler/internal/schedule"
)

var (
	errCalendarNotConfigured = errors.New("Google Calendar not configured")
	errCalendarNotAuthorized = errors.New("Google Calendar not authorized, visit /api/calendar/auth")
	errCalendarState         = errors.New("invalid oauth state")
)

// CalendarImport reads the printer's Google Calendar so bookings made there show up as
// external blocks next to the reservations. It is read-only.
type CalendarImport struct {
	config     *oauth2.Config
	calendarID string
	loc        *time.Location

	mu    sync.Mutex
	state string
	token *oauth2.Token

	// listEvents defaults to the Calendar API; tests replace it.
	listEvents func(ctx context.Context, timeMin, timeMax string) ([]*calendar.Event, error)
}

// NewCalendarImport returns nil when the OAuth client is not configured.
func NewCalendarImport(clientID, clientSecret, redirectURL, calendarID string) *CalendarImport {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	ci := &CalendarImport{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		calendarID: calendarID,
		loc:        time.Local,
	}
	ci.listEvents = ci.fetchEvents
	return ci
}

// AuthURL starts a consent flow. Only the latest state is accepted by Exchange.
func (ci *CalendarImport) AuthURL() string {
	state := uuid.NewString()
	ci.mu.Lock()
	ci.state = state
	ci.mu.Unlock()
	return ci.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (ci *CalendarImport) Exchange(ctx context.Context, state, code string) error {
	ci.mu.Lock()
	expected := ci.state
	ci.mu.Unlock()
	if expected == "" || state != expected {
		return errCalendarState
	}

	token, err := ci.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code for token: %w", err)
	}
	ci.mu.Lock()
	ci.token = token
	ci.state = ""
	ci.mu.Unlock()
	return nil
}

func (ci *CalendarImport) authorized() bool {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.token != nil
}

func (ci *CalendarImport) fetchEvents(ctx context.Context, timeMin, timeMax string) ([]*calendar.Event, error) {
	ci.mu.Lock()
	token := ci.token
	ci.mu.Unlock()
	if token == nil {
		return nil, errCalendarNotAuthorized
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(ci.config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	events, err := srv.Events.List(ci.calendarID).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		TimeMin(timeMin).
		TimeMax(timeMax).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}
	return events.Items, nil
}

// Blocks returns the calendar's timed events that start on date, as reservations.
func (ci *CalendarImport) Blocks(ctx context.Context, date string) ([]schedule.Reservation, error) {
	day, err := time.ParseInLocation(schedule.DateLayout, date, ci.loc)
	if err != nil {
		return nil, &schedule.ValidationError{Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date)}
	}
	items, err := ci.listEvents(ctx, day.Format(time.RFC3339), day.AddDate(0, 0, 1).Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	blocks := []schedule.Reservation{}
	for _, item := range items {
		b, ok := eventToBlock(item, ci.loc)
		if !ok || b.Date != date {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// eventToBlock converts a timed event. All-day and cancelled events have no slot on the
// printer and are skipped.
func eventToBlock(item *calendar.Event, loc *time.Location) (schedule.Reservation, bool) {
	if item == nil || item.Status == "cancelled" || item.Start == nil || item.End == nil {
		return schedule.Reservation{}, false
	}
	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return schedule.Reservation{}, false
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return schedule.Reservation{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil || !end.After(start) {
		return schedule.Reservation{}, false
	}
	start = start.In(loc)

	owner := item.Summary
	if owner == "" && item.Creator != nil {
		owner = item.Creator.Email
	}
	b := schedule.Reservation{
		ID:            "gcal:" + item.Id,
		OwnerName:     owner,
		Date:          start.Format(schedule.DateLayout),
		StartTime:     schedule.ClockTime{Hour: start.Hour(), Minute: start.Minute()},
		DurationHours: end.Sub(start).Hours(),
		Notes:         item.Description,
	}
	if created, err := time.Parse(time.RFC3339, item.Created); err == nil {
		b.CreatedAt = &created
	}
	return b, true
}

type blockView struct {
	ID        string             `json:"id"`
	OwnerName string             `json:"ownerName"`
	Date      string             `json:"date"`
	StartTime schedule.ClockTime `json:"startTime"`
	EndTime   schedule.ClockTime `json:"endTime"`
	Duration  string             `json:"duration"`
	Conflicts []conflictView     `json:"conflicts"`
}

func blockViews(blocks, snapshot []schedule.Reservation) []blockView {
	out := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockView{
			ID:        b.ID,
			OwnerName: b.OwnerName,
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime(),
			Duration:  schedule.FormatDuration(b.DurationHours),
			Conflicts: conflictViews(schedule.FindConflicts(b, snapshot, "")),
		})
	}
	return out
}

// GET /api/calendar/auth
func (a *App) CalendarAuthHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCalendarNotConfigured.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": a.Calendar.AuthURL()})
}

// GET /oauth2callback
func (a *App) CalendarCallbackHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCalendarNotConfigured.Error()})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}
	if err := a.Calendar.Exchange(c.Request.Context(), c.Query("state"), code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Authorization successful"})
}

// GET /api/calendar/blocks?date=YYYY-MM-DD
func (a *App) CalendarBlocksHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCalendarNotConfigured.Error()})
		return
	}
	if !a.Calendar.authorized() {
		c.JSON(http.StatusConflict, gin.H{"error": errCalendarNotAuthorized.Error()})
		return
	}
	ctx := c.Request.Context()
	blocks, err := a.Calendar.Blocks(ctx, c.Query("date"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	snapshot, err := a.Board.Snapshot(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	views := blockViews(blocks, snapshot)
	c.JSON(http.StatusOK, gin.H{"blocks": views, "count": len(views)})
}
