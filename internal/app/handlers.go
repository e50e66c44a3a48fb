package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"printer-scheduler/internal/schedule"
)

// GET /healthz
func (a *App) HealthHandler(c *gin.Context) {
	if err := a.Board.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "connected": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connected": true})
}

// GET /api/status
func (a *App) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.Board.Status())
}

// GET /api/reservations?view=upcoming|active|past|all
func (a *App) ListReservationsHandler(c *gin.Context) {
	snapshot, err := a.Board.Snapshot(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	selected := snapshot
	switch view := c.DefaultQuery("view", "all"); view {
	case "all":
	case "upcoming", "active", "past":
		t := schedule.Partition(snapshot, a.Board.Now())
		selected = map[string][]schedule.Reservation{
			"upcoming": t.Upcoming,
			"active":   t.Active,
			"past":     t.Past,
		}[view]
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be one of upcoming, active, past, all"})
		return
	}

	views := reservationViews(selected, snapshot)
	c.JSON(http.StatusOK, gin.H{"reservations": views, "count": len(views)})
}

// GET /api/reservations/:id
func (a *App) GetReservationHandler(c *gin.Context) {
	ctx := c.Request.Context()
	r, err := a.Board.Get(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	snapshot, err := a.Board.Snapshot(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationView(*r, snapshot))
}

// POST /api/reservations/check?id=
// Runs validation and the conflict review without writing. id excludes the reservation
// being edited.
func (a *App) CheckReservationHandler(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidate, sub, err := a.review(c.Request.Context(), req, c.Query("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":             true,
		"endTime":           candidate.EndTime(),
		"duration":          schedule.FormatDuration(candidate.DurationHours),
		"conflicts":         conflictViews(sub.Conflicts),
		"needsConfirmation": sub.NeedsConfirmation,
		"prompt":            sub.Prompt,
	})
}

// POST /api/reservations
func (a *App) CreateReservationHandler(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	r, sub, err := a.review(ctx, req, "")
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !sub.Proceed() {
		needsConfirmation(c, sub)
		return
	}

	owner := p.ID
	r.OwnerID = &owner
	if err := a.Board.Create(ctx, &r); err != nil {
		abortWithError(c, err)
		return
	}
	a.respondWithView(c, http.StatusCreated, r)
}

// PUT /api/reservations/:id
func (a *App) UpdateReservationHandler(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()
	if _, err := a.Board.Owned(ctx, id, p.ID); err != nil {
		abortWithError(c, err)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, sub, err := a.review(ctx, req, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !sub.Proceed() {
		needsConfirmation(c, sub)
		return
	}

	r.ID = id
	if err := a.Board.Update(ctx, &r, p.ID); err != nil {
		abortWithError(c, err)
		return
	}
	a.respondWithView(c, http.StatusOK, r)
}

// DELETE /api/reservations/:id
func (a *App) DeleteReservationHandler(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()
	if _, err := a.Board.Owned(ctx, id, p.ID); err != nil {
		abortWithError(c, err)
		return
	}
	if err := a.Board.Delete(ctx, id, p.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/free?date=YYYY-MM-DD
func (a *App) FreeSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date required (YYYY-MM-DD)"})
		return
	}
	snapshot, err := a.Board.Snapshot(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	slots := schedule.FreeSlots(snapshot, date, a.Opening, a.Rules.OperatingEnd)
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// review validates the draft and checks it against the current snapshot.
func (a *App) review(ctx context.Context, req submitRequest, excludeID string) (schedule.Reservation, schedule.Submission, error) {
	r, err := a.Rules.Validate(req.Draft)
	if err != nil {
		return schedule.Reservation{}, schedule.Submission{}, err
	}
	snapshot, err := a.Board.Snapshot(ctx)
	if err != nil {
		return schedule.Reservation{}, schedule.Submission{}, err
	}
	r.ID = excludeID
	return r, schedule.Review(r, snapshot, excludeID, req.Confirm), nil
}

func needsConfirmation(c *gin.Context, sub schedule.Submission) {
	c.JSON(http.StatusConflict, gin.H{
		"error":             sub.Prompt,
		"needsConfirmation": true,
		"conflicts":         conflictViews(sub.Conflicts),
	})
}

func (a *App) respondWithView(c *gin.Context, status int, r schedule.Reservation) {
	snapshot, err := a.Board.Snapshot(c.Request.Context())
	if err != nil {
		// the write went through; report it without conflict details
		snapshot = nil
	}
	c.JSON(status, newReservationView(r, snapshot))
}
