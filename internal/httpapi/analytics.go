package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/campus-union/voicebox/internal/models"
	"github.com/campus-union/voicebox/internal/store"
)

// AnalyticsHandler handles public tracking pings and the admin report.
type AnalyticsHandler struct {
	analytics *store.AnalyticsStore
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(analytics *store.AnalyticsStore) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// TrackPageView bumps the page view counter for today.
func (h *AnalyticsHandler) TrackPageView(c *gin.Context) {
	h.track(c, models.MetricPageViews)
}

// TrackVisitor bumps the unique visitor counter for today.
func (h *AnalyticsHandler) TrackVisitor(c *gin.Context) {
	h.track(c, models.MetricUniqueVisitors)
}

func (h *AnalyticsHandler) track(c *gin.Context, metric string) {
	if errTrack := h.analytics.IncrementToday(c.Request.Context(), metric); errTrack != nil {
		log.WithError(errTrack).Warn("failed to track analytics event")
		respondError(c, http.StatusInternalServerError, "Failed to track event")
		return
	}
	respondMessage(c, "Event tracked")
}

// Query returns the daily series and range totals for the admin dashboard.
// startDate and endDate accept RFC 3339 timestamps or plain dates.
func (h *AnalyticsHandler) Query(c *gin.Context) {
	start, okStart := parseDateParam(c, "startDate")
	if !okStart {
		return
	}
	end, okEnd := parseDateParam(c, "endDate")
	if !okEnd {
		return
	}

	report, errQuery := h.analytics.Query(c.Request.Context(), start, end)
	if errQuery != nil {
		log.WithError(errQuery).Error("failed to query analytics")
		respondError(c, http.StatusInternalServerError, "Failed to query analytics")
		return
	}
	respondOK(c, report)
}

func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, errParse := time.Parse(layout, raw); errParse == nil {
			return &t, true
		}
	}
	respondValidation(c, FieldError{Field: name, Message: "Must be an RFC 3339 timestamp or a YYYY-MM-DD date"})
	return nil, false
}
