// api/handlers/report_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"funnelpulse/api/funnel"
	"funnelpulse/api/models"
)

// EventFetcher supplies an immutable event snapshot for one report.
type EventFetcher interface {
	FetchEvents(ctx context.Context, window *funnel.Window) ([]models.Event, error)
}

// ReportArchive serves the last persisted funnel report.
type ReportArchive interface {
	LatestFunnelReport(ctx context.Context) (time.Time, []models.FunnelResult, error)
}

type ReportHandlers struct {
	Events  EventFetcher
	Archive ReportArchive
	Stages  []funnel.Stage
}

func NewReportHandlers(events EventFetcher, archive ReportArchive, stages []funnel.Stage) *ReportHandlers {
	return &ReportHandlers{
		Events:  events,
		Archive: archive,
		Stages:  stages,
	}
}

// parseWindow reads the optional start/end query parameters, defaulting to
// the trailing 7 days. Responds with 400 and returns false on a bad format.
func parseWindow(c *gin.Context) (*funnel.Window, bool) {
	window := &funnel.Window{
		Start: time.Now().UTC().Add(-7 * 24 * time.Hour),
		End:   time.Now().UTC(),
	}

	if startParam := c.Query("start"); startParam != "" {
		start, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return nil, false
		}
		window.Start = start
	}
	if endParam := c.Query("end"); endParam != "" {
		end, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return nil, false
		}
		window.End = end
	}
	return window, true
}

// segmentPredicate builds the optional device / trafficSource restriction.
func segmentPredicate(c *gin.Context) funnel.Predicate {
	if device := c.Query("device"); device != "" {
		return funnel.DeviceIs(device)
	}
	if source := c.Query("trafficSource"); source != "" {
		return funnel.TrafficSourceIs(source)
	}
	return nil
}

func (h *ReportHandlers) snapshot(c *gin.Context, window *funnel.Window) ([]models.Event, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	events, err := h.Events.FetchEvents(ctx, window)
	if err != nil {
		log.Printf("Error fetching event snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event snapshot"})
		return nil, false
	}
	return events, true
}

// GetFunnel computes the funnel report over a windowed snapshot, optionally
// restricted to one device or traffic source.
func (h *ReportHandlers) GetFunnel(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	events, ok := h.snapshot(c, window)
	if !ok {
		return
	}

	results, err := funnel.ComputeFunnel(events, h.Stages, nil, segmentPredicate(c))
	if err != nil {
		log.Printf("Error computing funnel report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute funnel report"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetBottlenecks computes the stage-transition drop-off classification.
func (h *ReportHandlers) GetBottlenecks(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	events, ok := h.snapshot(c, window)
	if !ok {
		return
	}

	results, err := funnel.ComputeFunnel(events, h.Stages, nil, segmentPredicate(c))
	if err != nil {
		log.Printf("Error computing funnel report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute bottleneck report"})
		return
	}

	c.JSON(http.StatusOK, funnel.ComputeBottlenecks(results))
}

// GetSegments computes per-partition conversion, partitioned by device or
// traffic source via the 'by' query parameter.
func (h *ReportHandlers) GetSegments(c *gin.Context) {
	var keyFn funnel.KeyFunc
	switch c.Query("by") {
	case "device":
		keyFn = funnel.DeviceKey
	case "traffic_source":
		keyFn = funnel.TrafficSourceKey
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "by query parameter must be 'device' or 'traffic_source'"})
		return
	}

	window, ok := parseWindow(c)
	if !ok {
		return
	}
	events, ok := h.snapshot(c, window)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, funnel.ComputeSegmentConversion(events, keyFn, funnel.PurchaseMatcher))
}

// GetSummary returns headline numbers plus the worst transitions. Rates are
// raw fractions; the frontend formats them.
func (h *ReportHandlers) GetSummary(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	events, ok := h.snapshot(c, window)
	if !ok {
		return
	}

	results, err := funnel.ComputeFunnel(events, h.Stages, nil, nil)
	if err != nil {
		log.Printf("Error computing funnel report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute report summary"})
		return
	}
	bottlenecks := funnel.ComputeBottlenecks(results)
	if len(bottlenecks) > 3 {
		bottlenecks = bottlenecks[:3]
	}

	conversionRate := 0.0
	if len(results) > 0 {
		conversionRate = results[len(results)-1].ConversionRateFromStart
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate":      window.Start.Format(time.RFC3339),
		"endDate":        window.End.Format(time.RFC3339),
		"totalEvents":    len(events),
		"uniqueSessions": funnel.CountSessions(events),
		"conversionRate": conversionRate,
		"topBottlenecks": bottlenecks,
	})
}

// GetArchivedReport serves the most recently persisted funnel report.
func (h *ReportHandlers) GetArchivedReport(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	computedAt, results, err := h.Archive.LatestFunnelReport(ctx)
	if err != nil {
		log.Printf("Error loading archived funnel report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load archived report"})
		return
	}
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No archived report available yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"computedAt": computedAt.Format(time.RFC3339),
		"stages":     results,
	})
}
