// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"funnelpulse/api/models"
)

// EventWriter is the slice of the event store the ingest path needs.
type EventWriter interface {
	InsertEvents(ctx context.Context, events []models.Event) error
}

type TrackHandlers struct {
	Events EventWriter
}

func NewTrackHandlers(events EventWriter) *TrackHandlers {
	return &TrackHandlers{
		Events: events,
	}
}

// TrackEvents ingests a batch of clickstream events. Events that fail
// presence validation are skipped and counted rather than failing the
// batch; one bad event should not cost the rest.
func (h *TrackHandlers) TrackEvents(c *gin.Context) {
	var incoming []models.Event
	if err := c.ShouldBindJSON(&incoming); err != nil {
		log.Printf("Error binding incoming clickstream JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}

	var accepted []models.Event
	skipped := 0
	for _, event := range incoming {
		if event.EventID == "" {
			event.EventID = uuid.New().String()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}
		if err := event.Validate(); err != nil {
			log.Printf("Skipping invalid clickstream event: %v", err)
			skipped++
			continue
		}
		accepted = append(accepted, event)
	}

	if len(accepted) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		if err := h.Events.InsertEvents(ctx, accepted); err != nil {
			log.Printf("Error inserting clickstream events into ClickHouse: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record clickstream events"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted": len(accepted),
		"skipped":  skipped,
	})
}
