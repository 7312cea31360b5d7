package delivery

import (
	"math"
	"net/http"
	"time"

	"slatrack-backend/internal/ingest"
	trackingdto "slatrack-backend/internal/tracking/dto"
	"slatrack-backend/internal/tracking/repository"
	"slatrack-backend/internal/tracking/usecase"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	batch            *usecase.BatchRunner
	aggregator       *usecase.Aggregator
	ingestor         *ingest.Ingestor // nil when no mail source is configured
	emails           repository.TrackedEmailRepository
	metrics          repository.MetricRepository
	slaTargetMinutes int
}

func NewTrackingHandler(
	batch *usecase.BatchRunner,
	aggregator *usecase.Aggregator,
	ingestor *ingest.Ingestor,
	emails repository.TrackedEmailRepository,
	metrics repository.MetricRepository,
	slaTargetMinutes int,
) *TrackingHandler {
	return &TrackingHandler{
		batch:            batch,
		aggregator:       aggregator,
		ingestor:         ingestor,
		emails:           emails,
		metrics:          metrics,
		slaTargetMinutes: slaTargetMinutes,
	}
}

// RunIngest triggers one ingestion pass.
func (h *TrackingHandler) RunIngest(c *gin.Context) {
	if h.ingestor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no mail source configured"})
		return
	}

	report, err := h.ingestor.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trackingdto.IngestJobResponse{
		Success:         true,
		Mailboxes:       report.Mailboxes,
		Fetched:         report.Fetched,
		Ingested:        report.Ingested,
		Failed:          report.Failed,
		DurationSeconds: roundSeconds(report.Duration),
	})
}

// RunMatch triggers one matcher batch.
func (h *TrackingHandler) RunMatch(c *gin.Context) {
	report, err := h.batch.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trackingdto.MatchJobResponse{
		Success:         true,
		Checked:         report.Checked,
		Classified:      report.Classified,
		Matched:         report.Matched,
		Failed:          report.Failed,
		Skipped:         report.Skipped,
		Truncated:       report.Truncated,
		DurationSeconds: roundSeconds(report.Duration),
	})
}

// RunAggregate recomputes daily metrics for a date, defaulting to
// yesterday (the safe cron target).
func (h *TrackingHandler) RunAggregate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = usecase.Yesterday(time.Now())
	}

	responders, err := h.aggregator.AggregateDate(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trackingdto.AggregateJobResponse{
		Success:    true,
		Date:       date,
		Responders: responders,
	})
}

// GetFirstResponses lists locked first responses, newest first.
func (h *TrackingHandler) GetFirstResponses(c *gin.Context) {
	emails, err := h.emails.FindFirstResponses(500)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]trackingdto.FirstResponseItem, 0, len(emails))
	for _, e := range emails {
		items = append(items, trackingdto.FirstResponseItem{
			Subject:             e.Subject,
			ClientEmail:         e.ClientEmail,
			EmployeeEmail:       e.EmployeeEmail,
			FirstResponderEmail: e.FirstResponderEmail,
			FirstResponseAt:     e.FirstResponseAt,
			ResponseTimeMinutes: e.ResponseTimeMinutes,
			SLABreached:         e.SLABreached,
			ReceivedAt:          e.ReceivedAt,
		})
	}

	c.JSON(http.StatusOK, trackingdto.FirstResponsesResponse{
		Success: true,
		Count:   len(items),
		Items:   items,
	})
}

// GetUnresponded lists inbound emails that have waited past the SLA target.
func (h *TrackingHandler) GetUnresponded(c *gin.Context) {
	now := time.Now()
	cutoff := now.Add(-time.Duration(h.slaTargetMinutes) * time.Minute)

	emails, err := h.emails.FindPendingOlderThan(cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]trackingdto.UnrespondedItem, 0, len(emails))
	for _, e := range emails {
		items = append(items, trackingdto.UnrespondedItem{
			ID:             e.ID,
			Subject:        e.Subject,
			ClientEmail:    e.ClientEmail,
			EmployeeEmail:  e.EmployeeEmail,
			Scenario:       e.Scenario,
			ReceivedAt:     e.ReceivedAt,
			MinutesPending: usecase.ResponseMinutes(e.ReceivedAt, now),
		})
	}

	c.JSON(http.StatusOK, trackingdto.UnrespondedResponse{
		Success: true,
		Count:   len(items),
		Items:   items,
	})
}

// GetMetrics lists daily metric rows, filterable by date and employee.
func (h *TrackingHandler) GetMetrics(c *gin.Context) {
	rows, err := h.metrics.Find(c.Query("date"), c.Query("employee"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trackingdto.MetricsResponse{
		Success: true,
		Count:   len(rows),
		Items:   rows,
	})
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
