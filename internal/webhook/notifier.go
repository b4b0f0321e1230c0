// Package webhook posts checklist lifecycle events to an external automation endpoint.
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ChecklistEvent is the body posted for checklist.completed and checklist.verified.
type ChecklistEvent struct {
	Event         string    `json:"event"`
	ChecklistID   string    `json:"checklistId"`
	FacilityID    string    `json:"facilityId"`
	SectionID     string    `json:"sectionId"`
	FloorID       string    `json:"floorLocationId"`
	Date          string    `json:"date"`
	OverallStatus string    `json:"overallStatus"`
	ActorID       string    `json:"actorId"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Notifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewNotifier returns nil when url is empty; a nil *Notifier drops every event.
func NewNotifier(url string, timeout time.Duration, logger *zap.Logger) *Notifier {
	if url == "" {
		return nil
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Notifier{client: client, url: url, logger: logger}
}

// Notify posts the event and treats any non-2xx answer as an error.
func (n *Notifier) Notify(ctx context.Context, event ChecklistEvent) error {
	if n == nil {
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		n.logger.Warn("checklist webhook call failed",
			zap.String("event", event.Event),
			zap.String("checklist_id", event.ChecklistID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call checklist webhook: %w", err)
	}
	if resp.IsError() {
		n.logger.Warn("checklist webhook rejected event",
			zap.String("event", event.Event),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("checklist webhook returned status %d", resp.StatusCode())
	}

	n.logger.Debug("checklist webhook delivered",
		zap.String("event", event.Event),
		zap.String("checklist_id", event.ChecklistID),
	)
	return nil
}
