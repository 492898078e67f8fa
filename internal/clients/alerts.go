package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
)

// AlertClient calls the fraud alert service.
type AlertClient struct {
	baseClient
}

func NewAlertClient(baseURL string, timeout time.Duration) *AlertClient {
	return &AlertClient{baseClient: newBaseClient(string(models.ServiceAlerts), baseURL, timeout)}
}

func (c *AlertClient) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil)
}

// RecentAlerts fetches the newest alerts, at most limit of them.
func (c *AlertClient) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var alerts []models.Alert
	if err := c.do(ctx, "recent_alerts", http.MethodGet, "/alerts/recent?"+q.Encode(), nil, &alerts); err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts, nil
}

func (c *AlertClient) Summary(ctx context.Context) (*models.AlertSummary, error) {
	var summary models.AlertSummary
	if err := c.do(ctx, "alert_summary", http.MethodGet, "/alerts/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SendAlert forwards a fraud classification to the alert service.
func (c *AlertClient) SendAlert(ctx context.Context, req models.AlertRequest) error {
	return c.do(ctx, "send_alert", http.MethodPost, "/alert", req, nil)
}
