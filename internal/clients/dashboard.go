package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
)

// DashboardClient reads the rendered state of a running dashboard server.
type DashboardClient struct {
	baseClient
}

func NewDashboardClient(baseURL string, timeout time.Duration) *DashboardClient {
	return &DashboardClient{baseClient: newBaseClient("fraud-dashboard", baseURL, timeout)}
}

func (c *DashboardClient) State(ctx context.Context) (*render.Dashboard, error) {
	var d render.Dashboard
	if err := c.do(ctx, "state", http.MethodGet, "/api/v1/state", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
