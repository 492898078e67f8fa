package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

var defaultForm = models.TestTransactionInput{Amount: "100", Hour: "12", Type: "online", Day: "2"}

type DashboardHandler struct {
	state *state.DashboardState
}

func NewDashboardHandler(st *state.DashboardState) *DashboardHandler {
	return &DashboardHandler{state: st}
}

// Page renders the full dashboard from the current state.
func (h *DashboardHandler) Page(c *gin.Context) {
	h.renderPage(c, http.StatusOK, nil, defaultForm)
}

// State returns the rendered dashboard as JSON.
func (h *DashboardHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, render.NewDashboard(h.state.Snapshot()))
}

func (h *DashboardHandler) renderPage(c *gin.Context, status int, banner *render.Banner, form models.TestTransactionInput) {
	c.HTML(status, DashboardTemplateName, PageData{
		Dashboard:        render.NewDashboard(h.state.Snapshot()),
		Banner:           banner,
		TransactionTypes: models.TransactionTypes,
		Form:             form,
	})
}
