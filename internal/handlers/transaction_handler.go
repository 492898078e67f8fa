package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/service"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

type TransactionHandler struct {
	submitter *service.Submitter
	dashboard *DashboardHandler
}

func NewTransactionHandler(submitter *service.Submitter, dashboard *DashboardHandler) *TransactionHandler {
	return &TransactionHandler{
		submitter: submitter,
		dashboard: dashboard,
	}
}

// SubmitTest accepts {amount,hour,type,day} as JSON and answers with the
// rendered banner plus the updated stats.
func (h *TransactionHandler) SubmitTest(c *gin.Context) {
	var in models.TestTransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		telemetry.Logger.Error("Error decoding test transaction", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid request body",
			"banner": render.ErrorBanner(err),
		})
		return
	}

	submission, err := h.submitter.Submit(c.Request.Context(), in)
	if err != nil {
		c.JSON(submissionStatus(err), gin.H{
			"error":  err.Error(),
			"banner": submission.Banner,
			"stats":  submission.Stats,
		})
		return
	}

	c.JSON(http.StatusOK, submission)
}

// SubmitForm is the no-script fallback of the test form. It runs the same
// pipeline and renders the page with the banner in place.
func (h *TransactionHandler) SubmitForm(c *gin.Context) {
	var in models.TestTransactionInput
	if err := c.ShouldBind(&in); err != nil {
		banner := render.ErrorBanner(err)
		h.dashboard.renderPage(c, http.StatusBadRequest, &banner, in)
		return
	}

	submission, err := h.submitter.Submit(c.Request.Context(), in)
	status := http.StatusOK
	if err != nil {
		status = submissionStatus(err)
	}
	h.dashboard.renderPage(c, status, &submission.Banner, in)
}

func submissionStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
