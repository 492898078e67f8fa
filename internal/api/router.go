package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/handlers"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/service"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

const serviceName = "fraud-dashboard"

func NewRouter(st *state.DashboardState, submitter *service.Submitter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())
	r.SetHTMLTemplate(handlers.DashboardTemplate)

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})

	dashboardHandler := handlers.NewDashboardHandler(st)
	transactionHandler := handlers.NewTransactionHandler(submitter, dashboardHandler)
	statusHandler := handlers.NewStatusHandler(st)
	streamHandler := handlers.NewStreamHandler(st)

	// Dashboard page
	r.GET("/", dashboardHandler.Page)
	r.POST("/test", transactionHandler.SubmitForm)
	r.GET("/ws", streamHandler.ServeWS)

	// JSON API
	r.GET("/api/ml-status", statusHandler.MLStatus)
	r.GET("/api/alert-status", statusHandler.AlertStatus)

	v1 := r.Group("/api/v1")
	v1.GET("/state", dashboardHandler.State)
	v1.POST("/transactions/test", transactionHandler.SubmitTest)

	return r
}
