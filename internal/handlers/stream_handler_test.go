package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/service"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStreamHandler_PushesOnChange(t *testing.T) {
	st := state.NewDashboardState(nil)
	r := gin.New()
	r.GET("/ws", NewStreamHandler(st).ServeWS)
	server := httptest.NewServer(r)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var first render.Dashboard
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, st.SessionID(), first.SessionID)
	assert.Equal(t, render.StreamPlaceholder, first.StreamPlaceholder)

	st.SetHealth(models.ServiceScoring, nil, time.Now())

	var next render.Dashboard
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "bg-success", next.MLStatus.Class)
	assert.Greater(t, next.Version, first.Version)
}

func TestSubmissionStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, submissionStatus(models.ErrInvalidInput))
	assert.Equal(t, http.StatusConflict, submissionStatus(service.ErrDuplicateSubmission))
	assert.Equal(t, http.StatusBadGateway, submissionStatus(errors.New("connection refused")))
}

func TestDashboardTemplate_Banner(t *testing.T) {
	st := state.NewDashboardState(nil)
	r := gin.New()
	r.SetHTMLTemplate(DashboardTemplate)
	h := NewDashboardHandler(st)
	r.GET("/", func(c *gin.Context) {
		banner := render.ErrorBanner(errors.New("<boom>"))
		h.renderPage(c, http.StatusBadGateway, &banner, defaultForm)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Error: &lt;boom&gt;")
	assert.Contains(t, w.Body.String(), `value="100"`)
}
