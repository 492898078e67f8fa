package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamHandler pushes the rendered dashboard to the page after every state change.
type StreamHandler struct {
	state *state.DashboardState
}

func NewStreamHandler(st *state.DashboardState) *StreamHandler {
	return &StreamHandler{state: st}
}

func (h *StreamHandler) ServeWS(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		telemetry.Logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	telemetry.DashboardClients.Inc()
	defer telemetry.DashboardClients.Dec()

	updates, cancel := h.state.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var sent uint64
	push := func() bool {
		d := render.NewDashboard(h.state.Snapshot())
		if d.Version == sent && sent != 0 {
			return true
		}
		sent = d.Version
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(d); err != nil {
			telemetry.Logger.Debug("websocket write failed", zap.Error(err))
			return false
		}
		return true
	}

	if !push() {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-updates:
			if !push() {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed and
// closes done when the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
