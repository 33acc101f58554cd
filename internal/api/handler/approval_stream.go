package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/api/metrics"
	"github.com/gccconnect/connect/internal/core/domain"
)

const (
	pingInterval = 15 * time.Second
	writeWait    = 5 * time.Second
)

// ApprovalSubscriber hands out per-identity approval event feeds.
type ApprovalSubscriber interface {
	Subscribe(identityID string) (<-chan domain.ApprovalEvent, func())
}

// ApprovalStreamHandler pushes approval decisions about the caller over a
// websocket. The client's session is not refreshed; it should log in again.
type ApprovalStreamHandler struct {
	broker         ApprovalSubscriber
	allowedOrigins []string
	log            zerolog.Logger
}

func NewApprovalStreamHandler(broker ApprovalSubscriber, allowedOrigins []string, log zerolog.Logger) *ApprovalStreamHandler {
	return &ApprovalStreamHandler{broker: broker, allowedOrigins: allowedOrigins, log: log}
}

func (h *ApprovalStreamHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin) {
				return true
			}
			h.log.Warn().Str("origin", origin).Msg("websocket origin rejected")
			return false
		},
	}
}

// Stream handles GET /v1/me/approval/stream.
//
// @Summary      Approval event stream
// @Description  Upgrades to a websocket and sends one JSON ApprovalEvent per decision about the caller.
// @Tags         profile
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/approval/stream [get]
func (h *ApprovalStreamHandler) Stream(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	up := h.upgrader()
	ws, err := up.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer ws.Close()

	events, unsubscribe := h.broker.Subscribe(claims.Subject)
	defer unsubscribe()

	metrics.ApprovalStreamSubscribers.Inc()
	defer metrics.ApprovalStreamSubscribers.Dec()

	log := h.log.With().Str("user_id", claims.Subject).Logger()
	log.Debug().Msg("approval stream opened")

	// The reader only detects the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("approval stream read failed")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			log.Debug().Msg("approval stream closed by client")
			return nil
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case event, ok := <-events:
			if !ok {
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return nil
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(event); err != nil {
				log.Debug().Err(err).Msg("approval stream write failed")
				return nil
			}
		}
	}
}
