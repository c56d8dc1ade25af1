package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"healthpredict/form"
	"healthpredict/ml"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 64 << 10
)

// WSMessageType tags every reply on the prediction socket.
type WSMessageType string

const (
	WSPrediction WSMessageType = "prediction"
	WSError      WSMessageType = "error"
)

// WSReply answers one inbound RawInput message.
type WSReply struct {
	Type      WSMessageType      `json:"type"`
	Sleep     ml.Label           `json:"sleep_quality,omitempty"`
	Stress    ml.Label           `json:"stress_level,omitempty"`
	Features  map[string]float64 `json:"features,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(h.origins, origin)
		},
	}
}

// handleWebSocket runs one prediction session. Each text message is a JSON
// RawInput and gets exactly one reply, in order.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &wsSession{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan WSReply, 16),
		handler: h,
	}
	h.logger.Debug("websocket session opened", zap.String("session_id", s.id))

	go s.writePump()
	s.readPump(r.Context())
}

type wsSession struct {
	id      string
	conn    *websocket.Conn
	send    chan WSReply
	handler *Handler
}

// readPump owns the connection's reads and closes send when the peer goes
// away, which stops writePump.
func (s *wsSession) readPump(ctx context.Context) {
	defer close(s.send)

	s.conn.SetReadLimit(wsMaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.handler.logger.Warn("websocket read error", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		s.send <- s.handle(ctx, data)
	}
}

func (s *wsSession) handle(ctx context.Context, data []byte) WSReply {
	var raw ml.RawInput
	if err := json.Unmarshal(data, &raw); err != nil {
		return WSReply{Type: WSError, Error: "invalid JSON message: " + err.Error(), Timestamp: time.Now()}
	}

	vector := ml.Normalize(raw)
	prediction, err := s.handler.predict(ctx, SourceWebSocket, vector)
	if err != nil {
		message := err.Error()
		if errors.Is(err, ml.ErrArtifactsUnavailable) {
			message = form.MsgUnavailable
		}
		return WSReply{Type: WSError, Error: message, Timestamp: time.Now()}
	}
	return WSReply{
		Type:      WSPrediction,
		Sleep:     prediction.Sleep,
		Stress:    prediction.Stress,
		Features:  vector.Map(),
		Timestamp: time.Now(),
	}
}

func (s *wsSession) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.handler.logger.Debug("websocket session closed", zap.String("session_id", s.id))
	}()

	for {
		select {
		case reply, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(reply); err != nil {
				s.handler.logger.Warn("websocket write error", zap.String("session_id", s.id), zap.Error(err))
				s.drain()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drain()
				return
			}
		}
	}
}

// drain closes the connection so readPump fails, then consumes replies
// until it closes send.
func (s *wsSession) drain() {
	s.conn.Close()
	for range s.send {
	}
}
