package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/icexg/internal/domain/dedupe"
	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
	"github.com/okian/icexg/pkg/logger"
	"github.com/okian/icexg/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	clientSendBuf   = 64
	maxMessageBytes = 64 << 10
	writeDeadline   = 5 * time.Second
	pongWait        = 60 * time.Second
	pingInterval    = 45 * time.Second
)

// Live stream message types.
const (
	MessageShot       = "shot"
	MessagePrediction = "prediction"
	MessageError      = "error"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// StreamDependencies scores streamed shots.
type StreamDependencies interface {
	Predict(ctx context.Context, ev shot.Event) (scoring.Assessment, error)
	NewDeduper() dedupe.Deduper
}

// StreamHandler serves the live game feed: clients send shots and receive a
// prediction for each new shot ID.
type StreamHandler struct {
	deps   StreamDependencies
	rps    float64
	burst  int
	logger logger.Logger
}

// NewStreamHandler creates a live stream handler. A non-positive rps disables
// per-connection rate limiting.
func NewStreamHandler(deps StreamDependencies, rps float64, burst int, log logger.Logger) *StreamHandler {
	return &StreamHandler{deps: deps, rps: rps, burst: burst, logger: log}
}

// streamMessage is the envelope for both directions.
type streamMessage struct {
	Type      string          `json:"type"`
	GameID    string          `json:"gameId"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	// Error frames carry the message text as data plus these two fields.
	Code   string `json:"code,omitempty"`
	ShotID string `json:"shotId,omitempty"`
}

type shotPayload struct {
	ShotID   string `json:"shotId"`
	Location struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	} `json:"location"`
	ShotType      string   `json:"shotType"`
	IsRebound     flexBool `json:"isRebound"`
	IsRush        flexBool `json:"isRush"`
	StrengthState string   `json:"strengthState"`
}

type predictionPayload struct {
	ShotID     string   `json:"shotId"`
	XG         float64  `json:"xG"`
	Quality    string   `json:"quality"`
	DangerZone string   `json:"dangerZone"`
	Factors    []string `json:"factors"`
}

type streamClient struct {
	gameID  string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{} // closed by readPump
	stopped chan struct{} // closed by writePump
	seen    dedupe.Deduper
	limiter *rate.Limiter
	logger  logger.Logger
}

// HandleStream handles GET /ws/game/{gameId} upgrade requests.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	gameID := r.PathValue("gameId")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing game id")))
		return
	}
	if !websocket.IsWebSocketUpgrade(r) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("expected websocket upgrade")))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "stream upgrade failed", logger.Error(err))
		return
	}

	c := &streamClient{
		gameID:  gameID,
		conn:    conn,
		send:    make(chan []byte, clientSendBuf),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		seen:    h.deps.NewDeduper(),
		logger:  h.logger.With(logger.String("gameId", gameID), logger.String("requestId", RequestIDFromContext(r.Context()))),
	}
	if h.rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(h.rps), h.burst)
	}

	metrics.StreamOpened()
	defer metrics.StreamClosed()

	ctx := context.WithoutCancel(r.Context())
	c.logger.Info(ctx, "stream client connected")
	go c.writePump()
	h.readPump(ctx, c)

	tracked := c.seen.Size()
	metrics.ObserveStreamTrackedShots(tracked)
	c.logger.Info(ctx, "stream client disconnected", logger.Int("shots", tracked))
}

// readPump scores inbound shots until the connection fails or closes. On exit
// it signals writePump via c.done.
func (h *StreamHandler) readPump(ctx context.Context, c *streamClient) {
	defer close(c.done)

	c.conn.SetReadLimit(maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn(ctx, "stream read failed", logger.Error(err))
			}
			return
		}
		if !h.handleMessage(ctx, c, data) {
			return
		}
	}
}

// handleMessage processes one inbound frame. It returns false once the
// writer has gone away.
func (h *StreamHandler) handleMessage(ctx context.Context, c *streamClient, data []byte) bool {
	if c.limiter != nil && !c.limiter.Allow() {
		metrics.RecordRateLimited("stream")
		return c.sendError("", "rate_limited", ErrRateLimited.Error())
	}

	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.RecordStreamMessage("invalid")
		return c.sendError("", "bad_request", "invalid message: "+err.Error())
	}
	metrics.RecordStreamMessage(msg.Type)
	if msg.Type != MessageShot {
		return c.sendError("", "unsupported_type", "unsupported message type "+msg.Type)
	}

	var p shotPayload
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		return c.sendError("", "bad_request", "invalid shot: "+err.Error())
	}
	if p.ShotID == "" {
		return c.sendError("", "bad_request", "missing shotId")
	}

	req := shotRequest{
		XCord:         p.Location.X,
		YCord:         p.Location.Y,
		ShotType:      p.ShotType,
		ShotRebound:   p.IsRebound,
		ShotRush:      p.IsRush,
		StrengthState: p.StrengthState,
	}
	ev, _, err := req.event()
	if err != nil {
		return c.sendError(p.ShotID, "bad_request", err.Error())
	}
	ev.ID = p.ShotID

	if c.seen.SeenAndRecord(p.ShotID) {
		metrics.RecordStreamDuplicate()
		c.logger.Debug(ctx, "duplicate shot ignored", logger.String("shotId", p.ShotID))
		return true
	}

	a, err := h.deps.Predict(ctx, ev)
	if err != nil {
		c.seen.Forget(p.ShotID)
		c.logger.Error(ctx, "stream prediction failed", logger.String("shotId", p.ShotID), logger.Error(err))
		return c.sendError(p.ShotID, "internal_error", err.Error())
	}

	factors := a.Factors
	if factors == nil {
		factors = []string{}
	}
	return c.sendMessage(MessagePrediction, predictionPayload{
		ShotID:     p.ShotID,
		XG:         a.ExpectedGoals,
		Quality:    string(a.Quality),
		DangerZone: string(a.Danger),
		Factors:    factors,
	})
}

func (c *streamClient) sendError(shotID, code, message string) bool {
	data, err := json.Marshal(message)
	if err != nil {
		return false
	}
	return c.sendFrame(streamMessage{
		Type:      MessageError,
		GameID:    c.gameID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
		Code:      code,
		ShotID:    shotID,
	})
}

func (c *streamClient) sendMessage(msgType string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	return c.sendFrame(streamMessage{
		Type:      msgType,
		GameID:    c.gameID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	})
}

func (c *streamClient) sendFrame(msg streamMessage) bool {
	frame, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	select {
	case c.send <- frame:
		return true
	case <-c.stopped:
		return false
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. It owns the connection and closes it on exit.
func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		close(c.stopped)
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
