package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/veritas-health/medresearch/internal/research"
	"github.com/veritas-health/medresearch/internal/session"
	"github.com/veritas-health/medresearch/models"
)

// Envelope types for the streaming protocol.
const (
	EnvelopeChat     = "chat"
	EnvelopeStatus   = "status"
	EnvelopeResponse = "response"
	EnvelopeError    = "error"
)

const processingMessage = "Processing your request..."

// Envelope is one framed message on a streaming channel.
type Envelope struct {
	Type    string         `json:"type"`
	Message string         `json:"message,omitempty"`
	Data    *AnswerPayload `json:"data,omitempty"`
}

// AnswerPayload is the Answer as serialized on the wire, with the timestamp
// pinned to a fixed textual format.
type AnswerPayload struct {
	Response  string          `json:"response"`
	Sources   []models.Source `json:"sources"`
	SessionID string          `json:"session_id"`
	Timestamp string          `json:"timestamp"`
}

// channelConn is the subset of *websocket.Conn the registry writes to.
type channelConn interface {
	WriteJSON(v interface{}) error
}

type channel struct {
	conn channelConn
	mu   sync.Mutex // serializes writes to one connection
}

// ChannelRegistry owns the set of open streaming channels. All membership
// mutation goes through its single lock; delivery to a channel that is not
// registered is a silent no-op.
type ChannelRegistry struct {
	mu       sync.Mutex
	channels map[string]*channel
}

func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{channels: make(map[string]*channel)}
}

func (r *ChannelRegistry) Register(clientID string, conn channelConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[clientID] = &channel{conn: conn}
	openChannels.Set(float64(len(r.channels)))
}

// Deregister removes the channel; removing an absent channel is a no-op.
func (r *ChannelRegistry) Deregister(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, clientID)
	openChannels.Set(float64(len(r.channels)))
}

// Send delivers one envelope to the channel if it is still registered.
func (r *ChannelRegistry) Send(clientID string, v interface{}) error {
	r.mu.Lock()
	ch, ok := r.channels[clientID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.conn.WriteJSON(v)
}

// Len reports the number of open channels.
func (r *ChannelRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

var wsLogger = log.New(log.Writer(), "[WS] ", log.LstdFlags)

// WSHandler serves the persistent streaming surface.
type WSHandler struct {
	Engine   *research.Engine
	Sessions session.Store
	Registry *ChannelRegistry
}

// Serve upgrades the connection, registers the channel and pumps envelopes
// until the client disconnects or the transport fails.
func (h *WSHandler) Serve(c echo.Context) error {
	clientID := c.Param("client_id")

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.Registry.Register(clientID, ws)
	defer func() {
		h.Registry.Deregister(clientID)
		_ = ws.Close()
	}()

	ctx := c.Request().Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			wsLogger.Printf("client %s disconnected: %v", clientID, err)
			return nil
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = h.Registry.Send(clientID, Envelope{Type: EnvelopeError, Message: "malformed envelope: " + err.Error()})
			continue
		}

		switch env.Type {
		case EnvelopeChat:
			if env.Message == "" {
				_ = h.Registry.Send(clientID, Envelope{Type: EnvelopeError, Message: "message required"})
				continue
			}
			// Handled off the read loop so a disconnect deregisters the
			// channel promptly; late results then no-op on delivery.
			go h.handleChat(ctx, clientID, env.Message)
		default:
			_ = h.Registry.Send(clientID, Envelope{Type: EnvelopeError, Message: "unsupported envelope type: " + env.Type})
		}
	}
}

// handleChat runs one query and emits the status envelope followed by
// exactly one terminal envelope.
func (h *WSHandler) handleChat(ctx context.Context, clientID, query string) {
	defer func() {
		if r := recover(); r != nil {
			wsLogger.Printf("chat for client %s panicked: %v", clientID, r)
			_ = h.Registry.Send(clientID, Envelope{Type: EnvelopeError, Message: "internal error while processing your request"})
		}
	}()

	_ = h.Registry.Send(clientID, Envelope{Type: EnvelopeStatus, Message: processingMessage})

	answer, _ := h.Engine.Research(ctx, models.ChatRequest{
		Message:            query,
		SessionID:          clientID,
		IncludeWebSearch:   true,
		IncludeLocalSearch: true,
	})
	recordExchange(h.Sessions, wsLogger, answer, query)

	_ = h.Registry.Send(clientID, Envelope{Type: EnvelopeResponse, Data: &AnswerPayload{
		Response:  answer.Response,
		Sources:   answer.Sources,
		SessionID: answer.SessionID,
		Timestamp: answer.Timestamp.Format(time.RFC3339),
	}})
}
