package http

import (
	"encoding/json"
	"net/http"

	"survey-service/internal/app"
	"survey-service/internal/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionTracker is told when a websocket gets or loses its survey session.
type SessionTracker interface {
	SessionOpened()
	SessionClosed()
}

type nopTracker struct{}

func (nopTracker) SessionOpened() {}
func (nopTracker) SessionClosed() {}

// WSHandler gives every websocket connection its own survey session and
// relays intents in and snapshots out.
type WSHandler struct {
	service  app.QuestionService
	tracker  SessionTracker
	options  []app.Option
	upgrader websocket.Upgrader
}

// NewWSHandler builds a handler whose sessions talk to service. tracker may be nil.
func NewWSHandler(service app.QuestionService, tracker SessionTracker, opts ...app.Option) *WSHandler {
	if tracker == nil {
		tracker = nopTracker{}
	}
	return &WSHandler{
		service: service,
		tracker: tracker,
		options: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type draftPayload struct {
	Text string `json:"text"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts loading questions and streams state
// snapshots until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	logger := log.WithField("session", id)
	opts := make([]app.Option, 0, len(h.options)+1)
	opts = append(opts, h.options...)
	opts = append(opts, app.WithID(id))

	session := app.NewSurveySession(h.service, opts...)
	defer session.Close()
	h.tracker.SessionOpened()
	defer h.tracker.SessionClosed()
	logger.Debug("websocket session opened")

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// only the writer goroutine touches conn for writing
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debugf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: "state", Payload: snapshot}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	fail := func(message string) {
		reply(outboundMessage{Type: "error", Payload: errorPayload{Message: message}})
	}

	session.Load()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "load":
			session.Load()
		case "next":
			session.Next()
		case "previous":
			session.Previous()
		case "updateDraft":
			var payload draftPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail("invalid updateDraft payload")
				continue
			}
			session.UpdateDraft(payload.Text)
		case "submit":
			session.Submit()
		case "dismissNotification":
			session.DismissNotification()
		default:
			fail("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	logger.Debug("websocket session closed")
}
