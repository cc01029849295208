package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/voxedit/internal/document"
	"github.com/MrWong99/voxedit/internal/observe"
)

// Message types on the stream.
const (
	msgTranscript = "transcript"

	msgPreview  = "preview"
	msgDocument = "document"
	msgOutcome  = "outcome"
	msgError    = "error"
)

// Transcript modes.
const (
	modeDictation = "dictation"
	modeCommand   = "command"
)

const writeTimeout = 5 * time.Second

// clientMessage is one frame sent by the client.
type clientMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`

	// Mode is "dictation" (default) or "command".
	Mode string `json:"mode"`

	// Selection accompanies "read selection" commands.
	Selection document.Selection `json:"selection"`
}

// serverMessage is one frame sent to the client.
type serverMessage struct {
	Type      string              `json:"type"`
	Preview   string              `json:"preview,omitempty"`
	Text      string              `json:"text"`
	Dictation *document.Dictation `json:"dictation,omitempty"`
	Outcome   *document.Outcome   `json:"outcome,omitempty"`
	Analysis  *document.Analysis  `json:"analysis,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// handleStream upgrades to a WebSocket and feeds transcript frames into the
// session until the client disconnects, the session is closed, or the
// server shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		observe.Logger(r.Context()).Warn("server: websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(s.cfg.MaxRequestBytes)

	ctx, cancel := context.WithCancel(observe.WithSession(r.Context(), sess.ID()))
	defer cancel()
	// Cancelling a pending Read tears the connection down without a close
	// frame, so shutdown sends "going away" before cancelling.
	stop := context.AfterFunc(s.streams, func() {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		cancel()
	})
	defer stop()

	log := observe.Logger(ctx)
	log.Info("server: stream opened")

	if err := s.pushDocument(ctx, conn, sess); err != nil {
		log.Debug("server: stream initial write failed", "err", err)
		return
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			s.endStream(ctx, conn, err, log)
			return
		}
		if _, err := s.sessions.Get(sess.ID()); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "session closed")
			log.Info("server: stream ended", "reason", "session closed")
			return
		}
		if typ != websocket.MessageText {
			if err := writeMessage(ctx, conn, serverMessage{Type: msgError, Error: "expected a text frame"}); err != nil {
				return
			}
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := writeMessage(ctx, conn, serverMessage{Type: msgError, Error: "invalid message: " + err.Error()}); err != nil {
				return
			}
			continue
		}

		reply, err := s.handleFrame(ctx, sess, msg)
		if err != nil {
			reply = serverMessage{Type: msgError, Text: sess.Text(), Error: err.Error()}
		}
		if err := writeMessage(ctx, conn, reply); err != nil {
			log.Debug("server: stream write failed", "err", err)
			return
		}
	}
}

// handleFrame applies one client frame to sess and builds the reply.
// Errors are reported to the client; the stream stays open.
func (s *Server) handleFrame(ctx context.Context, sess *document.Session, msg clientMessage) (serverMessage, error) {
	if msg.Type != msgTranscript {
		return serverMessage{}, fmt.Errorf("unknown message type %q", msg.Type)
	}

	switch msg.Mode {
	case "", modeDictation:
		d, err := sess.Dictate(ctx, msg.Text, msg.IsFinal)
		if err != nil {
			return serverMessage{}, err
		}
		if !msg.IsFinal {
			return serverMessage{Type: msgPreview, Preview: d.Preview, Text: d.Text}, nil
		}
		a, err := sess.Analyze(ctx, false)
		if err != nil {
			return serverMessage{}, err
		}
		return serverMessage{Type: msgDocument, Text: d.Text, Dictation: d, Analysis: a}, nil

	case modeCommand:
		if !msg.IsFinal {
			return serverMessage{Type: msgPreview, Preview: msg.Text, Text: sess.Text()}, nil
		}
		out, err := sess.Execute(ctx, msg.Text, msg.Selection)
		if err != nil {
			return serverMessage{}, err
		}
		a, err := sess.Analyze(ctx, false)
		if err != nil {
			return serverMessage{}, err
		}
		return serverMessage{Type: msgOutcome, Text: out.Text, Outcome: out, Analysis: a}, nil
	}
	return serverMessage{}, fmt.Errorf("unknown mode %q", msg.Mode)
}

func (s *Server) pushDocument(ctx context.Context, conn *websocket.Conn, sess *document.Session) error {
	a, err := sess.Analyze(ctx, false)
	if err != nil {
		return err
	}
	return writeMessage(ctx, conn, serverMessage{
		Type:     msgDocument,
		Text:     sess.Text(),
		Preview:  sess.Preview(),
		Analysis: a,
	})
}

// endStream logs why the read loop stopped and closes the connection with a
// matching status.
func (s *Server) endStream(ctx context.Context, conn *websocket.Conn, err error, log *slog.Logger) {
	switch status := websocket.CloseStatus(err); {
	case s.streams.Err() != nil:
		// The shutdown hook already sent "going away".
		log.Info("server: stream ended", "reason", "shutdown")
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		log.Info("server: stream ended", "reason", "client closed")
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		log.Info("server: stream ended", "reason", "canceled")
	default:
		_ = conn.Close(websocket.StatusInternalError, "read failed")
		log.Warn("server: stream ended", "err", err)
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg serverMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("server: marshal %s message: %w", msg.Type, err)
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
