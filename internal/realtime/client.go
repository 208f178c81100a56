package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-video-backend/internal/domain"
	"github.com/tbourn/go-video-backend/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var clientIDCounter atomic.Uint64

// ProgressRecorder persists watch progress reported over the socket.
type ProgressRecorder interface {
	RecordProgress(ctx context.Context, userID, videoID, watchTime int64, completed bool) (*domain.WatchHistory, error)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Recorder handles watch_progress messages. Nil rejects them.
	Recorder ProgressRecorder
	// UserID is the connection's identity. When set it overrides any user_id
	// in a watch_progress payload; zero falls back to the payload.
	UserID int64
	// Timeout bounds each store write. Zero means 10s.
	Timeout time.Duration
}

// Client sits between one WebSocket connection and the hub.
//
// send is owned by the hub and closed by it on unregister. reply carries
// direct answers to this client's own messages and is never closed, so the
// read side can write to it without racing the hub.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	reply  chan Message
	opts   ClientOptions
	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient wraps conn. ctx carries request-scoped values (trace, logger) for
// store writes; its cancellation is ignored because the upgrading request
// returns before the connection closes.
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	cctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &Client{
		id:     clientIDCounter.Add(1),
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, 256),
		reply:  make(chan Message, 16),
		opts:   opts,
		ctx:    cctx,
		cancel: cancel,
	}
}

// ID returns the client's process-unique id.
func (c *Client) ID() uint64 { return c.id }

type statusData struct {
	Message string `json:"message"`
}

type progressIn struct {
	UserID    int64 `json:"user_id"`
	VideoID   int64 `json:"video_id"`
	WatchTime int64 `json:"watch_time"`
	Completed bool  `json:"completed"`
}

type progressOut struct {
	VideoID  int64 `json:"video_id"`
	Progress int64 `json:"progress"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Join registers the client with the hub, greets it and starts its pumps.
// It returns false, after closing the connection, when the hub has stopped.
func (c *Client) Join() bool {
	select {
	case c.hub.Register <- c:
	case <-c.hub.done:
		c.cancel()
		_ = c.conn.Close()
		return false
	}
	c.respond(TypeStatus, statusData{Message: "Connected to video backend"})
	go c.writePump()
	go c.readPump()
	return true
}

func (c *Client) respond(typ string, data any) {
	m, err := NewMessage(typ, data)
	if err != nil {
		log.Error().Err(err).Str("message_type", typ).Msg("encode reply")
		return
	}
	select {
	case c.reply <- m:
	default:
		log.Warn().Uint64("client_id", c.id).Str("message_type", typ).Msg("reply buffer full, dropping")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close")
			}
			return
		}
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			c.respond(TypeError, errorData{Code: "bad_request", Message: "malformed message"})
			continue
		}
		c.handle(m)
	}
}

func (c *Client) handle(m Message) {
	switch m.Type {
	case TypePing:
		c.respond(TypePong, nil)
	case TypeWatchProgress:
		c.recordProgress(m.Data)
	default:
		c.respond(TypeError, errorData{Code: "bad_request", Message: "unknown message type"})
	}
}

func (c *Client) recordProgress(raw json.RawMessage) {
	if c.opts.Recorder == nil {
		c.respond(TypeError, errorData{Code: "unavailable", Message: "progress tracking disabled"})
		return
	}
	var in progressIn
	if len(raw) == 0 || json.Unmarshal(raw, &in) != nil {
		c.respond(TypeError, errorData{Code: "bad_request", Message: "invalid watch_progress payload"})
		return
	}
	if c.opts.UserID != 0 {
		in.UserID = c.opts.UserID
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.Timeout)
	defer cancel()
	if _, err := c.opts.Recorder.RecordProgress(ctx, in.UserID, in.VideoID, in.WatchTime, in.Completed); err != nil {
		c.respond(TypeError, progressError(err))
		log.Warn().Err(err).
			Int64("user_id", in.UserID).
			Int64("video_id", in.VideoID).
			Msg("watch_progress failed")
		return
	}
	c.respond(TypeProgressSaved, progressOut{VideoID: in.VideoID, Progress: in.WatchTime})
}

func progressError(err error) errorData {
	switch services.Classify(err) {
	case services.KindInvalidArgument:
		return errorData{Code: "bad_request", Message: err.Error()}
	case services.KindNotFound:
		return errorData{Code: "not_found", Message: err.Error()}
	case services.KindUnavailable:
		return errorData{Code: "unavailable", Message: "temporarily unavailable"}
	}
	if errors.Is(err, context.Canceled) {
		return errorData{Code: "unavailable", Message: "temporarily unavailable"}
	}
	return errorData{Code: "internal_error", Message: "internal error"}
}

func (c *Client) write(m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		// Direct replies first so the greeting precedes any broadcast.
		select {
		case m := <-c.reply:
			if err := c.write(m); err != nil {
				return
			}
			continue
		default:
		}

		select {
		case m := <-c.reply:
			if err := c.write(m); err != nil {
				return
			}
		case m, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(m); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
