package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/querysync-dev/querysync/pkg/codec"
	"github.com/querysync-dev/querysync/pkg/protocol"
	"github.com/querysync-dev/querysync/pkg/querystate"
	"github.com/querysync-dev/querysync/pkg/schema"
)

// patchPort adapts the client's address bar to the address.Port
// interface. Writes queue protocol patches and wake the session's
// writer; the writer drains the queue into a patches frame. Publishes
// can arrive from a debounce timer goroutine, not just the read loop,
// so delivery must not depend on further inbound traffic.
type patchPort struct {
	mu      sync.Mutex
	current string
	queued  []protocol.Patch
	notify  func()
}

func newPatchPort(initial string) *patchPort {
	return &patchPort{current: initial}
}

// setNotify registers a hook invoked after every queued patch. Must be
// set before the port sees writes.
func (p *patchPort) setNotify(fn func()) {
	p.mu.Lock()
	p.notify = fn
	p.mu.Unlock()
}

func (p *patchPort) Read() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *patchPort) Push(addr string) {
	p.mu.Lock()
	p.current = addr
	path, query := splitAddress(addr)
	p.queued = append(p.queued, protocol.NewURLPushPatch(path, query))
	notify := p.notify
	p.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (p *patchPort) Replace(addr string) {
	p.mu.Lock()
	p.current = addr
	path, query := splitAddress(addr)
	p.queued = append(p.queued, protocol.NewURLReplacePatch(path, query))
	notify := p.notify
	p.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// drain returns the queued patches and clears the queue.
func (p *patchPort) drain() []protocol.Patch {
	p.mu.Lock()
	defer p.mu.Unlock()
	patches := p.queued
	p.queued = nil
	return patches
}

func splitAddress(addr string) (path, query string) {
	for i := 0; i < len(addr); i++ {
		if addr[i] == '?' {
			return addr[:i], addr[i+1:]
		}
	}
	return addr, ""
}

// Session is one connected client: a WebSocket connection plus the
// query state it drives.
type Session struct {
	id     string
	conn   *websocket.Conn
	server *Server
	logger *slog.Logger

	port  *patchPort
	state *querystate.State

	writeMu sync.Mutex
	seq     uint64

	flushCh chan struct{}
	done    chan struct{}

	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn, server *Server, addr string) *Session {
	sess := &Session{
		id:      id,
		conn:    conn,
		server:  server,
		logger:  server.logger.With("session", id),
		port:    newPatchPort(addr),
		flushCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	// The hook must be live before the state bootstraps, so the very
	// first publish already wakes the writer.
	sess.port.setNotify(sess.wakeWriter)
	sess.state = server.newState(sess.port)
	return sess
}

// wakeWriter nudges the writer goroutine. Non-blocking: one pending
// token covers any number of queued patches.
func (s *Session) wakeWriter() {
	select {
	case s.flushCh <- struct{}{}:
	default:
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the session's query state.
func (s *Session) State() *querystate.State {
	return s.state
}

// ReadLoop reads frames until the connection drops. It must run in its
// own goroutine; it closes the session on return.
func (s *Session) ReadLoop() {
	defer s.Close()

	// The bootstrap publish queued a token before the loop started;
	// the writer delivers it so the client's address is canonical from
	// the first frame.
	go s.writeLoop()

	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.server.config.ReadTimeout)); err != nil {
			return
		}

		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("read error", "error", err)
				RecordWSError("read")
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			s.logger.Warn("bad frame", "error", err)
			RecordWSError("decode")
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			if err := s.handleEventFrame(frame.Payload); err != nil {
				s.logger.Warn("event failed", "error", err)
			}
		case protocol.FrameControl:
			if len(frame.Payload) == 1 && frame.Payload[0] == protocol.ControlPing {
				pong := protocol.NewFrame(protocol.FrameControl, []byte{protocol.ControlPong})
				if err := s.write(pong.Encode()); err != nil {
					return
				}
			}
		default:
			s.logger.Debug("ignoring frame", "type", frame.Type)
		}
	}
}

// handleEventFrame decodes a mutation event and applies it to the
// state. Resulting publishes reach the client through the writer, woken
// by the port's notify hook.
func (s *Session) handleEventFrame(payload []byte) error {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		RecordWSError("decode")
		return err
	}

	_, span := s.server.tracer.Start(context.Background(), "querysync."+ev.Op.String(),
		trace.WithAttributes(
			attribute.String("session.id", s.id),
			attribute.String("event.op", ev.Op.String()),
		))
	s.applyEvent(ev)
	span.End()

	RecordEvent(ev.Op.String())
	return nil
}

// writeLoop delivers queued patches whenever the port reports a write.
// It is the only caller of flush, so sequence numbers and patch order
// stay consistent even when a debounced publish fires off the read
// loop's goroutine.
func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.flushCh:
			if err := s.flush(); err != nil {
				s.Close()
				return
			}
		}
	}
}

// applyEvent translates a wire event into state mutations. Undeclared
// names and unparsable texts are dropped here the same way direct API
// callers see them dropped.
func (s *Session) applyEvent(ev *protocol.Event) {
	switch ev.Op {
	case protocol.EventSet:
		v, ok := s.decodeText(ev.Name, ev.Text)
		if !ok {
			return
		}
		s.state.Set(ev.Name, v)

	case protocol.EventAppend:
		s.state.Append(s.decodePairs(ev.Pairs))

	case protocol.EventAssign:
		s.state.Assign(s.decodePairs(ev.Pairs))

	case protocol.EventRemove:
		s.state.Remove(ev.Name)

	case protocol.EventRemoveAll:
		s.state.RemoveAll()
	}
}

// decodeText decodes a single textual value under the schema's kind for
// the name. Unknown names and parse failures report false.
func (s *Session) decodeText(name, text string) (schema.Value, bool) {
	kind, ok := s.server.schema.Kind(name)
	if !ok {
		s.logger.Debug("undeclared name", "name", name)
		return schema.Value{}, false
	}
	v, ok := codec.Decode(kind, text)
	if !ok {
		s.logger.Debug("undecodable text", "name", name, "text", text)
		RecordDecodeFailure(kind.String())
		return schema.Value{}, false
	}
	return v, true
}

func (s *Session) decodePairs(pairs []protocol.Pair) map[string]schema.Value {
	values := make(map[string]schema.Value, len(pairs))
	for _, p := range pairs {
		if v, ok := s.decodeText(p.Name, p.Text); ok {
			values[p.Name] = v
		}
	}
	return values
}

// flush sends queued address patches, if any, as one patches frame.
func (s *Session) flush() error {
	patches := s.port.drain()
	if len(patches) == 0 {
		return nil
	}

	s.seq++
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Seq: s.seq, Patches: patches})
	frame := protocol.NewFrame(protocol.FramePatches, payload)

	if err := s.write(frame.Encode()); err != nil {
		RecordWSError("write")
		return err
	}
	RecordPatchesSent(len(patches))
	return nil
}

func (s *Session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.server.config.WriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.state.Close()
		_ = s.conn.Close()
		s.server.removeSession(s.id)
		s.logger.Info("session closed")
	})
}
