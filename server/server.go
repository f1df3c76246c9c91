// Package server implements the accept loop, per-connection handling,
// and graceful shutdown fan-out that together make up segment's
// orchestrator.
package server

import (
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/segment-dev/segment/command"
	"github.com/segment-dev/segment/connection"
	"github.com/segment-dev/segment/frame"
	"github.com/segment-dev/segment/keyspace"
	"github.com/segment-dev/segment/shutdown"
)

// Server owns the listener, the keyspace manager shared by every
// connection, and the shutdown fan-out primitives.
type Server struct {
	listener        net.Listener
	keyspaceManager *keyspace.Manager
	notifier        *shutdown.Notifier
	log             *logrus.Logger

	wg sync.WaitGroup
}

// New constructs a Server bound to listener. maxMemoryBytes is the
// process RSS cap passed to the keyspace manager.
func New(listener net.Listener, maxMemoryBytes uint64, log *logrus.Logger) *Server {
	log.Info("Server initialized")
	return &Server{
		listener:        listener,
		keyspaceManager: keyspace.NewManager(maxMemoryBytes),
		notifier:        shutdown.New(),
		log:             log,
	}
}

// Run accepts connections until Shutdown is called or the listener
// returns a fatal error. After Shutdown it returns once every spawned
// connection handler has exited; on a fatal accept error it returns the
// error at once, without waiting for the handlers.
func (s *Server) Run() error {
	s.log.Info("Ready to accept connections")

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if isClosedListenerError(err) {
				break
			}
			return errors.Wrap(err, "server: accept")
		}

		handler := newConnectionHandler(conn, s.keyspaceManager, s.notifier.Listen(), s.log)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			handler.handle()
		}()
	}

	s.wg.Wait()
	return nil
}

// Shutdown announces shutdown to every connection handler and closes the
// listener so the accept loop stops taking new connections. It does not
// wait: Run returns once every handler has drained.
func (s *Server) Shutdown() {
	s.notifier.Notify()
	_ = s.listener.Close()
}

func isClosedListenerError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// connectionHandler owns one accepted connection's read/dispatch loop.
type connectionHandler struct {
	conn            *connection.Connection
	keyspaceManager *keyspace.Manager
	listener        *shutdown.Listener
	log             *logrus.Logger
}

func newConnectionHandler(conn net.Conn, km *keyspace.Manager, listener *shutdown.Listener, log *logrus.Logger) *connectionHandler {
	return &connectionHandler{
		conn:            connection.New(conn),
		keyspaceManager: km,
		listener:        listener,
		log:             log,
	}
}

// handle runs the per-connection protocol loop described in the
// orchestrator's design: read a frame (or observe shutdown, whichever
// happens first), parse it into a command, execute it, and repeat. Read
// and parse errors are reported in-band and the loop continues; only a
// clean close, a shutdown notification, or a write failure end it.
func (h *connectionHandler) handle() {
	defer h.conn.Close()

	for !h.listener.Shutdown() {
		frameCh := make(chan readResult, 1)
		go func() {
			f, err := h.conn.ReadFrame()
			frameCh <- readResult{frame: f, err: err}
		}()

		var result readResult
		select {
		case <-h.listener.Chan():
			return
		case result = <-frameCh:
		}

		if result.err != nil {
			if err := h.conn.WriteError(result.err.Error()); err != nil {
				return
			}
			continue
		}
		if result.frame == nil {
			return
		}

		cmd, err := command.New(*result.frame)
		if err != nil {
			if werr := h.conn.WriteError(err.Error()); werr != nil {
				return
			}
			continue
		}

		if err := cmd.Exec(h.conn, h.keyspaceManager); err != nil {
			return
		}
	}
}

type readResult struct {
	frame *frame.Frame
	err   error
}
