package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/vicaya/vicaya"
	"github.com/vicaya/vicaya/index"
	"github.com/vicaya/vicaya/query"
	"github.com/vicaya/vicaya/snapshot"
)

// Rebuilder produces a fresh snapshot from a cold scan, supplied by
// cmd/vicayad so this package stays independent of the scanner's
// concrete Options shape.
type Rebuilder func() (*vicaya.Snapshot, error)

// Server answers daemon protocol requests over a Unix domain socket.
type Server struct {
	store        *index.Store
	snapshotPath string
	rebuild      Rebuilder
	log          *zap.Logger

	listener net.Listener
	shutdown chan struct{}
	once     sync.Once
}

// New returns a Server bound to store. snapshotPath is where Flush writes
// on shutdown; rebuild is invoked for RequestRebuild.
func New(store *index.Store, snapshotPath string, rebuild Rebuilder, log *zap.Logger) *Server {
	return &Server{
		store:        store,
		snapshotPath: snapshotPath,
		rebuild:      rebuild,
		log:          log,
		shutdown:     make(chan struct{}),
	}
}

// ListenAndServe binds socketPath and serves connections until ctx is
// canceled or Shutdown is requested by a client. It removes a stale socket
// file left behind by a prior crash before binding, the same "clean up a
// leftover socket" step most Unix-socket servers perform.
func (s *Server) ListenAndServe(ctx context.Context, socketPath string) error {
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	s.listener = ln
	defer ln.Close()
	defer os.Remove(socketPath)

	go func() {
		select {
		case <-ctx.Done():
		case <-s.shutdown:
		}
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-s.shutdown:
				return nil
			default:
				return err
			}
		}
		go s.handleConn(conn)
	}
}

// handleConn reads exactly one newline-delimited JSON request, dispatches
// it, writes exactly one newline-delimited JSON response, and closes the
// connection - no pipelining, per spec §6.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		return
	}

	var req Request
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		s.reply(conn, errorResponse(vicaya.ErrInvalidRequest.Error()))
		return
	}

	resp := s.dispatch(&req)
	s.reply(conn, resp)
}

func (s *Server) reply(conn net.Conn, resp Response) {
	enc := json.NewEncoder(conn)
	if err := enc.Encode(resp); err != nil {
		s.log.Warn("daemon: failed to write response", zap.Error(err))
	}
}

func (s *Server) dispatch(req *Request) Response {
	switch req.Type {
	case RequestSearch:
		return s.handleSearch(req.Search)
	case RequestStatus:
		return s.handleStatus()
	case RequestRebuild:
		return s.handleRebuild()
	case RequestShutdown:
		return s.handleShutdown()
	default:
		return errorResponse(vicaya.ErrInvalidRequest.Error())
	}
}

func (s *Server) handleSearch(p *SearchParams) Response {
	if p == nil || p.Term == "" {
		return errorResponse(vicaya.ErrInvalidRequest.Error())
	}
	results := s.store.Query(query.Request{Term: p.Term, Limit: p.Limit, Scope: p.Scope})
	return Response{Type: ResponseSearchResults, Results: results}
}

func (s *Server) handleStatus() Response {
	stats := s.store.Stats()
	return Response{Type: ResponseStatus, Stats: &stats}
}

func (s *Server) handleRebuild() Response {
	if s.rebuild == nil {
		return errorResponse("rebuild not configured")
	}
	fresh, err := s.rebuild()
	if err != nil {
		return errorResponse(err.Error())
	}
	filesIndexed := fresh.Files.Len()
	s.store.Rebuild(fresh)
	return Response{Type: ResponseRebuildComplete, FilesIndexed: filesIndexed}
}

func (s *Server) handleShutdown() Response {
	if err := s.Flush(); err != nil {
		s.log.Warn("daemon: flush on shutdown failed", zap.Error(err))
	}
	s.once.Do(func() { close(s.shutdown) })
	return okResponse()
}

// Stop requests an orderly shutdown of ListenAndServe's Accept loop,
// without flushing - the caller (cmd/vicayad's SIGTERM handler) is
// expected to call Flush itself so ordering relative to other cleanup
// stays in its control.
func (s *Server) Stop() {
	s.once.Do(func() { close(s.shutdown) })
}

// Flush synchronously saves the current snapshot to snapshotPath. It is
// called on both an explicit shutdown request and a SIGTERM, per spec §6.
func (s *Server) Flush() error {
	if s.snapshotPath == "" {
		return nil
	}
	return snapshot.Save(s.store.Snapshot(), s.snapshotPath)
}
