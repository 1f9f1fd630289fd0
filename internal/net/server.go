package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

// Server is the HTTP side of the preview: /ws streams states, /board.json
// returns the latest one.
type Server struct {
	hub  *Hub
	http *http.Server
	ln   net.Listener
	mdns *mdns.Server
	log  *zap.Logger
}

// NewServer serves hub.
func NewServer(hub *Hub) *Server {
	s := &Server{hub: hub, log: zap.L().Named("viewer")}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler routes the preview endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/board.json", func(w http.ResponseWriter, r *http.Request) {
		latest := s.hub.Latest()
		if latest == nil {
			http.Error(w, "nothing published yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(latest)
	})
	return mux
}

// Listen binds the TCP port; 0 picks a free one. It returns the bound port.
func (s *Server) Listen(port int) (int, error) {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return 0, fmt.Errorf("viewer: listen on %d: %w", port, err)
	}
	s.ln = ln
	s.log.Info("viewer listening", zap.Int("port", s.Port()))
	return s.Port(), nil
}

// Port is the bound port, or 0 before Listen.
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Serve blocks until Shutdown.
func (s *Server) Serve() error {
	if s.ln == nil {
		return errors.New("viewer: Serve before Listen")
	}
	if err := s.http.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Advertise announces the bound port over mDNS.
func (s *Server) Advertise(instance string) error {
	srv, err := advertise(instance, s.Port())
	if err != nil {
		return err
	}
	s.mdns = srv
	return nil
}

// ShareLink is the websocket URL viewers on the LAN connect to.
func (s *Server) ShareLink() (string, error) {
	ip, err := OutgoingIP()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(ip, strconv.Itoa(s.Port()))), nil
}

// Shutdown stops advertising, disconnects viewers and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.mdns != nil {
		if err := s.mdns.Shutdown(); err != nil {
			s.log.Warn("mDNS shutdown failed", zap.Error(err))
		}
	}
	s.hub.Close()
	return s.http.Shutdown(ctx)
}
