// Package web exposes the advisory dashboard: a JSON status endpoint,
// an SSE stream replaying evaluated cycles and a small HTML UI.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
)

const cyclePollInterval = 2 * time.Second

type cycleReader interface {
	RecordsAfter(index uint64) ([]domain.CycleRecord, error)
}

type latestProvider interface {
	Latest() (domain.CycleOutput, bool)
}

// Server exposes HTTP endpoints serving the HTML UI, a status snapshot
// and an SSE stream of cycle outputs.
type Server struct {
	Addr   string
	Store  cycleReader
	Latest latestProvider
	Logger *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, store cycleReader, latest latestProvider, logger *zap.Logger) *Server {
	return &Server{Addr: addr, Store: store, Latest: latest, Logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/cycles/stream", s.handleCycleStream)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.Latest == nil {
		http.Error(w, "status not available", http.StatusServiceUnavailable)
		return
	}

	out, ok := s.Latest.Latest()
	if !ok {
		http.Error(w, "no cycle evaluated yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.Logger.Warn("encode status", zap.Error(err))
	}
}

func (s *Server) handleCycleStream(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "cycle store not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat every 30s so proxies keep the connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(cyclePollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendCycles := func() error {
		records, err := s.Store.RecordsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Output)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: cycle\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendCycles(); err != nil {
		http.Error(w, "failed to load cycles", http.StatusInternalServerError)
		s.Logger.Warn("cycle stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendCycles(); err != nil {
				s.Logger.Warn("cycle stream poll", zap.Error(err))
			}
		}
	}
}
