package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/store"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type historyResponse struct {
	History []store.Entry `json:"history"`
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, historyResponse{History: []store.Entry{}})
		return
	}

	limit := store.DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		ctxlog.From(r.Context()).Error("failed to list research history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list research history")
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}

	writeJSON(w, http.StatusOK, historyResponse{History: entries})
}

type researchRequest struct {
	Topic string `json:"topic"`
}

// sseWriter writes events as server-sent events, one JSON object per frame.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	metrics *metrics
}

func (x *sseWriter) write(ctx context.Context, ev autoresearch.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal event", goerr.V("event", ev))
	}
	if _, err := fmt.Fprintf(x.w, "data: %s\n\n", data); err != nil {
		return goerr.Wrap(err, "failed to write event", goerr.V("kind", ev.Kind))
	}
	if x.flusher != nil {
		x.flusher.Flush()
	}
	x.metrics.eventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	return nil
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	if s.researcher == nil {
		writeError(w, http.StatusServiceUnavailable, "research agent is not configured")
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	sse := &sseWriter{w: w, flusher: flusher, metrics: s.metrics}
	ctx := r.Context()
	logger := ctxlog.From(ctx).With(slog.String("topic", topic))

	s.metrics.activeStreams.Inc()
	defer s.metrics.activeStreams.Dec()
	started := time.Now()

	outcome, err := s.researcher.Run(ctx, topic, sse.write)
	s.metrics.runDuration.Observe(time.Since(started).Seconds())

	switch {
	case err == nil:
		status := "completed"
		if outcome == nil || outcome.State.FinalReport == "" {
			status = "no_report"
		}
		s.metrics.runsTotal.WithLabelValues(status).Inc()

	case autoresearch.IsDisconnected(err):
		logger.Info("client disconnected during research", slog.Any("error", err))
		s.metrics.runsTotal.WithLabelValues("disconnected").Inc()

	default:
		logger.Error("research run failed", slog.Any("error", err))
		s.metrics.runsTotal.WithLabelValues("failed").Inc()

		// The stream has already started, so the failure is reported in-band.
		for _, ev := range []autoresearch.Event{
			{Kind: autoresearch.EventError, Content: autoresearch.UnexpectedErrorMessage},
			{Kind: autoresearch.EventDone},
		} {
			if err := sse.write(ctx, ev); err != nil {
				logger.Info("failed to report error to client", slog.Any("error", err))
				return
			}
		}
	}
}
