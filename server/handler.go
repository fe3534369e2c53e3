// SPDX-License-Identifier: MIT

package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/linsolve/linsolve"
	"github.com/katalvlaran/linsolve/wire"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type ctxKey struct{}

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)

	return id
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /matrix/{method}", s.handleSolve)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{\"status\":\"ok\"}\n"))
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())
	method, err := linsolve.ParseMethod(r.PathValue("method"))
	if err != nil {
		s.reply(w, id, http.StatusNotFound, wire.FromError(err))
		return
	}

	req, err := wire.Decode(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reply(w, id, http.StatusRequestEntityTooLarge, wire.FromError(err))
			return
		}
		s.reply(w, id, http.StatusBadRequest, wire.FromError(err))
		return
	}
	req.Method = string(method)

	resp, ok := s.solve(r.Context(), req)
	if !ok {
		s.logger.Warn("solve timed out",
			zap.String("request_id", id),
			zap.String("method", string(method)),
			zap.Duration("timeout", s.cfg.RequestTimeout))
		s.reply(w, id, http.StatusServiceUnavailable, wire.Response{
			Status:  wire.StatusError,
			Kind:    linsolve.KindUnknown.String(),
			Message: "solve exceeded the request timeout",
		})
		return
	}
	s.reply(w, id, statusCode(resp), resp)
}

// solve runs the request on its own goroutine so that a slow system cannot
// hold the connection past the request timeout. ok is false on timeout or
// client disconnect; the solve itself runs to completion regardless.
func (s *Server) solve(ctx context.Context, req wire.Request) (wire.Response, bool) {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	opts := s.solverOptions()
	done := make(chan wire.Response, 1)
	go func() { done <- wire.Run(req, opts...) }()

	select {
	case resp := <-done:
		return resp, true
	case <-ctx.Done():
		return wire.Response{}, false
	}
}

func statusCode(resp wire.Response) int {
	if !resp.IsError() {
		return http.StatusOK
	}
	switch resp.Kind {
	case linsolve.KindSingularPivot.String(), linsolve.KindUnknown.String():
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) reply(w http.ResponseWriter, id string, code int, resp wire.Response) {
	resp.RequestID = id
	var buf bytes.Buffer
	if err := wire.Encode(&buf, resp); err != nil {
		s.logger.Error("encode response", zap.String("request_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("http_method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.code),
			zap.Duration("elapsed", time.Since(start)))
	})
}
