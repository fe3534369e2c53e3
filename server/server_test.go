// SPDX-License-Identifier: MIT

package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/linsolve/config"
	"github.com/katalvlaran/linsolve/server"
	"github.com/katalvlaran/linsolve/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, cfg *config.Config) (*server.Server, *httptest.Server, *observer.ObservedLogs) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	core, logs := observer.New(zapcore.InfoLevel)
	s := server.New(cfg, zap.New(core))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return s, ts, logs
}

func post(t *testing.T, ts *httptest.Server, method, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/matrix/"+method, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp, out
}

func TestSolveRoutes(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	body := `{"matrix_a": [[2, 1], [1, 3]], "matrix_b": [3, 5]}`
	want := map[string]any{"status": "unique_solution", "solution": []any{[]any{0.8}, []any{1.4}}}

	for _, route := range []string{"gauss-elimination", "gauss-jordan", "lu-decomposition", "cholesky"} {
		resp, got := post(t, ts, route, body)
		require.Equal(t, http.StatusOK, resp.StatusCode, route)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.Equal(t, route, got["method"])
		sub := map[string]any{"status": got["status"], "solution": got["solution"]}
		if diff := cmp.Diff(want, sub, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", route, diff)
		}
	}
}

func TestPathMethodOverridesBody(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	_, got := post(t, ts, "gauss-jordan",
		`{"matrix_a": [[1]], "matrix_b": [[1]], "method": "cholesky"}`)
	require.Equal(t, "gauss-jordan", got["method"])
}

func TestClassificationsAreOK(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	resp, got := post(t, ts, "gauss-elimination", `{"matrix_a": [[1, 1], [1, 1]], "matrix_b": [[1], [2]]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no_solution", got["status"])
	require.EqualValues(t, 2, got["augmented_rank"])

	resp, got = post(t, ts, "gauss-elimination", `{"matrix_a": [[1, 2], [2, 4]], "matrix_b": [[3], [6]]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "infinite_solutions", got["status"])
	require.Equal(t, []any{1.0}, got["free_columns"])
}

func TestErrorStatusCodes(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 256
	_, ts, _ := newTestServer(t, cfg)

	cases := []struct {
		name, route, body string
		code              int
		kind              string
	}{
		{"missing matrix", "gauss-elimination", `{"matrix_a": [[1]]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed", "gauss-elimination", `{"matrix_a": `, http.StatusBadRequest, "INVALID_INPUT"},
		{"too large", "gauss-elimination", `{"matrix_a": [[` + strings.Repeat("1,", 300) + `1]], "matrix_b": [1]}`, http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
		{"unknown route", "qr", `{}`, http.StatusNotFound, "INVALID_INPUT"},
		{"shape", "gauss-elimination", `{"matrix_a": [[1, 2]], "matrix_b": [1, 2]}`, http.StatusUnprocessableEntity, "SHAPE_MISMATCH"},
		{"not square", "lu-decomposition", `{"matrix_a": [[1, 2]], "matrix_b": [1]}`, http.StatusUnprocessableEntity, "NOT_SQUARE"},
		{"not pd", "cholesky", `{"matrix_a": [[1, 2], [2, 1]], "matrix_b": [1, 1]}`, http.StatusUnprocessableEntity, "NOT_POSITIVE_DEFINITE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, got := post(t, ts, tc.route, tc.body)
			require.Equal(t, tc.code, resp.StatusCode)
			require.Equal(t, wire.StatusError, got["status"])
			require.Equal(t, tc.kind, got["kind"])
			require.NotEmpty(t, got["message"])
		})
	}
}

func TestRequestID(t *testing.T) {
	_, ts, logs := newTestServer(t, nil)

	resp, got := post(t, ts, "gauss-elimination", `{"matrix_a": [[1]], "matrix_b": [[1]]}`)
	id := resp.Header.Get(server.HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, id, got["request_id"])

	entries := logs.FilterMessage("request").FilterField(zap.String("request_id", id)).All()
	require.Len(t, entries, 1)
	require.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])

	keep := uuid.NewString()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/matrix/gauss-jordan", strings.NewReader(`{"matrix_a": [[1]], "matrix_b": [[1]]}`))
	require.NoError(t, err)
	req.Header.Set(server.HeaderRequestID, keep)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, keep, resp.Header.Get(server.HeaderRequestID))
}

func TestApplySwapsSolverDefaults(t *testing.T) {
	s, ts, _ := newTestServer(t, nil)
	body := `{"matrix_a": [[1, 1], [1, 1.0000000001]], "matrix_b": [2, 2]}`

	_, got := post(t, ts, "gauss-elimination", body)
	require.Equal(t, "unique_solution", got["status"])

	loose := config.Default()
	loose.Solver.ZeroTolerance = 1e-8
	s.Apply(loose)
	_, got = post(t, ts, "gauss-elimination", body)
	require.Equal(t, "infinite_solutions", got["status"])

	// A request tolerance still wins over the defaults.
	_, got = post(t, ts, "gauss-elimination", `{"matrix_a": [[1, 1], [1, 1.0000000001]], "matrix_b": [2, 2], "zero_tolerance": 1e-15}`)
	require.Equal(t, "unique_solution", got["status"])
}

func TestHealthz(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/matrix/cholesky")
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxConnections = 2
	s := server.New(cfg, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Post("http://"+ln.Addr().String()+"/matrix/cholesky", "application/json",
		strings.NewReader(`{"matrix_a": [[4]], "matrix_b": [[8]]}`))
	require.NoError(t, err)
	var out wire.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.Equal(t, [][]float64{{2}}, out.Solution)

	cancel()
	require.NoError(t, <-errc)
	client.CloseIdleConnections()
}

func TestListenAndServe_BadAddr(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "256.0.0.1:bad"
	require.Error(t, server.New(cfg, nil).ListenAndServe(context.Background()))
}
