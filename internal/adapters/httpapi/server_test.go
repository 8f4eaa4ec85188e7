package httpapi

import (
	"bufio"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/store"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/app/engine"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/broadcast"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/registry"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/stage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubObs struct{}

func (stubObs) LogInfo(string, ...ports.Field)            {}
func (stubObs) LogError(string, error, ...ports.Field)    {}
func (stubObs) LogCritical(string, error, ...ports.Field) {}
func (stubObs) IncCounter(string, float64)                {}
func (stubObs) ObserveLatency(string, float64)            {}
func (stubObs) SetGauge(string, float64)                  {}
func (stubObs) RecordDeadSubscriber(string, error)        {}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	fs, err := store.NewFileStore(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	reg := registry.New("node0", []string{"node0", "node1", "node2", "node3", "node4"})
	st := stage.New(reg, rand.New(rand.NewSource(7)))

	var eng *engine.Engine
	hub := broadcast.New(time.Minute, func() domain.Event { return eng.SnapshotEvent() }, stubObs{})
	eng = engine.New(engine.Deps{
		Registry:    reg,
		Stage:       st,
		Hub:         hub,
		Store:       fs,
		Predictions: fs,
		Obs:         stubObs{},
	})
	return NewServer(eng, hub, stubObs{})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestIngestHardwareEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/ingest/hardware",
		`{"node_id":"node0","temperature":30.5,"rainfall_mm":2.0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodPost, "/ingest/hardware", `{"node_id":"node3"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("simulated node ingest must 400, got %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/hardware_output", "")
	if w.Code != http.StatusOK {
		t.Fatalf("hardware_output status = %d", w.Code)
	}
	var nodes map[string]domain.Node
	if err := json.Unmarshal(w.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n := nodes["node0"]; n.Temperature == nil || *n.Temperature != 30.5 {
		t.Fatalf("node0 not updated: %+v", nodes["node0"])
	}
}

func TestDeployEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/deploy", `{"what":"aerostat","action":"deploy"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodGet, "/api/stage_state", "")
	var state struct {
		Deploy map[string]string `json:"deploy"`
		Stages map[string]int    `json:"stages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Deploy["aerostat"] != "active" {
		t.Fatalf("aerostat not active: %+v", state.Deploy)
	}
	if state.Stages["node1"] != 2 {
		t.Fatalf("node1 stage = %d", state.Stages["node1"])
	}

	w = do(t, srv, http.MethodPost, "/api/deploy", `{"what":"zeppelin","action":"deploy"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown asset must 400, got %d", w.Code)
	}
	w = do(t, srv, http.MethodPost, "/api/deploy", `{"what":"drone"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing action must 400, got %d", w.Code)
	}
}

func TestManualStageEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/manual_stage", `{"nodes":["node2"],"stage":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodGet, "/api/manual_stage", "")
	var overrides map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &overrides); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if overrides["node2"] != 3 {
		t.Fatalf("override not recorded: %+v", overrides)
	}

	w = do(t, srv, http.MethodPost, "/api/manual_stage", `{"nodes":["node0"],"stage":2}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("real node must 400, got %d", w.Code)
	}
	w = do(t, srv, http.MethodPost, "/api/manual_stage", `{"nodes":["node2"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing stage must 400, got %d", w.Code)
	}
}

func TestIngestPredictionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Array form.
	w := do(t, srv, http.MethodPost, "/ingest/prediction",
		`[{"node_id":"node0","risk_score":40,"stage_used":1},{"node_id":"node1","risk_score":90,"stage_used":2}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Alerts int `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Alerts != 1 {
		t.Fatalf("alerts = %d", resp.Alerts)
	}

	// Single-object form.
	w = do(t, srv, http.MethodPost, "/ingest/prediction",
		`{"node_id":"node2","risk_score":10,"stage_used":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("single object status = %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/predictions", "")
	var history [][]domain.Prediction
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history blocks = %d", len(history))
	}

	w = do(t, srv, http.MethodGet, "/api/predictions?limit=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit must 400, got %d", w.Code)
	}
}

func TestLiveLatestEndpoint(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`[{"node_id":"node1","risk_score":30,"stage_used":1},{"node_id":"node2","risk_score":55,"stage_used":2}]`,
		`[{"node_id":"node1","risk_score":62,"stage_used":2}]`,
	} {
		if w := do(t, srv, http.MethodPost, "/ingest/prediction", body); w.Code != http.StatusOK {
			t.Fatalf("ingest status = %d", w.Code)
		}
	}

	w := do(t, srv, http.MethodGet, "/api/live_latest", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var latest map[string]domain.Prediction
	if err := json.Unmarshal(w.Body.Bytes(), &latest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("latest entries = %d, want 2", len(latest))
	}
	if latest["node1"].RiskScore != 62 {
		t.Fatalf("node1 not superseded by newer block: %+v", latest["node1"])
	}
	if latest["node2"].RiskScore != 55 {
		t.Fatalf("node2 lost from older block: %+v", latest["node2"])
	}
}

func TestStatusAndHealth(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/status", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "node0") {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodGet, "/_health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/debug", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "real_node") {
		t.Fatalf("debug = %d body = %s", w.Code, w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodOptions, "/api/deploy", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestUpdatesStreamColdStart(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/updates")
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	var eventLine, dataLine string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "event: ") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = line
			break
		}
	}
	if eventLine != "event: message" {
		t.Fatalf("event line = %q", eventLine)
	}

	var ev domain.Event
	if err := json.Unmarshal([]byte(strings.TrimPrefix(dataLine, "data: ")), &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != domain.EventStageState {
		t.Fatalf("cold-start event type = %q", ev.Type)
	}
}
