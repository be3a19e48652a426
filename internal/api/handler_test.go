package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/psyscore/psyscore/internal/export"
	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/instrument"
	"github.com/psyscore/psyscore/pkg/scoring"
)

func newTestServer(t *testing.T, sink export.Sink, opts ...scoring.Option) *httptest.Server {
	t.Helper()
	calc := scoring.NewCalculator(instrument.MustDefault(), opts...)
	mux := http.NewServeMux()
	NewHandler(calc, sink, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 15, body["instruments"])
}

func TestListInstruments(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/instruments")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Instruments []instrumentSummary `json:"instruments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Instruments, 15)
	assert.Equal(t, "Depression", body.Instruments[0].ID)
	assert.Equal(t, 0, body.Instruments[0].Offset)
}

func TestGetInstrument(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/instruments/PTSD")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var in instrument.Instrument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&in))
	assert.Equal(t, "Post-traumatic stress disorder (PTSD)", in.ID)
	assert.Len(t, in.Questions, 20)

	missing, err := http.Get(srv.URL + "/v1/instruments/Phobia")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/v1/layout")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Length int `json:"length"`
		Slots  []struct {
			Offset int `json:"offset"`
			Count  int `json:"count"`
		} `json:"slots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 201, body.Length)
	assert.Len(t, body.Slots, 15)
}

func TestScoreInstrument(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/instruments/PHQ-9/score", scoreRequest{
		Answers: []int{3, 3, 3, 3, 3, 3, 3, 3, 3},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res scoring.ScoreResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 27, res.Score)
	assert.Equal(t, "Severe", res.Severity)
}

func TestScoreErrors(t *testing.T) {
	srv := newTestServer(t, nil, scoring.WithLengthPolicy(scoring.LengthStrict))

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown instrument", "/v1/instruments/Phobia/score", `{"answers":[1]}`, http.StatusNotFound},
		{"strict shortfall", "/v1/instruments/Anxiety/score", `{"answers":[1,2]}`, http.StatusUnprocessableEntity},
		{"malformed body", "/v1/instruments/Anxiety/score", `{"answers":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tt.path, "application/json", bytes.NewBufferString(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAssessPublishes(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, export.NewLocalSink(dir))

	resp := postJSON(t, srv.URL+"/v1/assessments", assessment.Submission{
		ID:          "sub-1",
		Instruments: []string{"Anxiety", "Insomnia"},
		Answers:     []int{1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var report assessment.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "sub-1", report.SubmissionID)
	require.Len(t, report.Results, 2)
	assert.Equal(t, 7, report.Results[0].Score)
	assert.Equal(t, 14, report.Results[1].Score)
	assert.Equal(t, 1, report.Vector[69])
	assert.Equal(t, 2, report.Vector[76])

	_, err := os.Stat(filepath.Join(dir, "reports", report.ID+".json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "vectors", report.ID+".json"))
	assert.NoError(t, err)
}

func TestAssessDuplicateInstrument(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/assessments", assessment.Submission{
		Instruments: []string{"Anxiety", "anxiety"},
		Answers:     []int{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEncode(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/encode", encodeRequest{
		Instruments: []string{"Panic"},
		Answers:     []int{4, -1, 2},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body encodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Vector, 201)
	assert.Equal(t, []int{4, 0, 2, 0}, body.Vector[158:162])
}

func TestEncodeRejectsDuplicateInstrument(t *testing.T) {
	srv := newTestServer(t, nil)

	// Same input as a duplicate submission: both routes must refuse it.
	resp := postJSON(t, srv.URL+"/v1/encode", encodeRequest{
		Instruments: []string{"Anxiety", "anxiety"},
		Answers:     []int{1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/assessments", assessment.Submission{
		Instruments: []string{"Anxiety", "anxiety"},
		Answers:     []int{1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssessFlat(t *testing.T) {
	srv := newTestServer(t, nil)

	flat := make([]int, 201)
	for i := 69; i < 76; i++ {
		flat[i] = 3
	}
	resp := postJSON(t, srv.URL+"/v1/assessments/flat", scoreRequest{Answers: flat})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body flatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 15)
	for _, res := range body.Results {
		if res.Instrument == "Anxiety" {
			assert.Equal(t, 21, res.Score)
			return
		}
	}
	t.Fatal("missing Anxiety result")
}

func TestAssessFlatTooLong(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/assessments/flat", scoreRequest{Answers: make([]int, 202)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight reached the wrapped handler")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/assessments", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/healthz", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
