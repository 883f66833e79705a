package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitylens/equitylens/internal/contracts"
	"github.com/equitylens/equitylens/internal/snapshot"
	"github.com/equitylens/equitylens/pkg/logger"
)

type fakeService struct {
	payload contracts.ScorePayload
	series  []contracts.OpportunityPoint
	diag    contracts.BundleDiagnostic
	records []snapshot.Record
	err     error

	lastTicker      string
	lastOpportunity bool
}

func (f *fakeService) Score(ctx context.Context, ticker string, includeOpportunity bool) (contracts.ScorePayload, error) {
	f.lastTicker = ticker
	f.lastOpportunity = includeOpportunity
	return f.payload, f.err
}

func (f *fakeService) Opportunity(ctx context.Context, ticker string) ([]contracts.OpportunityPoint, error) {
	f.lastTicker = ticker
	return f.series, f.err
}

func (f *fakeService) Diagnostics(ctx context.Context, ticker string) (contracts.BundleDiagnostic, error) {
	f.lastTicker = ticker
	return f.diag, f.err
}

func (f *fakeService) History(ctx context.Context, ticker string, limit int) ([]snapshot.Record, error) {
	f.lastTicker = ticker
	return f.records, f.err
}

func (f *fakeService) Scores(ctx context.Context, limit int) ([]snapshot.Record, error) {
	return f.records, f.err
}

func testRouter(svc ScoringService) *mux.Router {
	h := NewScoreHandler(svc, logger.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/api/score/{ticker}", h.GetScore).Methods("GET")
	r.HandleFunc("/api/score/{ticker}/opportunity", h.GetOpportunity).Methods("GET")
	r.HandleFunc("/api/score/{ticker}/diag", h.GetDiagnostics).Methods("GET")
	r.HandleFunc("/api/score/{ticker}/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/api/scores", h.GetScores).Methods("GET")
	return r
}

func doRequest(t *testing.T, svc ScoringService, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, req)
	return rec
}

func TestGetScore(t *testing.T) {
	svc := &fakeService{payload: contracts.ScorePayload{
		Ticker:  "AAPL",
		Score:   72,
		Verdict: contracts.VerdictHealthy,
	}}

	rec := doRequest(t, svc, "/api/score/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", svc.lastTicker)
	assert.False(t, svc.lastOpportunity)

	var body struct {
		Success bool                   `json:"success"`
		Data    contracts.ScorePayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 72, body.Data.Score)
	assert.Equal(t, contracts.VerdictHealthy, body.Data.Verdict)
}

func TestGetScoreWithOpportunityFlag(t *testing.T) {
	svc := &fakeService{}
	rec := doRequest(t, svc, "/api/score/AAPL?opportunity=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.lastOpportunity)
}

func TestGetScoreServiceError(t *testing.T) {
	svc := &fakeService{err: errors.New("providers down")}
	rec := doRequest(t, svc, "/api/score/AAPL")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestGetOpportunity(t *testing.T) {
	svc := &fakeService{series: []contracts.OpportunityPoint{
		{Timestamp: 1, Close: 100, Opportunity: 40},
		{Timestamp: 2, Close: 98, Opportunity: 55},
	}}

	rec := doRequest(t, svc, "/api/score/MSFT/opportunity")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MSFT", svc.lastTicker)

	var body struct {
		Data []contracts.OpportunityPoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, 55, body.Data[1].Opportunity)
}

func TestGetDiagnostics(t *testing.T) {
	svc := &fakeService{diag: contracts.BundleDiagnostic{
		Ticker:      "AAPL",
		SourcesUsed: []string{"marketd:quote"},
	}}

	rec := doRequest(t, svc, "/api/score/AAPL/diag")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketd:quote")
}

func TestGetHistory(t *testing.T) {
	svc := &fakeService{records: []snapshot.Record{
		{Ticker: "AAPL", Payload: contracts.ScorePayload{Score: 70}},
	}}

	rec := doRequest(t, svc, "/api/score/AAPL/history?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"score\":70")
}

func TestGetScores(t *testing.T) {
	svc := &fakeService{records: []snapshot.Record{
		{Ticker: "AAPL"},
		{Ticker: "MSFT"},
	}}

	rec := doRequest(t, svc, "/api/scores")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL")
	assert.Contains(t, rec.Body.String(), "MSFT")
}

func TestGetScoresError(t *testing.T) {
	svc := &fakeService{err: errors.New("db down")}
	rec := doRequest(t, svc, "/api/scores")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
