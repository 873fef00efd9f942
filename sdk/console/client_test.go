package console_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamcory/console/sdk/console"
	"github.com/williamcory/console/sdk/console/stream"
)

// testServer is a mock console backend for client tests.
type testServer struct {
	server *httptest.Server
}

func newTestServer() *testServer {
	ts := &testServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", ts.handleHealth)
	mux.HandleFunc("/agents", ts.handleAgents)
	mux.HandleFunc("/agents/", ts.handleAgent)
	mux.HandleFunc("/prompts", ts.handlePrompts)
	mux.HandleFunc("/workflows/", ts.handleWorkflowRun)
	mux.HandleFunc("/tickets/analyze", ts.handleTicketAnalyze)
	mux.HandleFunc("/documents", ts.handleDocuments)
	mux.HandleFunc("/chat", ts.handleChat)

	ts.server = httptest.NewServer(mux)
	return ts
}

func (ts *testServer) Close()      { ts.server.Close() }
func (ts *testServer) URL() string { return ts.server.URL }

func (ts *testServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(console.HealthResponse{Status: "ok", Version: "1.2.3"})
}

func (ts *testServer) handleAgents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode([]console.Agent{
		{ID: "agt_1", Name: "Researcher", Model: "sonnet"},
		{ID: "agt_2", Name: "Writer", Model: "haiku"},
	})
}

func (ts *testServer) handleAgent(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/agents/agt_1" {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(console.Agent{ID: "agt_1", Name: "Researcher"})
}

func (ts *testServer) handlePrompts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]console.Prompt{{ID: "p_1", Title: "Summarize"}})
	case http.MethodPost:
		var p console.Prompt
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.ID = "p_2"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (ts *testServer) handleWorkflowRun(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/workflows/wf_1/run" || r.Method != http.MethodPost {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(console.WorkflowRunResult{
		RunID: "run_1", Status: "succeeded", ElapsedMs: 120,
	})
}

func (ts *testServer) handleTicketAnalyze(w http.ResponseWriter, r *http.Request) {
	var req console.TicketAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(console.TicketAnalysis{
		Sentiment: "negative", Priority: "high", Category: "billing",
	})
}

func (ts *testServer) handleDocuments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(console.DocumentIngestResult{
		DocumentID: "doc_1", Status: "ingested", Pages: 3,
	})
}

func (ts *testServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req console.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	flusher := w.(http.Flusher)
	for _, frame := range []string{
		"data: {\"type\":\"token\",\"data\":\"Hel\"}\n",
		"data: {\"type\":\"token\",\"data\":\"lo\"}\n",
		"data: {\"type\":\"done\",\"tools_used\":[],\"latency_ms\":42}\n",
	} {
		fmt.Fprint(w, frame)
		flusher.Flush()
	}
}

func TestClientHealth(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL(), console.WithTimeout(5*time.Second))
	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
}

func TestClientListAgents(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL())
	agents, err := client.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "Researcher", agents[0].Name)
}

func TestClientGetAgentNotFound(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL())
	_, err := client.GetAgent(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClientPrompts(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL())
	prompts, err := client.ListPrompts(context.Background())
	require.NoError(t, err)
	require.Len(t, prompts, 1)

	saved, err := client.SavePrompt(context.Background(), &console.Prompt{Title: "KYC check", Body: "…"})
	require.NoError(t, err)
	assert.Equal(t, "p_2", saved.ID)
}

func TestClientRunWorkflow(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL())
	result, err := client.RunWorkflow(context.Background(), "wf_1", nil)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", result.Status)
	assert.Equal(t, int64(120), result.ElapsedMs)
}

func TestClientAnalyzeTicket(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL())
	analysis, err := client.AnalyzeTicket(context.Background(), &console.TicketAnalysisRequest{
		Subject: "Charged twice",
		Body:    "My card was billed two times this month.",
	})
	require.NoError(t, err)
	assert.Equal(t, "negative", analysis.Sentiment)
	assert.Equal(t, "high", analysis.Priority)
}

func TestClientIngestDocument(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL())
	result, err := client.IngestDocument(context.Background(), &console.DocumentIngestRequest{
		Filename: "report.pdf", ContentType: "application/pdf", Content: "aGVsbG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc_1", result.DocumentID)
	assert.Equal(t, 3, result.Pages)
}

func TestClientStreamChat(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	client := console.NewClient(ts.URL())
	handle := client.StreamChat(context.Background(), &console.ChatRequest{Message: "hi"}, nil)

	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not finish")
	}

	assert.Equal(t, stream.StatusCompleted, handle.Status())
	assert.Equal(t, "Hello", handle.Transcript().CurrentText())
	require.IsType(t, stream.Completion{}, handle.Transcript().TerminalEvent())
}
