// Package mock serves a stand-in console backend speaking the platform's
// SSE wire protocol, for local development and protocol-level testing.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Server struct {
	port int
}

func NewServer(port int) *Server {
	return &Server{port: port}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("Mock backend starting on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the mock backend's routes. Exposed separately so tests can
// mount it on an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/chat", s.chatHandler)
	mux.HandleFunc("/agents", s.agentsHandler)
	mux.HandleFunc("/agents/", s.agentRunHandler)
	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": "mock",
	})
}

func (s *Server) agentsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode([]map[string]any{
		{"id": "researcher", "name": "Researcher", "model": "sonnet", "status": "ready"},
		{"id": "writer", "name": "Writer", "model": "haiku", "status": "ready"},
	})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Message        string  `json:"message"`
		ConversationID *string `json:"conversation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, ok := newStreamWriter(w)
	if !ok {
		return
	}
	s.generateChatResponse(st, req.Message)
}

// agentRunHandler serves POST /agents/{id}/run with a multi-step timeline.
func (s *Server) agentRunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/run") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	role := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/agents/"), "/run")

	st, ok := newStreamWriter(w)
	if !ok {
		return
	}

	start := time.Now()
	total := 3
	for i := 1; i <= total; i++ {
		st.sendEvent("agent_step", map[string]any{
			"role":             role,
			"iteration":        i,
			"total_iterations": total,
		})
		st.sendEvent("thinking", map[string]any{"iteration": i})
		time.Sleep(150 * time.Millisecond)
	}

	s.simulateSearch(st)
	st.streamTokens("The " + role + " agent finished its plan. All three iterations converged on a single recommendation.")

	st.sendEvent("done", map[string]any{
		"tools_used": []string{"search"},
		"latency_ms": time.Since(start).Milliseconds(),
	})
	st.sendDoneSentinel()
}

func (s *Server) generateChatResponse(st *streamWriter, userMessage string) {
	start := time.Now()
	lowerMsg := strings.ToLower(userMessage)

	// Realistic transport artifacts the consumer has to tolerate.
	st.sendKeepAlive()
	st.sendHeartbeat()

	var toolsUsed []string
	switch {
	case strings.Contains(lowerMsg, "ticket"):
		s.simulateTicketLookup(st)
		toolsUsed = append(toolsUsed, "ticket_lookup")
	case strings.Contains(lowerMsg, "document") || strings.Contains(lowerMsg, "file"):
		s.simulateDocumentFetch(st)
		toolsUsed = append(toolsUsed, "document_fetch")
	case strings.Contains(lowerMsg, "search") || strings.Contains(lowerMsg, "find"):
		s.simulateSearch(st)
		toolsUsed = append(toolsUsed, "search")
	}

	st.streamTokens(s.getMockResponse(userMessage))

	st.sendEvent("done", map[string]any{
		"tools_used": toolsUsed,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	st.sendDoneSentinel()
}

func (s *Server) simulateTicketLookup(st *streamWriter) {
	st.sendEvent("tool_call", map[string]any{
		"tool":      "ticket_lookup",
		"arguments": map[string]any{"ticket_id": "TCK-4821"},
	})
	time.Sleep(300 * time.Millisecond)

	st.sendEvent("tool_result", map[string]any{
		"tool":    "ticket_lookup",
		"result":  map[string]any{"sentiment": "negative", "priority": "high", "category": "billing"},
		"success": true,
	})
}

func (s *Server) simulateDocumentFetch(st *streamWriter) {
	st.sendEvent("tool_call", map[string]any{
		"tool":      "document_fetch",
		"arguments": map[string]any{"document_id": "doc_981"},
	})
	time.Sleep(400 * time.Millisecond)

	st.sendEvent("tool_result", map[string]any{
		"tool":    "document_fetch",
		"result":  map[string]any{"filename": "q3-report.pdf", "pages": 14, "status": "ingested"},
		"success": true,
	})
}

func (s *Server) simulateSearch(st *streamWriter) {
	st.sendEvent("tool_call", map[string]any{
		"tool":      "search",
		"arguments": map[string]any{"query": "renewal terms", "limit": 5},
	})
	time.Sleep(350 * time.Millisecond)

	st.sendEvent("tool_result", map[string]any{
		"tool":    "search",
		"result":  []string{"contract.md#renewal", "pricing.md#terms"},
		"success": true,
	})
}

func (s *Server) getMockResponse(userMessage string) string {
	lowerMsg := strings.ToLower(userMessage)

	if strings.Contains(lowerMsg, "hello") || strings.Contains(lowerMsg, "hi") {
		return "Hello! I'm the platform assistant. I can look up tickets, fetch ingested documents, search the knowledge base, and run agents or workflows on your behalf. What would you like to do?"
	}

	if strings.Contains(lowerMsg, "ticket") {
		return "I pulled up the ticket. It's a **high priority billing** issue with negative sentiment — the customer reports a duplicate charge. I'd suggest routing it to the billing queue and issuing a refund pre-approval."
	}

	if strings.Contains(lowerMsg, "document") || strings.Contains(lowerMsg, "file") {
		return "The document `q3-report.pdf` is ingested (14 pages). Key points:\n\n- Revenue up 12% quarter over quarter\n- Churn flat at 2.1%\n- Two open compliance findings\n\nWant a deeper summary of any section?"
	}

	if strings.Contains(lowerMsg, "search") || strings.Contains(lowerMsg, "find") {
		return "I found two relevant passages: `contract.md#renewal` and `pricing.md#terms`. The renewal clause auto-extends for 12 months unless notice is given 60 days ahead."
	}

	return "I understand your request. I can:\n- **Analyze tickets** — sentiment, priority, routing\n- **Fetch documents** — anything already ingested\n- **Search** the knowledge base\n- **Run agents** — single or multi-agent plans\n\nWhat should I start with?"
}
