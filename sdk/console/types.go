package console

import "time"

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ChatRequest is the request body for the /chat streaming endpoint.
type ChatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

// Conversation is a stored chat thread.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Agent describes a configured backend agent.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
	Status      string `json:"status,omitempty"`
}

// AgentRunRequest is the request body for the /agents/{id}/run streaming
// endpoint.
type AgentRunRequest struct {
	Input      string         `json:"input"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// CollaborationRequest is the request body for the /collaboration/run
// streaming endpoint, which drives a multi-agent plan.
type CollaborationRequest struct {
	Task          string   `json:"task"`
	Agents        []string `json:"agents,omitempty"`
	MaxIterations int      `json:"max_iterations,omitempty"`
}

// Prompt is an entry in the prompt library.
type Prompt struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Workflow describes a runnable backend workflow.
type Workflow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Steps       []string `json:"steps,omitempty"`
}

// WorkflowRunRequest is the request body for a one-shot workflow execution.
type WorkflowRunRequest struct {
	Inputs map[string]any `json:"inputs,omitempty"`
}

// WorkflowRunResult is the outcome of a one-shot workflow execution.
type WorkflowRunResult struct {
	RunID     string         `json:"run_id"`
	Status    string         `json:"status"`
	Outputs   map[string]any `json:"outputs,omitempty"`
	ElapsedMs int64          `json:"elapsed_ms,omitempty"`
}

// TicketAnalysisRequest is the request body for support ticket analysis.
type TicketAnalysisRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TicketAnalysis is the server-computed analysis of one ticket. The client
// only displays these values.
type TicketAnalysis struct {
	Sentiment string `json:"sentiment"`
	Priority  string `json:"priority"`
	Category  string `json:"category"`
	Summary   string `json:"summary,omitempty"`
}

// DocumentIngestRequest is the request body for document ingestion.
type DocumentIngestRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	// Content is the base64-encoded document body.
	Content string `json:"content"`
}

// DocumentIngestResult reports the outcome of an ingestion request.
type DocumentIngestResult struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Pages      int    `json:"pages,omitempty"`
}
