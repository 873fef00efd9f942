// Package console provides a Go SDK for the AI platform console backend.
//
// One-shot endpoints (agents, prompts, workflows, tickets, documents) are
// ordinary request/response calls. Streaming endpoints (chat, agent runs,
// multi-agent collaboration) return a stream.Handle whose Transcript the
// caller renders as events arrive.
//
// Example usage:
//
//	client := console.NewClient("http://localhost:8000")
//
//	handle := client.StreamChat(ctx, &console.ChatRequest{
//	    Message: "Summarize yesterday's tickets",
//	}, nil)
//	<-handle.Done()
//	fmt.Println(handle.Transcript().CurrentText())
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/williamcory/console/sdk/console/stream"
)

// Client is the SDK client for the console backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	streamer   *stream.Streamer
	logger     *Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for one-shot requests. Streaming
// requests always use an untimed client so a long generation is not cut off.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the one-shot HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithLogger sets the SDK logger. Logging is off by default.
func WithLogger(l *Logger) ClientOption {
	return func(client *Client) {
		client.logger = l
	}
}

// NewClient creates a new SDK client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamer: stream.NewStreamer(),
		logger:   &Logger{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Helper to create string pointers
func String(s string) *string {
	return &s
}

// doRequest performs an HTTP request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	rl := c.logger.StartRequest(method, path)

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rl.Error(err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
		rl.Error(err)
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			rl.Error(err)
			return fmt.Errorf("decode response: %w", err)
		}
	}

	rl.Success(resp.StatusCode)
	return nil
}

// =============================================================================
// Health
// =============================================================================

// Health checks the backend health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// Streaming
// =============================================================================

// StreamChat sends a chat message and streams the response. The returned
// handle is live immediately; notify, when non-nil, is called for every
// event appended to the transcript.
func (c *Client) StreamChat(ctx context.Context, req *ChatRequest, notify func(stream.Event)) *stream.Handle {
	return c.streamer.Start(ctx, stream.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/chat",
		Body:   req,
		Notify: notify,
	})
}

// RunAgent executes a single agent and streams its progress.
func (c *Client) RunAgent(ctx context.Context, agentID string, req *AgentRunRequest, notify func(stream.Event)) *stream.Handle {
	return c.streamer.Start(ctx, stream.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/agents/" + agentID + "/run",
		Body:   req,
		Notify: notify,
	})
}

// RunCollaboration executes a multi-agent plan and streams the combined
// event timeline (agent steps, tool calls, tokens).
func (c *Client) RunCollaboration(ctx context.Context, req *CollaborationRequest, notify func(stream.Event)) *stream.Handle {
	return c.streamer.Start(ctx, stream.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/collaboration/run",
		Body:   req,
		Notify: notify,
	})
}

// =============================================================================
// Agents
// =============================================================================

// ListAgents returns all configured agents.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var result []Agent
	if err := c.doRequest(ctx, http.MethodGet, "/agents", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAgent retrieves an agent by ID.
func (c *Client) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	var result Agent
	if err := c.doRequest(ctx, http.MethodGet, "/agents/"+agentID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// Conversations
// =============================================================================

// ListConversations returns stored chat threads.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var result []Conversation
	if err := c.doRequest(ctx, http.MethodGet, "/conversations", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// Prompt library
// =============================================================================

// ListPrompts returns the prompt library.
func (c *Client) ListPrompts(ctx context.Context) ([]Prompt, error) {
	var result []Prompt
	if err := c.doRequest(ctx, http.MethodGet, "/prompts", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SavePrompt creates or updates a prompt library entry.
func (c *Client) SavePrompt(ctx context.Context, p *Prompt) (*Prompt, error) {
	var result Prompt
	if err := c.doRequest(ctx, http.MethodPost, "/prompts", p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// Workflows
// =============================================================================

// ListWorkflows returns the runnable workflows.
func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var result []Workflow
	if err := c.doRequest(ctx, http.MethodGet, "/workflows", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RunWorkflow executes a workflow synchronously and returns its result.
func (c *Client) RunWorkflow(ctx context.Context, workflowID string, req *WorkflowRunRequest) (*WorkflowRunResult, error) {
	if req == nil {
		req = &WorkflowRunRequest{}
	}
	var result WorkflowRunResult
	if err := c.doRequest(ctx, http.MethodPost, "/workflows/"+workflowID+"/run", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// Tickets and documents
// =============================================================================

// AnalyzeTicket submits a support ticket for server-side analysis.
func (c *Client) AnalyzeTicket(ctx context.Context, req *TicketAnalysisRequest) (*TicketAnalysis, error) {
	var result TicketAnalysis
	if err := c.doRequest(ctx, http.MethodPost, "/tickets/analyze", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IngestDocument uploads a document for ingestion.
func (c *Client) IngestDocument(ctx context.Context, req *DocumentIngestRequest) (*DocumentIngestResult, error) {
	var result DocumentIngestResult
	if err := c.doRequest(ctx, http.MethodPost, "/documents", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
