package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/williamcory/console/internal/components/chat"
	"github.com/williamcory/console/internal/components/input"
	"github.com/williamcory/console/sdk/console"
	"github.com/williamcory/console/sdk/console/stream"
)

// State represents the application state
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateError
)

// SharedState holds state that needs to be shared between model copies
type SharedState struct {
	mu      sync.Mutex
	program *tea.Program
}

// SetProgram sets the program reference
func (s *SharedState) SetProgram(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
}

// GetProgram gets the program reference
func (s *SharedState) GetProgram() *tea.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// Model is the main application model
type Model struct {
	chat     chat.Model
	input    input.Model
	client   *console.Client
	shared   *SharedState
	state    State
	handle   *stream.Handle
	progress string
	stats    string
	width    int
	height   int
	err      error
	ready    bool
}

// New creates a new application model
func New(client *console.Client) Model {
	return Model{
		chat:   chat.New(80, 20),
		input:  input.New(80),
		client: client,
		shared: &SharedState{},
		state:  StateIdle,
	}
}

// SetProgram sets the tea.Program reference for stream notifications
func (m *Model) SetProgram(p *tea.Program) {
	m.shared.SetProgram(p)
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		m.chat.Init(),
	)
}
