// Package a2a implements the A2A (agent-to-agent) transport: wrapping
// A2UI envelopes in A2A messages, agent-descriptor discovery, and task
// create/stream/message endpoints (spec §4.9).
//
// Grounded on other_examples/1f4c9a7b_kadirpekel-hector__pkg-a2a-protocol.go.go
// for the AgentCard/Task/Message/Part type vocabulary (trimmed to the
// fields this runtime's envelope-wrapping actually uses) and on
// other_examples/ff9b65b8_TheApeMachine-a2a-go__pkg-service-a2a_server.go.go
// for wiring a plain net/http server around it.
package a2a

// AgentCard is the descriptor returned by GET /.well-known/agent.json
// (spec §4.9 "Discovery").
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	URL                string            `json:"url"`
	Version            string            `json:"version,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string          `json:"defaultOutputModes,omitempty"`
}

// AgentCapabilities carries the set of A2A extensions an agent advertises.
type AgentCapabilities struct {
	Extensions []AgentExtension `json:"extensions,omitempty"`
	Streaming  bool             `json:"streaming"`
}

// AgentExtension identifies one protocol extension an agent supports; the
// A2UI runtime looks for ExtensionURIV0_8/V0_9 here (spec §4.9 "Client
// checks that the descriptor lists the matching a2ui extension URI for its
// version").
type AgentExtension struct {
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// TaskState is the closed set of A2A task lifecycle states.
type TaskState string

const (
	TaskSubmitted     TaskState = "submitted"
	TaskWorking       TaskState = "working"
	TaskInputRequired TaskState = "input_required"
	TaskCompleted     TaskState = "completed"
	TaskFailed        TaskState = "failed"
	TaskCanceled      TaskState = "canceled"
)

// Task is the minimal task record this transport tracks: enough to create,
// stream, and message a conversation without reimplementing the full A2A
// task/artifact model (out of scope: this runtime only needs the envelope
// conduit, not general-purpose A2A tooling).
type Task struct {
	ID     string    `json:"id"`
	State  TaskState `json:"state"`
	Parent string    `json:"parentTaskId,omitempty"`
}

// PartType discriminates a Message Part (spec §4.9 "parts:
// [{data: <envelope>, metadata: {...}}]").
type PartType string

const (
	PartText PartType = "text"
	PartData PartType = "data"
)

// Part is one piece of a Message. Exactly one of Text/Data is meaningful
// for a given Type.
type Part struct {
	Type     PartType               `json:"type"`
	Text     string                 `json:"text,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// MessageRole is who sent a Message.
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleAgent MessageRole = "agent"
)

// Message is the A2A envelope-carrying structure (spec §4.9).
type Message struct {
	Role  MessageRole `json:"role"`
	Parts []Part      `json:"parts"`
}
