package providers

import "github.com/tailored-agentic-units/flowkit/core/protocol"

// ChatData is the payload a provider marshals into a chat request body.
type ChatData struct {
	Model    string
	Messages []protocol.Message
	Options  map[string]any
}

// ToolsData is the payload a provider marshals into a tools request body.
// Tools carries the JSON-schema definitions advertised to the model.
type ToolsData struct {
	Model    string
	Messages []protocol.Message
	Tools    []protocol.Tool
	Options  map[string]any
}
