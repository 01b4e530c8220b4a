package protocol

// Tool is the canonical definition of a function the model may call.
// Parameters describes the function's input as a JSON Schema object, the
// shape OpenAI-compatible providers expect verbatim.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
