package v1

// Role values recognized by the prompt builder. Messages carrying any other
// role are accepted on the wire but contribute nothing to the prompt.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered message history submitted by a caller.
// ModelName selects a registry entry; empty means the configured default.
type Conversation struct {
	Messages  []Message `json:"messages"`
	ModelName string    `json:"model_name,omitempty"`
}

// ChatResponse is the success body for the chat endpoint
type ChatResponse struct {
	Response string `json:"response"`
}

// UploadResponse echoes the uploaded file's name and byte length
type UploadResponse struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}

// ModelsResponse lists the registered model names
type ModelsResponse struct {
	Models []string `json:"models"`
}

// ErrorResponse carries the description of a failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
