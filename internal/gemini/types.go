package gemini

// Roles used in conversation history.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Default MIME types for responses.
const (
	MIMEText = "text/plain"
	MIMEJSON = "application/json"
)

// Message is one role-tagged entry of a conversation history.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is a single generation call with optional system instruction and history.
type ChatRequest struct {
	SystemInstruction string
	History           []Message
	Message           string
	// ResponseMIMEType defaults to MIMEText.
	ResponseMIMEType string
}
