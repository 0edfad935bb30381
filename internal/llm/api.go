package llm

// apiRequest is the Messages API request envelope.
type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
}

// apiMessage is a single conversation turn.
type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiContentBlock is one block of the response content.
type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// apiResponse is the Messages API response envelope.
type apiResponse struct {
	ID      string            `json:"id"`
	Content []apiContentBlock `json:"content"`
	Model   string            `json:"model"`
}

// apiErrorResponse is the Messages API error envelope.
type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
