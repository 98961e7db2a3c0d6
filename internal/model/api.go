package model

// MessageRequest is a user utterance posted to a conversation
type MessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// ConversationResponse is returned when a conversation is opened
type ConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

// AssistantReply is the facade's answer to one utterance
type AssistantReply struct {
	ConversationID string            `json:"conversation_id"`
	SearchID       string            `json:"search_id,omitempty"`
	Action         ActionType        `json:"action"`
	Message        string            `json:"message"`
	Question       *Question         `json:"question,omitempty"`
	Confidence     float64           `json:"confidence"`
	Filter         *SearchFilter     `json:"filter,omitempty"`
	Cars           []CarSearchResult `json:"cars,omitempty"`
	Took           int64             `json:"took_ms"`
}

// FilterResponse describes the filter currently held by a conversation
type FilterResponse struct {
	ConversationID string        `json:"conversation_id"`
	Text           string        `json:"text"`
	Filter         *SearchFilter `json:"filter"`
	Query          *BoolQuery    `json:"query,omitempty"`
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem is an externally computed embedding for one car
type EmbeddingItem struct {
	CarID     string    `json:"car_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// FeedbackRequest records what the user did with a shown car
type FeedbackRequest struct {
	SearchID string `json:"search_id" binding:"required"`
	CarID    string `json:"car_id" binding:"required"`
	Action   string `json:"action" binding:"required"` // click, like, dislike, open_link
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchLog is one result set shown to a user
type SearchLog struct {
	SearchID       string
	ConversationID string
	Query          string
	Filter         SearchFilter
	ResultIDs      []string
	ResponseTimeMs int
}
