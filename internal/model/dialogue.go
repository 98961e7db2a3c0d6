package model

// ChatMessage is one turn sent to the completion service
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ActionType is what the assistant decided to do with a turn
type ActionType string

const (
	ActionAskQuestion ActionType = "ask_question"
	ActionShowCars    ActionType = "show_cars"
	ActionClarify     ActionType = "clarify"
)

// QuestionType categorizes a clarifying question
type QuestionType string

const (
	QuestionBudget      QuestionType = "budget"
	QuestionPreferences QuestionType = "preferences"
	QuestionUsage       QuestionType = "usage"
	QuestionPriorities  QuestionType = "priorities"
)

// Question is a clarifying question with optional answer choices
type Question struct {
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Options []string     `json:"options,omitempty"`
}

// Decision is the structured outcome of one dialogue turn
type Decision struct {
	Action     ActionType `json:"action"`
	Message    string     `json:"message"`
	Question   *Question  `json:"question,omitempty"`
	Confidence float64    `json:"confidence"`
}
