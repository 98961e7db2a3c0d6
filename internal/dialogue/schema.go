package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/utils"
)

// ErrInvalidDecision wraps every reason a reply could not become a Decision.
var ErrInvalidDecision = errors.New("invalid decision")

const decisionSchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["action", "message", "confidence"],
  "properties": {
    "action": {"enum": ["ask_question", "show_cars", "clarify"]},
    "message": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "question": {
      "type": ["object", "null"],
      "required": ["type", "text"],
      "properties": {
        "type": {"enum": ["budget", "preferences", "usage", "priorities"]},
        "text": {"type": "string", "minLength": 1},
        "options": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    },
    "filter": {"type": ["object", "null"]}
  },
  "if": {"properties": {"action": {"const": "ask_question"}}},
  "then": {
    "required": ["question"],
    "properties": {"question": {"type": "object"}}
  }
}`

var decisionSchema = mustCompileSchema("decision.json", decisionSchemaText)

func mustCompileSchema(name, text string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(text)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// ParseDecision is the single boundary between completion text and the
// rest of the system: it strips code fences, decodes strict JSON, checks
// it against the decision schema and returns a typed Decision.
func ParseDecision(raw string) (model.Decision, error) {
	body := utils.StripCodeFence(raw)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return model.Decision{}, fmt.Errorf("%w: %w", ErrInvalidDecision, err)
	}
	if err := decisionSchema.Validate(doc); err != nil {
		return model.Decision{}, fmt.Errorf("%w: %w", ErrInvalidDecision, err)
	}

	var d model.Decision
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return model.Decision{}, fmt.Errorf("%w: %w", ErrInvalidDecision, err)
	}
	if d.Action != model.ActionAskQuestion {
		d.Question = nil
	}
	return d, nil
}
