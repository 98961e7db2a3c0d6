package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/filter"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/utils"
)

// FallbackMessage is shown whenever a turn cannot produce a valid decision.
const FallbackMessage = "😔 Извините, произошла ошибка. Пожалуйста, повторите ваш запрос."

// FallbackDecision is the safe reply used for every failed turn.
func FallbackDecision() model.Decision {
	return model.Decision{
		Action:     model.ActionClarify,
		Message:    FallbackMessage,
		Confidence: 0,
	}
}

// Completer sends a conversation to a language model and returns its reply
type Completer interface {
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// Config bounds the two conversations kept per dialogue
type Config struct {
	MaxTurns       int
	FilterMaxTurns int
	SystemPrompt   string
	FilterPrompt   string
}

// DefaultConfig keeps three turns in both conversations.
func DefaultConfig() Config {
	return Config{
		MaxTurns:       3,
		FilterMaxTurns: 3,
		SystemPrompt:   DecisionPrompt,
		FilterPrompt:   FilterPrompt,
	}
}

// State is everything one conversation remembers between turns. It is not
// safe for concurrent use; callers serialize turns per conversation.
type State struct {
	ID             string
	Turns          int
	LastFilter     *model.SearchFilter
	LastFilterText string

	history       *History
	filterHistory *History
	pending       []string // user messages not yet sent to the filter conversation
}

// History exposes the decision conversation.
func (s *State) History() *History { return s.history }

// Pending returns user messages the current filter does not reflect yet.
func (s *State) Pending() []string {
	return append([]string(nil), s.pending...)
}

// Utterances returns the user messages still inside the history window,
// oldest first.
func (s *State) Utterances() []string {
	turns := s.history.Turns()
	out := make([]string, 0, len(turns))
	for _, t := range turns {
		out = append(out, t.User)
	}
	return out
}

// Machine drives dialogue turns against a completion service
type Machine struct {
	completer Completer
	cfg       Config
	logger    zerolog.Logger
}

// NewMachine creates a dialogue machine.
func NewMachine(completer Completer, cfg Config, logger zerolog.Logger) *Machine {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 3
	}
	if cfg.FilterMaxTurns <= 0 {
		cfg.FilterMaxTurns = cfg.MaxTurns
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DecisionPrompt
	}
	if cfg.FilterPrompt == "" {
		cfg.FilterPrompt = FilterPrompt
	}
	return &Machine{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With().Str("component", "dialogue").Logger(),
	}
}

// NewState starts an empty conversation.
func (m *Machine) NewState(id string) *State {
	return &State{
		ID:            id,
		history:       NewHistory(m.cfg.SystemPrompt, m.cfg.MaxTurns),
		filterHistory: NewHistory(m.cfg.FilterPrompt, m.cfg.FilterMaxTurns),
	}
}

// Reset forgets every turn and the last filter, keeping the prompts.
func (m *Machine) Reset(st *State) {
	st.history.Reset()
	st.filterHistory.Reset()
	st.pending = nil
	st.LastFilter = nil
	st.LastFilterText = ""
	st.Turns = 0
}

// Turn runs one user utterance through the completion service and returns
// the decision. It never returns an error: a failed call or an invalid
// reply yields FallbackDecision. A failed call leaves the history as it was.
func (m *Machine) Turn(ctx context.Context, st *State, utterance string) model.Decision {
	st.Turns++
	st.pending = append(st.pending, utterance)
	if over := len(st.pending) - st.history.Cap(); over > 0 {
		st.pending = st.pending[over:]
	}

	log := m.logger.With().Str("conversation", st.ID).Int("turn", st.Turns).Logger()

	if m.completer == nil {
		log.Warn().Msg("completion client is not configured")
		return FallbackDecision()
	}

	reply, err := m.completer.Complete(ctx, st.history.Messages(utterance))
	if err != nil {
		log.Error().Err(err).Msg("decision request failed")
		return FallbackDecision()
	}
	st.history.Append(Turn{User: utterance, Assistant: reply})

	decision, err := ParseDecision(reply)
	if err != nil {
		log.Warn().Err(err).Str("reply", utils.TruncateString(reply, 200)).Msg("decision rejected")
		return FallbackDecision()
	}

	log.Info().
		Str("action", string(decision.Action)).
		Float64("confidence", decision.Confidence).
		Int("history", st.history.Len()).
		Msg("turn decided")
	return decision
}

// RefreshFilter sends the buffered user messages to the filter conversation
// and parses the reply. A reply without any template field keeps the
// previous filter. The returned filter is also stored on the state.
func (m *Machine) RefreshFilter(ctx context.Context, st *State) (model.SearchFilter, error) {
	if len(st.pending) == 0 {
		if st.LastFilter != nil {
			return *st.LastFilter, nil
		}
		return model.PermissiveFilter(), nil
	}
	if m.completer == nil {
		return model.SearchFilter{}, fmt.Errorf("refresh filter: completion client is not configured")
	}

	query := strings.Join(st.pending, "\n")
	reply, err := m.completer.Complete(ctx, st.filterHistory.Messages(query))
	if err != nil {
		return model.SearchFilter{}, fmt.Errorf("refresh filter: %w", err)
	}
	st.filterHistory.Append(Turn{User: query, Assistant: reply})
	st.pending = nil

	f, seen := filter.ParseFields(reply)
	if len(seen) == 0 {
		m.logger.Warn().Str("conversation", st.ID).Str("reply", utils.TruncateString(reply, 200)).Msg("filter reply has no fields, keeping previous filter")
		if st.LastFilter != nil {
			return *st.LastFilter, nil
		}
		return model.PermissiveFilter(), nil
	}

	st.LastFilter = &f
	st.LastFilterText = reply
	m.logger.Debug().Str("conversation", st.ID).Strs("fields", seen).Msg("filter updated")
	return f, nil
}
