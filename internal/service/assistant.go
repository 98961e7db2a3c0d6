package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/dialogue"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/filter"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// CarSearcher finds cars for a dialogue and records what was shown
type CarSearcher interface {
	Search(ctx context.Context, query string, f model.SearchFilter, limit int) ([]model.CarSearchResult, error)
	LogSearch(ctx context.Context, entry model.SearchLog) error
}

var _ CarSearcher = (*SearchService)(nil)

const searchLogTimeout = 5 * time.Second

// Assistant answers user messages: it runs a dialogue turn and, when the
// turn decides to show cars, turns the conversation into a search.
type Assistant struct {
	machine     *dialogue.Machine
	search      CarSearcher
	sessions    *SessionStore
	resultLimit int
	logger      zerolog.Logger
}

// NewAssistant creates the assistant facade.
func NewAssistant(machine *dialogue.Machine, search CarSearcher, sessions *SessionStore, resultLimit int, logger zerolog.Logger) *Assistant {
	if resultLimit <= 0 {
		resultLimit = 3
	}
	return &Assistant{
		machine:     machine,
		search:      search,
		sessions:    sessions,
		resultLimit: resultLimit,
		logger:      logger.With().Str("component", "assistant").Logger(),
	}
}

// StartConversation opens a new conversation and returns its ID.
func (a *Assistant) StartConversation() string {
	return a.sessions.Create()
}

// Handle processes one user message. It never fails: every error becomes
// an apology reply. Messages for an unseen conversation ID start it.
func (a *Assistant) Handle(ctx context.Context, conversationID, text string) *model.AssistantReply {
	startTime := time.Now()

	sess := a.sessions.getOrCreate(conversationID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	decision := a.machine.Turn(ctx, sess.state, text)
	reply := &model.AssistantReply{
		ConversationID: conversationID,
		Action:         decision.Action,
		Message:        decision.Message,
		Question:       decision.Question,
		Confidence:     decision.Confidence,
	}

	if decision.Action == model.ActionShowCars {
		a.showCars(ctx, sess.state, reply)
	}

	reply.Took = time.Since(startTime).Milliseconds()

	a.logger.Debug().
		Str("conversation_id", conversationID).
		Str("action", string(reply.Action)).
		Int("cars", len(reply.Cars)).
		Int64("took_ms", reply.Took).
		Msg("Handled message")

	return reply
}

func (a *Assistant) showCars(ctx context.Context, st *dialogue.State, reply *model.AssistantReply) {
	startTime := time.Now()

	f, err := a.machine.RefreshFilter(ctx, st)
	if err != nil {
		a.logger.Error().Err(err).Str("conversation_id", st.ID).Msg("Failed to build filter")
		apologize(reply)
		return
	}

	query := strings.Join(st.Utterances(), "\n")
	cars, err := a.search.Search(ctx, query, f, a.resultLimit)
	if err != nil {
		a.logger.Error().Err(err).Str("conversation_id", st.ID).Msg("Search failed")
		apologize(reply)
		return
	}

	reply.Filter = &f

	if len(cars) == 0 {
		reply.Action = model.ActionAskQuestion
		reply.Message = NoResultsText
		reply.Question = PrioritiesQuestion()
		return
	}

	reply.Cars = cars
	reply.Message = FormatCars(cars)
	reply.SearchID = uuid.NewString()

	entry := model.SearchLog{
		SearchID:       reply.SearchID,
		ConversationID: st.ID,
		Query:          query,
		Filter:         f,
		ResultIDs:      make([]string, len(cars)),
		ResponseTimeMs: int(time.Since(startTime).Milliseconds()),
	}
	for i, c := range cars {
		entry.ResultIDs[i] = c.ID
	}

	// Log search (non-blocking)
	go func() {
		logCtx, cancel := context.WithTimeout(context.Background(), searchLogTimeout)
		defer cancel()
		if err := a.search.LogSearch(logCtx, entry); err != nil {
			a.logger.Warn().Err(err).Str("search_id", entry.SearchID).Msg("Failed to log search")
		}
	}()
}

func apologize(reply *model.AssistantReply) {
	fallback := dialogue.FallbackDecision()
	reply.Action = fallback.Action
	reply.Message = fallback.Message
	reply.Question = nil
	reply.Confidence = fallback.Confidence
	reply.Filter = nil
	reply.Cars = nil
}

// Reset forgets the conversation's history and filter.
func (a *Assistant) Reset(conversationID string) error {
	sess, ok := a.sessions.get(conversationID)
	if !ok {
		return ErrUnknownConversation
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	a.machine.Reset(sess.state)
	return nil
}

// CurrentFilter returns the filter the conversation would search with now.
func (a *Assistant) CurrentFilter(conversationID string) (*model.FilterResponse, error) {
	sess, ok := a.sessions.get(conversationID)
	if !ok {
		return nil, ErrUnknownConversation
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp := &model.FilterResponse{
		ConversationID: conversationID,
		Text:           sess.state.LastFilterText,
	}
	if sess.state.LastFilter != nil {
		f := *sess.state.LastFilter
		q := filter.BuildQuery(f)
		resp.Filter = &f
		resp.Query = &q
		if resp.Text == "" {
			resp.Text = filter.Format(f)
		}
	}
	return resp, nil
}
