package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/internal/service/memory"
	"github.com/sandevgo/solace/internal/service/prompt"
	"github.com/sandevgo/solace/internal/service/safety"
	"github.com/sandevgo/solace/pkg/log"
)

// fallbackResponse covers generation failures. The turn still lands in
// working memory so the conversation stays coherent.
const fallbackResponse = "I'm having trouble putting my thoughts together right now. I'm still here with you. Could you give me a moment and tell me that again?"

// Orchestrator is the per-turn engine: safety gating, memory recall, prompt
// assembly, generation, and the audit trail. One instance serves all users;
// per-user ordering comes from the session registry.
type Orchestrator struct {
	longTerm  *memory.LongTerm
	extractor *memory.Extractor
	assembler *prompt.Assembler
	safety    *safety.Engine
	generator core.Generator
	turns     core.TurnsRepository
	sessions  *sessionRegistry

	recallDepth       int
	insightEveryTurns int
}

type Deps struct {
	LongTerm  *memory.LongTerm
	Extractor *memory.Extractor
	Assembler *prompt.Assembler
	Safety    *safety.Engine
	Generator core.Generator
	Turns     core.TurnsRepository
}

func NewOrchestrator(cfg *config.AppConfig, deps Deps) *Orchestrator {
	return &Orchestrator{
		longTerm:          deps.LongTerm,
		extractor:         deps.Extractor,
		assembler:         deps.Assembler,
		safety:            deps.Safety,
		generator:         deps.Generator,
		turns:             deps.Turns,
		sessions:          newSessionRegistry(cfg.WorkingMemoryEntries, cfg.WorkingMemoryTokens),
		recallDepth:       cfg.RecallDepth,
		insightEveryTurns: cfg.InsightEveryTurns,
	}
}

// ProcessTurn runs one full user turn. Memory failures degrade silently;
// only a budget overflow on the user's own message surfaces as an error.
func (o *Orchestrator) ProcessTurn(ctx context.Context, userID, text string) (core.TurnResult, error) {
	s, err := o.sessions.get(userID)
	if err != nil {
		return core.TurnResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.FromCtx(ctx).With().Str("user", userID).Logger()
	ctx = logger.WithContext(ctx)

	verdict := o.safety.Classify(text)

	if verdict.Overridden() {
		logger.Warn().Str("signal", verdict.MatchedSignal).Msg("crisis signal detected, overriding response")
		return o.overriddenTurn(ctx, s, text, verdict), nil
	}

	// Recall runs before the turn enters working memory so the query never
	// matches itself.
	recalled := o.recall(ctx, userID, text)

	userEntry := s.working.Append(core.RoleUser, text)
	o.auditTurn(ctx, s, userEntry, verdict)
	o.rememberEpisodic(ctx, userID, core.RoleUser, text)

	// The current user turn renders in its own section, not under working
	// memory, so drop the entry just appended from the snapshot.
	working := s.working.Snapshot()
	working = working[:len(working)-1]

	assembled, err := o.assembler.Build(prompt.Input{
		SafetyDirectives: directives(verdict),
		Insights:         recalled.insights,
		Episodic:         recalled.episodic,
		Working:          working,
		UserText:         text,
	})
	if err != nil {
		if errors.Is(err, core.ErrBudgetExceeded) {
			return core.TurnResult{}, err
		}
		return core.TurnResult{}, fmt.Errorf("assemble prompt: %w", err)
	}

	response := o.generate(ctx, assembled)
	response, outbound := o.safety.ReviewResponse(response, verdict)
	if outbound.Overridden() {
		logger.Warn().Str("signal", outbound.MatchedSignal).Msg("generated response failed outbound check, replaced")
	}

	respEntry := s.working.Append(core.RoleAssistant, response)
	o.auditTurn(ctx, s, respEntry, outbound)

	s.userTurns++
	if o.insightEveryTurns > 0 && s.userTurns%o.insightEveryTurns == 0 {
		o.extractAsync(ctx, userID, s.working.Snapshot())
	}

	return core.TurnResult{ResponseText: response, Risk: verdict.Risk}, nil
}

// overriddenTurn records a high-risk turn end to end. The override reply is
// returned verbatim and the turn is fully audited; nothing reaches the
// generator.
func (o *Orchestrator) overriddenTurn(ctx context.Context, s *session, text string, verdict core.SafetyVerdict) core.TurnResult {
	userEntry := s.working.Append(core.RoleUser, text)
	o.auditTurn(ctx, s, userEntry, verdict)
	o.rememberEpisodic(ctx, s.userID, core.RoleUser, text)

	respEntry := s.working.Append(core.RoleAssistant, verdict.OverrideText)
	o.auditTurn(ctx, s, respEntry, core.SafetyVerdict{Risk: verdict.Risk, MatchedSignal: verdict.MatchedSignal})

	return core.TurnResult{ResponseText: verdict.OverrideText, Risk: verdict.Risk}
}

type recallSet struct {
	episodic []core.RetrievedRecord
	insights []core.RetrievedRecord
}

// recall degrades to empty on any failure. The turn proceeds without
// long-term context rather than failing.
func (o *Orchestrator) recall(ctx context.Context, userID, query string) recallSet {
	logger := log.FromCtx(ctx)

	var set recallSet
	if result, err := o.longTerm.Recall(ctx, userID, query, o.recallDepth, core.KindEpisodic); err != nil {
		logger.Error().Err(err).Msg("episodic recall failed, continuing without")
	} else {
		set.episodic = result.Records
	}

	if result, err := o.longTerm.Recall(ctx, userID, query, o.recallDepth, core.KindInsight); err != nil {
		logger.Error().Err(err).Msg("insight recall failed, continuing without")
	} else {
		set.insights = result.Records
	}
	return set
}

func (o *Orchestrator) generate(ctx context.Context, assembled string) string {
	response, err := o.generator.Generate(ctx, assembled)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("generation failed, using fallback response")
		return fallbackResponse
	}
	return response
}

// rememberEpisodic is fire-and-forget: a dead store or embedder costs the
// record, not the turn.
func (o *Orchestrator) rememberEpisodic(ctx context.Context, userID, role, text string) {
	if _, err := o.longTerm.Remember(ctx, userID, fmt.Sprintf("%s said: %s", role, text), core.KindEpisodic, map[string]string{"role": role}); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("episodic write failed, dropping record")
	}
}

func (o *Orchestrator) auditTurn(ctx context.Context, s *session, entry core.WorkingMemoryEntry, verdict core.SafetyVerdict) {
	turn := core.StoredTurn{
		UserID:        s.userID,
		SessionID:     s.id,
		TurnIndex:     entry.TurnIndex,
		Role:          entry.Role,
		Content:       entry.Text,
		Risk:          verdict.Risk,
		MatchedSignal: verdict.MatchedSignal,
		CreatedAt:     entry.Timestamp,
	}
	if err := o.turns.AddTurn(ctx, turn); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("turn audit write failed")
	}
}

func (o *Orchestrator) extractAsync(ctx context.Context, userID string, turns []core.WorkingMemoryEntry) {
	logger := log.FromCtx(ctx)
	go func() {
		bgCtx, cancel := context.WithTimeout(logger.WithContext(context.Background()), 2*time.Minute)
		defer cancel()

		if _, err := o.extractor.Extract(bgCtx, userID, turns); err != nil {
			logger.Error().Err(err).Msg("insight extraction failed")
		}
	}()
}

// FlushInsights runs insight extraction for a user immediately, outside the
// regular cadence.
func (o *Orchestrator) FlushInsights(ctx context.Context, userID string) (int, error) {
	s, ok := o.sessions.peek(userID)
	if !ok {
		return 0, nil
	}
	return o.extractor.Extract(ctx, userID, s.working.Snapshot())
}

// RetrieveMemory exposes long-term recall for maintenance tooling.
func (o *Orchestrator) RetrieveMemory(ctx context.Context, userID, query string, k int, kind core.MemoryKind) (core.RetrievalResult, error) {
	return o.longTerm.Recall(ctx, userID, query, k, kind)
}

// RecentTurns exposes the audit log for reporting.
func (o *Orchestrator) RecentTurns(ctx context.Context, userID string, limit int) ([]core.StoredTurn, error) {
	return o.turns.GetRecentTurns(ctx, userID, limit)
}

// EndSession flushes insights and discards the user's session state.
func (o *Orchestrator) EndSession(ctx context.Context, userID string) {
	if _, err := o.FlushInsights(ctx, userID); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("user", userID).Msg("end-of-session extraction failed")
	}
	o.sessions.remove(userID)
}

func directives(verdict core.SafetyVerdict) []string {
	if d := safety.ToneDirective(verdict); d != "" {
		return []string{d}
	}
	return nil
}
