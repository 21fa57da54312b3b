package prompt

import (
	"fmt"
	"strings"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
)

const persona = "You are an empathetic, professional support companion. " +
	"Ground your reply in the context below without repeating it back verbatim. " +
	"Keep responses concise unless the user asks for detail. Be natural."

const (
	insightsHeader = "### What you know about the user"
	episodicHeader = "### Related past conversations"
	workingHeader  = "### Current conversation"
)

// Budget is the token ceiling plus per-source allocation fractions.
// Fractions sum to at most 1.0; the remainder is slack for the current turn.
type Budget struct {
	TotalTokens      int
	SystemFraction   float64
	InsightFraction  float64
	EpisodicFraction float64
	WorkingFraction  float64
}

func NewBudget(cfg *config.BudgetConfig) (Budget, error) {
	if err := cfg.Validate(); err != nil {
		return Budget{}, fmt.Errorf("%w: %s", core.ErrConfiguration, err)
	}
	return Budget{
		TotalTokens:      cfg.TotalTokens,
		SystemFraction:   cfg.SystemFraction,
		InsightFraction:  cfg.InsightFraction,
		EpisodicFraction: cfg.EpisodicFraction,
		WorkingFraction:  cfg.WorkingFraction,
	}, nil
}

// Input carries the candidate content from every source. Retrieval slices
// arrive most-similar first; working memory arrives in turn order.
type Input struct {
	SafetyDirectives []string
	Insights         []core.RetrievedRecord
	Episodic         []core.RetrievedRecord
	Working          []core.WorkingMemoryEntry
	UserText         string
}

// Assembler composes a single bounded prompt from the weighted sources.
type Assembler struct {
	budget Budget
}

func NewAssembler(budget Budget) *Assembler {
	return &Assembler{budget: budget}
}

// Build concatenates sources in fixed precedence: system/safety directives,
// core insights, retrieved episodic memory, working memory, current user
// turn. Each source is truncated from its least-relevant end until its
// allowance holds. Returns ErrBudgetExceeded only when the current user turn
// alone cannot fit the total budget.
func (a *Assembler) Build(in Input) (string, error) {
	userSection := fmt.Sprintf("USER: %s\nASSISTANT:", in.UserText)
	userTokens := CountTokens(userSection)
	if userTokens > a.budget.TotalTokens {
		return "", fmt.Errorf("%w: current turn needs %d tokens, budget is %d",
			core.ErrBudgetExceeded, userTokens, a.budget.TotalTokens)
	}

	total := float64(a.budget.TotalTokens)

	system := fitLines(systemLines(in.SafetyDirectives), int(total*a.budget.SystemFraction), false)
	insights := fitLines(insightLines(in.Insights), int(total*a.budget.InsightFraction), false)
	episodic := fitLines(episodicLines(in.Episodic), int(total*a.budget.EpisodicFraction), false)
	working := fitLines(workingLines(in.Working), int(total*a.budget.WorkingFraction), true)

	sections := [][]string{system, insights, episodic, working}

	// The per-source allowances already hold; the user turn spends the
	// remaining slack. If it does not fit, shave sources in reverse
	// precedence until it does.
	for used := sectionTokens(sections) + userTokens; used > a.budget.TotalTokens; used = sectionTokens(sections) + userTokens {
		if !shaveOne(sections) {
			break
		}
	}

	var parts []string
	for _, section := range sections {
		if len(section) > 0 {
			parts = append(parts, strings.Join(section, "\n"))
		}
	}
	parts = append(parts, userSection)

	return strings.Join(parts, "\n\n"), nil
}

// EstimateTokens reports the token cost of an already assembled prompt.
func (a *Assembler) EstimateTokens(prompt string) int {
	return CountTokens(prompt)
}

func systemLines(directives []string) []string {
	lines := []string{persona}
	for _, d := range directives {
		if d != "" {
			lines = append(lines, d)
		}
	}
	return lines
}

// insightLines orders newest first so truncation drops the oldest facts.
func insightLines(insights []core.RetrievedRecord) []string {
	if len(insights) == 0 {
		return nil
	}
	sorted := make([]core.RetrievedRecord, len(insights))
	copy(sorted, insights)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].CreatedAt.After(sorted[i].CreatedAt) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	lines := []string{insightsHeader}
	for _, rec := range sorted {
		lines = append(lines, "- "+rec.Text)
	}
	return lines
}

// episodicLines keeps retrieval order so truncation drops the
// lowest-similarity matches.
func episodicLines(episodic []core.RetrievedRecord) []string {
	if len(episodic) == 0 {
		return nil
	}
	lines := []string{episodicHeader}
	for _, rec := range episodic {
		lines = append(lines, "- "+rec.Text)
	}
	return lines
}

// workingLines orders newest first for fitting; fitLines restores
// chronological order afterwards.
func workingLines(entries []core.WorkingMemoryEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	lines := []string{workingHeader}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(e.Role), e.Text))
	}
	return lines
}

// fitLines keeps the header plus as many items as the allowance permits,
// in the given priority order. With reverseItems the surviving items are
// flipped back so callers can pass newest-first and render oldest-first.
func fitLines(lines []string, allowance int, reverseItems bool) []string {
	if len(lines) == 0 || allowance <= 0 {
		return nil
	}

	kept := make([]string, 0, len(lines))
	used := 0
	for i, line := range lines {
		cost := CountTokens(line) + 1 // newline
		if used+cost > allowance {
			if i == 0 {
				return nil // not even the header fits
			}
			break
		}
		kept = append(kept, line)
		used += cost
	}

	// A lone header carries no content.
	if len(kept) == 1 && strings.HasPrefix(kept[0], "###") {
		return nil
	}

	if reverseItems && len(kept) > 2 {
		items := kept[1:]
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return kept
}

func sectionTokens(sections [][]string) int {
	total := 0
	for _, section := range sections {
		for _, line := range section {
			total += CountTokens(line) + 1
		}
		if len(section) > 0 {
			total += 1 // section separator
		}
	}
	return total
}

// shaveOne removes the least-relevant remaining item, scanning sources in
// reverse precedence. The persona line goes last of all, so only the user's
// own turn can ever force the budget over. Returns false when every section
// is empty.
func shaveOne(sections [][]string) bool {
	// working memory first (index 3), then episodic, insights, system
	for i := len(sections) - 1; i >= 0; i-- {
		section := sections[i]
		if len(section) == 0 {
			continue
		}
		if strings.HasPrefix(section[0], "###") {
			// drop the item right after the header: oldest working turn or
			// lowest-similarity retrieval depending on render order
			if i == 3 {
				sections[i] = append(section[:1], section[2:]...)
			} else {
				sections[i] = section[:len(section)-1]
			}
			if len(sections[i]) == 1 {
				sections[i] = nil
			}
			return true
		}
		if i == 0 {
			// system directives shave from the tail, persona last
			sections[i] = section[:len(section)-1]
			return true
		}
	}
	return false
}
