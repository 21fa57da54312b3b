package prompt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
)

func testBudget(total int) Budget {
	return Budget{
		TotalTokens:      total,
		SystemFraction:   0.15,
		InsightFraction:  0.15,
		EpisodicFraction: 0.25,
		WorkingFraction:  0.35,
	}
}

func retrieved(text string, similarity float32, age time.Duration) core.RetrievedRecord {
	return core.RetrievedRecord{
		MemoryRecord: core.MemoryRecord{
			Text:      text,
			CreatedAt: time.Now().Add(-age),
		},
		Similarity: similarity,
	}
}

func TestNewBudget(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		b, err := NewBudget(&config.BudgetConfig{
			TotalTokens:      3000,
			SystemFraction:   0.15,
			InsightFraction:  0.15,
			EpisodicFraction: 0.25,
			WorkingFraction:  0.35,
		})
		require.NoError(t, err)
		assert.Equal(t, 3000, b.TotalTokens)
	})

	t.Run("fractions over one", func(t *testing.T) {
		_, err := NewBudget(&config.BudgetConfig{
			TotalTokens:      3000,
			SystemFraction:   0.5,
			InsightFraction:  0.5,
			EpisodicFraction: 0.5,
			WorkingFraction:  0.5,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})
}

func TestAssembler_Build_AllSections(t *testing.T) {
	a := NewAssembler(testBudget(3000))

	out, err := a.Build(Input{
		SafetyDirectives: []string{"Keep a warm, encouraging register."},
		Insights: []core.RetrievedRecord{
			retrieved("User moved to Lisbon", 0.9, time.Hour),
		},
		Episodic: []core.RetrievedRecord{
			retrieved("user said: I started a pottery class", 0.8, 24*time.Hour),
		},
		Working: []core.WorkingMemoryEntry{
			{Role: core.RoleUser, Text: "hi again"},
			{Role: core.RoleAssistant, Text: "welcome back"},
		},
		UserText: "how was my week looking?",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Keep a warm, encouraging register.")
	assert.Contains(t, out, "User moved to Lisbon")
	assert.Contains(t, out, "pottery class")
	assert.Contains(t, out, "USER: hi again")
	assert.Contains(t, out, "ASSISTANT: welcome back")
	assert.True(t, strings.HasSuffix(out, "USER: how was my week looking?\nASSISTANT:"))
	assert.LessOrEqual(t, a.EstimateTokens(out), 3000)
}

func TestAssembler_Build_EmptySourcesOmitHeaders(t *testing.T) {
	a := NewAssembler(testBudget(3000))

	out, err := a.Build(Input{UserText: "hello"})
	require.NoError(t, err)

	assert.NotContains(t, out, insightsHeader)
	assert.NotContains(t, out, episodicHeader)
	assert.NotContains(t, out, workingHeader)
	assert.Contains(t, out, "USER: hello")
}

func TestAssembler_Build_UserTurnTooLarge(t *testing.T) {
	a := NewAssembler(testBudget(50))

	_, err := a.Build(Input{
		UserText: strings.Repeat("an endless message that cannot possibly fit ", 40),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBudgetExceeded)
}

func TestAssembler_Build_NeverExceedsTotal(t *testing.T) {
	a := NewAssembler(testBudget(200))

	var insights, episodic []core.RetrievedRecord
	var working []core.WorkingMemoryEntry
	for i := 0; i < 30; i++ {
		insights = append(insights, retrieved(strings.Repeat("a durable fact about the user ", 3), 0.9, time.Duration(i)*time.Hour))
		episodic = append(episodic, retrieved(strings.Repeat("an older conversation snippet ", 3), 0.8, time.Duration(i)*time.Hour))
		working = append(working, core.WorkingMemoryEntry{Role: core.RoleUser, Text: strings.Repeat("recent chatter ", 3), TurnIndex: i})
	}

	out, err := a.Build(Input{
		Insights: insights,
		Episodic: episodic,
		Working:  working,
		UserText: "short question",
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, a.EstimateTokens(out), 200)
	assert.True(t, strings.HasSuffix(out, "USER: short question\nASSISTANT:"))
}

func TestAssembler_Build_PersonaYieldsToUserTurn(t *testing.T) {
	// Leave just under the persona's cost as slack so the user section fits
	// the total on its own but persona plus user does not.
	userText := strings.Repeat("a long enough message to fill most of the budget ", 10)
	userTokens := CountTokens(fmt.Sprintf("USER: %s\nASSISTANT:", userText))

	a := NewAssembler(Budget{
		TotalTokens:    userTokens + 5,
		SystemFraction: 1.0,
	})

	out, err := a.Build(Input{UserText: userText})
	require.NoError(t, err)

	assert.LessOrEqual(t, a.EstimateTokens(out), userTokens+5)
	assert.True(t, strings.HasSuffix(out, "\nASSISTANT:"))
	assert.Contains(t, out, userText, "the user's own message is never trimmed")
}

func TestAssembler_Build_DropsLowestSimilarityFirst(t *testing.T) {
	a := NewAssembler(Budget{
		TotalTokens:      300,
		EpisodicFraction: 0.1,
	})

	out, err := a.Build(Input{
		Episodic: []core.RetrievedRecord{
			retrieved("the closest matching memory", 0.95, time.Hour),
			retrieved("a weaker match about something else entirely that goes on and on and on and fills the rest of the allowance", 0.4, time.Hour),
		},
		UserText: "hello",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "the closest matching memory")
	assert.NotContains(t, out, "a weaker match")
}

func TestAssembler_Build_InsightsNewestFirst(t *testing.T) {
	a := NewAssembler(Budget{
		TotalTokens:     300,
		InsightFraction: 0.08,
	})

	out, err := a.Build(Input{
		Insights: []core.RetrievedRecord{
			retrieved("an old fact padded out with plenty of extra words so it cannot share the allowance", 0.9, 100*time.Hour),
			retrieved("the newest fact", 0.5, time.Minute),
		},
		UserText: "hello",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "the newest fact")
	assert.NotContains(t, out, "an old fact")
}
