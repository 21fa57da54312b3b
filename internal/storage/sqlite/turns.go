package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/solace/internal/core"
	"github.com/sandevgo/solace/pkg/log"
)

// TurnsRepo is the durable audit log of conversational turns. Every turn is
// written here regardless of safety outcome, so overridden turns stay
// visible to reporting.
type TurnsRepo struct {
	db *sql.DB
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{db: db}
}

func (r *TurnsRepo) AddTurn(ctx context.Context, turn core.StoredTurn) error {
	query := `INSERT INTO turns (user_id, session_id, turn_index, role, content, risk_level, matched_signal)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		turn.UserID, turn.SessionID, turn.TurnIndex, turn.Role, turn.Content,
		string(turn.Risk), turn.MatchedSignal,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

func (r *TurnsRepo) GetRecentTurns(ctx context.Context, userID string, limit int) ([]core.StoredTurn, error) {
	query := `SELECT id, user_id, session_id, turn_index, role, content, risk_level, matched_signal, created_at
		FROM turns WHERE user_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.StoredTurn
	for rows.Next() {
		var t core.StoredTurn
		var risk, signal sql.NullString

		if err := rows.Scan(&t.ID, &t.UserID, &t.SessionID, &t.TurnIndex, &t.Role, &t.Content, &risk, &signal, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}

		t.Risk = core.RiskLevel(risk.String)
		t.MatchedSignal = signal.String
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returned newest first; reverse back to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Msg("loaded audit turns")
	return turns, nil
}
