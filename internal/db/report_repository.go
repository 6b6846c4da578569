package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/QirangMilco/TSAuto/internal/battle"
	"github.com/QirangMilco/TSAuto/internal/event"
)

// ErrReportNotFound is returned by GetReport for an unknown battle ID.
var ErrReportNotFound = errors.New("battle report not found")

// ReportRepository persists battle reports and their event logs.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReport stores r and its events in one transaction. An existing report
// with the same battle ID is replaced together with its events.
func (r *ReportRepository) SaveReport(ctx context.Context, rep battle.Report) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createdAt := rep.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO battle_reports
			(battle_id, encounter_id, seed, result, rounds, total_actions, event_count, digest, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (battle_id) DO UPDATE SET
			encounter_id  = EXCLUDED.encounter_id,
			seed          = EXCLUDED.seed,
			result        = EXCLUDED.result,
			rounds        = EXCLUDED.rounds,
			total_actions = EXCLUDED.total_actions,
			event_count   = EXCLUDED.event_count,
			digest        = EXCLUDED.digest,
			created_at    = EXCLUDED.created_at`,
		rep.BattleID, rep.EncounterID, rep.Seed, rep.Result,
		rep.Rounds, rep.TotalActions, rep.EventCount, rep.Digest, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upserting report %s: %w", rep.BattleID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM battle_events WHERE battle_id = $1`, rep.BattleID); err != nil {
		return fmt.Errorf("clearing events of %s: %w", rep.BattleID, err)
	}

	if len(rep.Events) > 0 {
		rows := make([][]any, 0, len(rep.Events))
		for _, ev := range rep.Events {
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				return fmt.Errorf("encoding event %d payload: %w", ev.Seq, err)
			}
			rows = append(rows, []any{rep.BattleID, int64(ev.Seq), int32(ev.Round), ev.Kind.String(), payload})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"battle_events"},
			[]string{"battle_id", "seq", "round", "kind", "payload"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copying %d events of %s: %w", len(rows), rep.BattleID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing report %s: %w", rep.BattleID, err)
	}
	return nil
}

// GetReport loads a report and its events ordered by sequence number.
// Event payloads are decoded back into their payload structs.
func (r *ReportRepository) GetReport(ctx context.Context, battleID string) (battle.Report, error) {
	var rep battle.Report
	err := r.db.QueryRow(ctx, `
		SELECT battle_id, encounter_id, seed, result, rounds, total_actions, event_count, digest, created_at
		FROM battle_reports
		WHERE battle_id = $1`, battleID,
	).Scan(
		&rep.BattleID, &rep.EncounterID, &rep.Seed, &rep.Result,
		&rep.Rounds, &rep.TotalActions, &rep.EventCount, &rep.Digest, &rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return battle.Report{}, fmt.Errorf("%s: %w", battleID, ErrReportNotFound)
		}
		return battle.Report{}, fmt.Errorf("querying report %s: %w", battleID, err)
	}

	events, err := r.loadEvents(ctx, battleID, rep.EventCount)
	if err != nil {
		return battle.Report{}, err
	}
	rep.Events = events
	return rep, nil
}

func (r *ReportRepository) loadEvents(ctx context.Context, battleID string, capHint int) ([]event.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT seq, round, kind, payload
		FROM battle_events
		WHERE battle_id = $1
		ORDER BY seq`, battleID)
	if err != nil {
		return nil, fmt.Errorf("querying events of %s: %w", battleID, err)
	}
	defer rows.Close()

	events := make([]event.Event, 0, capHint)
	for rows.Next() {
		var (
			seq     int64
			round   int32
			kind    string
			payload []byte
		)
		if err := rows.Scan(&seq, &round, &kind, &payload); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		k, ok := event.ParseKind(kind)
		if !ok {
			return nil, fmt.Errorf("event %d of %s: unknown kind %q", seq, battleID, kind)
		}
		decoded, err := event.DecodePayload(k, payload)
		if err != nil {
			return nil, fmt.Errorf("event %d of %s: %w", seq, battleID, err)
		}
		events = append(events, event.Event{
			Seq:     int(seq),
			Round:   int(round),
			Kind:    k,
			Payload: decoded,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return events, nil
}

// ListByEncounter returns the reports of an encounter, newest first,
// without their events.
func (r *ReportRepository) ListByEncounter(ctx context.Context, encounterID string) ([]battle.Report, error) {
	rows, err := r.db.Query(ctx, `
		SELECT battle_id, encounter_id, seed, result, rounds, total_actions, event_count, digest, created_at
		FROM battle_reports
		WHERE encounter_id = $1
		ORDER BY created_at DESC, battle_id`, encounterID)
	if err != nil {
		return nil, fmt.Errorf("querying reports of %s: %w", encounterID, err)
	}
	defer rows.Close()

	var reports []battle.Report
	for rows.Next() {
		var rep battle.Report
		if err := rows.Scan(
			&rep.BattleID, &rep.EncounterID, &rep.Seed, &rep.Result,
			&rep.Rounds, &rep.TotalActions, &rep.EventCount, &rep.Digest, &rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}
	return reports, nil
}
