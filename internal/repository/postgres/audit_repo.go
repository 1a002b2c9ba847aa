package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
	jsoniter "github.com/json-iterator/go"
	"github.com/xela07ax/gardarika-console/internal/audit"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// journalColumns - количество колонок в таблице console_actions
const journalColumns = 12

const createJournalTable = `
CREATE TABLE IF NOT EXISTS console_actions (
	id          UUID PRIMARY KEY,
	trace_id    TEXT NOT NULL,
	console_id  TEXT NOT NULL,
	intent      TEXT NOT NULL,
	target      TEXT NOT NULL,
	payload     JSONB,
	status      TEXT NOT NULL,
	reloaded    BOOLEAN NOT NULL,
	error       TEXT NOT NULL,
	duration_ms BIGINT NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
)`

type JournalRepo struct {
	db *sql.DB
}

// NewJournalRepo открывает пул соединений. Доступность базы проверяет Ping.
func NewJournalRepo(connString string) (*JournalRepo, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &JournalRepo{db: db}, nil
}

func (r *JournalRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema создает таблицу журнала, если ее еще нет.
func (r *JournalRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createJournalTable); err != nil {
		return fmt.Errorf("postgres: create console_actions: %w", err)
	}
	return nil
}

func (r *JournalRepo) WriteBatch(ctx context.Context, events []audit.ActionEvent) error {
	if len(events) == 0 {
		return nil
	}

	query, vals, err := buildJournalInsert(events, time.Now())
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: write journal batch: %w", err)
	}
	return nil
}

func (r *JournalRepo) Close() error {
	return r.db.Close()
}

// buildJournalInsert динамически строит запрос пакетной вставки.
func buildJournalInsert(events []audit.ActionEvent, recordedAt time.Time) (string, []interface{}, error) {
	var placeholders strings.Builder
	vals := make([]interface{}, 0, len(events)*journalColumns)

	for i, e := range events {
		if i > 0 {
			placeholders.WriteString(", ")
		}
		placeholders.WriteString("(")
		for c := 1; c <= journalColumns; c++ {
			if c > 1 {
				placeholders.WriteString(", ")
			}
			fmt.Fprintf(&placeholders, "$%d", i*journalColumns+c)
		}
		placeholders.WriteString(")")

		var payload []byte
		if e.Payload != nil {
			var err error
			if payload, err = json.Marshal(e.Payload); err != nil {
				return "", nil, fmt.Errorf("postgres: encode payload of %s: %w", e.ID, err)
			}
		}

		vals = append(vals,
			e.ID, e.TraceID, e.ConsoleID, e.Intent, e.Target, payload,
			e.Status, e.Reloaded, e.Error, e.DurationMs, e.Timestamp, recordedAt,
		)
	}

	query := "INSERT INTO console_actions (id, trace_id, console_id, intent, target, payload, status, reloaded, error, duration_ms, timestamp, recorded_at) VALUES " +
		placeholders.String()
	return query, vals, nil
}
