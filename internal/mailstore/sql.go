package mailstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ladle/internal/engine"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const mailSchema = `
CREATE TABLE IF NOT EXISTS mail_messages (
    id        TEXT PRIMARY KEY,
    player_id TEXT NOT NULL,
    subject   TEXT NOT NULL,
    body      TEXT NOT NULL,
    sent_at   TIMESTAMP NOT NULL,
    is_read   BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_mail_player ON mail_messages (player_id, sent_at);
`

// SQLStore persists mail in SQLite or Postgres through database/sql; the
// dialect only affects placeholder syntax.
type SQLStore struct {
	dialect Dialect
	db      *sql.DB
}

// OpenSQL connects, pings and migrates. Driver is "sqlite" or "postgres";
// the DSN is a file path or a postgres URL respectively.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		dialect    Dialect
		driverName string
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		dialect, driverName = DialectSQLite, "sqlite"
	case "postgres":
		dialect, driverName = DialectPostgres, "pgx"
	default:
		return nil, fmt.Errorf("unknown mail store driver %q", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open mail store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mail store: %w", err)
	}
	store := &SQLStore{dialect: dialect, db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(mailSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate mail store: %w", err)
		}
	}
	return nil
}

// rebind swaps ? placeholders for $N when talking to Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Deliver(ctx context.Context, msgs []engine.MailMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := s.rebind(`INSERT INTO mail_messages (id, player_id, subject, body, sent_at, is_read) VALUES (?, ?, ?, ?, ?, ?)`)
	for _, msg := range msgs {
		if _, err := tx.ExecContext(ctx, query,
			msg.ID, msg.PlayerID, msg.Subject, msg.Body, msg.SentAt.UTC(), msg.Read); err != nil {
			return fmt.Errorf("insert mail: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListForPlayer(ctx context.Context, playerID string) ([]engine.MailMessage, error) {
	query := s.rebind(`
		SELECT id, player_id, subject, body, sent_at, is_read
		FROM mail_messages
		WHERE player_id = ?
		ORDER BY sent_at DESC, id`)
	rows, err := s.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]engine.MailMessage, 0)
	for rows.Next() {
		var (
			msg    engine.MailMessage
			sentAt time.Time
		)
		if err := rows.Scan(&msg.ID, &msg.PlayerID, &msg.Subject, &msg.Body, &sentAt, &msg.Read); err != nil {
			return nil, err
		}
		msg.SentAt = sentAt
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *SQLStore) MarkRead(ctx context.Context, playerID, mailID string) error {
	query := s.rebind(`UPDATE mail_messages SET is_read = TRUE WHERE player_id = ? AND id = ?`)
	res, err := s.db.ExecContext(ctx, query, playerID, mailID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("mail %q: %w", mailID, engine.ErrNotFound)
	}
	return nil
}
