package prefs

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"cashier-terminal/internal/config"
	"cashier-terminal/internal/terminal"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const KeyAuthToken = "auth_token"

// TerminalScope holds values that exist before a cashier is known, such as the token.
const TerminalScope = ""

var ErrNotFound = errors.New("not found")

const schema = `CREATE TABLE IF NOT EXISTS terminal_prefs (
	cashier_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (cashier_id, key)
)`

// Store keeps per-cashier preferences in sqlite by default or postgres.
type Store struct {
	DB       *sql.DB
	postgres bool
	now      func() time.Time
}

func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Open(ctx context.Context, cfg config.PrefsConfig) (*Store, error) {
	driver := "sqlite3"
	pg := IsPostgresDSN(cfg.DSN)
	if pg {
		driver = "pgx"
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if !pg {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	s := New(db, pg)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("prefs_opened")
	return s, nil
}

func New(db *sql.DB, postgres bool) *Store {
	return &Store{DB: db, postgres: postgres, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, schema)
	return err
}

// rebind turns ? placeholders into $n for postgres.
func (s *Store) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Put(ctx context.Context, cashierID, key, value string) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`INSERT INTO terminal_prefs (cashier_id, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (cashier_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		cashierID, key, value, s.now().UTC())
	return err
}

func (s *Store) Get(ctx context.Context, cashierID, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT value FROM terminal_prefs WHERE cashier_id = ? AND key = ?`), cashierID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, cashierID, key string) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM terminal_prefs WHERE cashier_id = ? AND key = ?`), cashierID, key)
	return err
}

// SingleMode reads the single-selection flag; anything but "true" is off.
func (s *Store) SingleMode(ctx context.Context, cashierID string) bool {
	v, err := s.Get(ctx, cashierID, terminal.PrefSingleMode)
	if err != nil {
		logMiss(err, terminal.PrefSingleMode)
		return false
	}
	return v == "true"
}

// Stake reads the last chosen stake and falls back to the default when missing or out of range.
func (s *Store) Stake(ctx context.Context, cashierID string) int {
	v, err := s.Get(ctx, cashierID, terminal.PrefStake)
	if err != nil {
		logMiss(err, terminal.PrefStake)
		return terminal.DefaultStake
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || !terminal.ValidStake(n) {
		log.Warn().Str("value", v).Msg("prefs_stake_corrupt")
		return terminal.DefaultStake
	}
	return n
}

func (s *Store) Token(ctx context.Context) string {
	v, err := s.Get(ctx, TerminalScope, KeyAuthToken)
	if err != nil {
		logMiss(err, KeyAuthToken)
		return ""
	}
	return v
}

func (s *Store) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Delete(ctx, TerminalScope, KeyAuthToken)
	}
	return s.Put(ctx, TerminalScope, KeyAuthToken, token)
}

func logMiss(err error, key string) {
	if errors.Is(err, ErrNotFound) {
		return
	}
	log.Warn().Err(err).Str("key", key).Msg("prefs_read_failed")
}
