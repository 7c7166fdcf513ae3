// Package store keeps the known organization servers in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Uri2001/orgs/internal/domainutil"
)

const schemaVersion = 1

// ErrNotFound is returned when a server to remove does not exist.
var ErrNotFound = errors.New("store: server not found")

// Server is a persisted organization.
type Server struct {
	ID         int64
	domainutil.Descriptor
	AddedAt    time.Time
	LastUsedAt sql.NullTime
	UseCount   int
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA optimize")
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS servers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL UNIQUE,
			alias TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			zulip_version TEXT NOT NULL DEFAULT '',
			feature_level INTEGER NOT NULL DEFAULT 0,
			added_at TIMESTAMP NOT NULL,
			last_used_at TIMESTAMP NULL,
			use_count INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_servers_last_used ON servers(last_used_at DESC);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return s.SetMeta(ctx, "schema_version", strconv.Itoa(schemaVersion))
}

func (s *Store) ListServers(ctx context.Context) ([]Server, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,url,alias,icon,zulip_version,feature_level,added_at,last_used_at,use_count
		FROM servers
		ORDER BY CASE WHEN last_used_at IS NULL THEN 1 ELSE 0 END,
		         last_used_at DESC,
		         alias ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []Server
	for rows.Next() {
		var srv Server
		if err := rows.Scan(&srv.ID, &srv.URL, &srv.Alias, &srv.Icon, &srv.ZulipVersion,
			&srv.FeatureLevel, &srv.AddedAt, &srv.LastUsedAt, &srv.UseCount); err != nil {
			return nil, err
		}
		servers = append(servers, srv)
	}
	return servers, rows.Err()
}

// HasServer reports whether url is already stored.
func (s *Store) HasServer(ctx context.Context, url string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM servers WHERE url=?`, url).Scan(&n)
	return n > 0, err
}

// AddDomain stores a validated server. Adding a URL that already exists
// refreshes its alias, icon and version.
func (s *Store) AddDomain(ctx context.Context, d domainutil.Descriptor) error {
	if d.URL == "" {
		return errors.New("store: descriptor without url")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO servers(url,alias,icon,zulip_version,feature_level,added_at)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT(url) DO UPDATE SET
			alias=excluded.alias,
			icon=excluded.icon,
			zulip_version=excluded.zulip_version,
			feature_level=excluded.feature_level`,
		d.URL, d.Alias, d.Icon, d.ZulipVersion, d.FeatureLevel, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add server %q: %w", d.URL, err)
	}
	return nil
}

func (s *Store) RemoveServer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM servers WHERE id=?`, id)
	return checkAffected(res, err)
}

func (s *Store) RemoveServerByURL(ctx context.Context, url string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM servers WHERE url=?`, url)
	return checkAffected(res, err)
}

func (s *Store) MarkUsed(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE servers SET use_count=use_count+1, last_used_at=? WHERE id=?`,
		time.Now().UTC(), id)
	return err
}

func (s *Store) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	return v, err == nil, err
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO meta(key,value) VALUES(?,?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
