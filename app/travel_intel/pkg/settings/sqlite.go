package settings

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite 的键值设置
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite 打开或创建设置库，officialSources 仅在该键尚不存在时写入
func OpenSQLite(path string, officialSources []string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	conn.SetMaxOpenConns(2)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping settings db: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(strings.Join(officialSources, ",")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate settings db: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(officialSources string) error {
	if _, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return err
	}
	_, err := s.conn.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, KeyOfficialSources, officialSources)
	return err
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Get implements Store，每次调用都读取全部键值
func (s *SQLiteStore) Get(ctx context.Context) (*Settings, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		raw[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fromRaw(raw), nil
}

// GetSetting 读取单个设置
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting 写入单个设置，只接受已知的键
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	if !slices.Contains(Known, key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))`,
		key, value)
	return err
}
