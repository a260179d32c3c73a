package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
)

// ErrNotFound 没有该国家的历史报告
var ErrNotFound = errors.New("report not found")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Record 一次已完成运行的报告与轨迹
type Record struct {
	Report *model.IntelReport `json:"report"`
	Trace  []string           `json:"trace"`
}

// Storage 报告历史存储
type Storage struct {
	db *sql.DB
}

// NewStorage 连接 PostgreSQL 并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := New(db)
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// New 使用已有连接
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS intel_runs (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			country TEXT NOT NULL,
			country_key TEXT NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL,
			notice TEXT NOT NULL DEFAULT '',
			sources TEXT NOT NULL DEFAULT '[]',
			categories TEXT NOT NULL DEFAULT '[]',
			trace TEXT NOT NULL DEFAULT '[]'
		)`,
		`ALTER TABLE intel_runs ADD COLUMN IF NOT EXISTS categories TEXT NOT NULL DEFAULT '[]'`,
		`CREATE INDEX IF NOT EXISTS idx_intel_runs_country ON intel_runs (country_key, generated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS intel_items (
			id SERIAL PRIMARY KEY,
			run_pk INTEGER NOT NULL REFERENCES intel_runs(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			position INTEGER NOT NULL,
			summary TEXT NOT NULL,
			source TEXT NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(query), err)
		}
	}
	return nil
}

// SaveReport 在一个事务内保存报告、条目和轨迹
func (s *Storage) SaveReport(ctx context.Context, report *model.IntelReport, trace []string) error {
	sources, err := json.Marshal(report.Sources)
	if err != nil {
		return err
	}
	traceJSON, err := json.Marshal(sanitizeAll(trace))
	if err != nil {
		return err
	}
	// 空主题没有条目行，需单独记录主题列表
	categories, err := json.Marshal(sortedKeys(report.Categories))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert("intel_runs").
		Columns("run_id", "country", "country_key", "generated_at", "notice", "sources", "categories", "trace").
		Values(report.RunID, report.Country, CountryKey(report.Country), report.GeneratedAt, report.Notice, string(sources), string(categories), string(traceJSON)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return rollback(tx, err)
	}
	var runPK int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&runPK); err != nil {
		return rollback(tx, fmt.Errorf("insert run: %w", err))
	}

	if report.ItemCount() > 0 {
		ins := psql.Insert("intel_items").Columns("run_pk", "category", "position", "summary", "source")
		for _, cat := range sortedKeys(report.Categories) {
			for i, it := range report.Categories[cat] {
				ins = ins.Values(runPK, cat, i, sanitize(it.Summary), it.Source)
			}
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return rollback(tx, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return rollback(tx, fmt.Errorf("insert items: %w", err))
		}
	}

	return tx.Commit()
}

// LatestReport 返回该国家最近一次的报告
func (s *Storage) LatestReport(ctx context.Context, country string) (*Record, error) {
	query, args, err := psql.Select("id", "run_id", "country", "generated_at", "notice", "sources", "categories", "trace").
		From("intel_runs").
		Where(sq.Eq{"country_key": CountryKey(country)}).
		OrderBy("generated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		runPK       int64
		report      model.IntelReport
		generatedAt time.Time
		sources     string
		categories  string
		traceJSON   string
	)
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&runPK, &report.RunID, &report.Country, &generatedAt, &report.Notice, &sources, &categories, &traceJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	report.GeneratedAt = generatedAt.UTC()
	if err := json.Unmarshal([]byte(sources), &report.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	var trace []string
	if err := json.Unmarshal([]byte(traceJSON), &trace); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	var catIDs []string
	if err := json.Unmarshal([]byte(categories), &catIDs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	query, args, err = psql.Select("category", "summary", "source").
		From("intel_items").
		Where(sq.Eq{"run_pk": runPK}).
		OrderBy("category", "position").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	report.Categories = make(map[string][]model.IntelItem, len(catIDs))
	for _, id := range catIDs {
		report.Categories[id] = []model.IntelItem{}
	}
	for rows.Next() {
		var cat string
		var it model.IntelItem
		if err := rows.Scan(&cat, &it.Summary, &it.Source); err != nil {
			return nil, err
		}
		report.Categories[cat] = append(report.Categories[cat], it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Record{Report: &report, Trace: trace}, nil
}

// CountryKey 国家名的规范化形式
func CountryKey(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}

func rollback(tx *sql.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

// sanitize 移除无效的 UTF-8 字符和 NULL 字节，PostgreSQL 文本字段不支持
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}

func sanitizeAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = sanitize(l)
	}
	return out
}

func sortedKeys(m map[string][]model.IntelItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
