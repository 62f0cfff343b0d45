package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gmapscrape/internal/business"
)

// WriteSQLite 将记录 upsert 到 path 数据库的 businesses 表，不存在时创建
// 以名称和地址作为主键
func WriteSQLite(ctx context.Context, path string, records []business.Record, runID string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	cols := storedFields()
	if _, err := db.ExecContext(ctx, schema(cols)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsert(cols))
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range records {
		r := &records[i]
		args := []any{r.Key(), runID, r.Index, now}
		for _, f := range cols {
			args = append(args, r.Get(f))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to store %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// storedFields 表中保存的字段，index 存为 position
func storedFields() []business.Field {
	out := make([]business.Field, 0, len(business.Fields))
	for _, f := range business.Fields {
		if f != business.FieldIndex {
			out = append(out, f)
		}
	}
	return out
}

func schema(cols []business.Field) string {
	var sb strings.Builder
	sb.WriteString(`CREATE TABLE IF NOT EXISTS businesses (
  record_key TEXT PRIMARY KEY,
  run_id TEXT,
  position INTEGER,
  scraped_at TEXT`)
	for _, c := range cols {
		fmt.Fprintf(&sb, ",\n  %s TEXT", c)
	}
	sb.WriteString("\n);")
	return sb.String()
}

func upsert(cols []business.Field) string {
	names := []string{"record_key", "run_id", "position", "scraped_at"}
	updates := []string{"run_id=excluded.run_id", "position=excluded.position", "scraped_at=excluded.scraped_at"}
	for _, c := range cols {
		names = append(names, string(c))
		updates = append(updates, fmt.Sprintf("%s=excluded.%s", c, c))
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return fmt.Sprintf("INSERT INTO businesses (%s) VALUES (%s)\nON CONFLICT(record_key) DO UPDATE SET %s;",
		strings.Join(names, ", "), marks, strings.Join(updates, ", "))
}
