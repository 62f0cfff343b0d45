package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"gmapscrape/internal/business"
	"gmapscrape/internal/formatter"
)

// ErrUnknownFormat 不支持的导出格式
var ErrUnknownFormat = errors.New("unknown export format")

// Formats 支持的导出格式，同时也是文件扩展名
var Formats = []string{"csv", "json", "xlsx", "sqlite"}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// Meta 导出所属的运行信息
type Meta struct {
	Query    string
	Location string
	RunID    string
}

// Exporter 将记录写入目录
type Exporter struct {
	dir string
	log *zap.Logger
	now func() time.Time
}

func New(dir string, log *zap.Logger) *Exporter {
	return &Exporter{dir: dir, log: log, now: time.Now}
}

// Sanitize 去掉字母、数字、下划线、空白和连字符以外的字符
// 去除首尾空白后将空格替换为下划线
func Sanitize(s string) string {
	s = strings.TrimSpace(unsafeChars.ReplaceAllString(s, ""))
	return strings.ReplaceAll(s, " ", "_")
}

// Filename 生成 "<query>_<location>_<unix ts>.<ext>"，location 为空时省略
func Filename(query, location string, ts time.Time, ext string) string {
	parts := []string{Sanitize(query)}
	if loc := Sanitize(location); loc != "" {
		parts = append(parts, loc)
	}
	parts = append(parts, strconv.FormatInt(ts.Unix(), 10))
	return strings.Join(parts, "_") + "." + ext
}

// Export 按每种格式写出记录并返回文件路径
// 记录为空时只记录警告
func (e *Exporter) Export(ctx context.Context, records []business.Record, meta Meta, formats []string) ([]string, error) {
	for _, f := range formats {
		if !isFormat(f) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
		}
	}
	if len(records) == 0 {
		e.log.Warn("no businesses to save", zap.String("query", meta.Query))
		return nil, nil
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := e.now()
	var paths []string
	for _, f := range formats {
		path := filepath.Join(e.dir, Filename(meta.Query, meta.Location, ts, f))
		var err error
		switch f {
		case "csv":
			err = WriteCSV(path, records)
		case "json":
			err = WriteJSON(path, records)
		case "xlsx":
			rep := business.NewReport(records)
			rep.RunID = meta.RunID
			err = WriteXLSX(path, records, rep)
		case "sqlite":
			err = WriteSQLite(ctx, path, records, meta.RunID)
		}
		if err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", f, err)
		}
		e.log.Info("saved businesses", zap.String("format", f), zap.String("path", path), zap.Int("count", len(records)))
		paths = append(paths, path)
	}
	return paths, nil
}

func isFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// WriteCSV 写出 CSV，列为所有非空字段的并集
func WriteCSV(path string, records []business.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := formatter.WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON 写出缩进的 JSON 数组
func WriteJSON(path string, records []business.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if records == nil {
		records = []business.Record{}
	}
	if err := enc.Encode(records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON 读取 WriteJSON 写出的记录
func ReadJSON(path string) ([]business.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []business.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
