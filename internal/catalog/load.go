package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mitchellh/mapstructure"

	// sqlite3 driver for catalog databases.
	_ "github.com/mattn/go-sqlite3"
)

const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"

	defaultTable = "movies"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// columnAliases maps column names used by common movie datasets to Item fields.
var columnAliases = map[string]string{
	"movie_id": "id",
	"movieid":  "id",
	"name":     "title",
}

// Source describes where a catalog is stored.
type Source struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
	Table  string `mapstructure:"table"`
}

// Load reads the catalog described by src. An empty format is guessed from the file extension.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	path := strings.TrimSpace(src.Path)
	if path == "" {
		return nil, fmt.Errorf("catalog path is not configured: %w", ErrUninitialized)
	}

	format := strings.ToLower(strings.TrimSpace(src.Format))
	if format == "" {
		format = formatFromPath(path)
	}

	switch format {
	case FormatCSV:
		return LoadCSV(path)
	case FormatSQLite:
		return LoadSQLite(ctx, path, src.Table)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// LoadCSV reads a catalog from a CSV file with a header row.
func LoadCSV(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	rows, err := readCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}

	items, err := decodeItems(rows)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %q: %w", path, err)
	}

	return New(items)
}

func readCSV(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	for i, column := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")))
	}

	var rows []map[string]any
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(map[string]any, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LoadSQLite reads a catalog from a table of a SQLite database. Rows are taken in rowid order.
func LoadSQLite(ctx context.Context, path, table string) (*Catalog, error) {
	if table = strings.TrimSpace(table); table == "" {
		table = defaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}

	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", table)
	result, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog table %q: %w", table, err)
	}
	defer result.Close()

	var rows []map[string]any
	for result.Next() {
		row := make(map[string]any)
		if err := result.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}

		normalized := make(map[string]any, len(row))
		for column, value := range row {
			normalized[strings.ToLower(column)] = value
		}
		rows = append(rows, normalized)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read catalog table %q: %w", table, err)
	}

	items, err := decodeItems(rows)
	if err != nil {
		return nil, fmt.Errorf("decode catalog table %q: %w", table, err)
	}

	return New(items)
}

func decodeItems(rows []map[string]any) ([]Item, error) {
	items := make([]Item, 0, len(rows))
	for i, row := range rows {
		for alias, column := range columnAliases {
			if value, ok := row[alias]; ok {
				if _, exists := row[column]; !exists {
					row[column] = value
				}
			}
		}

		var item Item
		cfg := &mapstructure.DecoderConfig{
			Result:           &item,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				bytesToStringHook,
				genresHook,
			),
		}

		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("row %d: title is empty", i+1)
		}

		items = append(items, item)
	}

	return items, nil
}

func bytesToStringHook(from, to reflect.Type, data any) (any, error) {
	if b, ok := data.([]byte); ok && to.Kind() != reflect.Slice {
		return string(b), nil
	}
	return data, nil
}

func genresHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf([]string(nil)) {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return ParseGenres(v), nil
	case []byte:
		return ParseGenres(string(v)), nil
	default:
		return data, nil
	}
}

// ParseGenres accepts either a JSON list of {"name": ...} objects (TMDB dumps) or a comma or pipe
// separated list.
func ParseGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var named []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(raw), &named); err == nil {
			genres := make([]string, 0, len(named))
			for _, g := range named {
				if name := strings.TrimSpace(g.Name); name != "" {
					genres = append(genres, name)
				}
			}
			return genres
		}

		var plain []string
		if err := json.Unmarshal([]byte(raw), &plain); err == nil {
			return plain
		}
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '|' })
	genres := make([]string, 0, len(fields))
	for _, field := range fields {
		if name := strings.TrimSpace(field); name != "" {
			genres = append(genres, name)
		}
	}
	return genres
}
