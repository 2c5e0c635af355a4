package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// QueryParams encapsulates all query parameters.
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword.
	// Example: "Brick = ? AND Packets > ?"
	Where string

	// Args holds the arguments for the placeholders in Where.
	Args []any

	// Limit is the maximum number of records to return. 0 means no limit.
	Limit int

	// Offset is the number of records to skip. Only used with a Limit.
	Offset int

	// OrderBy specifies sorting, without the "ORDER BY" keywords.
	// Example: "Packets DESC"
	OrderBy string
}

// DataReader reads back what a DataRecorder wrote.
type DataReader interface {
	// MapTable establishes a mapping between a database table and a Go struct
	// type. This mapping is required before querying a table.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables, sorted.
	ListTables() []string

	// Query returns pointers to entries of the mapped type, along with the
	// number of rows matching params.Where regardless of the limit.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the reader.
	Close() error
}

type sqliteReader struct {
	db      *sql.DB
	typeMap map[string]reflect.Type
}

// NewReader opens an SQLite database file for reading.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader on an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.typeMap))
	for table := range r.typeMap {
		tables = append(tables, table)
	}

	sort.Strings(tables)

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("%w: no mapping for %s", ErrNoTable, tableName)
	}

	var total int

	err := r.db.QueryRowContext(ctx,
		selectSQL("COUNT(*)", tableName, QueryParams{Where: params.Where}),
		params.Args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectSQL("*", tableName, params), params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	results, err := scanRows(rows, structType)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// selectSQL renders a SELECT of what from table, honoring the clauses set in
// params. Offsets only apply together with a limit.
func selectSQL(what, table string, params QueryParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT %s FROM %s", what, table)

	if params.Where != "" {
		b.WriteString(" WHERE " + params.Where)
	}

	if params.OrderBy != "" {
		b.WriteString(" ORDER BY " + params.OrderBy)
	}

	if params.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", params.Limit)

		if params.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", params.Offset)
		}
	}

	return b.String()
}

// scanRows builds one struct per row. Columns are matched to fields by name;
// columns without a field are read and dropped.
func scanRows(rows *sql.Rows, structType reflect.Type) ([]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldOf := make([]int, len(cols))
	for i, col := range cols {
		fieldOf[i] = -1

		if f, ok := structType.FieldByName(col); ok && len(f.Index) == 1 {
			fieldOf[i] = f.Index[0]
		}
	}

	var (
		results []any
		discard any
	)

	targets := make([]any, len(cols))

	for rows.Next() {
		entry := reflect.New(structType)

		for i, f := range fieldOf {
			if f < 0 {
				targets[i] = &discard
				continue
			}

			targets[i] = entry.Elem().Field(f).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}
