// Package datarecording stores flat records, such as burst traces and
// counter snapshots, in an SQLite database.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/tebeka/atexit"
)

// ErrNoTable is returned when inserting into a table that was never created.
var ErrNoTable = errors.New("no such table")

// ErrInvalidEntry is returned when an entry is not a flat struct.
var ErrInvalidEntry = errors.New("invalid entry")

// DefaultBatchSize is the number of buffered entries that triggers a flush.
const DefaultBatchSize = 100000

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry for a table that already exists. Entries
	// must have the type of the table's sample entry.
	InsertData(tableName string, entry any) error

	// ListTables returns the names of all tables, sorted.
	ListTables() []string

	// Flush writes all buffered entries into the database.
	Flush() error

	// Close flushes and closes the database.
	Close() error
}

// New creates a DataRecorder writing into path + ".sqlite3". An empty path
// picks a unique name. The file must not exist yet.
func New(path string) (DataRecorder, error) {
	if path == "" {
		path = "packetgraph_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	logging.Get(logging.Recorder).Info("database created for recording",
		"file", filename)

	w := newWriter(db)
	w.filename = filename

	atexit.Register(func() { _ = w.Flush() })

	return w, nil
}

// NewWithDB creates a DataRecorder on an open database. Closing the recorder
// closes db.
func NewWithDB(db *sql.DB) DataRecorder {
	w := newWriter(db)

	atexit.Register(func() { _ = w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into an SQLite database.
type sqliteWriter struct {
	lock sync.Mutex
	db   *sql.DB

	filename   string
	tables     map[string]*table
	batchSize  int
	entryCount int
	closed     bool
}

func newWriter(db *sql.DB) *sqliteWriter {
	return &sqliteWriter{
		db:        db,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
	}
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

// columns returns the exported field names of a flat struct type.
func columns(t reflect.Type) ([]string, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrInvalidEntry, t)
	}

	names := make([]string, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			return nil, fmt.Errorf("%w: field %s of %s is not exported",
				ErrInvalidEntry, field.Name, t)
		}

		if !isAllowedKind(field.Type.Kind()) {
			return nil, fmt.Errorf("%w: field %s of %s has kind %s",
				ErrInvalidEntry, field.Name, t, field.Type.Kind())
		}

		names = append(names, field.Name)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s has no fields", ErrInvalidEntry, t)
	}

	return names, nil
}

func (t *sqliteWriter) CreateTable(tableName string, sampleEntry any) error {
	structType := reflect.TypeOf(sampleEntry)

	names, err := columns(structType)
	if err != nil {
		return err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if _, exists := t.tables[tableName]; exists {
		return fmt.Errorf("table %s already exists", tableName)
	}

	fields := strings.Join(names, ", \n\t")
	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`

	if _, err := t.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	t.tables[tableName] = &table{structType: structType}

	return nil
}

func (t *sqliteWriter) InsertData(tableName string, entry any) error {
	t.lock.Lock()

	tbl, exists := t.tables[tableName]
	if !exists {
		t.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrNoTable, tableName)
	}

	if reflect.TypeOf(entry) != tbl.structType {
		t.lock.Unlock()
		return fmt.Errorf("%w: table %s takes %s, got %T",
			ErrInvalidEntry, tableName, tbl.structType, entry)
	}

	tbl.entries = append(tbl.entries, entry)
	t.entryCount++

	full := t.entryCount >= t.batchSize
	t.lock.Unlock()

	if full {
		return t.Flush()
	}

	return nil
}

func (t *sqliteWriter) ListTables() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	tables := make([]string, 0, len(t.tables))
	for name := range t.tables {
		tables = append(tables, name)
	}

	sort.Strings(tables)

	return tables
}

func (t *sqliteWriter) Flush() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.flushLocked()
}

func (t *sqliteWriter) flushLocked() error {
	if t.entryCount == 0 || t.closed {
		return nil
	}

	tx, err := t.db.Begin()
	if err != nil {
		return err
	}

	for _, name := range t.sortedTableNames() {
		tbl := t.tables[name]
		if len(tbl.entries) == 0 {
			continue
		}

		if err := insertAll(tx, name, tbl); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, tbl := range t.tables {
		tbl.entries = nil
	}

	t.entryCount = 0

	return nil
}

func (t *sqliteWriter) sortedTableNames() []string {
	names := make([]string, 0, len(t.tables))
	for name := range t.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func insertAll(tx *sql.Tx, name string, tbl *table) error {
	placeholders := make([]string, tbl.structType.NumField())
	for i := range placeholders {
		placeholders[i] = "?"
	}

	sqlStr := "INSERT INTO " + name +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", name, err)
	}
	defer stmt.Close()

	for _, entry := range tbl.entries {
		v := reflect.ValueOf(entry)
		values := make([]any, v.NumField())

		for i := range values {
			values[i] = v.Field(i).Interface()
		}

		if _, err := stmt.Exec(values...); err != nil {
			return fmt.Errorf("inserting into %s: %w", name, err)
		}
	}

	return nil
}

func (t *sqliteWriter) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	err := t.flushLocked()
	t.closed = true

	if closeErr := t.db.Close(); err == nil {
		err = closeErr
	}

	return err
}
