package tracing

import (
	"context"
	"fmt"
	"strings"

	"github.com/sarchlab/packetgraph/datarecording"
)

// BurstQuery selects burst records. Empty fields are ignored.
type BurstQuery struct {
	// Session is the table name of the session to read.
	Session string

	Brick string
	Side  string

	// Limit caps the number of records. 0 means no limit.
	Limit int
}

// TraceReader reads back what a DBTracer stored.
type TraceReader struct {
	reader datarecording.DataReader
}

// NewTraceReader creates a TraceReader over a DataReader.
func NewTraceReader(reader datarecording.DataReader) *TraceReader {
	reader.MapTable(SessionTable, Session{})

	return &TraceReader{reader: reader}
}

// ListSessions returns every recorded session, oldest first.
func (r *TraceReader) ListSessions(ctx context.Context) ([]Session, error) {
	results, _, err := r.reader.Query(ctx, SessionTable,
		datarecording.QueryParams{OrderBy: "SessionStart"})
	if err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(results))
	for _, res := range results {
		sessions = append(sessions, *res.(*Session))
	}

	return sessions, nil
}

// ListBursts returns the bursts of a session matching the query, in the
// order they were seen.
func (r *TraceReader) ListBursts(
	ctx context.Context,
	query BurstQuery,
) ([]BurstRecord, error) {
	if query.Session == "" {
		return nil, fmt.Errorf("a session is required")
	}

	r.reader.MapTable(query.Session, BurstRecord{})

	var (
		conds []string
		args  []any
	)

	if query.Brick != "" {
		conds = append(conds, "Brick = ?")
		args = append(args, query.Brick)
	}

	if query.Side != "" {
		conds = append(conds, "Side = ?")
		args = append(args, query.Side)
	}

	results, _, err := r.reader.Query(ctx, query.Session,
		datarecording.QueryParams{
			Where:   strings.Join(conds, " AND "),
			Args:    args,
			OrderBy: "Time, rowid",
			Limit:   query.Limit,
		})
	if err != nil {
		return nil, err
	}

	bursts := make([]BurstRecord, 0, len(results))
	for _, res := range results {
		bursts = append(bursts, *res.(*BurstRecord))
	}

	return bursts, nil
}
