package tracing

import (
	"fmt"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/datarecording"
	"github.com/sarchlab/packetgraph/packet"
	"github.com/tebeka/atexit"
)

// SessionTable indexes the tracing sessions a DBTracer recorded.
const SessionTable = "trace"

// Session is one EnableTracing/StopTracing window. Its bursts are stored in
// the table named TableName. Times are Unix nanoseconds.
type Session struct {
	TableName    string
	SessionStart int64
	SessionEnd   int64
	Bursts       int
}

// BurstRecord is one burst seen by a DBTracer.
type BurstRecord struct {
	ID      string
	Time    int64
	Brick   string
	Kind    string
	Side    string
	Edge    int
	Packets int
	Bytes   uint64
}

// DBTracer stores the bursts it sees into a DataRecorder. Nothing is stored
// outside of a tracing session.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller TimeTeller
	backend    datarecording.DataRecorder
	filter     BurstFilter

	isTracing        bool
	traceCount       int
	currentTableName string
	sessionStart     int64
	sessionBursts    int
	err              error
}

// NewDBTracer creates a new DBTracer. The session table is created on the
// recorder and the tracer is terminated at exit.
func NewDBTracer(
	timeTeller TimeTeller,
	dataRecorder datarecording.DataRecorder,
) (*DBTracer, error) {
	if timeTeller == nil {
		timeTeller = WallClock{}
	}

	if err := dataRecorder.CreateTable(SessionTable, Session{}); err != nil {
		return nil, err
	}

	t := &DBTracer{
		timeTeller: timeTeller,
		backend:    dataRecorder,
		filter:     AllBursts,
	}

	atexit.Register(func() {
		_ = t.Terminate()
	})

	return t, nil
}

// SetFilter limits the bursts that are stored.
func (t *DBTracer) SetFilter(filter BurstFilter) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if filter == nil {
		filter = AllBursts
	}

	t.filter = filter
}

// IsTracing reports whether a session is open.
func (t *DBTracer) IsTracing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.isTracing
}

// Err returns the first error met while storing a burst.
func (t *DBTracer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

// EnableTracing opens a session. Opening a session while one is open does
// nothing.
func (t *DBTracer) EnableTracing() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isTracing {
		return nil
	}

	tableName := fmt.Sprintf("trace%d", t.traceCount+1)
	if err := t.backend.CreateTable(tableName, BurstRecord{}); err != nil {
		return err
	}

	t.traceCount++
	t.currentTableName = tableName
	t.isTracing = true
	t.sessionStart = t.timeTeller.CurrentTime().UnixNano()
	t.sessionBursts = 0

	return nil
}

// StopTracing closes the current session, records it in the session table
// and flushes the recorder.
func (t *DBTracer) StopTracing() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stopLocked()
}

func (t *DBTracer) stopLocked() error {
	if !t.isTracing {
		return nil
	}

	t.isTracing = false

	err := t.backend.InsertData(SessionTable, Session{
		TableName:    t.currentTableName,
		SessionStart: t.sessionStart,
		SessionEnd:   t.timeTeller.CurrentTime().UnixNano(),
		Bursts:       t.sessionBursts,
	})
	if err != nil {
		return err
	}

	return t.backend.Flush()
}

// Terminate closes the open session, if any, and flushes the recorder.
func (t *DBTracer) Terminate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.stopLocked(); err != nil {
		return err
	}

	return t.backend.Flush()
}

// TraceBurst stores a burst when a session is open.
func (t *DBTracer) TraceBurst(b *brick.Brick, info brick.BurstInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isTracing || !t.filter(b, info) {
		return
	}

	rec := BurstRecord{
		ID:      xid.New().String(),
		Time:    t.timeTeller.CurrentTime().UnixNano(),
		Brick:   b.Name(),
		Kind:    b.Kind(),
		Side:    info.From.String(),
		Edge:    info.Edge,
		Packets: info.Mask.Count(),
		Bytes:   packet.Bytes(info.Packets, info.Mask),
	}

	if err := t.backend.InsertData(t.currentTableName, rec); err != nil {
		if t.err == nil {
			t.err = err
		}

		return
	}

	t.sessionBursts++
}

// TracePoll does nothing. Polls show up as the bursts they emit.
func (t *DBTracer) TracePoll(*brick.Brick, brick.PollInfo) {}
