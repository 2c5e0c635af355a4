package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecInfoTable is the table an ExecRecorder writes into.
const ExecInfoTable = "exec_info"

const timeLayout = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of a program run.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records when and how a program run happened.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the exec_info table on recorder.
func NewExecRecorder(recorder DataRecorder) (*ExecRecorder, error) {
	if err := recorder.CreateTable(ExecInfoTable, ExecInfo{}); err != nil {
		return nil, err
	}

	return &ExecRecorder{recorder: recorder}, nil
}

// Start notes the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	e.entries = append(e.entries,
		ExecInfo{"Start Time", time.Now().Format(timeLayout)},
		ExecInfo{"Command", strings.Join(os.Args, " ")},
	)

	if cwd, err := os.Getwd(); err == nil {
		e.entries = append(e.entries, ExecInfo{"Working Directory", cwd})
	}
}

// Note adds a free-form property to the run.
func (e *ExecRecorder) Note(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes the collected properties along with the end time and flushes.
func (e *ExecRecorder) End() error {
	e.entries = append(e.entries,
		ExecInfo{"End Time", time.Now().Format(timeLayout)})

	for _, entry := range e.entries {
		if err := e.recorder.InsertData(ExecInfoTable, entry); err != nil {
			return err
		}
	}

	e.entries = nil

	return e.recorder.Flush()
}
