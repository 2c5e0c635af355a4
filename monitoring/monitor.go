// Package monitoring turns a running set of graphs into an HTTP server that
// can be inspected from a browser or a script.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/packetgraph/brick"
	"github.com/sarchlab/packetgraph/graph"
	"github.com/sarchlab/packetgraph/logging"
	"github.com/sarchlab/packetgraph/monitoring/web"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Monitor serves the state of registered graphs. Every read of a graph or a
// brick holds the locker given to NewMonitor; the loop polling the graphs
// must hold it around each poll.
type Monitor struct {
	locker     sync.Locker
	portNumber int
	server     *http.Server

	lock   sync.Mutex
	graphs []*graph.Graph

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor. A nil locker means the graphs are not
// polled while the monitor serves.
func NewMonitor(locker sync.Locker) *Monitor {
	if locker == nil {
		locker = nopLocker{}
	}

	return &Monitor{locker: locker}
}

// WithPortNumber sets the port number of the monitor. Privileged ports are
// refused and a random port is used instead.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		logging.Get(logging.Monitor).Warn(
			"port not allowed for the monitor, using a random port",
			"port", portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterGraph starts monitoring a graph.
func (m *Monitor) RegisterGraph(g *graph.Graph) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.graphs = append(m.graphs, g)
}

// UnregisterGraph stops monitoring the graph with the given name.
func (m *Monitor) UnregisterGraph(name string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for i, g := range m.graphs {
		if g.Name() == name {
			m.graphs = append(m.graphs[:i], m.graphs[i+1:]...)
			return
		}
	}
}

func (m *Monitor) registeredGraphs() []*graph.Graph {
	m.lock.Lock()
	defer m.lock.Unlock()

	out := make([]*graph.Graph, len(m.graphs))
	copy(out, m.graphs)

	return out
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:        xid.New().String(),
		name:      name,
		startTime: time.Now(),
		total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the page.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router serving the API and the web page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/graphs", m.listGraphs)
	r.HandleFunc("/api/graph/{name}", m.graphDetails)
	r.HandleFunc("/api/graph/{name}/dot", m.graphDot)
	r.HandleFunc("/api/graph/{name}/sanity", m.graphSanity)
	r.HandleFunc("/api/brick/{name}", m.brickDetails)
	r.HandleFunc("/api/brick/{name}/state", m.brickState)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the address it
// listens on.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", err
	}

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	port := listener.Addr().(*net.TCPAddr).Port
	logger := logging.Get(logging.Monitor)
	logger.Info("monitoring graphs",
		"url", fmt.Sprintf("http://localhost:%d", port))

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("monitor server error", "error", err)
		}
	}()

	return listener.Addr().String(), nil
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

type graphSummary struct {
	Name     string `json:"name"`
	Bricks   int    `json:"bricks"`
	Pollable int    `json:"pollable"`
}

type graphRsp struct {
	Name   string      `json:"name"`
	Bricks []brickInfo `json:"bricks"`
}

type edgeInfo struct {
	Side      string `json:"side"`
	Index     int    `json:"index"`
	Peer      string `json:"peer"`
	PairIndex int    `json:"pair_index"`
}

type brickInfo struct {
	Name        string     `json:"name"`
	Kind        string     `json:"kind"`
	Type        string     `json:"type"`
	Refcount    int        `json:"refcount"`
	Pollable    bool       `json:"pollable"`
	OutwardSide string     `json:"outward_side"`
	WestMax     int        `json:"west_max"`
	EastMax     int        `json:"east_max"`
	WestPackets uint64     `json:"west_packets"`
	EastPackets uint64     `json:"east_packets"`
	RxBytes     uint64     `json:"rx_bytes"`
	TxBytes     uint64     `json:"tx_bytes"`
	Edges       []edgeInfo `json:"edges"`
}

func describeBrick(b *brick.Brick) brickInfo {
	info := brickInfo{
		Name:        b.Name(),
		Kind:        b.Kind(),
		Type:        b.Type().String(),
		Refcount:    b.Refcount(),
		Pollable:    b.Pollable(),
		OutwardSide: b.OutwardSide().String(),
		WestMax:     b.MaxEdges(brick.West),
		EastMax:     b.MaxEdges(brick.East),
		WestPackets: b.PacketsCount(brick.West),
		EastPackets: b.PacketsCount(brick.East),
		RxBytes:     b.RxBytes(),
		TxBytes:     b.TxBytes(),
		Edges:       []edgeInfo{},
	}

	sides := []brick.Side{brick.West, brick.East}
	if b.Type() == brick.Monopole {
		sides = []brick.Side{b.OutwardSide()}
	}

	for _, s := range sides {
		for i, e := range b.Edges(s) {
			if !e.Linked() {
				continue
			}

			info.Edges = append(info.Edges, edgeInfo{
				Side:      s.String(),
				Index:     i,
				Peer:      e.Link.Name(),
				PairIndex: e.PairIndex,
			})
		}
	}

	return info
}

func (m *Monitor) listGraphs(w http.ResponseWriter, _ *http.Request) {
	m.locker.Lock()

	rsp := []graphSummary{}
	for _, g := range m.registeredGraphs() {
		rsp = append(rsp, graphSummary{
			Name:     g.Name(),
			Bricks:   g.Count(),
			Pollable: len(g.Pollable()),
		})
	}

	m.locker.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) findGraph(name string) *graph.Graph {
	for _, g := range m.registeredGraphs() {
		if g.Name() == name {
			return g
		}
	}

	return nil
}

func (m *Monitor) findBrick(name string) *brick.Brick {
	for _, g := range m.registeredGraphs() {
		if b := g.Get(name); b != nil {
			return b
		}
	}

	return nil
}

func (m *Monitor) graphDetails(w http.ResponseWriter, r *http.Request) {
	m.locker.Lock()

	g := m.findGraph(mux.Vars(r)["name"])
	if g == nil {
		m.locker.Unlock()
		http.Error(w, "graph not found", http.StatusNotFound)

		return
	}

	rsp := graphRsp{Name: g.Name(), Bricks: []brickInfo{}}
	for _, b := range g.Bricks() {
		rsp.Bricks = append(rsp.Bricks, describeBrick(b))
	}

	m.locker.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) graphDot(w http.ResponseWriter, r *http.Request) {
	m.locker.Lock()
	defer m.locker.Unlock()

	g := m.findGraph(mux.Vars(r)["name"])
	if g == nil {
		http.Error(w, "graph not found", http.StatusNotFound)
		return
	}

	buf := bytes.NewBuffer(nil)
	if err := g.Dot(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write(buf.Bytes())
}

type sanityRsp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (m *Monitor) graphSanity(w http.ResponseWriter, r *http.Request) {
	m.locker.Lock()

	g := m.findGraph(mux.Vars(r)["name"])
	if g == nil {
		m.locker.Unlock()
		http.Error(w, "graph not found", http.StatusNotFound)

		return
	}

	rsp := sanityRsp{OK: true}
	if err := g.Sanity(); err != nil {
		rsp = sanityRsp{Error: err.Error()}
	}

	m.locker.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) brickDetails(w http.ResponseWriter, r *http.Request) {
	m.locker.Lock()

	b := m.findBrick(mux.Vars(r)["name"])
	if b == nil {
		m.locker.Unlock()
		http.Error(w, "brick not found", http.StatusNotFound)

		return
	}

	info := describeBrick(b)

	m.locker.Unlock()

	writeJSON(w, info)
}

// brickState dumps the kind-specific implementation of a brick.
func (m *Monitor) brickState(w http.ResponseWriter, r *http.Request) {
	m.locker.Lock()
	defer m.locker.Unlock()

	b := m.findBrick(mux.Vars(r)["name"])
	if b == nil {
		http.Error(w, "brick not found", http.StatusNotFound)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(b.Impl())
	serializer.SetMaxDepth(1)

	if err := serializer.Serialize(w); err != nil {
		logging.Get(logging.Monitor).Error("serializing brick state",
			"brick", b.Name(), "error", err)
	}
}

type fieldReq struct {
	BrickName string `json:"brick_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	if err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.locker.Lock()
	defer m.locker.Unlock()

	b := m.findBrick(req.BrickName)
	if b == nil {
		http.Error(w, "brick not found", http.StatusNotFound)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(b.Impl())
	serializer.SetMaxDepth(1)

	if err := serializer.SetEntryPoint(strings.Split(req.FieldName, ".")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := serializer.Serialize(w); err != nil {
		logging.Get(logging.Monitor).Error("serializing field",
			"brick", b.Name(), "field", req.FieldName, "error", err)
	}
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	snapshots := make([]Progress, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		snapshots = append(snapshots, b.Snapshot())
	}

	writeJSON(w, snapshots)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

// collectProfile samples the CPU for one second, or for ?seconds=N.
func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second

	if s := r.URL.Query().Get("seconds"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 30 {
			http.Error(w, "seconds must be within 1..30", http.StatusBadRequest)
			return
		}

		duration = time.Duration(n) * time.Second
	}

	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(duration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
