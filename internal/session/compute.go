package session

import (
	"sync"

	"github.com/chalkline-data/performance.report/internal/crossfilter"
)

// boardRetries bounds how many times Board restarts when interactions
// land while a snapshot is being computed.
const boardRetries = 3

// ChartView is one chart's aggregated series plus its selection marker.
type ChartView struct {
	Dimension string                        `json:"dimension"`
	Label     string                        `json:"label"`
	Kind      crossfilter.Kind              `json:"kind"`
	Selected  string                        `json:"selected,omitempty"`
	Records   []crossfilter.AggregateRecord `json:"records"`
	NoData    bool                          `json:"no_data"`
}

// Board is the full dashboard snapshot for one session: every chart,
// the KPI strip and the status line, all derived from the same state
// version.
type Board struct {
	SessionID    string                  `json:"session_id"`
	Version      uint64                  `json:"version"`
	Status       string                  `json:"status"`
	TotalRows    int                     `json:"total_rows"`
	FilteredRows int                     `json:"filtered_rows"`
	KPIs         crossfilter.KPISnapshot `json:"kpis"`
	Charts       []ChartView             `json:"charts"`
}

// Computer derives boards from the loaded dataset. The dataset and
// registry are immutable after construction, so one computer serves all
// sessions concurrently; the only mutable state is inside each
// session's store.
type Computer struct {
	reg    *crossfilter.Registry
	rows   []crossfilter.Record
	params crossfilter.KPIParams

	// snapshotHook, when set, runs after each state snapshot is taken.
	// Tests use it to land interactions mid-computation.
	snapshotHook func()
}

// NewComputer creates a board computer over the given dataset.
func NewComputer(reg *crossfilter.Registry, rows []crossfilter.Record, params crossfilter.KPIParams) *Computer {
	return &Computer{reg: reg, rows: rows, params: params}
}

// Board assembles the dashboard snapshot for sess. Charts and KPIs are
// computed in parallel from one state snapshot. If the session state
// changes while the board is being built, the computation restarts from
// the newest state so a stale board never supersedes a newer
// interaction; after boardRetries restarts the last consistent snapshot
// is returned with its own version.
func (c *Computer) Board(sess *Session) (*Board, error) {
	store := sess.Store()
	for attempt := 0; ; attempt++ {
		state, version := store.Current()
		if c.snapshotHook != nil {
			c.snapshotHook()
		}
		board, err := c.boardAt(sess.ID, state, version)
		if err != nil {
			return nil, err
		}
		if store.Version() == version || attempt >= boardRetries {
			return board, nil
		}
	}
}

// boardAt computes the board for one frozen state snapshot.
func (c *Computer) boardAt(sessionID string, state crossfilter.State, version uint64) (*Board, error) {
	dims := c.reg.Dimensions()
	charts := make([]ChartView, len(dims))
	errs := make([]error, len(dims)+1)

	var wg sync.WaitGroup
	for i, dim := range dims {
		wg.Add(1)
		go func(i int, dim crossfilter.Dimension) {
			defer wg.Done()
			subset, err := crossfilter.Filter(c.rows, c.reg, state, dim.Name)
			if err != nil {
				errs[i] = err
				return
			}
			charts[i] = chartView(dim, state, crossfilter.Aggregate(subset, dim))
		}(i, dim)
	}

	var kpis crossfilter.KPISnapshot
	var filtered int
	wg.Add(1)
	go func() {
		defer wg.Done()
		subset, err := crossfilter.Filter(c.rows, c.reg, state, "")
		if err != nil {
			errs[len(dims)] = err
			return
		}
		filtered = len(subset)
		kpis = crossfilter.ComputeKPIs(subset, c.params)
	}()

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &Board{
		SessionID:    sessionID,
		Version:      version,
		Status:       crossfilter.Summary(c.reg, state),
		TotalRows:    len(c.rows),
		FilteredRows: filtered,
		KPIs:         kpis,
		Charts:       charts,
	}, nil
}

// Chart computes a single chart for sess. The chart's own dimension is
// excluded from the filters so every selectable category stays visible.
func (c *Computer) Chart(sess *Session, dimension string) (ChartView, uint64, error) {
	dim, err := c.reg.Lookup(dimension)
	if err != nil {
		return ChartView{}, 0, err
	}
	state, version := sess.Store().Current()
	subset, err := crossfilter.Filter(c.rows, c.reg, state, dim.Name)
	if err != nil {
		return ChartView{}, 0, err
	}
	return chartView(dim, state, crossfilter.Aggregate(subset, dim)), version, nil
}

// Subset returns the rows passing every active filter, with the state
// version they were read under. Drill-down views aggregate it along
// fields that are not registered dimensions.
func (c *Computer) Subset(sess *Session) ([]crossfilter.Record, uint64) {
	state, version := sess.Store().Current()
	subset, _ := crossfilter.Filter(c.rows, c.reg, state, "") // empty exclude cannot fail
	return subset, version
}

// KPIs computes the KPI strip for sess under all active filters.
func (c *Computer) KPIs(sess *Session) (crossfilter.KPISnapshot, uint64) {
	state, version := sess.Store().Current()
	subset, _ := crossfilter.Filter(c.rows, c.reg, state, "") // empty exclude cannot fail
	return crossfilter.ComputeKPIs(subset, c.params), version
}

// Status renders the active-filter line for sess.
func (c *Computer) Status(sess *Session) (string, uint64) {
	state, version := sess.Store().Current()
	return crossfilter.Summary(c.reg, state), version
}

func chartView(dim crossfilter.Dimension, state crossfilter.State, data crossfilter.ChartData) ChartView {
	v := ChartView{
		Dimension: dim.Name,
		Label:     dim.Label,
		Kind:      dim.Kind,
		Records:   data.Records,
		NoData:    data.NoData,
	}
	if sel := state[dim.Name]; sel.Active {
		v.Selected = sel.Value
	}
	return v
}
