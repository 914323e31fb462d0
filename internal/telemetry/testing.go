package telemetry

import (
	"strings"
	"sync"
)

type Report struct {
	Kind   string
	ID     string
	Params []any
}

// TestAPI records every report so tests can assert on them.
type TestAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func NewTestAPI() *TestAPI {
	return &TestAPI{}
}

func (t *TestAPI) record(kind, id string, params []any) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.reports = append(t.reports, Report{Kind: kind, ID: id, Params: params})
}

func (t *TestAPI) ReportBroken(id string, params ...any) {
	t.record("broken", id, params)
}

func (t *TestAPI) ReportWarning(id string, params ...any) {
	t.record("warning", id, params)
}

func (t *TestAPI) ReportDebug(msg string, params ...any) {
	t.record("debug", msg, params)
}

func (t *TestAPI) ReportCount(id string, count int64) {
	t.record("count", id, []any{count})
}

func (t *TestAPI) Reports() []Report {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	out := make([]Report, len(t.reports))
	copy(out, t.reports)
	return out
}

// Has returns true if a report of the given kind has an id ending in suffix.
func (t *TestAPI) Has(kind, idSuffix string) bool {
	for _, r := range t.Reports() {
		if r.Kind == kind && strings.HasSuffix(r.ID, idSuffix) {
			return true
		}
	}
	return false
}
