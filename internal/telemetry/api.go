package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics so that tests can assert on
// what a component reports.
//
// Report ids name the component that broke, not the line that broke. They
// are lowercase, use underscores for larger components and dashes for
// methods (ex. `fetcher.fetch`, `authenticator.login`). Use a ScopedAPI to
// namespace them per package.
type API interface {
	// ReportBroken reports a component that has broken in a way that should be addressed.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something that is not necessarily broken but may be worth investigating.
	ReportWarning(id string, params ...any)
	// ReportDebug reports debug information that is ignored in production.
	ReportDebug(msg string, params ...any)
	// ReportCount reports the count of an event at the current time, counts
	// are points of data over time and should not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI attaches a namespace to every report id, like a sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
