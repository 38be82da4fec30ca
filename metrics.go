package authvault

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	MetricIssueSuccess MetricID = iota
	MetricIssueFailure
	MetricValidateSuccess
	MetricValidateFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	// MetricRefreshReuse counts refresh attempts whose secret pair matched
	// no live entry: replayed, rotated-away, or mixed-session pairs.
	MetricRefreshReuse
	MetricRevoke
	MetricRevokeAll
	MetricSignupSuccess
	MetricSignupFailure
	MetricLoginSuccess
	MetricLoginFailure

	metricCount
)

var metricNames = [metricCount]string{
	MetricIssueSuccess:    "issue_success",
	MetricIssueFailure:    "issue_failure",
	MetricValidateSuccess: "validate_success",
	MetricValidateFailure: "validate_failure",
	MetricRefreshSuccess:  "refresh_success",
	MetricRefreshFailure:  "refresh_failure",
	MetricRefreshReuse:    "refresh_reuse",
	MetricRevoke:          "revoke",
	MetricRevokeAll:       "revoke_all",
	MetricSignupSuccess:   "signup_success",
	MetricSignupFailure:   "signup_failure",
	MetricLoginSuccess:    "login_success",
	MetricLoginFailure:    "login_failure",
}

func (id MetricID) String() string {
	if id < metricCount {
		return metricNames[id]
	}
	return "unknown"
}

// MetricIDs returns every defined counter id, for exporters.
func MetricIDs() []MetricID {
	ids := make([]MetricID, metricCount)
	for i := range ids {
		ids[i] = MetricID(i)
	}
	return ids
}

// Metrics is a fixed set of in-process counters on the engine's hot
// paths. Increments are lock-free; exporters read via [Metrics.Snapshot].
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

// Inc increments one counter. Safe on a nil receiver so call sites need no
// enabled checks.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns the current value of every counter.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, metricCount)
	if m == nil {
		return out
	}
	for i := range m.counters {
		out[MetricID(i)] = m.counters[i].Load()
	}
	return out
}
