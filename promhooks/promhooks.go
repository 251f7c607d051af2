// Package promhooks exports loader events as Prometheus metrics.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cacheloader"
)

// Hooks implements cacheloader.Hooks with counters labelled by namespace.
// Storage-key events are not labelled by key to keep cardinality bounded.
type Hooks struct {
	lookups      *prometheus.CounterVec
	cycles       *prometheus.CounterVec
	sourceKeys   *prometheus.CounterVec
	sourceCalls  *prometheus.CounterVec
	mismatches   *prometheus.CounterVec
	readErrors   prometheus.Counter
	writeErrors  *prometheus.CounterVec
	selfHeals    *prometheus.CounterVec
	reusedSpaces *prometheus.CounterVec
}

var _ cacheloader.Hooks = (*Hooks)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	h := &Hooks{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "lookups_total",
			Help:      "Unique keys looked up in the cache, by outcome (hit, not_found, miss).",
		}, []string{"loader", "outcome"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "cycles_total",
			Help:      "Resolution cycles completed.",
		}, []string{"loader"}),
		sourceKeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "source_keys_total",
			Help:      "Keys passed to the batch func.",
		}, []string{"loader"}),
		sourceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "source_calls_total",
			Help:      "Batch func invocations.",
		}, []string{"loader"}),
		mismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "source_mismatch_total",
			Help:      "Batch func calls that returned the wrong number of results.",
		}, []string{"loader"}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "read_errors_total",
			Help:      "Cache reads that failed and fell through to the source.",
		}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "write_failures_total",
			Help:      "Cache writes that failed or were refused, by kind (value, not_found).",
		}, []string{"kind"}),
		selfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "self_heal_total",
			Help:      "Undecodable cache entries deleted on read.",
		}, []string{"reason"}),
		reusedSpaces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cacheloader",
			Name:      "namespace_reused_total",
			Help:      "Loaders created under an already registered namespace.",
		}, []string{"loader"}),
	}

	for _, c := range []prometheus.Collector{
		h.lookups, h.cycles, h.sourceKeys, h.sourceCalls, h.mismatches,
		h.readErrors, h.writeErrors, h.selfHeals, h.reusedSpaces,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) CycleDone(ns string, _, _, hits, notFound, misses int) {
	h.cycles.WithLabelValues(ns).Inc()
	h.lookups.WithLabelValues(ns, "hit").Add(float64(hits))
	h.lookups.WithLabelValues(ns, "not_found").Add(float64(notFound))
	h.lookups.WithLabelValues(ns, "miss").Add(float64(misses))
}

func (h *Hooks) SourceFetched(ns string, n int) {
	h.sourceCalls.WithLabelValues(ns).Inc()
	h.sourceKeys.WithLabelValues(ns).Add(float64(n))
}

func (h *Hooks) SourceMismatch(ns string, _, _ int) { h.mismatches.WithLabelValues(ns).Inc() }

func (h *Hooks) ReadError(string, error) { h.readErrors.Inc() }

func (h *Hooks) WriteFailed(_ string, notFound bool, _ error) {
	kind := "value"
	if notFound {
		kind = "not_found"
	}
	h.writeErrors.WithLabelValues(kind).Inc()
}

func (h *Hooks) SelfHeal(_, reason string) { h.selfHeals.WithLabelValues(reason).Inc() }

func (h *Hooks) NamespaceReused(ns string) { h.reusedSpaces.WithLabelValues(ns).Inc() }
