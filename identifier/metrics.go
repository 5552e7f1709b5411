package identifier

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts identifier outcomes per kind. A nil *Metrics is a no-op.
type Metrics struct {
	Issued        *prometheus.CounterVec
	RangeExceeded *prometheus.CounterVec
}

// NewMetrics registers the identifier collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Name:      "identifiers_issued_total",
			Help:      "Identifiers reserved, by kind.",
		}, []string{"kind"}),
		RangeExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Name:      "identifier_range_exceeded_total",
			Help:      "Requests rejected because the scope had no sequence left, by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.Issued, m.RangeExceeded)
	}
	return m
}

func (m *Metrics) issued(kind Kind) {
	if m == nil {
		return
	}
	m.Issued.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) rangeExceeded(kind Kind) {
	if m == nil {
		return
	}
	m.RangeExceeded.WithLabelValues(string(kind)).Inc()
}
