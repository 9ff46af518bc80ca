package calculator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Calculation outcomes recorded by Metrics.
const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// Metrics counts calculations and the reductions they produced.
// A nil *Metrics records nothing.
type Metrics struct {
	calculations *prometheus.CounterVec
	reductions   *prometheus.CounterVec
}

// NewMetrics creates the calculator metrics and registers them on reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon_engine",
			Name:      "calculations_total",
			Help:      "Emission reduction calculations by methodology and outcome.",
		}, []string{"methodology_id", "outcome"}),
		reductions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon_engine",
			Name:      "emission_reductions_tco2e_total",
			Help:      "Emission reductions computed, in tCO2e.",
		}, []string{"methodology_id"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.calculations, m.reductions} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeSuccess(methodologyID string, totalER float64) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(methodologyID, outcomeSuccess).Inc()
	// Counters cannot decrease; net-negative results are counted but not summed.
	if totalER > 0 {
		m.reductions.WithLabelValues(methodologyID).Add(totalER)
	}
}

func (m *Metrics) observeFailure(methodologyID, outcome string) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(methodologyID, outcome).Inc()
}
