// Package metrics exposes the engine's Prometheus instruments.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/decode"
	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

const namespace = "rivenwatch"

// Error kinds used as the "kind" label.
const (
	KindWeaponNotFound   = "weapon_not_found"
	KindUnknownStat      = "unknown_stat"
	KindUnsupportedShape = "unsupported_shape"
	KindInvalidRank      = "invalid_rank"
	KindInvalidArgument  = "invalid_argument"
	KindInternal         = "internal"
)

// #region metrics
// Metrics groups every instrument the daemon exports.
type Metrics struct {
	Grades         *prometheus.CounterVec
	EngineErrors   *prometheus.CounterVec
	CatalogRefresh *prometheus.CounterVec
	CatalogWeapons prometheus.Gauge
}

// New creates the instruments and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Grades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grades_total",
			Help:      "Graded rivens by grade.",
		}, []string{"grade"}),
		EngineErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_errors_total",
			Help:      "Engine failures by error kind.",
		}, []string{"kind"}),
		CatalogRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refresh_total",
			Help:      "Catalog refresh attempts by result.",
		}, []string{"result"}),
		CatalogWeapons: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_weapons",
			Help:      "Weapons in the published catalog snapshot.",
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Grades, m.EngineErrors, m.CatalogRefresh, m.CatalogWeapons} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// #endregion metrics

// #region observers
// ObserveGrade counts one successful grade.
func (m *Metrics) ObserveGrade(g riven.Grade) {
	m.Grades.WithLabelValues(string(g)).Inc()
}

// ObserveError counts one engine failure under its kind.
func (m *Metrics) ObserveError(err error) {
	m.EngineErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ObserveRefresh implements catalog.RefreshObserver.
func (m *Metrics) ObserveRefresh(ok bool, weapons int) {
	if !ok {
		m.CatalogRefresh.WithLabelValues("error").Inc()
		return
	}
	m.CatalogRefresh.WithLabelValues("ok").Inc()
	m.CatalogWeapons.Set(float64(weapons))
}

var _ catalog.RefreshObserver = (*Metrics)(nil)

// ErrorKind maps an engine error to its label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, grade.ErrWeaponNotFound):
		return KindWeaponNotFound
	case errors.Is(err, decode.ErrUnknownStat):
		return KindUnknownStat
	case errors.Is(err, decode.ErrUnsupportedShape):
		return KindUnsupportedShape
	case errors.Is(err, decode.ErrInvalidRank):
		return KindInvalidRank
	default:
		return KindInternal
	}
}

// #endregion observers
