package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service collectors. A nil *Registry is valid and records
// nothing.
type Registry struct {
	reg              *prometheus.Registry
	OrdersCreated    prometheus.Counter
	Transitions      *prometheus.CounterVec
	Conflicts        prometheus.Counter
	RecordsStored    prometheus.Counter
	RecordsSkipped   *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	NotificationDrop prometheus.Counter
	Clients          prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "barapp_orders_created_total"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "barapp_order_transitions_total"}, []string{"status"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{Name: "barapp_order_update_conflicts_total"})
	stored := prometheus.NewCounter(prometheus.CounterOpts{Name: "barapp_business_records_total"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "barapp_business_records_skipped_total"}, []string{"reason"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "barapp_notifications_total"}, []string{"scope"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "barapp_notifications_dropped_total"})
	clients := prometheus.NewGauge(prometheus.GaugeOpts{Name: "barapp_ws_clients"})

	r.MustRegister(created, transitions, conflicts, stored, skipped, notifications, dropped, clients)
	return &Registry{
		reg:              r,
		OrdersCreated:    created,
		Transitions:      transitions,
		Conflicts:        conflicts,
		RecordsStored:    stored,
		RecordsSkipped:   skipped,
		Notifications:    notifications,
		NotificationDrop: dropped,
		Clients:          clients,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) OrderCreated() {
	if r != nil {
		r.OrdersCreated.Inc()
	}
}

func (r *Registry) Transition(status string) {
	if r != nil {
		r.Transitions.WithLabelValues(status).Inc()
	}
}

func (r *Registry) Conflict() {
	if r != nil {
		r.Conflicts.Inc()
	}
}

func (r *Registry) RecordStored() {
	if r != nil {
		r.RecordsStored.Inc()
	}
}

func (r *Registry) RecordSkipped(reason string) {
	if r != nil {
		r.RecordsSkipped.WithLabelValues(reason).Inc()
	}
}

func (r *Registry) Notified(scope string) {
	if r != nil {
		r.Notifications.WithLabelValues(scope).Inc()
	}
}

func (r *Registry) Dropped() {
	if r != nil {
		r.NotificationDrop.Inc()
	}
}

func (r *Registry) ClientConnected() {
	if r != nil {
		r.Clients.Inc()
	}
}

func (r *Registry) ClientDisconnected() {
	if r != nil {
		r.Clients.Dec()
	}
}
