package reconcile

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job name the sweep reports under.
const PushJob = "portfolio_reconcile"

// PushReport publishes the outcome of one sweep to a Pushgateway. The sweep
// runs as a short-lived command, so there is no /metrics endpoint to scrape.
func PushReport(ctx context.Context, gatewayURL string, rep *Report, dryRun bool, finished time.Time) error {
	reg := prometheus.NewRegistry()
	objects := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "portfolio",
		Subsystem: "reconcile",
		Name:      "objects",
		Help:      "Objects seen by the last reconcile sweep, by outcome.",
	}, []string{"outcome"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "portfolio",
		Subsystem: "reconcile",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last reconcile sweep finished.",
	})
	reg.MustRegister(objects, lastRun)

	objects.WithLabelValues("scanned").Set(float64(rep.Scanned))
	objects.WithLabelValues("referenced").Set(float64(rep.Referenced))
	objects.WithLabelValues("recent").Set(float64(rep.Recent))
	objects.WithLabelValues("orphaned").Set(float64(len(rep.Orphans)))
	objects.WithLabelValues("deleted").Set(float64(rep.Deleted))
	objects.WithLabelValues("failed").Set(float64(len(rep.Failed)))
	lastRun.Set(float64(finished.Unix()))

	mode := "delete"
	if dryRun {
		mode = "dry_run"
	}
	return push.New(gatewayURL, PushJob).
		Gatherer(reg).
		Grouping("mode", mode).
		PushContext(ctx)
}
