package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"textrecords/internal/models"
)

var (
	lookupDesc = prometheus.NewDesc(
		"textrecords_lookups_total",
		"Total record lookup count by outcome",
		[]string{"outcome"},
		nil,
	)

	talliesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "textrecords_tallies_total",
		Help: "Total text submissions tallied",
	})

	tallyUniqueRecords = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "textrecords_tally_unique_records",
		Help:    "Distinct records per tallied submission",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	recordsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "textrecords_records_saved_total",
		Help: "Total tally entries merged into saved records",
	})
)

// LookupStore persists lookup outcome counts.
type LookupStore interface {
	IncrementLookupStat(ctx context.Context, outcome string) error
	GetAllLookupStats(ctx context.Context) ([]models.LookupStat, error)
}

// LookupCollector is a custom Prometheus collector that reads lookup
// counts from the database on each scrape.
type LookupCollector struct {
	store  LookupStore
	logger *zap.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *LookupCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- lookupDesc
}

// Collect queries the database for all lookup stats and emits them as counters.
func (c *LookupCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.GetAllLookupStats(context.Background())
	if err != nil {
		c.logger.Error("failed to collect lookup metrics", zap.Error(err))
		return
	}
	for _, s := range stats {
		ch <- prometheus.MustNewConstMetric(
			lookupDesc,
			prometheus.CounterValue,
			float64(s.Count),
			s.Outcome,
		)
	}
}

// Recorder provides async lookup recording.
type Recorder struct {
	store  LookupStore
	logger *zap.Logger
	wg     sync.WaitGroup
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the collectors with reg and initializes the recorder.
// Must be called once at startup.
func Init(reg prometheus.Registerer, store LookupStore, logger *zap.Logger) {
	recorderOnce.Do(func() {
		recorder = &Recorder{store: store, logger: logger}
		reg.MustRegister(
			&LookupCollector{store: store, logger: logger},
			talliesProcessed,
			tallyUniqueRecords,
			recordsSaved,
		)
	})
}

// RecordLookup asynchronously records a lookup outcome.
func RecordLookup(found bool) {
	if recorder == nil {
		return
	}
	outcome := models.OutcomeNotFound
	if found {
		outcome = models.OutcomeFound
	}

	recorder.wg.Add(1)
	go func() {
		defer recorder.wg.Done()
		if err := recorder.store.IncrementLookupStat(context.Background(), outcome); err != nil {
			recorder.logger.Error("failed to record lookup", zap.String("outcome", outcome), zap.Error(err))
		}
	}()
}

// RecordTally counts a processed submission with the given number of distinct records.
func RecordTally(unique int) {
	talliesProcessed.Inc()
	tallyUniqueRecords.Observe(float64(unique))
}

// RecordSave counts entries merged into saved records.
func RecordSave(entries int) {
	recordsSaved.Add(float64(entries))
}

// Wait blocks until pending lookup recordings finish. Used on shutdown.
func Wait() {
	if recorder == nil {
		return
	}
	recorder.wg.Wait()
}
