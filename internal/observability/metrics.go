package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studentconnect_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// TutorialImports counts external tutorial imports by outcome.
	TutorialImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentconnect_tutorial_imports_total",
		Help: "Total number of external tutorial imports by outcome",
	}, []string{"outcome"})

	// NotificationsWritten counts in-app notifications by type.
	NotificationsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentconnect_notifications_written_total",
		Help: "Total number of notifications written by type",
	}, []string{"type"})
)

const queryStartKey = "observability:query_start"

// QueryLatency is a GORM plugin that feeds DatabaseQueryLatency.
type QueryLatency struct{}

// Name implements gorm.Plugin.
func (QueryLatency) Name() string { return "query_latency" }

// Initialize registers before/after callbacks around every statement kind.
func (QueryLatency) Initialize(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).
				Observe(time.Since(v.(time.Time)).Seconds())
		}
	}

	if err := db.Callback().Create().Before("gorm:create").Register("latency:before_create", before); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("latency:after_create", after("create")); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("latency:before_query", before); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("latency:after_query", after("query")); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("latency:before_update", before); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("latency:after_update", after("update")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("latency:before_delete", before); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("latency:after_delete", after("delete")); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("latency:before_row", before); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register("latency:after_row", after("row")); err != nil {
		return err
	}
	if err := db.Callback().Raw().Before("gorm:raw").Register("latency:before_raw", before); err != nil {
		return err
	}
	return db.Callback().Raw().After("gorm:raw").Register("latency:after_raw", after("raw"))
}
