package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Codec metrics
	DocumentsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netxconf_documents_parsed_total",
			Help: "Rule documents parsed, by result",
		},
		[]string{"result"},
	)
	RulesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netxconf_rules_parsed_total",
			Help: "Rule lines extracted from parsed documents",
		},
	)
	TokensDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netxconf_tokens_dropped_total",
			Help: "Rule tokens no field claimed; they are lost on encode",
		},
	)
	DuplicateTables = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netxconf_duplicate_tables_total",
			Help: "Table blocks overwritten by a later block with the same name",
		},
	)

	// Document size after the last load or save
	RulesCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netxconf_rules_count",
			Help: "Number of rules per table in the last loaded or saved document",
		},
		[]string{"table"},
	)

	// Store metrics
	StoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netxconf_store_operations_total",
			Help: "Store operations by op and result",
		},
		[]string{"op", "result"},
	)

	// API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netxconf_api_requests_total",
			Help: "API requests by route pattern and status code",
		},
		[]string{"route", "code"},
	)
)

// Result labels
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultNotFound = "not_found"
)
