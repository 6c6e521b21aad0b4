package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Fields are public so they can be recorded from other packages.
type AppMetrics struct {
	PlanRequestsTotal          metric.Int64Counter
	PlanDurationSeconds        metric.Float64Histogram
	ChatRequestsTotal          metric.Int64Counter
	LLMParseFailuresTotal      metric.Int64Counter
	VectorQueryDurationSeconds metric.Float64Histogram
	WebSearchRequestsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("WanderPlanAgent")
		var err error
		m := &AppMetrics{}

		m.PlanRequestsTotal, err = meter.Int64Counter(
			"plan_requests_total",
			metric.WithDescription("Total number of itinerary plan requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create plan_requests_total: %v", err)
		}

		m.PlanDurationSeconds, err = meter.Float64Histogram(
			"plan_duration_seconds",
			metric.WithDescription("Duration of itinerary plan generation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create plan_duration_seconds: %v", err)
		}

		m.ChatRequestsTotal, err = meter.Int64Counter(
			"chat_requests_total",
			metric.WithDescription("Total number of conversational chat requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_requests_total: %v", err)
		}

		m.LLMParseFailuresTotal, err = meter.Int64Counter(
			"llm_parse_failures_total",
			metric.WithDescription("Total number of model responses that failed JSON extraction"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_parse_failures_total: %v", err)
		}

		m.VectorQueryDurationSeconds, err = meter.Float64Histogram(
			"vector_query_duration_seconds",
			metric.WithDescription("Duration of vector similarity queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create vector_query_duration_seconds: %v", err)
		}

		m.WebSearchRequestsTotal, err = meter.Int64Counter(
			"web_search_requests_total",
			metric.WithDescription("Total number of outbound web search requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create web_search_requests_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
