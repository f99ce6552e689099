package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	answerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigo_answer_requests_total",
			Help: "Total number of answer requests by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
	stageLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bigo_stage_latency_seconds",
			Help:    "Latency of each answer pipeline stage in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)
	modelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigo_model_tokens_total",
			Help: "Total number of model tokens consumed by stage and direction.",
		},
		[]string{"stage", "direction"},
	)
	executionFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bigo_execution_fallback_total",
			Help: "Total number of queries retried without the optimized engine hint.",
		},
	)
	chartFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bigo_chart_fallback_total",
			Help: "Total number of charts rendered by the heuristic after the sandbox failed.",
		},
	)
	feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigo_feedback_total",
			Help: "Total number of feedback submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		answerRequestsTotal,
		stageLatencySeconds,
		modelTokensTotal,
		executionFallbackTotal,
		chartFallbackTotal,
		feedbackTotal,
	)
}

// ObserveAnswer 记录一次问答请求，mode 为 sync/stream，outcome 为 success/short_circuit/error
func ObserveAnswer(mode, outcome string) {
	answerRequestsTotal.WithLabelValues(mode, outcome).Inc()
}

func ObserveStage(stage string, elapsed time.Duration) {
	stageLatencySeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveTokens(stage string, input, output int) {
	if input > 0 {
		modelTokensTotal.WithLabelValues(stage, "input").Add(float64(input))
	}
	if output > 0 {
		modelTokensTotal.WithLabelValues(stage, "output").Add(float64(output))
	}
}

func IncrementExecutionFallback() {
	executionFallbackTotal.Inc()
}

func IncrementChartFallback() {
	chartFallbackTotal.Inc()
}

func ObserveFeedback(outcome string) {
	feedbackTotal.WithLabelValues(outcome).Inc()
}
