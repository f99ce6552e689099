package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAnswerCounter(t *testing.T) {
	before := testutil.ToFloat64(answerRequestsTotal.WithLabelValues("sync", "success"))
	ObserveAnswer("sync", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(answerRequestsTotal.WithLabelValues("sync", "success")))
}

func TestTokenCounterIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(modelTokensTotal.WithLabelValues("sql", "output"))
	ObserveTokens("sql", 120, 0)
	assert.Equal(t, before, testutil.ToFloat64(modelTokensTotal.WithLabelValues("sql", "output")))
	ObserveTokens("sql", 0, 30)
	assert.Equal(t, before+30, testutil.ToFloat64(modelTokensTotal.WithLabelValues("sql", "output")))
}

func TestFallbackCounters(t *testing.T) {
	exec := testutil.ToFloat64(executionFallbackTotal)
	chart := testutil.ToFloat64(chartFallbackTotal)
	IncrementExecutionFallback()
	IncrementChartFallback()
	assert.Equal(t, exec+1, testutil.ToFloat64(executionFallbackTotal))
	assert.Equal(t, chart+1, testutil.ToFloat64(chartFallbackTotal))
}

func TestObserveStage(t *testing.T) {
	ObserveStage("execution", 150*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(stageLatencySeconds, "bigo_stage_latency_seconds"), 1)
}
