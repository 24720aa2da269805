package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/spec-kit/case-workflow/pkg/util/errorutil"
)

func TestInstrumentRecordsOutcome(t *testing.T) {
	metrics, err := NewMetrics()
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)
	inst := NewInstrumenter(zap.New(core), metrics)

	require.NoError(t, inst.Instrument(context.Background(), "escalate", "c1", func(context.Context) error {
		return nil
	}))
	rejected := apperrors.NewInvalidTransition("nope", nil)
	err = inst.Instrument(context.Background(), "escalate", "c1", func(context.Context) error {
		return rejected
	})
	assert.Same(t, rejected, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("escalate", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("escalate", apperrors.CodeInvalidTransition)))

	assert.Equal(t, 2, logs.FilterMessage("workflow operation started").Len())
	assert.Equal(t, 1, logs.FilterMessage("workflow operation completed").Len())
	rejectedLogs := logs.FilterMessage("workflow operation rejected").All()
	require.Len(t, rejectedLogs, 1)
	assert.Equal(t, "c1", rejectedLogs[0].ContextMap()["case_id"])
}

func TestInstrumentNilSafe(t *testing.T) {
	var inst *Instrumenter
	called := false
	require.NoError(t, inst.Instrument(context.Background(), "close", "", func(context.Context) error {
		called = true
		return nil
	}))
	assert.True(t, called)

	var metrics *Metrics
	metrics.RecordDelivery("audit", "delivered")
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	metrics, err := NewMetrics()
	require.NoError(t, err)
	inst := NewInstrumenter(nil, metrics)

	_ = inst.Instrument(context.Background(), "derive", "c2", func(context.Context) error {
		return assert.AnError
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("derive", apperrors.CodeInternal)))
}
