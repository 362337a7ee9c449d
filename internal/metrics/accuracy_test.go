package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
)

func TestAlignNextDay_SkipsMissing(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	predictions := []float64{100, math.NaN(), 102, 103}
	actuals := []float64{101, 102, 103, 104}

	pairs := AlignNextDay(dates, predictions, actuals)

	require.Len(t, pairs, 2)
	assert.Equal(t, 100.0, pairs[0].Prediction)
	assert.Equal(t, 102.0, pairs[0].Actual)
	assert.Equal(t, 101.0, pairs[0].PrevActual)
	assert.Equal(t, 102.0, pairs[1].Prediction)
	assert.Equal(t, 104.0, pairs[1].Actual)
}

func TestAccuracy_PerfectForecast(t *testing.T) {
	pairs := []AlignedPair{
		{Prediction: 102, Actual: 102, PrevActual: 100},
		{Prediction: 99, Actual: 99, PrevActual: 102},
		{Prediction: 105, Actual: 105, PrevActual: 99},
	}

	summary, err := Accuracy(pairs)
	require.NoError(t, err)

	assert.Zero(t, summary.MAE)
	assert.Zero(t, summary.RMSE)
	assert.Zero(t, summary.MAPE)
	assert.Zero(t, summary.MaxError)
	assert.Equal(t, 100.0, summary.DirectionalAccuracy)
	assert.InDelta(t, 1.0, summary.Correlation, 1e-12)
	assert.Equal(t, 3, summary.Pairs)
}

func TestAccuracy_KnownErrors(t *testing.T) {
	pairs := []AlignedPair{
		{Prediction: 102, Actual: 100, PrevActual: 99},
		{Prediction: 98, Actual: 100, PrevActual: 101},
	}

	summary, err := Accuracy(pairs)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, summary.MAE, 1e-12)
	assert.InDelta(t, 2.0, summary.RMSE, 1e-12)
	assert.InDelta(t, 2.0, summary.MAPE, 1e-12)
	assert.InDelta(t, 2.0, summary.MaxError, 1e-12)
	// 两条样本的预测方向都与实际方向一致。
	assert.Equal(t, 100.0, summary.DirectionalAccuracy)
	// 实际价格无波动，相关系数退化为0。
	assert.Zero(t, summary.Correlation)
	assert.InDelta(t, 100.0, summary.AvgActual, 1e-12)
	assert.InDelta(t, 100.0, summary.AvgPredicted, 1e-12)
}

func TestAccuracy_AlignedRoundTrip(t *testing.T) {
	actuals := []float64{100, 101, 102, 103}
	predictions := []float64{101, 101, 102, 103}
	dates := make([]time.Time, len(actuals))
	for i := range dates {
		dates[i] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}

	pairs := AlignNextDay(dates, predictions, actuals)
	require.Len(t, pairs, 3)

	summary, err := Accuracy(pairs)
	require.NoError(t, err)

	// 手工对齐后的误差：|101-101|, |101-102|, |102-103|。
	assert.InDelta(t, 2.0/3.0, summary.MAE, 1e-12)
}

func TestAccuracy_DirectionalMiss(t *testing.T) {
	pairs := []AlignedPair{
		{Prediction: 98, Actual: 102, PrevActual: 100},
		{Prediction: 103, Actual: 105, PrevActual: 100},
	}

	summary, err := Accuracy(pairs)
	require.NoError(t, err)
	assert.Equal(t, 50.0, summary.DirectionalAccuracy)
}

func TestAccuracy_InsufficientData(t *testing.T) {
	_, err := Accuracy(nil)
	assert.ErrorIs(t, err, sim.ErrInsufficientData)

	_, err = Accuracy([]AlignedPair{{Prediction: 100, Actual: 101, PrevActual: 99}})
	assert.ErrorIs(t, err, sim.ErrInsufficientData)
}
