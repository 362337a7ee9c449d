package metrics

import (
	"math"
	"time"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
)

// AlignedPair 表示一条按“预测提前一天”对齐的样本：
// 第 t 天的预测对应第 t+1 天的实际价格，PrevActual 为第 t 天的实际价格。
type AlignedPair struct {
	Date       time.Time
	Prediction float64
	Actual     float64
	PrevActual float64
}

// AccuracySummary 汇总预测精度指标。
type AccuracySummary struct {
	MAE                 float64 `json:"mae"`
	RMSE                float64 `json:"rmse"`
	MAPE                float64 `json:"mape"`
	MaxError            float64 `json:"max_error"`
	DirectionalAccuracy float64 `json:"directional_accuracy"`
	Correlation         float64 `json:"correlation"`
	Pairs               int     `json:"total_predictions"`
	AvgActual           float64 `json:"avg_actual_price"`
	AvgPredicted        float64 `json:"avg_predicted_price"`
}

// AlignNextDay 将预测序列与实际价格按提前一天的口径配对。
// 缺失(NaN)的预测样本被跳过，不参与统计。
func AlignNextDay(dates []time.Time, predictions, actuals []float64) []AlignedPair {
	n := len(actuals)
	if len(predictions) < n {
		n = len(predictions)
	}

	pairs := make([]AlignedPair, 0, n)
	for i := 0; i+1 < n; i++ {
		if math.IsNaN(predictions[i]) || math.IsNaN(actuals[i]) || math.IsNaN(actuals[i+1]) {
			continue
		}
		pair := AlignedPair{
			Prediction: predictions[i],
			Actual:     actuals[i+1],
			PrevActual: actuals[i],
		}
		if i < len(dates) {
			pair.Date = dates[i]
		}
		pairs = append(pairs, pair)
	}

	return pairs
}

// Accuracy 计算对齐样本的精度指标。
// 样本不足两条时返回 ErrInsufficientData 与零值汇总（“不可计算”而非异常）。
func Accuracy(pairs []AlignedPair) (AccuracySummary, error) {
	if len(pairs) < 2 {
		return AccuracySummary{}, sim.ErrInsufficientData
	}

	var (
		sumAbs, sumSq, sumPct, maxErr float64
		sumActual, sumPredicted       float64
		directionHits, directionTotal int
		pctSamples                    int
	)

	for _, p := range pairs {
		err := p.Prediction - p.Actual
		absErr := math.Abs(err)

		sumAbs += absErr
		sumSq += err * err
		if absErr > maxErr {
			maxErr = absErr
		}
		if p.Actual != 0 {
			sumPct += absErr / math.Abs(p.Actual) * 100
			pctSamples++
		}

		sumActual += p.Actual
		sumPredicted += p.Prediction

		directionTotal++
		if signOf(p.Prediction-p.PrevActual) == signOf(p.Actual-p.PrevActual) {
			directionHits++
		}
	}

	n := float64(len(pairs))
	summary := AccuracySummary{
		MAE:          sumAbs / n,
		RMSE:         math.Sqrt(sumSq / n),
		MaxError:     maxErr,
		Pairs:        len(pairs),
		AvgActual:    sumActual / n,
		AvgPredicted: sumPredicted / n,
		Correlation:  pearson(pairs),
	}
	if pctSamples > 0 {
		summary.MAPE = sumPct / float64(pctSamples)
	}
	if directionTotal > 0 {
		summary.DirectionalAccuracy = float64(directionHits) / float64(directionTotal) * 100
	}

	return summary, nil
}

func pearson(pairs []AlignedPair) float64 {
	n := float64(len(pairs))

	var meanPred, meanActual float64
	for _, p := range pairs {
		meanPred += p.Prediction
		meanActual += p.Actual
	}
	meanPred /= n
	meanActual /= n

	var cov, varPred, varActual float64
	for _, p := range pairs {
		dp := p.Prediction - meanPred
		da := p.Actual - meanActual
		cov += dp * da
		varPred += dp * dp
		varActual += da * da
	}

	denom := math.Sqrt(varPred * varActual)
	if denom == 0 {
		return 0
	}
	return cov / denom
}

func signOf(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
