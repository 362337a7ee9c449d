package feature

import (
	"math"
	"testing"
	"time"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/indicator"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/market"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
)

func buildFrame(t *testing.T) *indicator.Frame {
	t.Helper()

	bars := make([]market.Bar, 40)
	for i := range bars {
		bars[i] = market.Bar{
			Date:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Close:          100 + float64(i),
			ForecastPrice:  math.NaN(),
			ForecastReturn: math.NaN(),
		}
	}

	frame, err := indicator.BuildFrame(market.NewSeries(bars), 10)
	if err != nil {
		t.Fatalf("BuildFrame returned error: %v", err)
	}
	return frame
}

func TestObserver_VectorShape(t *testing.T) {
	frame := buildFrame(t)
	obs := NewObserver(frame)

	vec := obs.Observe(20, sim.BookView{Position: sim.Long, HoldingDays: 3})
	if len(vec) != obs.Size() {
		t.Fatalf("observation length = %d, want %d", len(vec), obs.Size())
	}

	if vec[0] != 120 {
		t.Errorf("close feature = %v, want 120", vec[0])
	}
	if vec[10] != 1 || vec[11] != 3 {
		t.Errorf("book features = (%v, %v), want (1, 3)", vec[10], vec[11])
	}

	// 预测缺失的特征位必须清洗为0，不得携带 NaN。
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("observation[%d] is not finite: %v", i, v)
		}
	}
}

func TestObserver_OutOfRangeIsZero(t *testing.T) {
	frame := buildFrame(t)
	obs := NewObserver(frame)

	vec := obs.Observe(frame.Len(), sim.BookView{})
	for i, v := range vec {
		if v != 0 {
			t.Errorf("observation[%d] = %v, want 0 out of range", i, v)
		}
	}
}

func TestWindowObserver_FlattensWindow(t *testing.T) {
	frame := buildFrame(t)
	obs := NewWindowObserver(frame, 5)

	if obs.StartIndex() != 5 {
		t.Fatalf("start index = %d, want 5", obs.StartIndex())
	}

	vec := obs.Observe(10, sim.BookView{})
	if len(vec) != obs.Size() {
		t.Fatalf("observation length = %d, want %d", len(vec), obs.Size())
	}

	// 窗口为 [5,10)，首组特征对应第5根Bar。
	if vec[0] != 105 {
		t.Errorf("first window close = %v, want 105", vec[0])
	}
	if vec[len(vec)-6] != 109 {
		t.Errorf("last window close = %v, want 109", vec[len(vec)-6])
	}
}

func TestWindowObserver_PadsBeforeStart(t *testing.T) {
	frame := buildFrame(t)
	obs := NewWindowObserver(frame, 5)

	vec := obs.Observe(2, sim.BookView{})
	// 前三组落在序列之外，应当补零。
	for i := 0; i < 18; i++ {
		if vec[i] != 0 {
			t.Errorf("padded feature[%d] = %v, want 0", i, vec[i])
		}
	}
	if vec[18] != 100 {
		t.Errorf("first in-range close = %v, want 100", vec[18])
	}
}
