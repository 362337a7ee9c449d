package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/market"
)

func flatSeries(t *testing.T, n int, price float64) market.Series {
	t.Helper()
	bars := make([]market.Bar, n)
	for i := range bars {
		bars[i] = market.Bar{
			Date:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Close:          price,
			ForecastPrice:  math.NaN(),
			ForecastReturn: math.NaN(),
		}
	}
	return market.NewSeries(bars)
}

func TestBuildFrame_FlatPrices(t *testing.T) {
	series := flatSeries(t, 40, 100)

	frame, err := BuildFrame(series, 30)
	if err != nil {
		t.Fatalf("BuildFrame returned error: %v", err)
	}
	if frame.Len() != 40 {
		t.Fatalf("frame length = %d, want 40", frame.Len())
	}

	for i := 0; i < frame.Len(); i++ {
		if frame.Momentum[i] != 1.0 {
			t.Errorf("momentum[%d] = %v, want 1.0 on flat prices", i, frame.Momentum[i])
		}
		if frame.MAShort[i] != 100 || frame.MALong[i] != 100 {
			t.Errorf("moving averages at %d = (%v, %v), want 100", i, frame.MAShort[i], frame.MALong[i])
		}
		if frame.Return[i] != 0 {
			t.Errorf("return[%d] = %v, want 0", i, frame.Return[i])
		}
	}
}

func TestBuildFrame_DerivesForecastReturn(t *testing.T) {
	bars := []market.Bar{
		{Date: day(1), Close: 100, ForecastPrice: 100, ForecastReturn: math.NaN()},
		{Date: day(2), Close: 101, ForecastPrice: 102, ForecastReturn: math.NaN()},
		{Date: day(3), Close: 102, ForecastPrice: 99.96, ForecastReturn: math.NaN()},
	}
	series := market.NewSeries(bars)

	frame, err := BuildFrame(series, 2)
	if err != nil {
		t.Fatalf("BuildFrame returned error: %v", err)
	}

	if !math.IsNaN(frame.ForecastReturn[0]) {
		t.Errorf("first forecast return should stay NaN, got %v", frame.ForecastReturn[0])
	}
	if math.Abs(frame.ForecastReturn[1]-0.02) > 1e-9 {
		t.Errorf("forecast return[1] = %v, want 0.02", frame.ForecastReturn[1])
	}
	if frame.Trend[1] != 1 {
		t.Errorf("trend[1] = %d, want 1", frame.Trend[1])
	}
	if frame.Trend[2] != -1 {
		t.Errorf("trend[2] = %d, want -1", frame.Trend[2])
	}
}

func TestFrame_AtOutOfRange(t *testing.T) {
	series := flatSeries(t, 10, 100)
	frame, err := BuildFrame(series, 5)
	if err != nil {
		t.Fatalf("BuildFrame returned error: %v", err)
	}

	inputs := frame.At(-1)
	if inputs.Momentum != 1.0 {
		t.Errorf("out of range momentum = %v, want 1.0", inputs.Momentum)
	}
	inputs = frame.At(frame.Len())
	if inputs.Momentum != 1.0 {
		t.Errorf("out of range momentum = %v, want 1.0", inputs.Momentum)
	}
}

func TestBuildFrame_RejectsShortSeries(t *testing.T) {
	if _, err := BuildFrame(flatSeries(t, 1, 100), 30); err == nil {
		t.Fatalf("expected error for single-bar series")
	}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}
