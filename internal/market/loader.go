package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// 可接受的列名别名，按优先级排列。
var (
	dateAliases     = []string{"date", "timestamp"}
	closeAliases    = []string{"close_price", "close", "brent_close", "brent_close_price"}
	forecastAliases = []string{"forecast_price", "predicted", "prediction", "xgb_predicted_price"}
	fretAliases     = []string{"forecast_return", "xgb_predicted_return"}
)

// LoadCSV 从CSV文件读取日期索引的行情序列。
// 要求存在日期列与正的收盘价列；预测列可选，缺行记为 NaN。
func LoadCSV(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("market: 打开数据文件失败: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("market: 读取表头失败: %w", err)
	}

	dateIdx := findColumn(header, dateAliases)
	closeIdx := findColumn(header, closeAliases)
	forecastIdx := findColumn(header, forecastAliases)
	fretIdx := findColumn(header, fretAliases)

	if dateIdx < 0 {
		return nil, fmt.Errorf("market: 未找到日期列，表头: %v", header)
	}
	if closeIdx < 0 {
		return nil, fmt.Errorf("market: 未找到收盘价列，表头: %v", header)
	}

	var bars []Bar
	seen := make(map[time.Time]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("market: 读取第%d行失败: %w", line+1, err)
		}
		line++

		date, err := parseDate(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("market: 第%d行日期非法 %q: %w", line, record[dateIdx], err)
		}
		if _, ok := seen[date]; ok {
			return nil, fmt.Errorf("market: 第%d行日期重复: %s", line, date.Format("2006-01-02"))
		}
		seen[date] = struct{}{}

		closePrice, err := parseFloat(record[closeIdx])
		if err != nil {
			return nil, fmt.Errorf("market: 第%d行收盘价非法 %q: %w", line, record[closeIdx], err)
		}

		bar := Bar{
			Date:           date,
			Close:          closePrice,
			ForecastPrice:  math.NaN(),
			ForecastReturn: math.NaN(),
		}
		if forecastIdx >= 0 && forecastIdx < len(record) {
			if v, err := parseFloat(record[forecastIdx]); err == nil {
				bar.ForecastPrice = v
			}
		}
		if fretIdx >= 0 && fretIdx < len(record) {
			if v, err := parseFloat(record[fretIdx]); err == nil {
				bar.ForecastReturn = v
			}
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("market: 数据文件 %q 不包含任何行情", path)
	}

	return bars, nil
}

func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), alias) {
				return i
			}
		}
	}
	return -1
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

func parseFloat(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("空白数值")
	}
	return strconv.ParseFloat(trimmed, 64)
}
