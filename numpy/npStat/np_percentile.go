// numpy 风格的顺序统计量
// 百分位采用线性插值 (numpy 默认 method='linear', 即 Hyndman-Fan type 7):
//
//	r = 1 + (n-1)⋅p,  i = ⌊r⌋,  f = r - i
//	Q(p) = (1-f)⋅x(i) + f⋅x(i+1)      (x 为 1-based 顺序统计量)
//
// p == 1 时 i == n, 直接取最后一个顺序统计量
package npStat

import (
	"math"
	"sort"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
)

// Sorted 返回升序副本, 不修改入参
func Sorted(data []float64) []float64 {
	s := make([]float64, len(data))
	copy(s, data)
	sort.Float64s(s)
	return s
}

// PercentileSorted 对已排序序列求 p 分位, p ∈ [0,1]
func PercentileSorted(sorted []float64, p float64) (float64, error) {
	n := len(sorted)
	if n == 0 {
		return math.NaN(), errorx.New(errCode.EMPTY_VALUE, "input series empty")
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return math.NaN(), errorx.Newf(errCode.INVALID_PERCENTILE, "percentile %v out of [0,1]", p)
	}

	r := 1 + float64(n-1)*p
	i := int(math.Floor(r))
	f := r - float64(i)
	if i < n {
		// 1-based 秩 -> 0-based 下标 i-1, i
		return (1-f)*sorted[i-1] + f*sorted[i], nil
	}
	return sorted[i-1], nil
}

func Percentile(data []float64, p float64) (float64, error) {
	return PercentileSorted(Sorted(data), p)
}

func Median(data []float64) (float64, error) {
	return Percentile(data, 0.5)
}

// IQR = Q(0.75) - Q(0.25), 只排序一次
func IQR(data []float64) (float64, error) {
	s := Sorted(data)
	q3, err := PercentileSorted(s, 0.75)
	if err != nil {
		return math.NaN(), err
	}
	q1, err := PercentileSorted(s, 0.25)
	if err != nil {
		return math.NaN(), err
	}
	return q3 - q1, nil
}

// MedianIQR 一次排序同时给出中位数和 IQR
func MedianIQR(data []float64) (median, iqr float64, err error) {
	s := Sorted(data)
	if median, err = PercentileSorted(s, 0.5); err != nil {
		return math.NaN(), math.NaN(), err
	}
	q3, _ := PercentileSorted(s, 0.75)
	q1, _ := PercentileSorted(s, 0.25)
	return median, q3 - q1, nil
}
