package hist

import (
	"math"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
)

// 分箱数上限, 防止极小宽度下分配过多 bin
const MaxBins = 1 << 20

// Bin 每个分箱的结构, [Min, Max), 最后一个箱包含数据最大值
type Bin struct {
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Count int     `json:"count" yaml:"count"`
}

// FreedmanDiaconis 分箱宽度:
//
//	h = 2⋅IQR / n^(1/3)
//
// n <= 0 时返回 NaN, 由调用方按退化宽度处理
func FreedmanDiaconis(iqr float64, n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	return 2.0 * iqr / math.Cbrt(float64(n))
}

// BinIndex x 所在的箱号: ⌊(x - min)/width⌋, 截断到 [0, binCount-1]
// 数据最大值算出来正好是 binCount, 被截断进最后一个箱
func BinIndex(x, minimum, width float64, binCount int) int {
	idx := int(math.Floor((x - minimum) / width))
	if idx > binCount-1 {
		idx = binCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// binWidth 确定分箱宽度, binCount < 0 表示自动估计
func binWidth(iqr, minimum, maximum float64, n, binCount int) (float64, error) {
	var width float64
	if binCount < 0 {
		width = FreedmanDiaconis(iqr, n)
	} else {
		width = (maximum - minimum) / float64(max(1, binCount))
	}
	if math.IsNaN(width) || math.IsInf(width, 0) || width <= 0 {
		return 0, errorx.Newf(errCode.DEGENERATE_BIN_WIDTH,
			"bin width %v is not positive (iqr=%v, min=%v, max=%v, n=%d)", width, iqr, minimum, maximum, n)
	}
	return width, nil
}

// 比值与整数的相对误差在 ratioEps 内视为整数, 避免 2.0000000000000004 -> 3 个箱
const ratioEps = 1e-12

// numBins ⌈(max - min)/width⌉
// 指定分箱数时数学上恰好等于 max(1, binCount), 直接取用以免浮点误差多出一个箱
func numBins(minimum, maximum, width float64, binCount int) (int, error) {
	var count float64
	if binCount >= 0 {
		count = float64(max(1, binCount))
	} else {
		ratio := (maximum - minimum) / width
		count = math.Max(1, math.Ceil(ratio-ratio*ratioEps))
	}
	if count > MaxBins {
		return 0, errorx.Newf(errCode.INVALID_BIN_COUNT, "bin count %.0f exceeds limit %d", count, MaxBins)
	}
	return int(count), nil
}

// buildBins 按箱号聚合并补齐所有箱, 没有观测的箱 count 为 0
func buildBins(data []float64, minimum, width float64, binCount int) []Bin {
	counts := make(map[int]int, binCount)
	for _, v := range data {
		counts[BinIndex(v, minimum, width, binCount)]++
	}

	bins := make([]Bin, binCount)
	for i := 0; i < binCount; i++ {
		lo := minimum + float64(i)*width
		bins[i] = Bin{
			Min:   lo,
			Max:   lo + width,
			Count: counts[i],
		}
	}
	return bins
}
