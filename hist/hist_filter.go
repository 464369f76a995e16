package hist

import (
	"math"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
	"binstat/numpy/npStat"

	"github.com/bits-and-blooms/bitset"
)

// 默认异常值阈值: median ± 3⋅IQR
const DefaultOutlierFactor = 3.0

// FilterOutliers 保留 median - k⋅IQR <= x <= median + k⋅IQR 的观测
// 返回保留下来的序列 (保持原顺序, 立即物化) 和原序列上的保留掩码
func FilterOutliers(data []float64, k float64) ([]float64, *bitset.BitSet, error) {
	median, iqr, err := npStat.MedianIQR(data)
	if err != nil {
		return nil, nil, err
	}
	kept, mask := filterRange(data, median-k*iqr, median+k*iqr)
	if len(kept) == 0 {
		return nil, nil, errorx.New(errCode.EMPTY_VALUE, "no observation left after outlier filtering")
	}
	return kept, mask, nil
}

func filterRange(data []float64, lo, hi float64) ([]float64, *bitset.BitSet) {
	mask := bitset.New(uint(len(data)))
	kept := make([]float64, 0, len(data))
	for i, x := range data {
		if x >= lo && x <= hi {
			mask.Set(uint(i))
			kept = append(kept, x)
		}
	}
	return kept, mask
}

func validOutlierFactor(k float64) bool {
	return !math.IsNaN(k) && !math.IsInf(k, 0) && k >= 0
}
