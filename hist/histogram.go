// 一维频数直方图
// 构造流程:
//  1. 原始数据上求 median / IQR
//  2. (可选) 过滤 median ± 3⋅IQR 之外的异常值, 在保留集上重新求 median / IQR
//  3. 保留集上求 min / max
//  4. 分箱宽度: 未指定分箱数用 Freedman–Diaconis, 否则 (max-min)/max(1,binCount)
//  5. 分箱数 ⌈(max-min)/width⌉
//  6. 按 ⌊(x-min)/width⌋ 分箱并计数, 最大值截断进最后一个箱
//
// 构造完成后对象只读, 多个 goroutine 可以并发读取
package hist

import (
	"math"

	"binstat/infra/errorx"
	"binstat/infra/errorx/errCode"
	"binstat/infra/observe/log/staticLog"
	"binstat/numpy/npStat"

	"github.com/bits-and-blooms/bitset"
	"github.com/gonum/stat"
	"gonum.org/v1/gonum/floats"
)

// Stats 保留集上的统计量快照
type Stats struct {
	Median   float64 `json:"median" yaml:"median"`
	IQR      float64 `json:"iqr" yaml:"iqr"`
	Minimum  float64 `json:"minimum" yaml:"minimum"`
	Maximum  float64 `json:"maximum" yaml:"maximum"`
	BinWidth float64 `json:"bin_width" yaml:"bin_width"`
	BinCount int     `json:"bin_count" yaml:"bin_count"`
	N        int     `json:"n" yaml:"n"`         // 保留集大小
	RawN     int     `json:"raw_n" yaml:"raw_n"` // 原始数据大小
	Mean     float64 `json:"mean" yaml:"mean"`
	StdDev   float64 `json:"std_dev" yaml:"std_dev"`
	Filtered bool    `json:"filtered" yaml:"filtered"`
}

type options struct {
	binCount      int
	explicit      bool // false: Freedman–Diaconis 自动估计
	filter        bool
	outlierFactor float64
}

type Option func(*options)

// WithBinCount 指定分箱数, 0 按 1 个箱处理, 负数构造失败
func WithBinCount(n int) Option {
	return func(o *options) { o.binCount = n; o.explicit = true }
}

func WithFilterOutliers(filter bool) Option {
	return func(o *options) { o.filter = filter }
}

// WithOutlierFactor 异常值阈值倍数 k, 即 median ± k⋅IQR
func WithOutlierFactor(k float64) Option {
	return func(o *options) { o.outlierFactor = k }
}

type Histogram struct {
	raw    []float64      // 原始数据副本
	data   []float64      // 保留集
	sorted []float64      // 保留集升序, 供 Percentile 使用
	kept   *bitset.BitSet // raw 上的保留掩码
	stats  Stats
	bins   []Bin
}

func NewHistogram(data []float64, opts ...Option) (*Histogram, error) {
	o := options{filter: true, outlierFactor: DefaultOutlierFactor}
	for _, opt := range opts {
		opt(&o)
	}

	// 1) 校验数据
	if len(data) == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "input data is empty")
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errorx.Newf(errCode.NAN_VALUE, "observation %d is %v", i, v)
		}
	}
	if o.explicit && o.binCount < 0 {
		return nil, errorx.Newf(errCode.INVALID_BIN_COUNT, "bin count %d is negative", o.binCount)
	}
	if !validOutlierFactor(o.outlierFactor) {
		return nil, errorx.Newf(errCode.INVALID_VALUE, "outlier factor %v must be a finite number >= 0", o.outlierFactor)
	}

	raw := make([]float64, len(data))
	copy(raw, data)

	// 2) 异常值过滤, 保留集立即物化
	working := raw
	kept := bitset.New(uint(len(raw))).Complement()
	if o.filter {
		var err error
		working, kept, err = FilterOutliers(raw, o.outlierFactor)
		if err != nil {
			return nil, err
		}
	}

	// 3) 保留集上的统计量
	sorted := npStat.Sorted(working)
	median, err := npStat.PercentileSorted(sorted, 0.5)
	if err != nil {
		return nil, err
	}
	q3, _ := npStat.PercentileSorted(sorted, 0.75)
	q1, _ := npStat.PercentileSorted(sorted, 0.25)
	iqr := q3 - q1
	minimum, maximum := floats.Min(working), floats.Max(working)

	// 4) 分箱宽度与分箱数
	binCount := -1
	if o.explicit {
		binCount = o.binCount
	}
	width, err := binWidth(iqr, minimum, maximum, len(working), binCount)
	if err != nil {
		return nil, err
	}
	count, err := numBins(minimum, maximum, width, binCount)
	if err != nil {
		return nil, err
	}

	h := &Histogram{
		raw:    raw,
		data:   working,
		sorted: sorted,
		kept:   kept,
		stats: Stats{
			Median:   median,
			IQR:      iqr,
			Minimum:  minimum,
			Maximum:  maximum,
			BinWidth: width,
			BinCount: count,
			N:        len(working),
			RawN:     len(raw),
			Mean:     stat.Mean(working, nil),
			StdDev:   stat.StdDev(working, nil),
			Filtered: o.filter,
		},
	}
	// 5) 分箱计数
	h.bins = buildBins(working, minimum, width, count)

	staticLog.Debugf("histogram built: n=%d raw=%d bins=%d width=%g range=[%g, %g]",
		h.stats.N, h.stats.RawN, count, width, minimum, maximum)
	return h, nil
}

// Percentile 保留集上的 p 分位 (线性插值), p ∈ [0,1]
func (h *Histogram) Percentile(p float64) (float64, error) {
	return npStat.PercentileSorted(h.sorted, p)
}

func (h *Histogram) Median() float64 { return h.stats.Median }

func (h *Histogram) IQR() float64 { return h.stats.IQR }

func (h *Histogram) Stats() Stats { return h.stats }

// Histogram 箱号 -> {min, max, count}, 覆盖 0..binCount-1 的全部箱号
func (h *Histogram) Histogram() map[int]Bin {
	out := make(map[int]Bin, len(h.bins))
	for i, b := range h.bins {
		out[i] = b
	}
	return out
}

// Bins 按箱号排序的分箱表副本
func (h *Histogram) Bins() []Bin {
	out := make([]Bin, len(h.bins))
	copy(out, h.bins)
	return out
}

// Data 保留集副本
func (h *Histogram) Data() []float64 {
	out := make([]float64, len(h.data))
	copy(out, h.data)
	return out
}

// Outliers 被过滤掉的原始观测, 保持输入顺序
func (h *Histogram) Outliers() []float64 {
	out := make([]float64, 0, len(h.raw)-len(h.data))
	for i, v := range h.raw {
		if !h.kept.Test(uint(i)) {
			out = append(out, v)
		}
	}
	return out
}
