package rollout

import (
	"math"

	"encdash/internal/config"
)

// Snapshot 单日加密状态计数，外部提供且不可变
// Snapshot holds one day's encryption-status counts; supplied externally, immutable
type Snapshot struct {
	Day       int
	Encrypted int
	Pending   int
	Failed    int
}

// Fractions 三个状态占总量的比例
// Fractions are the per-status shares of the day's total
type Fractions struct {
	Encrypted float64
	Pending   float64
	Failed    float64
}

// Arc 一段饼图圆弧的几何参数（对应 SVG stroke-dasharray / rotate 画法）
// Arc is one pie slice's geometry (the SVG stroke-dasharray / rotate drawing scheme)
type Arc struct {
	// Fraction 本段占整圆的比例
	// Fraction is this slice's share of the full circle
	Fraction float64
	// DashLength 弧长，DashGap 余下的周长
	// DashLength is the arc length; DashGap the remaining circumference
	DashLength float64
	DashGap    float64
	// RotationDeg 起始角度；第一段从正上方开始
	// RotationDeg is the start angle; the first slice begins at the top
	RotationDeg float64
}

// FromConfig 将配置中的快照序列转换为内部类型
// FromConfig converts configured snapshots to the internal type
func FromConfig(in []config.SnapshotConfig) []Snapshot {
	out := make([]Snapshot, 0, len(in))
	for _, s := range in {
		out = append(out, Snapshot{
			Day:       s.Day,
			Encrypted: s.Encrypted,
			Pending:   s.Pending,
			Failed:    s.Failed,
		})
	}
	return out
}

// Total 当日设备总数
// Total is the day's device count
func (s Snapshot) Total() int {
	return s.Encrypted + s.Pending + s.Failed
}

// Fractions 计算比例；分母下限为 1，全零快照不会除零
// Fractions computes the shares; the denominator floors at 1 so an all-zero
// snapshot yields zero fractions instead of dividing by zero
func (s Snapshot) Fractions() Fractions {
	total := s.Total()
	if total < 1 {
		total = 1
	}
	return Fractions{
		Encrypted: float64(s.Encrypted) / float64(total),
		Pending:   float64(s.Pending) / float64(total),
		Failed:    float64(s.Failed) / float64(total),
	}
}

// Arcs 计算三段圆弧（encrypted、pending、failed 顺序）。
// 每段的旋转角等于之前各段比例之和，整体再旋转 -90° 使首段从顶部开始。
// Arcs computes the three slices (encrypted, pending, failed order). Each
// slice's rotation equals the cumulative fraction before it, with the whole
// pie rotated -90° so the first slice starts at the top.
func Arcs(f Fractions, radius float64) []Arc {
	circumference := 2 * math.Pi * radius
	fractions := []float64{f.Encrypted, f.Pending, f.Failed}

	arcs := make([]Arc, 0, len(fractions))
	cumulative := 0.0
	for _, frac := range fractions {
		arcs = append(arcs, Arc{
			Fraction:    frac,
			DashLength:  frac * circumference,
			DashGap:     circumference - frac*circumference,
			RotationDeg: -90 + cumulative*360,
		})
		cumulative += frac
	}
	return arcs
}
