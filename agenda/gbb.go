package agenda

import (
	"math/rand"

	"github.com/ihewe/retengine/production"
)

// GBBStrategy 实现 Gambler's Bucket Brigade：每条规则持有一个标量权重，
// 选择阶段按权重做适应度比例的轮盘赌抽样，反馈阶段用乘法式更新调整权重
// （weight = max(epsilon, weight*(1+lr*s))）。权重按规则名索引，嵌入方
// 可以整体导出/导入（引擎自身不做持久化）。
type GBBStrategy struct {
	rng           *rand.Rand
	weights       map[string]float64
	initialWeight float64
	learningRate  float64
	epsilon       float64
	lastFired     string
}

// NewGBB 构造 GBB 策略。initialWeight 是规则第一次出现在冲突集合里时
// 的默认权重，learningRate 控制反馈的调整幅度，epsilon 是权重的下限，
// 防止一条表现很差的规则的权重归零后永远无法再被抽中。rng 为 nil 时
// 使用一个以固定种子播种的默认随机源（保证同一输入序列下行为可复现）。
func NewGBB(initialWeight, learningRate, epsilon float64, rng *rand.Rand) *GBBStrategy {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &GBBStrategy{
		rng:           rng,
		weights:       make(map[string]float64),
		initialWeight: initialWeight,
		learningRate:  learningRate,
		epsilon:       epsilon,
	}
}

func (s *GBBStrategy) weightOf(name string) float64 {
	w, ok := s.weights[name]
	if !ok {
		w = s.initialWeight
		s.weights[name] = w
	}
	return w
}

func (s *GBBStrategy) Select(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	total := 0.0
	ws := make([]float64, len(entries))
	for i, e := range entries {
		w := s.weightOf(e.Production.Name)
		ws[i] = w
		total += w
	}
	if total <= 0 {
		s.lastFired = entries[0].Production.Name
		return entries[0], true
	}
	r := s.rng.Float64() * total
	acc := 0.0
	chosen := len(entries) - 1
	for i, w := range ws {
		acc += w
		if r < acc {
			chosen = i
			break
		}
	}
	s.lastFired = entries[chosen].Production.Name
	return entries[chosen], true
}

// ProvideFeedback 按乘法式公式调整规则权重：successFactor 为正时权重
// 增长，为负时衰减，但永远不低于 epsilon。其余规则的权重不受影响。
func (s *GBBStrategy) ProvideFeedback(p *production.Production, successFactor float64) {
	w := s.weightOf(p.Name)
	w = w * (1 + s.learningRate*successFactor)
	if w < s.epsilon {
		w = s.epsilon
	}
	s.weights[p.Name] = w
}

// LastFired 返回最近一次 Select 选中的规则名，供嵌入方在外部评估该次
// 触发的效果后回送 ProvideFeedback。
func (s *GBBStrategy) LastFired() string { return s.lastFired }

// Weights 返回当前每条规则的权重快照，供调试与嵌入方自行持久化使用。
func (s *GBBStrategy) Weights() map[string]float64 {
	out := make(map[string]float64, len(s.weights))
	for name, w := range s.weights {
		out[name] = w
	}
	return out
}

// SetWeights 批量覆盖权重，供测试注入确定性起点或从外部恢复使用。
func (s *GBBStrategy) SetWeights(weights map[string]float64) {
	for name, w := range weights {
		s.weights[name] = w
	}
}
