package agenda

import "github.com/ihewe/retengine/production"

// MEAStrategy 是 LEX 的变体：第一条条件贡献的 WME（"目标锚点"）的时近
// 性拥有绝对优先权，其余位置才按 LEX 方式打平。
type MEAStrategy struct{}

// NewMEA 构造 MEA 策略。
func NewMEA() *MEAStrategy { return &MEAStrategy{} }

// anchorTimestamp 返回 token 第一条条件贡献的 WME 的断言序号；token 为
// 空（规则没有条件，理论上不会发生）时返回最小值，永远不会胜出。
func anchorTimestamp(e Entry) int64 {
	chain := e.Token.Chain()
	if len(chain) == 0 {
		return -1
	}
	return chain[0].Timestamp
}

// restSequence 是除锚点外其余贡献 WME 的降序时间戳序列，供 LEX 式的
// 决胜比较。
func restSequence(e Entry) []int64 {
	chain := e.Token.Chain()
	if len(chain) <= 1 {
		return nil
	}
	rest := make([]int64, len(chain)-1)
	for i, w := range chain[1:] {
		rest[i] = w.Timestamp
	}
	sorted := sortableInt64(rest)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] > sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

func (s *MEAStrategy) Select(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	bestIdx := 0
	bestAnchor := anchorTimestamp(entries[0])
	bestRest := restSequence(entries[0])
	for i := 1; i < len(entries); i++ {
		anchor := anchorTimestamp(entries[i])
		switch {
		case anchor > bestAnchor:
			bestIdx, bestAnchor, bestRest = i, anchor, restSequence(entries[i])
		case anchor == bestAnchor:
			rest := restSequence(entries[i])
			switch c := lexCompare(rest, bestRest); {
			case c > 0:
				bestIdx, bestAnchor, bestRest = i, anchor, rest
			case c == 0 && entries[i].Token.Depth() > entries[bestIdx].Token.Depth():
				bestIdx, bestAnchor, bestRest = i, anchor, rest
			}
		}
	}
	return entries[bestIdx], true
}

func (s *MEAStrategy) ProvideFeedback(p *production.Production, successFactor float64) {}
