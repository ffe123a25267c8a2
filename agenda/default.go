package agenda

import "github.com/ihewe/retengine/production"

// DefaultStrategy 选择 token 深度最大的条目（最具体、最完整的匹配）；
// 深度相同按冲突集合里的先后顺序决胜——也就是从左到右扫描，第一个达到
// 当前最大深度的条目获胜，后来者即使深度相同也不会顶替它。
type DefaultStrategy struct{}

// NewDefault 构造默认策略。
func NewDefault() *DefaultStrategy { return &DefaultStrategy{} }

func (s *DefaultStrategy) Select(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Token.Depth() > best.Token.Depth() {
			best = e
		}
	}
	return best, true
}

func (s *DefaultStrategy) ProvideFeedback(p *production.Production, successFactor float64) {}
