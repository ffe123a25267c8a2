package agenda

import (
	"sort"

	"github.com/ihewe/retengine/production"
)

// recencySequence 返回 token 贡献的各条 WME 的断言序号，按降序排列——
// LEX/MEA 都以此为基础做"最近优先"的字典序比较。
func recencySequence(e Entry) []int64 {
	chain := e.Token.Chain()
	seq := make([]int64, len(chain))
	for i, w := range chain {
		seq[i] = w.Timestamp
	}
	sort.Sort(sort.Reverse(sortableInt64(seq)))
	return seq
}

type sortableInt64 []int64

func (s sortableInt64) Len() int           { return len(s) }
func (s sortableInt64) Less(i, j int) bool { return s[i] < s[j] }
func (s sortableInt64) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// lexCompare 按字典序比较两个降序时间戳序列，更高者（更近的事实）视为
// 更大。长度不同时，较长的前缀相等则较长的序列更大（它还有更多、更旧的
// 贡献事实可比，但既然前面全等，说明它在"最近"维度上不落后，长度本身
// 作为稳定的决胜点）。
func lexCompare(a, b []int64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	default:
		return 0
	}
}

// LEXStrategy 实现 OPS5 风格的时近性冲突消解：按各自贡献 WME 的断言
// 序号（降序）做字典序比较，最近者优先；打平按 token 深度，再打平按
// 冲突集合里的先后顺序。
type LEXStrategy struct{}

// NewLEX 构造 LEX 策略。
func NewLEX() *LEXStrategy { return &LEXStrategy{} }

func (s *LEXStrategy) Select(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	bestIdx := 0
	bestSeq := recencySequence(entries[0])
	for i := 1; i < len(entries); i++ {
		seq := recencySequence(entries[i])
		switch c := lexCompare(seq, bestSeq); {
		case c > 0:
			bestIdx, bestSeq = i, seq
		case c == 0 && entries[i].Token.Depth() > entries[bestIdx].Token.Depth():
			bestIdx, bestSeq = i, seq
		}
	}
	return entries[bestIdx], true
}

func (s *LEXStrategy) ProvideFeedback(p *production.Production, successFactor float64) {}
