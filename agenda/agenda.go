// Package agenda 实现冲突集合的构建与四种冲突消解策略：Default（最深
// 匹配）、LEX/MEA（时近性）、GBB（轮盘赌 + 权重学习）。冲突集合是
// (production, token) 的扁平列表，每个周期从生产节点的匹配集从头重建。
package agenda

import (
	"github.com/ihewe/retengine/production"
	"github.com/ihewe/retengine/rete"
)

// Entry 是冲突集合里的一项：一条规则与使其匹配的一个完整 token。
type Entry struct {
	Production *production.Production
	Token      *rete.Token
}

// Strategy 是冲突消解策略的统一接口：从当前冲突集合里选出一项执行，并
// 可选地接收执行结果的反馈（仅学习型策略如 GBB 使用）。
type Strategy interface {
	Select(entries []Entry) (Entry, bool)
	ProvideFeedback(p *production.Production, successFactor float64)
}

// Build 把网络里每个 ProductionNode 当前的匹配集合平铺成冲突集合。
// 调用方每个周期都从零重建，动作回调在周期中途对网络做的增删在下一次
// 重建时自然反映出来。
func Build(productions []*rete.ProductionNode) []Entry {
	var entries []Entry
	for _, pn := range productions {
		for _, tok := range pn.Items() {
			entries = append(entries, Entry{Production: pn.Production, Token: tok})
		}
	}
	return entries
}
