package rete

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ihewe/retengine/production"
	"github.com/ihewe/retengine/wme"
)

// Network 构建并维护判别网络：alpha trie、beta 网络（join 节点 + beta
// memory）、生产节点，以及撤回所需的旁路引用表。规则编译走
// build-or-share：常量模式相同的条件共享 alpha memory，前缀 join 结构
// 相同的规则共享同一条 JoinNode/BetaMemory 链。
type Network struct {
	logger *zap.Logger

	alphaRoot    *alphaTrieNode
	alphaMemory  []*AlphaMemory // 全部 alpha memory，插入顺序，供 Dump 使用
	betaRoot     *BetaMemory
	productions  []*ProductionNode

	workingMemory map[string]wme.WME // 当前存活的 WME，按三元组 key 索引

	// 下面两张表把"拥有"关系反过来：给定一个 WME，O(matches) 地找到它
	// 所在的全部 alpha memory 与直接引用它的全部 token，支撑 RemoveWME。
	wmeAlphaMemories map[string][]*AlphaMemory
	wmeTokens        map[string][]*Token
}

// New 构造一个空的判别网络。logger 为 nil 时使用 zap 的 no-op logger。
func New(logger *zap.Logger) *Network {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Network{
		logger:           logger,
		alphaRoot:        newAlphaTrieNode(),
		workingMemory:    make(map[string]wme.WME),
		wmeAlphaMemories: make(map[string][]*AlphaMemory),
		wmeTokens:        make(map[string][]*Token),
	}
	n.betaRoot = newRoot(n)
	return n
}

// AddProduction 把一条规则编译进网络：走 build-or-share 得到（或复用）
// 一条 JoinNode/BetaMemory 链，在链尾挂一个新的 ProductionNode，并对链尾
// beta memory 里已经存在的 token（由结构共享 + 既有事实回填产生）做一次
// 初始左激活，让迟加入的规则立刻看到当前工作内存。
func (n *Network) AddProduction(p *production.Production) *ProductionNode {
	beta := n.buildOrShareNetworkForConditions(p.Conditions)
	pn := NewProductionNode(p)
	beta.addProductionChild(pn)
	n.productions = append(n.productions, pn)
	for _, t := range beta.Snapshot() {
		pn.LeftActivation(t)
	}
	n.logger.Debug("production added", zap.String("rule", p.Name), zap.Int("conditions", len(p.Conditions)))
	return pn
}

func (n *Network) buildOrShareNetworkForConditions(conds []production.Condition) *BetaMemory {
	parent := n.betaRoot
	for i, cond := range conds {
		alpha := n.buildOrShareAlphaMemory(cond)
		tests := deriveJoinTests(cond, conds[:i])
		parent = n.buildOrShareJoinNode(parent, alpha, tests).child
	}
	return parent
}

// buildOrShareAlphaMemory 沿条件的常量测试走/扩展 alpha trie；路径末端
// 已有 memory 时直接复用，否则新建并回填当前工作内存里通过全部测试的
// WME，让迟加入的规则看到既有事实。
func (n *Network) buildOrShareAlphaMemory(cond production.Condition) *AlphaMemory {
	edges := constantTests(cond)
	node := n.alphaRoot
	for _, e := range edges {
		child, ok := node.children[e]
		if !ok {
			child = newAlphaTrieNode()
			node.children[e] = child
		}
		node = child
	}
	if node.memory == nil {
		node.memory = NewAlphaMemory()
		n.alphaMemory = append(n.alphaMemory, node.memory)
		for _, w := range n.chronologicalWorkingMemory() {
			if matchesEdges(w, edges) {
				if node.memory.Activate(w) {
					n.wmeAlphaMemories[w.Key()] = append(n.wmeAlphaMemories[w.Key()], node.memory)
				}
			}
		}
	}
	return node.memory
}

func (n *Network) buildOrShareJoinNode(parent *BetaMemory, alpha *AlphaMemory, tests []JoinTest) *JoinNode {
	for _, jn := range parent.joinChildren {
		if jn.alpha == alpha && testsEqual(jn.tests, tests) {
			return jn
		}
	}
	jn := &JoinNode{parent: parent, alpha: alpha, tests: tests, child: NewBetaMemory(n)}
	alpha.addSuccessor(jn)
	parent.addJoinChild(jn)
	for _, w := range alpha.Snapshot() {
		jn.RightActivation(w)
	}
	return jn
}

// chronologicalWorkingMemory 按断言时间戳排序返回当前存活的 WME，供
// 迟建的 alpha memory 回填已有事实时保持真实的插入顺序（map 迭代顺序
// 本身是不确定的）。
func (n *Network) chronologicalWorkingMemory() []wme.WME {
	out := make([]wme.WME, 0, len(n.workingMemory))
	for _, w := range n.workingMemory {
		out = append(out, w)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Timestamp < out[j-1].Timestamp; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// AddWME 把一条新事实交给网络：从 alpha trie 根出发，沿每条常量测试
// 通过的边下降，在每个遇到的 alpha memory 上调用 Activate。重复断言
// （按三元组内容）是静默的无操作。返回这是否是一条全新的 WME。
func (n *Network) AddWME(w wme.WME) bool {
	key := w.Key()
	if _, exists := n.workingMemory[key]; exists {
		return false
	}
	n.workingMemory[key] = w
	n.walkAlpha(n.alphaRoot, w)
	n.logger.Debug("wme asserted", zap.String("wme", w.String()))
	return true
}

func (n *Network) walkAlpha(node *alphaTrieNode, w wme.WME) {
	if node.memory != nil {
		if node.memory.Activate(w) {
			n.wmeAlphaMemories[w.Key()] = append(n.wmeAlphaMemories[w.Key()], node.memory)
		}
	}
	for edge, child := range node.children {
		if slotValue(w, edge.slot).Key() == edge.key {
			n.walkAlpha(child, w)
		}
	}
}

// RemoveWME 从每个包含它的 alpha memory 中移除该 WME；对每个直接引用它
// 的 token，级联删除其所有子孙 token（先子后父），再把 token 从它所属
// 的 BetaMemory/ProductionNode 中摘除。
func (n *Network) RemoveWME(w wme.WME) bool {
	key := w.Key()
	if _, ok := n.workingMemory[key]; !ok {
		return false
	}
	delete(n.workingMemory, key)

	for _, am := range n.wmeAlphaMemories[key] {
		am.Remove(key)
	}
	delete(n.wmeAlphaMemories, key)

	tokens := n.wmeTokens[key]
	delete(n.wmeTokens, key)
	for _, t := range tokens {
		n.removeTokenCascade(t)
	}
	n.logger.Debug("wme retracted", zap.String("wme", w.String()))
	return true
}

func (n *Network) registerToken(t *Token) {
	if !t.hasWME {
		return
	}
	key := t.wme.Key()
	n.wmeTokens[key] = append(n.wmeTokens[key], t)
}

func (n *Network) unregisterToken(t *Token) {
	if !t.hasWME {
		return
	}
	key := t.wme.Key()
	list := n.wmeTokens[key]
	for i, tok := range list {
		if tok == t {
			n.wmeTokens[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(n.wmeTokens[key]) == 0 {
		delete(n.wmeTokens, key)
	}
}

func (n *Network) removeTokenCascade(t *Token) {
	children := t.children
	t.children = nil
	for _, c := range children {
		n.removeTokenCascade(c)
	}
	if t.owner != nil {
		t.owner.removeToken(t)
	}
	for _, pn := range t.productions {
		pn.removeToken(t)
	}
	t.productions = nil
	n.unregisterToken(t)
}

// Productions 返回网络中全部生产节点（插入顺序）。
func (n *Network) Productions() []*ProductionNode { return n.productions }

// Lookup 按三元组内容查找一条存活的 WME；命中时返回的是最初断言的那条
// （携带原始 Timestamp），供重复断言时复用。
func (n *Network) Lookup(id, attr, val wme.Value) (wme.WME, bool) {
	probe := wme.WME{Identifier: id, Attribute: attr, Value: val}
	w, ok := n.workingMemory[probe.Key()]
	return w, ok
}

// WorkingMemory 按断言顺序返回当前存活的全部 WME。
func (n *Network) WorkingMemory() []wme.WME { return n.chronologicalWorkingMemory() }

// JoinNodeCount 统计 beta 网络里深度不超过 maxDepth 的 JoinNode 数量
// （maxDepth<=0 表示不限）；结构共享的验证点：前缀相同的两条规则只贡献
// 一条共享的 JoinNode/BetaMemory 链。
func (n *Network) JoinNodeCount(maxDepth int) int {
	return countJoins(n.betaRoot, 1, maxDepth)
}

func countJoins(bm *BetaMemory, depth, maxDepth int) int {
	if maxDepth > 0 && depth > maxDepth {
		return 0
	}
	total := len(bm.joinChildren)
	for _, jn := range bm.joinChildren {
		total += countJoins(jn.child, depth+1, maxDepth)
	}
	return total
}

// Dump 生成调试用文本快照：工作内存大小、每个 alpha memory 的条目数、
// beta 网络的缩进树、每条规则当前的匹配数。
func (n *Network) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "working memory: %d elements\n", len(n.workingMemory))
	fmt.Fprintf(&b, "alpha memories: %d\n", len(n.alphaMemory))
	for i, am := range n.alphaMemory {
		fmt.Fprintf(&b, "  [%d] %d items\n", i, am.Size())
	}
	b.WriteString("beta network:\n")
	n.dumpBeta(&b, n.betaRoot, 1)
	b.WriteString("productions:\n")
	for _, pn := range n.productions {
		fmt.Fprintf(&b, "  %s: %d matches\n", pn.Production.Name, pn.Size())
	}
	return b.String()
}

func (n *Network) dumpBeta(b *strings.Builder, bm *BetaMemory, depth int) {
	fmt.Fprintf(b, "%s- %d tokens\n", strings.Repeat("  ", depth), bm.Size())
	for _, jn := range bm.joinChildren {
		n.dumpBeta(b, jn.child, depth+1)
	}
}
