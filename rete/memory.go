package rete

import "github.com/ihewe/retengine/wme"

// AlphaMemory 保存满足某个条件常量测试的 WME 集合：按插入顺序排列
// （供 LEX 时近性与去重复用），以 WME 三元组内容判等去重。
type AlphaMemory struct {
	items map[string]wme.WME
	order []string
	succ  []*JoinNode
}

// NewAlphaMemory 构造一个空的 alpha memory。
func NewAlphaMemory() *AlphaMemory {
	return &AlphaMemory{items: make(map[string]wme.WME)}
}

// Activate 尝试把一条 WME 放入本 memory；若已存在（按三元组判等）
// 返回 false（静默无操作），否则插入并通知所有后继 JoinNode。
func (am *AlphaMemory) Activate(w wme.WME) bool {
	key := w.Key()
	if _, ok := am.items[key]; ok {
		return false
	}
	am.items[key] = w
	am.order = append(am.order, key)
	for _, jn := range am.succ {
		jn.RightActivation(w)
	}
	return true
}

// Remove 从本 memory 中删除给定 key 对应的 WME，返回是否确实删除。
func (am *AlphaMemory) Remove(key string) bool {
	if _, ok := am.items[key]; !ok {
		return false
	}
	delete(am.items, key)
	for i, k := range am.order {
		if k == key {
			am.order = append(am.order[:i], am.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot 按插入顺序返回当前内容的只读拷贝。
func (am *AlphaMemory) Snapshot() []wme.WME {
	out := make([]wme.WME, 0, len(am.order))
	for _, k := range am.order {
		out = append(out, am.items[k])
	}
	return out
}

// Size 返回当前内容数量。
func (am *AlphaMemory) Size() int { return len(am.items) }

func (am *AlphaMemory) addSuccessor(jn *JoinNode) { am.succ = append(am.succ, jn) }

// BetaMemory 保存 token（部分匹配）集合；子节点可以是更深一层的
// JoinNode，也可以是终结某条规则的 ProductionNode。网络中有一个特殊的
// beta 根内存，恰好持有一枚 dummy token，作为每条规则第一次 join 的种子。
type BetaMemory struct {
	net          *Network
	tokens       map[string]*Token
	order        []string
	joinChildren []*JoinNode
	prodChildren []*ProductionNode
}

// NewBetaMemory 构造一个空的 beta memory；net 用于把新生 token 登记进
// 撤回用的旁路表（O(matches) 级联删除的关键）。
func NewBetaMemory(net *Network) *BetaMemory {
	return &BetaMemory{net: net, tokens: make(map[string]*Token)}
}

// newRoot 构造持有唯一 dummy token 的 beta 根内存。
func newRoot(net *Network) *BetaMemory {
	bm := NewBetaMemory(net)
	dummy := newDummyToken()
	dummy.owner = bm
	bm.tokens[dummy.hash] = dummy
	bm.order = append(bm.order, dummy.hash)
	return bm
}

// LeftActivation 在父 token 之上追加 wme 构造新 token；若该 token（按
// 链式内容判等）尚不存在则插入，并左激活每个子 JoinNode（由子节点自行
// 枚举自己的 alpha memory）与每个子 ProductionNode。
func (bm *BetaMemory) LeftActivation(parent *Token, w wme.WME) {
	candidate := parent.extend(w)
	if _, ok := bm.tokens[candidate.hash]; ok {
		// 回退刚刚登记在 parent.children 里的占位节点，避免撤回时
		// 出现重复的级联目标。
		parent.children = parent.children[:len(parent.children)-1]
		return
	}
	candidate.owner = bm
	bm.tokens[candidate.hash] = candidate
	bm.order = append(bm.order, candidate.hash)
	if bm.net != nil {
		bm.net.registerToken(candidate)
	}
	for _, jn := range bm.joinChildren {
		jn.LeftActivation(candidate)
	}
	for _, pn := range bm.prodChildren {
		pn.LeftActivation(candidate)
	}
}

// Snapshot 按插入顺序返回当前 token 集合。
func (bm *BetaMemory) Snapshot() []*Token {
	out := make([]*Token, 0, len(bm.order))
	for _, h := range bm.order {
		out = append(out, bm.tokens[h])
	}
	return out
}

// Size 返回当前 token 数量。
func (bm *BetaMemory) Size() int { return len(bm.tokens) }

// removeToken 从本 memory 中移除给定 token（按哈希），供撤回级联调用。
func (bm *BetaMemory) removeToken(t *Token) {
	if _, ok := bm.tokens[t.hash]; !ok {
		return
	}
	delete(bm.tokens, t.hash)
	for i, h := range bm.order {
		if h == t.hash {
			bm.order = append(bm.order[:i], bm.order[i+1:]...)
			break
		}
	}
}

func (bm *BetaMemory) addJoinChild(jn *JoinNode)       { bm.joinChildren = append(bm.joinChildren, jn) }
func (bm *BetaMemory) addProductionChild(p *ProductionNode) {
	bm.prodChildren = append(bm.prodChildren, p)
}
