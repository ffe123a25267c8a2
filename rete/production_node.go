package rete

import "github.com/ihewe/retengine/production"

// ProductionNode 是规则最终满足时的终结节点：累积完整匹配的 token 集合
// （按插入顺序，集合语义），即该规则当前的整个匹配集。
type ProductionNode struct {
	Production *production.Production
	tokens     map[string]*Token
	order      []string
}

// NewProductionNode 构造一个绑定到给定 Production 的终结节点。
func NewProductionNode(p *production.Production) *ProductionNode {
	return &ProductionNode{Production: p, tokens: make(map[string]*Token)}
}

// LeftActivation 在父 beta memory 产出一个完整匹配的 token 时被调用：
// 若尚未收录（按 token 哈希）则加入匹配集，并把自己登记进 token 的
// productions 反向引用表，供撤回级联时一并移除。
func (pn *ProductionNode) LeftActivation(token *Token) {
	if _, ok := pn.tokens[token.hash]; ok {
		return
	}
	pn.tokens[token.hash] = token
	pn.order = append(pn.order, token.hash)
	token.productions = append(token.productions, pn)
}

// removeToken 从匹配集中移除给定 token，供撤回级联调用。
func (pn *ProductionNode) removeToken(t *Token) {
	if _, ok := pn.tokens[t.hash]; !ok {
		return
	}
	delete(pn.tokens, t.hash)
	for i, h := range pn.order {
		if h == t.hash {
			pn.order = append(pn.order[:i], pn.order[i+1:]...)
			break
		}
	}
}

// Items 按插入顺序返回当前的完整匹配集：该规则在当前工作内存下的
// 所有一致变量赋值，每个恰好一次。
func (pn *ProductionNode) Items() []*Token {
	out := make([]*Token, 0, len(pn.order))
	for _, h := range pn.order {
		out = append(out, pn.tokens[h])
	}
	return out
}

// Size 返回当前匹配数。
func (pn *ProductionNode) Size() int { return len(pn.tokens) }
