// Package rete 实现判别网络本体：alpha 网络（常量测试 trie + alpha
// memory）、beta 网络（join 节点 + beta memory）、token 传播与生产节点。
package rete

import (
	"strconv"
	"strings"

	"github.com/ihewe/retengine/wme"
)

// Token 是 β 网络里单父链表的一个节点：parent 指向前驱 token（dummy
// top 之外的每个 token 都有一个），wme 是本层贡献的那条 WME。深度为 k
// 的 token 代表某条规则前 k 个条件的一个一致赋值；沿 parent 往上走即可
//按条件顺序取出这 k 条 WME。
type Token struct {
	parent *Token
	wme    wme.WME
	hasWME bool
	depth  int
	hash   string

	// children 是依此 token 为父链延伸出的下级 token，非持有引用，仅用
	// 于撤回时的级联删除（先删子，再删自身，保持中间状态下的不变式）。
	children []*Token

	// owner 是创建并持有本 token 的 BetaMemory；撤回时据此从正确的内存
	// 中移除自己。dummy top token 的 owner 是 beta 根内存。
	owner *BetaMemory

	// productions 记录了哪些 ProductionNode 把本 token 当作一条完整匹配
	// 收录——同一个 token 对象在传播到生产节点时不会再被复制。
	productions []*ProductionNode
}

// newDummyToken 构造 beta 根内存持有的哨兵 token：深度 0，没有 wme。
func newDummyToken() *Token {
	return &Token{depth: 0, hash: "⌀"}
}

// extend 在 t 之上追加一条 WME，生成子 token；子 token 被记录进 t 的
// children 列表，供撤回级联。owner 由调用方（BetaMemory）随后补上。
func (t *Token) extend(w wme.WME) *Token {
	child := &Token{
		parent: t,
		wme:    w,
		hasWME: true,
		depth:  t.depth + 1,
		hash:   t.hash + "\x1e" + w.Key(),
	}
	t.children = append(t.children, child)
	return child
}

// Depth 返回 token 的深度（已消费的条件数）。
func (t *Token) Depth() int { return t.depth }

// Hash 是 token 在 BetaMemory 中做去重与检索的 key。
func (t *Token) Hash() string { return t.hash }

// Ancestor 返回 token 链上第 k 个祖先贡献的 WME：k=0 是 t 自己的 wme，
// k=1 是 t.parent 的 wme，依次类推。
func (t *Token) Ancestor(k int) (wme.WME, bool) {
	cur := t
	for i := 0; i < k; i++ {
		if cur.parent == nil {
			return wme.WME{}, false
		}
		cur = cur.parent
	}
	if !cur.hasWME {
		return wme.WME{}, false
	}
	return cur.wme, true
}

// Chain 按条件顺序（祖先→叶子）返回 token 链上的全部 WME，供
// production.Production.Bind 使用。
func (t *Token) Chain() []wme.WME {
	wmes := make([]wme.WME, t.depth)
	cur := t
	for i := t.depth - 1; i >= 0 && cur != nil && cur.hasWME; i-- {
		wmes[i] = cur.wme
		cur = cur.parent
	}
	return wmes
}

func (t *Token) String() string {
	parts := make([]string, 0, t.depth)
	for _, w := range t.Chain() {
		parts = append(parts, w.String())
	}
	return "Token[" + strconv.Itoa(t.depth) + "](" + strings.Join(parts, ", ") + ")"
}
