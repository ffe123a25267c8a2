package rete

import (
	"strconv"
	"strings"

	"github.com/ihewe/retengine/wme"
)

// Slot 标记 WME 三元组里的一个位置。
type Slot int

const (
	SlotIdentifier Slot = iota
	SlotAttribute
	SlotValue
)

func (s Slot) String() string {
	switch s {
	case SlotIdentifier:
		return "id"
	case SlotAttribute:
		return "attr"
	case SlotValue:
		return "value"
	default:
		return "?"
	}
}

func slotValue(w wme.WME, s Slot) wme.Value {
	switch s {
	case SlotIdentifier:
		return w.Identifier
	case SlotAttribute:
		return w.Attribute
	default:
		return w.Value
	}
}

// JoinTest 是单条一致性测试：要求候选新 WME 的 NewField 字段，等于 token
// 链上第 K 个祖先 WME 的 AncField 字段。
type JoinTest struct {
	NewField Slot
	K        int
	AncField Slot
}

func (jt JoinTest) key() string {
	return jt.NewField.String() + ":" + strconv.Itoa(jt.K) + ":" + jt.AncField.String()
}

func testsKey(tests []JoinTest) string {
	parts := make([]string, len(tests))
	for i, t := range tests {
		parts[i] = t.key()
	}
	return strings.Join(parts, ",")
}

func testsEqual(a, b []JoinTest) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// JoinNode 在一个 beta memory（父侧）与一个 alpha memory（右侧）之间做
// 变量一致性测试。它恰好有一个子节点：下一层 beta memory（新建或复用）。
type JoinNode struct {
	parent *BetaMemory
	alpha  *AlphaMemory
	tests  []JoinTest
	child  *BetaMemory
}

// RightActivation 在自己的 alpha memory 收到一条新 WME 时被调用：遍历
// 父 beta memory 中的每个 token（按插入顺序），测试通过的就把 (token, wme) 左激活
// 到子节点。
func (jn *JoinNode) RightActivation(w wme.WME) {
	for _, t := range jn.parent.Snapshot() {
		if jn.performJoinTests(t, w) {
			jn.child.LeftActivation(t, w)
		}
	}
}

// LeftActivation 在父 beta memory 收到一个新 token 时被调用：遍历自己
// alpha memory 里的每条 WME，测试通过的就把 (token, wme) 左激活到子
// 节点。根 join（没有任何更早条件、tests 为空）
// 天然地让每条 alpha WME 都通过——测试列表为空时 performJoinTests 总是
// 返回 true。
func (jn *JoinNode) LeftActivation(token *Token) {
	for _, w := range jn.alpha.Snapshot() {
		if jn.performJoinTests(token, w) {
			jn.child.LeftActivation(token, w)
		}
	}
}

// performJoinTests 对每条测试读出候选 wme 的 NewField 与 token 第 K 个
// 祖先 wme 的 AncField，做标准相等比较；全部通过才算通过。
func (jn *JoinNode) performJoinTests(token *Token, w wme.WME) bool {
	for _, t := range jn.tests {
		anc, ok := token.Ancestor(t.K)
		if !ok {
			return false
		}
		if !slotValue(w, t.NewField).Equal(slotValue(anc, t.AncField)) {
			return false
		}
	}
	return true
}
