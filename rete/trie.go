package rete

import (
	"strconv"

	"github.com/ihewe/retengine/production"
	"github.com/ihewe/retengine/wme"
)

// alphaEdge 是 alpha trie 的一条边：某个字段位置上的一个具体常量值。
// 变量字段不贡献边（永真，trie 上不分支）。
type alphaEdge struct {
	slot Slot
	key  string
}

// alphaTrieNode 是 alpha trie 上的一个节点；memory 非空表示恰好有某个
// 条件的常量测试集合在此终止。
type alphaTrieNode struct {
	children map[alphaEdge]*alphaTrieNode
	memory   *AlphaMemory
}

func newAlphaTrieNode() *alphaTrieNode {
	return &alphaTrieNode{children: make(map[alphaEdge]*alphaTrieNode)}
}

// constantTests 按 identifier、attribute、value 的固定顺序，收集条件里
// 所有常量字段对应的 trie 边；变量字段被跳过（永真）。
func constantTests(cond production.Condition) []alphaEdge {
	fields := cond.Fields()
	edges := make([]alphaEdge, 0, 3)
	for i, f := range fields {
		if f.IsVariable() {
			continue
		}
		edges = append(edges, alphaEdge{slot: Slot(i), key: f.Constant.Key()})
	}
	return edges
}

// matchesEdges 判断一条 WME 是否满足给定的常量边集合（trie 路径上的
// 全部测试）。
func matchesEdges(w wme.WME, edges []alphaEdge) bool {
	for _, e := range edges {
		if slotValue(w, e.slot).Key() != e.key {
			return false
		}
	}
	return true
}

// deriveJoinTests 为当前条件（earlier 是此前的全部条件，按规则顺序）
// 推导 join test 列表：对当前条件里的每个变量字段，从最近的更早条件开始
// 向前扫描，命中即生成一条测试 (当前字段, 到该祖先的距离, 命中字段)，
// "最近祖先优先" 的顺序使相同前缀的规则尽量复用同一批测试序列。
func deriveJoinTests(cond production.Condition, earlier []production.Condition) []JoinTest {
	var tests []JoinTest
	fields := cond.Fields()
	n := len(earlier)
	for newSlot, f := range fields {
		if !f.IsVariable() {
			continue
		}
		for i := n - 1; i >= 0; i-- {
			ancFields := earlier[i].Fields()
			for ancSlot, af := range ancFields {
				if af.IsVariable() && af.Variable == f.Variable {
					tests = append(tests, JoinTest{
						NewField: Slot(newSlot),
						K:        n - 1 - i,
						AncField: Slot(ancSlot),
					})
				}
			}
		}
	}
	return tests
}

func (n *alphaTrieNode) String() string {
	return "alphaTrieNode(children=" + strconv.Itoa(len(n.children)) + ")"
}
