package agenda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihewe/retengine/agenda"
	"github.com/ihewe/retengine/production"
	"github.com/ihewe/retengine/rete"
	"github.com/ihewe/retengine/wme"
)

func v(name string) production.Field { return production.Var(name) }
func c(s string) production.Field    { return production.Const(wme.Symbol(s)) }

func mustProduction(t *testing.T, name string, conds ...production.Condition) *production.Production {
	t.Helper()
	p, _ := production.New(name, conds, nil)
	return p
}

// twoRuleAgenda 搭一个最小网络：r1、r2 各两个条件、各恰好一个匹配，
// 事实的断言序号由调用方指定，用来构造确定的时近性格局。
// 返回的冲突集合顺序是 r1 在前（生产节点按注册顺序平铺）。
func twoRuleAgenda(t *testing.T, ts1a, ts1b, ts2a, ts2b int64) []agenda.Entry {
	t.Helper()
	n := rete.New(nil)
	n.AddProduction(mustProduction(t, "r1",
		production.NewCondition(v("a"), c("k1"), v("x")),
		production.NewCondition(v("a"), c("k2"), v("y")),
	))
	n.AddProduction(mustProduction(t, "r2",
		production.NewCondition(v("b"), c("k3"), v("x")),
		production.NewCondition(v("b"), c("k4"), v("y")),
	))
	n.AddWME(wme.New(wme.Symbol("i1"), wme.Symbol("k1"), wme.Int(1), ts1a))
	n.AddWME(wme.New(wme.Symbol("i1"), wme.Symbol("k2"), wme.Int(2), ts1b))
	n.AddWME(wme.New(wme.Symbol("i2"), wme.Symbol("k3"), wme.Int(3), ts2a))
	n.AddWME(wme.New(wme.Symbol("i2"), wme.Symbol("k4"), wme.Int(4), ts2b))

	entries := agenda.Build(n.Productions())
	require.Len(t, entries, 2)
	require.Equal(t, "r1", entries[0].Production.Name)
	require.Equal(t, "r2", entries[1].Production.Name)
	return entries
}

func TestBuild_FlattensAllProductionItems(t *testing.T) {
	n := rete.New(nil)
	pn := n.AddProduction(mustProduction(t, "r",
		production.NewCondition(v("p"), c("age"), v("a"))))
	n.AddWME(wme.New(wme.Symbol("p1"), wme.Symbol("age"), wme.Int(25), 1))
	n.AddWME(wme.New(wme.Symbol("p2"), wme.Symbol("age"), wme.Int(30), 2))

	entries := agenda.Build(n.Productions())
	require.Len(t, entries, 2)
	assert.Equal(t, pn.Production, entries[0].Production)
	assert.Equal(t, pn.Production, entries[1].Production)
}

func TestDefault_PicksDeepestMatch(t *testing.T) {
	n := rete.New(nil)
	n.AddProduction(mustProduction(t, "shallow",
		production.NewCondition(v("p"), c("name"), v("n"))))
	n.AddProduction(mustProduction(t, "deep",
		production.NewCondition(v("p"), c("name"), v("n")),
		production.NewCondition(v("p"), c("age"), v("a"))))
	n.AddWME(wme.New(wme.Symbol("p1"), wme.Symbol("name"), wme.String("Alice"), 1))
	n.AddWME(wme.New(wme.Symbol("p1"), wme.Symbol("age"), wme.Int(25), 2))

	entries := agenda.Build(n.Productions())
	require.Len(t, entries, 2)

	picked, ok := agenda.NewDefault().Select(entries)
	require.True(t, ok)
	assert.Equal(t, "deep", picked.Production.Name)
	assert.Equal(t, 2, picked.Token.Depth())
}

func TestDefault_BreaksTiesByAgendaOrder(t *testing.T) {
	// 深度相同：r1 在冲突集合里靠前（先注册），默认策略选它。
	entries := twoRuleAgenda(t, 1, 5, 2, 7)
	picked, ok := agenda.NewDefault().Select(entries)
	require.True(t, ok)
	assert.Equal(t, "r1", picked.Production.Name)
}

func TestLEX_PrefersMostRecentWME(t *testing.T) {
	// r1 的事实序号 {1,5}，r2 的 {2,7}：LEX 按降序字典序比较
	// [5,1] 与 [7,2]，r2 胜出——与默认策略的选择相反。
	entries := twoRuleAgenda(t, 1, 5, 2, 7)
	picked, ok := agenda.NewLEX().Select(entries)
	require.True(t, ok)
	assert.Equal(t, "r2", picked.Production.Name)
}

func TestLEX_FallsBackToSecondPosition(t *testing.T) {
	// 最新事实同为 9：比较退到第二个位置，[9,4] 对 [9,2]，r1 胜。
	entries := twoRuleAgenda(t, 4, 9, 2, 9)
	picked, ok := agenda.NewLEX().Select(entries)
	require.True(t, ok)
	assert.Equal(t, "r1", picked.Production.Name)
}

func TestMEA_AnchorsOnFirstCondition(t *testing.T) {
	// r1 第一条条件的事实更新（10 对 2），尽管 r2 整体含有最新的事实
	// （20）。LEX 会选 r2，MEA 给首条件时近性绝对优先权，选 r1。
	entries := twoRuleAgenda(t, 10, 1, 2, 20)

	picked, ok := agenda.NewLEX().Select(entries)
	require.True(t, ok)
	require.Equal(t, "r2", picked.Production.Name)

	picked, ok = agenda.NewMEA().Select(entries)
	require.True(t, ok)
	assert.Equal(t, "r1", picked.Production.Name)
}

func TestMEA_EqualAnchorsFallBackToLEX(t *testing.T) {
	// 锚点并列（两条规则的首条件事实都在 3）：其余位置按 LEX 比较，
	// r2 的 20 对 r1 的 1，r2 胜。
	entries := twoRuleAgenda(t, 3, 1, 3, 20)
	picked, ok := agenda.NewMEA().Select(entries)
	require.True(t, ok)
	assert.Equal(t, "r2", picked.Production.Name)
}

func TestStrategies_EmptyAgenda(t *testing.T) {
	strategies := []agenda.Strategy{
		agenda.NewDefault(),
		agenda.NewLEX(),
		agenda.NewMEA(),
		agenda.NewGBB(1.0, 0.5, 0.01, nil),
	}
	for _, s := range strategies {
		_, ok := s.Select(nil)
		assert.False(t, ok)
	}
}
