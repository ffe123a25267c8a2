package production

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihewe/retengine/wme"
)

func sym(s string) Field { return Const(wme.Symbol(s)) }

func TestParseField(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected Field
	}{
		{name: "前导问号解析为变量", input: "?person", expected: Var("person")},
		{name: "普通字符串解析为常量", input: "alice", expected: Const(wme.String("alice"))},
		{name: "整数解析为常量", input: 18, expected: Const(wme.Int(18))},
		{name: "布尔解析为常量", input: true, expected: Const(wme.Bool(true))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseField(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected.Kind, got.Kind)
			if tc.expected.IsVariable() {
				assert.Equal(t, tc.expected.Variable, got.Variable)
			} else {
				assert.True(t, got.Constant.Equal(tc.expected.Constant))
			}
		})
	}
}

func TestParseSymbolField(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected Field
		wantErr  bool
	}{
		{name: "前导问号解析为变量", input: "?p", expected: Var("p")},
		{name: "普通字符串解析为符号常量", input: "legal", expected: Const(wme.Symbol("legal"))},
		{name: "整数在符号位置不合法", input: 18, wantErr: true},
		{name: "布尔在符号位置不合法", input: true, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSymbolField(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.Kind, got.Kind)
			if tc.expected.IsVariable() {
				assert.Equal(t, tc.expected.Variable, got.Variable)
			} else {
				assert.True(t, got.Constant.Equal(tc.expected.Constant))
			}
		})
	}
}

func TestBind_ExtractsVariablesInConditionOrder(t *testing.T) {
	p, warnings := New("check-age", []Condition{
		NewCondition(Var("p"), sym("name"), Var("n")),
		NewCondition(Var("p"), sym("age"), Var("a")),
		NewCondition(sym("legal"), sym("min-age"), Var("m")),
	}, nil)
	require.Len(t, warnings, 3) // ?n ?a ?m 各只出现一次

	chain := []wme.WME{
		wme.New(wme.Symbol("person1"), wme.Symbol("name"), wme.String("Alice"), 1),
		wme.New(wme.Symbol("person1"), wme.Symbol("age"), wme.Int(25), 2),
		wme.New(wme.Symbol("legal"), wme.Symbol("min-age"), wme.Int(18), 3),
	}
	b := p.Bind(chain)

	v, ok := b.Get("p")
	require.True(t, ok)
	assert.Equal(t, "person1", v.Raw())
	v, ok = b.Get("n")
	require.True(t, ok)
	assert.Equal(t, "Alice", v.Raw())
	v, ok = b.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(25), v.Raw())
	v, ok = b.Get("m")
	require.True(t, ok)
	assert.Equal(t, int64(18), v.Raw())
}

func TestBind_LaterOccurrenceOverwritesIdempotently(t *testing.T) {
	// join 已保证同名变量取值一致，后写覆盖必须是幂等的。
	p, _ := New("dup", []Condition{
		NewCondition(Var("x"), sym("a"), sym("1")),
		NewCondition(Var("x"), sym("b"), sym("2")),
	}, nil)
	chain := []wme.WME{
		wme.New(wme.Symbol("id9"), wme.Symbol("a"), wme.Symbol("1"), 1),
		wme.New(wme.Symbol("id9"), wme.Symbol("b"), wme.Symbol("2"), 2),
	}
	b := p.Bind(chain)
	v, ok := b.Get("x")
	require.True(t, ok)
	assert.Equal(t, "id9", v.Raw())
	assert.Len(t, b, 1)
}

func TestNew_WarnsOnIsolatedVariable(t *testing.T) {
	// ?orphan 只出现在一个条件里：发出警告，但规则仍被接受。
	p, warnings := New("lonely", []Condition{
		NewCondition(Var("p"), sym("name"), Var("orphan")),
		NewCondition(Var("p"), sym("age"), Var("a")),
		NewCondition(sym("legal"), sym("min-age"), Var("a")),
	}, nil)
	require.NotNil(t, p)
	require.Len(t, warnings, 1)

	var bw *BindingWarning
	require.True(t, errors.As(warnings[0], &bw))
	assert.Equal(t, "orphan", bw.Variable)
	assert.Equal(t, "lonely", bw.Rule)
	assert.True(t, errors.Is(warnings[0], ErrUnboundVariable))

	assert.Len(t, p.Warnings(), 1)
}

func TestExecute_RunsActionsInOrder(t *testing.T) {
	var trace []string
	p, _ := New("r", []Condition{
		NewCondition(Var("x"), sym("is"), sym("here")),
	}, []Action{
		func(b Bindings, e Engine) { trace = append(trace, "first") },
		func(b Bindings, e Engine) { trace = append(trace, "second") },
	})
	chain := []wme.WME{wme.New(wme.Symbol("w"), wme.Symbol("is"), wme.Symbol("here"), 1)}
	p.Execute(chain, nil)
	assert.Equal(t, []string{"first", "second"}, trace)
}
