package agenda_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihewe/retengine/agenda"
	"github.com/ihewe/retengine/production"
)

func namedProduction(name string) *production.Production {
	p, _ := production.New(name, nil, nil)
	return p
}

func TestGBB_FeedbackAppliesMultiplicativeUpdate(t *testing.T) {
	s := agenda.NewGBB(1.0, 0.5, 0.01, nil)
	r1 := namedProduction("R1")

	// 先让两条规则都进入权重表。
	s.SetWeights(map[string]float64{"R1": 1.0, "R2": 1.0})

	for i := 0; i < 5; i++ {
		s.ProvideFeedback(r1, 1)
	}

	w := s.Weights()
	assert.InDelta(t, math.Pow(1.5, 5), w["R1"], 1e-9)
	assert.Equal(t, 1.0, w["R2"], "feedback must not touch other rules")
}

func TestGBB_NegativeFeedbackFloorsAtEpsilon(t *testing.T) {
	s := agenda.NewGBB(1.0, 1.0, 0.25, nil)
	r := namedProduction("R")
	s.ProvideFeedback(r, -1) // 1 * (1 + 1*-1) = 0，被钳到 epsilon
	assert.Equal(t, 0.25, s.Weights()["R"])
}

func TestGBB_RecordsLastFired(t *testing.T) {
	s := agenda.NewGBB(1.0, 0.5, 0.01, rand.New(rand.NewSource(7)))
	entries := []agenda.Entry{
		{Production: namedProduction("R1")},
		{Production: namedProduction("R2")},
	}
	picked, ok := s.Select(entries)
	require.True(t, ok)
	assert.Equal(t, picked.Production.Name, s.LastFired())
}

func TestGBB_RouletteConvergesToWeightRatio(t *testing.T) {
	// 反馈 R1 五次后 weight(R1)/weight(R2) = 1.5^5 ≈ 7.59；
	// 轮盘赌抽样 10000 次，R1 的命中率应落在 7.59/8.59 附近。
	s := agenda.NewGBB(1.0, 0.5, 0.01, rand.New(rand.NewSource(42)))
	r1 := namedProduction("R1")
	r2 := namedProduction("R2")
	entries := []agenda.Entry{{Production: r1}, {Production: r2}}

	// 两条规则先各自以初始权重入表，再单独强化 R1。
	_, _ = s.Select(entries)
	for i := 0; i < 5; i++ {
		s.ProvideFeedback(r1, 1)
	}

	w1 := s.Weights()["R1"]
	expected := w1 / (w1 + 1.0)

	const draws = 10000
	hits := 0
	for i := 0; i < draws; i++ {
		picked, ok := s.Select(entries)
		require.True(t, ok)
		if picked.Production.Name == "R1" {
			hits++
		}
	}
	assert.InDelta(t, expected, float64(hits)/draws, 0.012)
}

func TestGBB_SetWeightsOverridesSelectively(t *testing.T) {
	s := agenda.NewGBB(1.0, 0.5, 0.01, nil)
	s.SetWeights(map[string]float64{"R1": 4.0})
	assert.Equal(t, 4.0, s.Weights()["R1"])

	// 未覆盖的规则仍按初始权重懒加载。
	entries := []agenda.Entry{{Production: namedProduction("R2")}}
	_, _ = s.Select(entries)
	assert.Equal(t, 1.0, s.Weights()["R2"])
}
