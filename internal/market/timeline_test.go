package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTimeline_Deterministic(t *testing.T) {
	a := GenerateTimeline("universe-1", 40)
	b := GenerateTimeline("universe-1", 40)

	require.Equal(t, a, b, "same seed and length must reproduce byte-identical timelines")
}

func TestGenerateTimeline_DistinctSeeds(t *testing.T) {
	a := GenerateTimeline("universe-1", 40)
	b := GenerateTimeline("universe-2", 40)

	assert.NotEqual(t, a, b)
}

func TestGenerateTimeline_Length(t *testing.T) {
	assert.Len(t, GenerateTimeline("s", 0), 0)
	assert.Len(t, GenerateTimeline("s", 1), 1)
	assert.Len(t, GenerateTimeline("s", 25), 25)
	assert.Len(t, GenerateTimeline("s", -3), 0)
}

func TestGenerateTimeline_OneIndexed(t *testing.T) {
	timeline := GenerateTimeline("index-check", 10)
	for i, period := range timeline {
		assert.Equal(t, i+1, period.Index)
	}
}

func TestGenerateTimeline_RegimeRanges(t *testing.T) {
	timeline := GenerateTimeline("ranges", 500)
	require.NotEmpty(t, timeline)

	for _, p := range timeline {
		switch p.Regime {
		case RegimeBoom:
			assert.GreaterOrEqual(t, p.ReturnPct, 0.14)
			assert.Less(t, p.ReturnPct, 0.32)
			assert.GreaterOrEqual(t, p.Volatility, 0.16)
			assert.Less(t, p.Volatility, 0.30)
		case RegimeCrash:
			assert.GreaterOrEqual(t, p.ReturnPct, -0.45)
			assert.Less(t, p.ReturnPct, -0.18)
			assert.GreaterOrEqual(t, p.Volatility, 0.28)
			assert.Less(t, p.Volatility, 0.50)
		case RegimeRecession:
			assert.GreaterOrEqual(t, p.ReturnPct, -0.12)
			assert.Less(t, p.ReturnPct, 0.05)
			assert.GreaterOrEqual(t, p.Volatility, 0.20)
			assert.Less(t, p.Volatility, 0.36)
		case RegimeNormal:
			assert.GreaterOrEqual(t, p.ReturnPct, 0.03)
			assert.Less(t, p.ReturnPct, 0.12)
			assert.GreaterOrEqual(t, p.Volatility, 0.10)
			assert.Less(t, p.Volatility, 0.20)
		default:
			t.Fatalf("unknown regime %q", p.Regime)
		}
	}
}

func TestGenerateTimeline_HeadlinesRegimeConsistent(t *testing.T) {
	timeline := GenerateTimeline("headline-check", 200)
	for _, p := range timeline {
		require.NotEmpty(t, p.Headline)
		assert.Contains(t, headlines[p.Regime], p.Headline)
	}
}

func TestGenerateTimeline_CrashNeverFollowsCrashDirectly(t *testing.T) {
	// The after-crash table has no crash entry, so back-to-back crashes
	// cannot occur.
	for _, seed := range []string{"a", "b", "c", "markov-1", "markov-2"} {
		timeline := GenerateTimeline(seed, 300)
		for i := 1; i < len(timeline); i++ {
			if timeline[i-1].Regime == RegimeCrash {
				assert.NotEqual(t, RegimeCrash, timeline[i].Regime,
					"seed %q produced crash->crash at period %d", seed, i)
			}
		}
	}
}

func TestGenerateTimeline_AllRegimesReachable(t *testing.T) {
	seen := map[Regime]bool{}
	for _, p := range GenerateTimeline("coverage", 500) {
		seen[p.Regime] = true
	}
	assert.True(t, seen[RegimeNormal])
	assert.True(t, seen[RegimeBoom])
	assert.True(t, seen[RegimeCrash])
	assert.True(t, seen[RegimeRecession])
}
