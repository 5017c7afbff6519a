package knowledge_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confwatch/internal/knowledge"
)

func sampleAnalysis(count int) knowledge.YearAnalysis {
	return knowledge.YearAnalysis{
		TitlesCount: count,
		Summary: []knowledge.Theme{
			{Name: "网络安全 (Network Security)", Ratio: "30%", Description: "本主题研究网络安全。涵盖：入侵检测等。"},
		},
		TokenUsage: knowledge.TokenUsage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
		UpdatedAt:  "2024-05-01",
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	base, err := knowledge.Open(filepath.Join(t.TempDir(), "knowledge_base.json"), nil)
	require.NoError(t, err)
	assert.Empty(t, base.Venues())
	assert.False(t, base.Dirty())
}

func TestOpenMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge_base.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"aaai": [`), 0o644))

	_, err := knowledge.Open(path, nil)
	require.Error(t, err)
}

func TestStoreRefusesOverwrite(t *testing.T) {
	base, err := knowledge.Open("", nil)
	require.NoError(t, err)

	require.NoError(t, base.Store("aaai", 2023, sampleAnalysis(10)))
	err = base.Store("aaai", 2023, sampleAnalysis(99))
	require.ErrorIs(t, err, knowledge.ErrExists)

	got, ok := base.Lookup("aaai", 2023)
	require.True(t, ok)
	assert.Equal(t, 10, got.TitlesCount)
}

func TestEnsureComputesOnlyOnce(t *testing.T) {
	base, err := knowledge.Open("", nil)
	require.NoError(t, err)

	calls := 0
	compute := func(context.Context) (*knowledge.YearAnalysis, error) {
		calls++
		analysis := sampleAnalysis(42)
		return &analysis, nil
	}

	stored, err := base.Ensure(context.Background(), "iwqos", 2022, compute)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = base.Ensure(context.Background(), "iwqos", 2022, compute)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, 1, calls, "second Ensure must not recompute")
}

func TestEnsureSkipsAbsentAndFailedResults(t *testing.T) {
	base, err := knowledge.Open("", nil)
	require.NoError(t, err)

	stored, err := base.Ensure(context.Background(), "iwqos", 2021, func(context.Context) (*knowledge.YearAnalysis, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, base.Has("iwqos", 2021))

	boom := errors.New("stage two failed")
	_, err = base.Ensure(context.Background(), "iwqos", 2021, func(context.Context) (*knowledge.YearAnalysis, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, base.Has("iwqos", 2021))
}

func TestForgetAllowsRecompute(t *testing.T) {
	base, err := knowledge.Open("", nil)
	require.NoError(t, err)
	require.NoError(t, base.Store("aaai", 2023, sampleAnalysis(10)))

	assert.True(t, base.Forget("aaai", 2023))
	assert.False(t, base.Forget("aaai", 2023))
	assert.False(t, base.Has("aaai", 2023))
	require.NoError(t, base.Store("aaai", 2023, sampleAnalysis(11)))
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	base, err := knowledge.Open("", nil)
	require.NoError(t, err)
	for _, year := range []int{2019, 2023, 2021, 2022} {
		require.NoError(t, base.Store("aaai", year, sampleAnalysis(year)))
	}

	recent := base.Recent("aaai", 3)
	require.Len(t, recent, 3)
	assert.Equal(t, "2023", recent[0].Year)
	assert.Equal(t, "2022", recent[1].Year)
	assert.Equal(t, "2021", recent[2].Year)
	assert.Empty(t, base.Recent("unknown", 3))
}

func TestSaveRoundTripAndDirtyFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "knowledge_base.json")
	base, err := knowledge.Open(path, nil)
	require.NoError(t, err)

	base.EnsureVenue("empty-venue")
	require.NoError(t, base.Store("aaai", 2023, sampleAnalysis(10)))
	assert.True(t, base.Dirty())
	require.NoError(t, base.Save())
	assert.False(t, base.Dirty())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "empty-venue")
	assert.Contains(t, decoded["aaai"], "2023")

	reopened, err := knowledge.Open(path, nil)
	require.NoError(t, err)
	got, ok := reopened.Lookup("aaai", 2023)
	require.True(t, ok)
	assert.Equal(t, sampleAnalysis(10), got)
}

func TestRatioDecodeAndPercent(t *testing.T) {
	var themes []knowledge.Theme
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name":"a","ratio":"15%"},
		{"name":"b","ratio":12.5},
		{"name":"c"},
		{"name":"d","ratio":"about a third"}
	]`), &themes))

	assert.Equal(t, knowledge.Ratio("15%"), themes[0].Ratio)
	assert.InDelta(t, 15, themes[0].Ratio.Percent(), 0.001)
	assert.Equal(t, knowledge.Ratio("12.5%"), themes[1].Ratio)
	assert.InDelta(t, 12.5, themes[1].Ratio.Percent(), 0.001)
	assert.Zero(t, themes[2].Ratio.Percent())
	assert.Zero(t, themes[3].Ratio.Percent())
}

func TestVenueKeyIsTrimmedOnEveryAccess(t *testing.T) {
	base, err := knowledge.Open(filepath.Join(t.TempDir(), "knowledge_base.json"), nil)
	require.NoError(t, err)

	calls := 0
	compute := func(context.Context) (*knowledge.YearAnalysis, error) {
		calls++
		analysis := sampleAnalysis(10)
		return &analysis, nil
	}

	base.EnsureVenue("neurips ")
	stored, err := base.Ensure(context.Background(), "neurips ", 2023, compute)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = base.Ensure(context.Background(), " neurips", 2023, compute)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, 1, calls)

	assert.True(t, base.Has("neurips", 2023))
	assert.Len(t, base.Recent("neurips ", 3), 1)
	assert.Equal(t, []string{"neurips"}, base.Venues())
	assert.True(t, base.Forget("neurips ", 2023))
	assert.False(t, base.Has("neurips", 2023))
}
