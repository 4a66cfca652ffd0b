package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScreeningConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultScreeningConfig().Validate())
}

func TestValidate_RejectsInvertedDeltaBand(t *testing.T) {
	cfg := DefaultScreeningConfig()
	cfg.MinDelta, cfg.MaxDelta = -0.1, -0.3

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "min_delta", ce.Field)
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	cfg := ScreeningConfig{
		MinVolume:  -1,
		MaxDTE:     0,
		MinDelta:   0.5,
		MaxDelta:   -2,
		DayCount:   "weird",
		SortBy:     []SortKey{"nope"},
		SortOrder:  "sideways",
		MaxResults: 0,
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"min_volume", "max_dte", "min_delta", "max_delta", "day_count", "sort_by", "sort_order", "max_results"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestValidate_MinDTEAboveMax(t *testing.T) {
	cfg := DefaultScreeningConfig()
	cfg.MinDTE = 60
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestClone_DoesNotShareSortKeys(t *testing.T) {
	cfg := DefaultScreeningConfig()
	cp := cfg.Clone()
	cp.SortBy[0] = SortStrike
	assert.Equal(t, SortAnnualizedReturn, cfg.SortBy[0])
}

func TestRound(t *testing.T) {
	assert.Equal(t, 17.68, Round(17.684210526, 2))
	assert.Equal(t, -0.246, Round(-0.245988, 3))
	assert.Equal(t, 30.0, Round(29.9999, 2))
}

func TestEvent_Message(t *testing.T) {
	res := &ScreeningResult{Symbol: "AAPL", Rows: make([]ResultRow, 3)}
	assert.Equal(t, "AAPL processing complete, found 3 qualifying options",
		Event{Symbol: "AAPL", State: JobSucceeded, Result: res}.Message())
	assert.Equal(t, "No qualifying options found for AAPL",
		Event{Symbol: "AAPL", State: JobEmptyResult}.Message())
	assert.Equal(t, "Screening of AAPL cancelled",
		Event{Symbol: "AAPL", State: JobCancelled}.Message())
	assert.Contains(t,
		Event{Symbol: "AAPL", State: JobFailed, Err: errors.New("boom")}.Message(), "AAPL: boom")
	assert.True(t, JobFailed.Terminal())
	assert.False(t, JobRunning.Terminal())
}

func TestEvent_MarshalJSON(t *testing.T) {
	ev := Event{
		RequestID: "r1",
		Symbol:    "AMD",
		State:     JobFailed,
		Err:       &FetchError{Symbol: "AMD", Op: "chain", Err: errors.New("503")},
	}
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "r1", got["request_id"])
	assert.Equal(t, "failed", got["state"])
	assert.Equal(t, "fetch chain for AMD: 503", got["error"])
	assert.Equal(t, "Error processing AMD: fetch chain for AMD: 503", got["message"])
	assert.NotContains(t, got, "result")
}
