package services

import (
	"testing"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 14, 18, 30, 0, 0, time.UTC)
}

func TestCalculatorService_Defaults(t *testing.T) {
	service := NewCalculatorService(fixedClock)

	calc, err := service.Calculate(domain.ShareParams{}, CalculateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01", calc.Challenge.StartDate)
	assert.Equal(t, "2026-12-30", calc.Challenge.EndDate)
	assert.Equal(t, 364, calc.Challenge.LengthDays)
	assert.Equal(t, int64(66430), calc.Challenge.TotalPence)
	assert.Equal(t, "£664.30", calc.Challenge.Total)

	require.True(t, calc.InChallenge)
	assert.Equal(t, 287, calc.Result.FirstDay)
	assert.Equal(t, 316, calc.Result.LastDay)
	assert.Equal(t, int64(9045), calc.Result.TotalPence)
	assert.Equal(t, "£90.45", calc.Total)
	assert.Equal(t, "2026-10-14", calc.FirstDate)
	assert.Equal(t, "2026-11-12", calc.LastDate)
	assert.Equal(t, domain.ModeNextN, calc.Params.Mode)
	assert.Nil(t, calc.Breakdown)
}

func TestCalculatorService_Modes(t *testing.T) {
	service := NewCalculatorService(fixedClock)

	tests := []struct {
		name      string
		params    domain.ShareParams
		inRange   bool
		firstDay  int
		lastDay   int
		wantPence int64
	}{
		{
			name:      "month defaults to the current month",
			params:    domain.ShareParams{Mode: domain.ModeMonth},
			inRange:   true,
			firstDay:  274,
			lastDay:   304,
			wantPence: 8959,
		},
		{
			name: "custom range inside the challenge",
			params: domain.ShareParams{
				Mode:  domain.ModeCustom,
				Start: domain.StringPtr("2026-01-01"),
				End:   domain.StringPtr("2026-01-10"),
			},
			inRange:   true,
			firstDay:  1,
			lastDay:   10,
			wantPence: 55,
		},
		{
			name: "custom range leaving the challenge",
			params: domain.ShareParams{
				Mode:  domain.ModeCustom,
				Start: domain.StringPtr("2026-12-01"),
				End:   domain.StringPtr("2027-01-10"),
			},
		},
		{
			name: "first day offset truncates at the end",
			params: domain.ShareParams{
				Mode:           domain.ModeNextN,
				FirstDayOffset: domain.IntPtr(360),
			},
			inRange:   true,
			firstDay:  360,
			lastDay:   364,
			wantPence: 1810,
		},
		{
			name: "base pence scales amounts",
			params: domain.ShareParams{
				Mode:      domain.ModeNextN,
				Start:     domain.StringPtr("2026-01-01"),
				N:         domain.IntPtr(3),
				BasePence: domain.IntPtr(5),
			},
			inRange:   true,
			firstDay:  1,
			lastDay:   3,
			wantPence: 30,
		},
		{
			name: "today is outside an old challenge",
			params: domain.ShareParams{
				Mode:           domain.ModeNextN,
				ChallengeStart: domain.StringPtr("2020-01-01"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := service.Calculate(tt.params, CalculateOptions{})
			require.NoError(t, err)

			assert.Equal(t, tt.inRange, calc.InChallenge)
			if !tt.inRange {
				assert.Nil(t, calc.Result)
				assert.Empty(t, calc.Total)
				return
			}
			require.NotNil(t, calc.Result)
			assert.Equal(t, tt.firstDay, calc.Result.FirstDay)
			assert.Equal(t, tt.lastDay, calc.Result.LastDay)
			assert.Equal(t, tt.wantPence, calc.Result.TotalPence)
		})
	}
}

func TestCalculatorService_Breakdown(t *testing.T) {
	service := NewCalculatorService(fixedClock)

	calc, err := service.Calculate(domain.ShareParams{
		Mode:  domain.ModeNextN,
		Start: domain.StringPtr("2026-01-01"),
		N:     domain.IntPtr(3),
	}, CalculateOptions{Breakdown: true})
	require.NoError(t, err)

	require.Len(t, calc.Breakdown, 3)
	assert.Equal(t, 1, calc.Breakdown[0].Day)
	assert.Equal(t, int64(3), calc.Breakdown[2].Pence)
}

func TestCalculatorService_RejectsInvalidParams(t *testing.T) {
	service := NewCalculatorService(fixedClock)

	_, err := service.Calculate(domain.ShareParams{N: domain.IntPtr(0)}, CalculateOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidShareParams)

	_, err = service.Progress(domain.ShareParams{ChallengeLength: domain.IntPtr(300)}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidShareParams)
}

func TestCalculatorService_Progress(t *testing.T) {
	service := NewCalculatorService(fixedClock)

	t.Run("Defaults to today", func(t *testing.T) {
		progress, err := service.Progress(domain.ShareParams{}, nil)
		require.NoError(t, err)

		require.True(t, progress.InChallenge)
		assert.Equal(t, "2026-10-14", progress.Date)
		assert.Equal(t, int64(41328), progress.Saved.TotalPence)
		assert.Equal(t, "£413.28", progress.SavedTotal)
		require.NotNil(t, progress.Remaining)
		assert.Equal(t, 288, progress.Remaining.FirstDay)
		assert.Equal(t, int64(25102), progress.Remaining.TotalPence)
		assert.Equal(t, progress.Challenge.TotalPence, progress.Saved.TotalPence+progress.Remaining.TotalPence)
	})

	t.Run("Last day leaves nothing remaining", func(t *testing.T) {
		progress, err := service.Progress(domain.ShareParams{}, domain.StringPtr("2026-12-30"))
		require.NoError(t, err)

		assert.True(t, progress.InChallenge)
		assert.Nil(t, progress.Remaining)
	})

	t.Run("Outside the challenge", func(t *testing.T) {
		progress, err := service.Progress(domain.ShareParams{}, domain.StringPtr("2027-06-01"))
		require.NoError(t, err)

		assert.False(t, progress.InChallenge)
		assert.Nil(t, progress.Saved)
	})
}
