package services

import (
	"fmt"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/challenge"
	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
)

const (
	DefaultNextNDays     = 30
	DefaultCustomDays    = 30
	MaxBreakdownDays     = 366
	defaultChallengeBase = challenge.DefaultBasePence
)

// CalculatorService turns validated ShareParams into engine calls. It never
// does arithmetic of its own.
type CalculatorService struct {
	now func() time.Time
}

func NewCalculatorService(now func() time.Time) *CalculatorService {
	if now == nil {
		now = time.Now
	}
	return &CalculatorService{now: now}
}

type CalculateOptions struct {
	Breakdown bool
}

type ChallengeSummary struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	LengthDays int    `json:"lengthDays"`
	BasePence  int64  `json:"basePence"`
	TotalPence int64  `json:"totalPence"`
	Total      string `json:"total"`
}

type Calculation struct {
	Params         domain.ShareParams      `json:"params"`
	Challenge      ChallengeSummary        `json:"challenge"`
	InChallenge    bool                    `json:"inChallenge"`
	Result         *challenge.RangeResult  `json:"result"`
	FirstDate      string                  `json:"firstDate,omitempty"`
	LastDate       string                  `json:"lastDate,omitempty"`
	Total          string                  `json:"total,omitempty"`
	FirstDayAmount string                  `json:"firstDayAmount,omitempty"`
	LastDayAmount  string                  `json:"lastDayAmount,omitempty"`
	Breakdown      []challenge.DailyAmount `json:"breakdown,omitempty"`
}

type Progress struct {
	Challenge      ChallengeSummary       `json:"challenge"`
	Date           string                 `json:"date"`
	InChallenge    bool                   `json:"inChallenge"`
	Saved          *challenge.RangeResult `json:"saved"`
	SavedTotal     string                 `json:"savedTotal,omitempty"`
	Remaining      *challenge.RangeResult `json:"remaining,omitempty"`
	RemainingTotal string                 `json:"remainingTotal,omitempty"`
}

func (s *CalculatorService) today() time.Time {
	return challenge.DateOf(s.now())
}

// ChallengeConfig builds the engine config, filling the calculator defaults
// for unset fields: 1 January of the current year, 364 days, 1p.
func (s *CalculatorService) ChallengeConfig(p domain.ShareParams) (challenge.Config, error) {
	today := s.today()

	start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if p.ChallengeStart != nil {
		d, err := domain.ParseDate(*p.ChallengeStart)
		if err != nil {
			return challenge.Config{}, err
		}
		start = d
	}

	length := challenge.DefaultLengthDays
	if p.ChallengeLength != nil {
		length = *p.ChallengeLength
	}

	base := int64(defaultChallengeBase)
	if p.BasePence != nil {
		base = int64(*p.BasePence)
	}

	cfg := challenge.Config{StartDate: start, LengthDays: length, BasePence: base}
	if err := cfg.Validate(); err != nil {
		return challenge.Config{}, err
	}
	return cfg, nil
}

func summarize(cfg challenge.Config) ChallengeSummary {
	total := challenge.SumRangeInPence(1, cfg.LengthDays, cfg.BasePence)
	return ChallengeSummary{
		StartDate:  domain.FormatDate(cfg.StartDate),
		EndDate:    domain.FormatDate(cfg.EndDate()),
		LengthDays: cfg.LengthDays,
		BasePence:  cfg.BasePence,
		TotalPence: total,
		Total:      challenge.FormatPenceAsGBP(total),
	}
}

func (s *CalculatorService) dateOr(v *string, fallback time.Time) (time.Time, error) {
	if v == nil {
		return fallback, nil
	}
	return domain.ParseDate(*v)
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// Calculate resolves the selected mode and returns its totals. A window
// outside the challenge is not an error: InChallenge is false and Result nil.
func (s *CalculatorService) Calculate(p domain.ShareParams, opts CalculateOptions) (*Calculation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.ChallengeConfig(p)
	if err != nil {
		return nil, err
	}

	today := s.today()
	if p.Mode == "" {
		p.Mode = domain.ModeNextN
	}

	var (
		result challenge.RangeResult
		ok     bool
	)

	switch p.Mode {
	case domain.ModeNextN:
		n := intOr(p.N, DefaultNextNDays)
		if p.FirstDayOffset != nil {
			result, ok = challenge.ComputeNextNDaysFromDay(*p.FirstDayOffset, n, cfg)
			break
		}
		from, err := s.dateOr(p.Start, today)
		if err != nil {
			return nil, err
		}
		result, ok = challenge.ComputeNextNDays(from, n, cfg)

	case domain.ModeMonth:
		month := intOr(p.Month, int(today.Month()))
		year := intOr(p.Year, today.Year())
		result, ok = challenge.ComputeForMonth(time.Month(month), year, cfg)

	case domain.ModeCustom:
		start, err := s.dateOr(p.Start, today)
		if err != nil {
			return nil, err
		}
		end, err := s.dateOr(p.End, today.AddDate(0, 0, DefaultCustomDays))
		if err != nil {
			return nil, err
		}
		result, ok = challenge.ComputeCustomRange(start, end, cfg)

	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidShareParams, p.Mode)
	}

	calc := &Calculation{
		Params:      p.ForMode(),
		Challenge:   summarize(cfg),
		InChallenge: ok,
	}
	if !ok {
		return calc, nil
	}

	calc.Result = &result
	calc.FirstDate = domain.FormatDate(challenge.DayNumberToDate(result.FirstDay, cfg))
	calc.LastDate = domain.FormatDate(challenge.DayNumberToDate(result.LastDay, cfg))
	calc.Total = challenge.FormatPenceAsGBP(result.TotalPence)
	calc.FirstDayAmount = challenge.FormatPenceAsGBP(result.FirstDayPence)
	calc.LastDayAmount = challenge.FormatPenceAsGBP(result.LastDayPence)

	if opts.Breakdown && result.DayCount <= MaxBreakdownDays {
		calc.Breakdown = challenge.DailyAmounts(result.FirstDay, result.LastDay, cfg.BasePence)
	}

	return calc, nil
}

// Progress reports what has been saved by date and what is left.
func (s *CalculatorService) Progress(p domain.ShareParams, date *string) (*Progress, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.ChallengeConfig(p)
	if err != nil {
		return nil, err
	}

	at, err := s.dateOr(date, s.today())
	if err != nil {
		return nil, err
	}

	out := &Progress{
		Challenge: summarize(cfg),
		Date:      domain.FormatDate(at),
	}

	saved, ok := challenge.TotalSavedUpTo(at, cfg)
	if !ok {
		return out, nil
	}

	out.InChallenge = true
	out.Saved = &saved
	out.SavedTotal = challenge.FormatPenceAsGBP(saved.TotalPence)

	if saved.LastDay < cfg.LengthDays {
		remaining := challenge.ComputeRange(saved.LastDay+1, cfg.LengthDays, cfg.BasePence)
		out.Remaining = &remaining
		out.RemainingTotal = challenge.FormatPenceAsGBP(remaining.TotalPence)
	}

	return out, nil
}
