package domain

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"
	MinYear    = 2020
	MaxYear    = 2100
)

type Mode string

const (
	ModeNextN  Mode = "next-n"
	ModeMonth  Mode = "month"
	ModeCustom Mode = "custom"
)

// ShareParams is the flat, user-chosen calculator state shared through links
// and stored as saved configurations. Nil fields are unset.
type ShareParams struct {
	Mode            Mode    `json:"mode" validate:"omitempty,oneof=next-n month custom"`
	N               *int    `json:"n,omitempty" validate:"omitempty,min=1,max=365"`
	Month           *int    `json:"month,omitempty" validate:"omitempty,min=1,max=12"`
	Year            *int    `json:"year,omitempty" validate:"omitempty,min=2020,max=2100"`
	Start           *string `json:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End             *string `json:"end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ChallengeStart  *string `json:"challengeStart,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ChallengeLength *int    `json:"challengeLength,omitempty" validate:"omitempty,min=364,max=365"`
	BasePence       *int    `json:"basePence,omitempty" validate:"omitempty,min=1,max=100"`
	FirstDayOffset  *int    `json:"firstDayOffset,omitempty" validate:"omitempty,min=1,max=365"`
}

// FieldError describes why one field was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is the structured rejection of ShareParams.
type ValidationError struct {
	Fields []FieldError
}

var ErrInvalidShareParams = errors.New("invalid share params")

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "invalid share params: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidShareParams
}

// Details flattens the failures into field -> reason.
func (e *ValidationError) Details() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Reason
	}
	return out
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func shareValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "datetime":
		return "invalid date (YYYY-MM-DD)"
	default:
		return "failed " + fe.Tag()
	}
}

// Validate checks every field independently and reports all failures.
func (p ShareParams) Validate() error {
	err := shareValidator().Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate share params: %w", err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), reasonFor(fe))
	}
	return verr
}

var shareKeys = []string{
	"mode", "n", "month", "year", "start", "end",
	"challengeStart", "challengeLength", "basePence", "firstDayOffset",
}

// ParseShareParams decodes and validates a query string. Empty values are
// treated as absent and unknown keys are ignored.
func ParseShareParams(values url.Values) (ShareParams, error) {
	var p ShareParams
	verr := &ValidationError{}

	get := func(key string) (string, bool) {
		v := strings.TrimSpace(values.Get(key))
		return v, v != ""
	}

	intField := func(key string, dst **int) {
		raw, ok := get(key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.add(key, "must be an integer")
			return
		}
		*dst = &n
	}

	strField := func(key string, dst **string) {
		if raw, ok := get(key); ok {
			*dst = &raw
		}
	}

	if raw, ok := get("mode"); ok {
		p.Mode = Mode(raw)
	}
	intField("n", &p.N)
	intField("month", &p.Month)
	intField("year", &p.Year)
	strField("start", &p.Start)
	strField("end", &p.End)
	strField("challengeStart", &p.ChallengeStart)
	intField("challengeLength", &p.ChallengeLength)
	intField("basePence", &p.BasePence)
	intField("firstDayOffset", &p.FirstDayOffset)

	if err := p.Validate(); err != nil {
		var structErr *ValidationError
		if !errors.As(err, &structErr) {
			return ShareParams{}, err
		}
		verr.Fields = append(verr.Fields, structErr.Fields...)
	}

	if len(verr.Fields) > 0 {
		sort.SliceStable(verr.Fields, func(i, j int) bool {
			return keyIndex(verr.Fields[i].Field) < keyIndex(verr.Fields[j].Field)
		})
		return ShareParams{}, verr
	}

	if p.Mode == "" {
		p.Mode = ModeNextN
	}
	return p, nil
}

func keyIndex(key string) int {
	for i, k := range shareKeys {
		if k == key {
			return i
		}
	}
	return len(shareKeys)
}

// Query encodes the set fields as flat query parameters.
func (p ShareParams) Query() url.Values {
	q := url.Values{}
	if p.Mode != "" {
		q.Set("mode", string(p.Mode))
	}

	setInt := func(key string, v *int) {
		if v != nil {
			q.Set(key, strconv.Itoa(*v))
		}
	}
	setStr := func(key string, v *string) {
		if v != nil && *v != "" {
			q.Set(key, *v)
		}
	}

	setInt("n", p.N)
	setInt("month", p.Month)
	setInt("year", p.Year)
	setStr("start", p.Start)
	setStr("end", p.End)
	setStr("challengeStart", p.ChallengeStart)
	setInt("challengeLength", p.ChallengeLength)
	setInt("basePence", p.BasePence)
	setInt("firstDayOffset", p.FirstDayOffset)
	return q
}

// Encode is Query().Encode(); keys come out sorted, so equal params encode
// identically.
func (p ShareParams) Encode() string {
	return p.Query().Encode()
}

// ForMode drops the fields the selected mode does not use.
func (p ShareParams) ForMode() ShareParams {
	out := ShareParams{
		Mode:            p.Mode,
		ChallengeStart:  p.ChallengeStart,
		ChallengeLength: p.ChallengeLength,
		BasePence:       p.BasePence,
		FirstDayOffset:  p.FirstDayOffset,
	}
	if out.Mode == "" {
		out.Mode = ModeNextN
	}

	switch out.Mode {
	case ModeNextN:
		out.N = p.N
		if p.FirstDayOffset == nil {
			out.Start = p.Start
		}
	case ModeMonth:
		out.Month = p.Month
		out.Year = p.Year
	case ModeCustom:
		out.Start = p.Start
		out.End = p.End
	}
	return out
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }
