package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Period identifies a billing cycle by year and month, rendered as YYYYMM.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the calendar period containing d.
func PeriodOf(d Date) Period {
	return Period{Year: d.Year(), Month: d.Time.Month()}
}

// ParsePeriod parses a YYYYMM string.
func ParsePeriod(s string) (Period, error) {
	if len(s) != 6 {
		return Period{}, fmt.Errorf("%w: period %q must be YYYYMM", ErrInvalidInput, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Period{}, fmt.Errorf("%w: period %q must be YYYYMM", ErrInvalidInput, s)
	}
	month, err := strconv.Atoi(s[4:])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: period %q has invalid month", ErrInvalidInput, s)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d%02d", p.Year, int(p.Month))
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// AddMonths advances the period by n calendar months, rolling the year.
func (p Period) AddMonths(n int) Period {
	idx := p.Year*12 + int(p.Month-1) + n
	return Period{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// DaysIn returns the number of days in the period's month.
func (p Period) DaysIn() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day returns the given day of the period's month, clamped to its last day.
func (p Period) Day(day int) Date {
	if last := p.DaysIn(); day > last {
		day = last
	}
	return NewDate(p.Year, int(p.Month), day)
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Period) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: period must be a string", ErrInvalidInput)
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
