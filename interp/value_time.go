package interp

import (
	"fmt"
	"time"
)

// TimeFormat selects the date/time parse-format, per spec.md §3.2 and the
// original source's utils::TimeFormat (ra_utils.h).
type TimeFormat int

const (
	TimeISO TimeFormat = iota
	TimeUS
	TimeEuropean
	TimeTimestamp
)

// TimeValue is a broken-down date/time plus the format it was parsed in,
// per spec.md §3.2.
type TimeValue struct {
	T      time.Time
	Format TimeFormat
}

func (t TimeValue) Kind() Kind  { return KindTime }
func (t TimeValue) Copy() Value { return t }

func (t TimeValue) layout() string {
	switch t.Format {
	case TimeUS:
		return "01/02/2006"
	case TimeEuropean:
		return "02/01/2006"
	case TimeTimestamp:
		return "" // rendered as unix seconds, not a layout string
	default:
		return "2006-01-02"
	}
}

func (t TimeValue) DisplayString() string {
	if t.Format == TimeTimestamp {
		return fmt.Sprintf("%d", t.T.Unix())
	}
	return t.T.Format(t.layout())
}
func (t TimeValue) EscapedString() string { return escapeString(t.DisplayString()) }
func (t TimeValue) Bool() bool            { return true }

// ParseTime parses s per format (TP_SET string->Time, spec.md §4.1).
func ParseTime(s string, format TimeFormat) (TimeValue, error) {
	if format == TimeTimestamp {
		var sec int64
		if _, err := fmt.Sscanf(s, "%d", &sec); err != nil {
			return TimeValue{}, err
		}
		return TimeValue{T: time.Unix(sec, 0).UTC(), Format: format}, nil
	}
	layout := TimeValue{Format: format}.layout()
	parsed, err := time.Parse(layout, s)
	if err != nil {
		return TimeValue{}, err
	}
	return TimeValue{T: parsed, Format: format}, nil
}
