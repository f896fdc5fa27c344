package table

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a cell value.
type Kind int

const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindTime
	KindBool
)

// String returns the kind name used in logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindTime:
		return "datetime"
	case KindBool:
		return "bool"
	default:
		return "missing"
	}
}

// Value is a single cell. The zero value is the missing marker: cells that
// fail normalization become missing, never zero.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	time time.Time
	b    bool
}

// Missing returns the explicit missing marker.
func Missing() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a numeric value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// Time returns a datetime value.
func Time(t time.Time) Value { return Value{kind: KindTime, time: t} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is the missing marker.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// TextValue returns the text content, or "" for non-text values.
func (v Value) TextValue() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

// NumberValue returns the numeric content, or decimal zero for non-numbers.
func (v Value) NumberValue() decimal.Decimal {
	if v.kind != KindNumber {
		return decimal.Zero
	}
	return v.num
}

// TimeValue returns the datetime content, or the zero time for non-times.
func (v Value) TimeValue() time.Time {
	if v.kind != KindTime {
		return time.Time{}
	}
	return v.time
}

// BoolValue returns the boolean content, or false for non-bools.
func (v Value) BoolValue() bool { return v.kind == KindBool && v.b }

// String renders the value for display and comparison keys.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num.String()
	case KindTime:
		return v.time.Format("2006-01-02")
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
// Numbers compare by value, so 1.20 equals 1.2.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num.Equal(o.num)
	case KindTime:
		return v.time.Equal(o.time)
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}
