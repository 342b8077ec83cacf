package step

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Value is a single exchange-file parameter. The concrete kinds are the
// types in this file plus Ref.
type Value interface {
	encode(e *encoder)
}

// String is a quoted string parameter.
type String string

// Real is a floating point parameter. It is always written with a decimal
// point so readers never confuse it with an integer.
type Real float64

// Integer is an integer parameter.
type Integer int64

// Logical is a boolean parameter written as .T. or .F.
type Logical bool

// Enum is an enumeration parameter written as .NAME.
type Enum string

// List is a parenthesized aggregate of values.
type List []Value

// Typed wraps a value in a defined-type keyword, e.g. LENGTH_MEASURE(1.E-05).
type Typed struct {
	Keyword string
	Value   Value
}

type omitted struct{}
type derived struct{}

// Omitted is the unset parameter "$".
var Omitted Value = omitted{}

// Derived is the derived-attribute placeholder "*".
var Derived Value = derived{}

func (s String) encode(e *encoder)  { e.WriteString(EncodeString(string(s))) }
func (r Real) encode(e *encoder)    { e.writeReal(float64(r)) }
func (i Integer) encode(e *encoder) { e.WriteString(strconv.FormatInt(int64(i), 10)) }
func (omitted) encode(e *encoder)   { e.WriteByte('$') }
func (derived) encode(e *encoder)   { e.WriteByte('*') }

func (l Logical) encode(e *encoder) {
	if l {
		e.WriteString(".T.")
		return
	}
	e.WriteString(".F.")
}

func (n Enum) encode(e *encoder) {
	e.WriteByte('.')
	e.WriteString(string(n))
	e.WriteByte('.')
}

func (l List) encode(e *encoder) {
	e.WriteByte('(')
	for i, v := range l {
		if i > 0 {
			e.WriteByte(',')
		}
		v.encode(e)
	}
	e.WriteByte(')')
}

func (t Typed) encode(e *encoder) {
	e.WriteString(t.Keyword)
	e.WriteByte('(')
	t.Value.encode(e)
	e.WriteByte(')')
}

// Reals converts a list of floats into a List of Real values.
func Reals(vs ...float64) List {
	l := make(List, len(vs))
	for i, v := range vs {
		l[i] = Real(v)
	}
	return l
}

// RefList converts typed references into a List.
func RefList[T Entity](refs []Ref[T]) List {
	l := make(List, len(refs))
	for i, r := range refs {
		l[i] = r
	}
	return l
}

// FormatReal renders v the way it appears in the DATA section: "0.", "1.",
// "0.6", "-2.5", "1.E-05". NaN and infinities have no representation.
func FormatReal(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("step: cannot encode non-finite real %v", v)
	}
	if v == 0 {
		return "0.", nil
	}
	a := math.Abs(v)
	if a < 1e-4 || a >= 1e15 {
		s := strconv.FormatFloat(v, 'E', -1, 64)
		mant, exp, _ := strings.Cut(s, "E")
		if !strings.Contains(mant, ".") {
			mant += "."
		}
		return mant + "E" + exp, nil
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	return s, nil
}

var utf16 = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// EncodeString quotes s for an exchange file. Apostrophes and backslashes
// are doubled; anything outside printable ASCII goes through a \X2\ escape.
func EncodeString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	var wide []rune
	flush := func() {
		if len(wide) == 0 {
			return
		}
		raw, err := utf16.NewEncoder().Bytes([]byte(string(wide)))
		if err == nil {
			b.WriteString(`\X2\`)
			b.WriteString(strings.ToUpper(hex.EncodeToString(raw)))
			b.WriteString(`\X0\`)
		}
		wide = wide[:0]
	}
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			wide = append(wide, r)
			continue
		}
		flush()
		switch r {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	flush()
	b.WriteByte('\'')
	return b.String()
}

// DecodeString reverses EncodeString. The input must include the quotes.
func DecodeString(quoted string) (string, error) {
	if len(quoted) < 2 || quoted[0] != '\'' || quoted[len(quoted)-1] != '\'' {
		return "", fmt.Errorf("step: %q is not a quoted string", quoted)
	}
	body := quoted[1 : len(quoted)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\'' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case strings.HasPrefix(body[i:], `\X2\`):
			end := strings.Index(body[i+4:], `\X0\`)
			if end < 0 {
				return "", fmt.Errorf("step: unterminated \\X2\\ escape in %q", quoted)
			}
			raw, err := hex.DecodeString(body[i+4 : i+4+end])
			if err != nil {
				return "", fmt.Errorf("step: bad \\X2\\ escape: %w", err)
			}
			text, err := utf16.NewDecoder().Bytes(raw)
			if err != nil {
				return "", fmt.Errorf("step: bad \\X2\\ escape: %w", err)
			}
			b.Write(text)
			i += 4 + end + 3
		case c == '\\' && i+1 < len(body) && body[i+1] == '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
