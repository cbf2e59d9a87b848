// Parses free-form Russian time phrases ("на пару минут", "пол часа", "3 дня") in to sanction lengths.
package duration

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"sync"
	"time"
)

type Unit int

const (
	Minutes Unit = iota
	Hours
	Days
	Weeks
)

func (u Unit) Std() time.Duration {
	switch u {
	case Minutes:
		return time.Minute
	case Days:
		return 24 * time.Hour
	case Weeks:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

func (u Unit) String() string {
	switch u {
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case Days:
		return "days"
	case Weeks:
		return "weeks"
	default:
		return "unknown"
	}
}

// Immutable once returned by the parser.
type Duration struct {
	Value       float64
	Unit        Unit
	DisplayText string
}

// Saturates at the largest representable duration instead of overflowing.
func (d Duration) Std() time.Duration {
	v := d.Value * float64(d.Unit.Std())
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(v)
}

// Abbreviated unit name, used when no keyword matched or the value was halved.
func (u Unit) Abbrev() string {
	switch u {
	case Minutes:
		return "мин."
	case Days:
		return "дн."
	case Weeks:
		return "нед."
	default:
		return "час."
	}
}

type unitRule struct {
	unit    Unit
	pattern *regexp.Regexp
}

// Evaluated in order, first match wins. Keep minutes before hours before days before weeks.
var unitRules = []unitRule{
	{unit: Minutes, pattern: regexp.MustCompile(`мин|мин[^ ]+`)},
	{unit: Hours, pattern: regexp.MustCompile(`час`)},
	{unit: Days, pattern: regexp.MustCompile(`дн[^ ]|день|сутки|суток`)},
	{unit: Weeks, pattern: regexp.MustCompile(`недел`)},
}

var (
	numberPattern  = regexp.MustCompile(`(\d+)`)
	couplePattern  = regexp.MustCompile(`пару`)
	severalPattern = regexp.MustCompile(`несколько`)
	halfPattern    = regexp.MustCompile(`\s?пол.*`)
	deletePattern  = regexp.MustCompile(`[ ]-|-[ ]`)
)

// Parser holds the random source used for "несколько" ("several"). The zero value uses a shared, lock-protected source.
type Parser struct {
	Rand *rand.Rand
}

var (
	defaultRandLk sync.Mutex
	defaultRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func (p *Parser) several() int {
	if p.Rand != nil {
		return 3 + p.Rand.Intn(7)
	}
	defaultRandLk.Lock()
	defer defaultRandLk.Unlock()
	return 3 + defaultRand.Intn(7)
}

// Parse never fails: text without a number or unit still yields a duration (one hour by default).
//
// Both the number and the "half" qualifier are searched for in the entire text. Halving always happens last, after any default value substitution.
func (p *Parser) Parse(text string) Duration {
	var value float64
	if m := numberPattern.FindString(text); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			v = 1
		}
		value = v
	} else if couplePattern.MatchString(text) {
		value = 2
	} else if severalPattern.MatchString(text) {
		value = float64(p.several())
	} else {
		value = 1
	}

	halved := halfPattern.MatchString(text)
	if halved {
		value = value / 2
	}

	d := Duration{Value: value, Unit: Hours}
	unitText := ""
	for _, rule := range unitRules {
		if m := rule.pattern.FindString(text); m != "" {
			d.Unit = rule.unit
			unitText = m
			break
		}
	}
	// "пол часа" reads as a fraction of the unit, so it gets the abbreviated form
	if unitText == "" || halved {
		unitText = d.Unit.Abbrev()
	}
	d.DisplayText = formatValue(value, halved) + " " + unitText
	return d
}

// Halved values are real numbers and always render with a fractional part ("0.5", "2.0"); whole values render as integers.
func formatValue(v float64, real bool) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if real && v == float64(int64(v)) {
		s += ".0"
	}
	return s
}

var defaultParser Parser

func Parse(text string) Duration {
	return defaultParser.Parse(text)
}

// Reports whether a command asks to also delete the message it replies to: an isolated hyphen token, such as "!бан 3 дня -".
func HasDeleteFlag(text string) bool {
	return deletePattern.MatchString(text)
}
