package duration

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFixtures(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text    string
		display string
		unit    Unit
		dur     time.Duration
	}{
		{text: "подожди 3 часа", display: "3 час", unit: Hours, dur: 3 * time.Hour},
		{text: "пару минут", display: "2 мин", unit: Minutes, dur: 2 * time.Minute},
		{text: "пол часа", display: "0.5 час.", unit: Hours, dur: 30 * time.Minute},
		{text: "!бан", display: "1 час.", unit: Hours, dur: time.Hour},
		{text: "", display: "1 час.", unit: Hours, dur: time.Hour},
		{text: "!молчать 15 минут", display: "15 мин", unit: Minutes, dur: 15 * time.Minute},
		{text: "!бан 2 дня", display: "2 дня", unit: Days, dur: 48 * time.Hour},
		{text: "!бан на день", display: "1 день", unit: Days, dur: 24 * time.Hour},
		{text: "!бан на сутки", display: "1 сутки", unit: Days, dur: 24 * time.Hour},
		{text: "!бан 2 недели", display: "2 недел", unit: Weeks, dur: 14 * 24 * time.Hour},
		{text: "!бан 4 пол", display: "2.0 час.", unit: Hours, dur: 2 * time.Hour},
		{text: "пол минуты", display: "0.5 мин.", unit: Minutes, dur: 30 * time.Second},
		{text: "3 полторы", display: "1.5 час.", unit: Hours, dur: 90 * time.Minute},
	}

	for _, fix := range fixtures {
		d := Parse(fix.text)
		assert.Equal(fix.display, d.DisplayText, fix.text)
		assert.Equal(fix.unit, d.Unit, fix.text)
		assert.Equal(fix.dur, d.Std(), fix.text)
	}
}

func TestParseHuge(t *testing.T) {
	assert := assert.New(t)

	d := Parse("!бан 20000 недель")
	assert.Equal(Weeks, d.Unit)
	assert.Equal(20000.0, d.Value)
	assert.Equal(time.Duration(math.MaxInt64), d.Std())

	d = Parse("!мут 99999999999999999999 минут")
	assert.Equal(Minutes, d.Unit)
	assert.Equal(time.Duration(math.MaxInt64), d.Std())

	assert.Equal(time.Duration(0), Parse("0 минут").Std())
	assert.Equal(time.Duration(0), Duration{Value: math.Inf(-1), Unit: Hours}.Std())
	assert.Equal(time.Duration(0), Duration{Value: math.NaN(), Unit: Hours}.Std())
}

func TestParseASCIIDigitsOnly(t *testing.T) {
	assert := assert.New(t)

	// Arabic-Indic and full-width digits aren't numbers here
	d := Parse("٣ часа")
	assert.Equal(1.0, d.Value)
	assert.Equal(Hours, d.Unit)
	assert.Equal(time.Hour, d.Std())

	d = Parse("５ минут")
	assert.Equal(1.0, d.Value)
	assert.Equal(time.Minute, d.Std())
}

func TestUnitPriority(t *testing.T) {
	assert := assert.New(t)

	// minutes win over every later rule, hours over days and weeks, etc
	assert.Equal(Minutes, Parse("5 минут или час").Unit)
	assert.Equal(Minutes, Parse("час или 5 минут").Unit)
	assert.Equal(Hours, Parse("неделя или час").Unit)
	assert.Equal(Days, Parse("неделя или день").Unit)
	assert.Equal(Weeks, Parse("неделя").Unit)

	// the first number in the text is used, wherever it appears
	d := Parse("10 минут, а лучше 20")
	assert.Equal(10.0, d.Value)
}

func TestParseSeveral(t *testing.T) {
	assert := assert.New(t)

	p := Parser{Rand: rand.New(rand.NewSource(1))}
	for i := 0; i < 200; i++ {
		d := p.Parse("несколько минут")
		assert.GreaterOrEqual(d.Value, 3.0)
		assert.LessOrEqual(d.Value, 9.0)
		assert.Equal(Minutes, d.Unit)
	}

	// halving happens after the random substitution
	for i := 0; i < 200; i++ {
		d := p.Parse("несколько пол")
		assert.GreaterOrEqual(d.Value, 1.5)
		assert.LessOrEqual(d.Value, 4.5)
	}

	// an explicit number beats the qualifiers
	assert.Equal(7.0, p.Parse("несколько, а точнее 7 часов").Value)
	assert.Equal(2.0, p.Parse("пару часов").Value)
}

func TestHasDeleteFlag(t *testing.T) {
	assert := assert.New(t)

	assert.True(HasDeleteFlag("!бан 3 дня -"))
	assert.True(HasDeleteFlag("!бан - 3 дня"))
	assert.True(HasDeleteFlag("- !бан"))
	assert.False(HasDeleteFlag("!бан 3 дня"))
	assert.False(HasDeleteFlag("!бан кто-то"))
}
