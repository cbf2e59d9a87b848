package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/truemoder/truemoder/automod/setstore"
)

func testClassifier() *Classifier {
	sets := setstore.NewMemSetStore()
	sets.Normalize = NormalizeToken
	sets.Add(DefaultWordSet, "спам", "Реклама")
	sets.Add(DefaultStemSet, "казин")
	return NewClassifier(sets)
}

func TestClassifier(t *testing.T) {
	assert := assert.New(t)
	c := testClassifier()

	fixtures := []struct {
		text  string
		match string
	}{
		{text: "", match: ""},
		{text: "привет всем", match: ""},
		{text: "тут СПАМ!", match: "спам"},
		{text: "реклама", match: "реклама"},
		{text: "лучшее казино", match: "казино"},
		{text: "в казиношке", match: "казиношке"},
		{text: "каз", match: ""},
		{text: "с п а м", match: "спам"},
		{text: "к.а.з.и.н.о", match: "казино"},
		{text: "сп-ам", match: "спам"},
		{text: "а б", match: ""},
		{text: "https://example.com", match: ""},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.match, c.Match(fix.text), fix.text)
		assert.Equal(fix.match != "", c.Classify(fix.text), fix.text)
	}
}

func TestClassifierLinks(t *testing.T) {
	assert := assert.New(t)
	c := testClassifier()
	c.BlockLinks = true

	assert.True(c.Classify("заходите https://example.com"))
	assert.True(c.Classify("t.me/joinchat/xyz"))
	assert.False(c.Classify("без ссылок"))
}

func TestLetterRuns(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"абв"}, letterRuns([]string{"а", "б", "в", "где", "е", "ж"}))
	assert.Nil(letterRuns([]string{"привет"}))
}
