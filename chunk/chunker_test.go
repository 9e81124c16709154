package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortText(t *testing.T) {
	c := New(500, 50)

	chunks := c.Split("One short sentence.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "One short sentence.", chunks[0])
}

func TestSplitEmpty(t *testing.T) {
	c := New(500, 50)

	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplitRespectsSize(t *testing.T) {
	c := New(100, 20)

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("This is sentence number something with a few words. ")
	}

	chunks := c.Split(sb.String())

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		// A chunk may exceed the budget only by its final sentence
		assert.LessOrEqual(t, len(chunk), 100+60, "chunk %d too long: %d", i, len(chunk))
	}
}

func TestSplitSentenceBoundaries(t *testing.T) {
	c := New(60, 10)

	chunks := c.Split("First sentence here. Second sentence here. Third sentence here.")

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		// No chunk starts mid-sentence with a lowercase fragment cut
		assert.NotEqual(t, "", strings.TrimSpace(chunk))
	}
	assert.True(t, strings.HasPrefix(chunks[0], "First sentence here."))
}

func TestSplitOverlap(t *testing.T) {
	c := New(60, 20)

	chunks := c.Split("Alpha beta gamma delta epsilon zeta. Eta theta iota kappa lambda mu. Nu xi omicron pi rho sigma.")

	require.Greater(t, len(chunks), 1)

	// The tail words of a chunk reappear at the start of the next one
	first := strings.Fields(chunks[0])
	lastWord := first[len(first)-1]
	assert.Contains(t, chunks[1], lastWord)
}

func TestSplitLongSentence(t *testing.T) {
	c := New(50, 10)

	long := "This single sentence is deliberately far longer than the chunk budget allows and has no internal punctuation at all"
	chunks := c.Split(long)

	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0])
}

func TestSplitNormalizesWhitespace(t *testing.T) {
	c := New(500, 50)

	chunks := c.Split("Spread   over\n\nlines.\tAnd tabs.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Spread over lines. And tabs.", chunks[0])
}

func TestSplitForMarkdown(t *testing.T) {
	c := New(200, 20)

	md := "# Heading One\n\nSome introductory text for the first section.\n\n# Heading Two\n\nMore text for the second section."
	chunks := c.SplitFor(".md", md)

	require.NotEmpty(t, chunks)
	joined := strings.Join(chunks, "\n")
	assert.Contains(t, joined, "Heading One")
	assert.Contains(t, joined, "Heading Two")
}

func TestSplitForGeneric(t *testing.T) {
	c := New(500, 50)

	chunks := c.SplitFor(".txt", "Plain text sentence.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Plain text sentence.", chunks[0])
}

func TestNewDefaults(t *testing.T) {
	c := New(0, -1)

	assert.Equal(t, DefaultSize, c.size)
	assert.Equal(t, DefaultOverlap, c.overlap)
}
