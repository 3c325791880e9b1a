package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble 去掉每个后续分块的重叠前缀后拼接。
func reassemble(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c)
			continue
		}
		b.WriteString(string([]rune(c)[overlap:]))
	}
	return b.String()
}

func TestSplit_Empty(t *testing.T) {
	s := NewTextSplitter(2000, 200)
	assert.Nil(t, s.Split(""))
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	s := NewTextSplitter(2000, 200)
	chunks := s.Split("Apple designs consumer electronics.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Apple designs consumer electronics.", chunks[0])
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	s := NewTextSplitter(2000, 200)
	text := strings.Repeat("a", 5000)

	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2000)
	assert.Len(t, chunks[1], 2000)
	assert.Len(t, chunks[2], 1400)
	assert.Equal(t, text, reassemble(chunks, 200))
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	s := NewTextSplitter(100, 10)
	para1 := strings.Repeat("word ", 14) + "end." // 74 runes
	text := para1 + "\n\n" + strings.Repeat("next ", 30)

	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, para1+"\n\n", chunks[0])
	assert.Equal(t, text, reassemble(chunks, 10))
}

func TestSplit_PrefersSentenceOverSpace(t *testing.T) {
	s := NewTextSplitter(40, 5)
	text := "The company sells widgets. It also sells gadgets and more things to everyone"

	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "The company sells widgets.", chunks[0])
	assert.Equal(t, text, reassemble(chunks, 5))
}

func TestSplit_Invariants(t *testing.T) {
	sentence := "Revenue increased due to higher services demand. "
	texts := []string{
		strings.Repeat(sentence, 300),
		strings.Repeat("line of text\n", 500),
		strings.Repeat("段落内容，包含中文字符。", 400),
		strings.Repeat("x", 4001),
	}
	s := NewTextSplitter(2000, 200)

	for _, text := range texts {
		chunks := s.Split(text)
		require.NotEmpty(t, chunks)
		for _, c := range chunks {
			assert.NotEmpty(t, c)
			assert.LessOrEqual(t, utf8.RuneCountInString(c), 2000)
		}
		assert.Equal(t, text, reassemble(chunks, 200))
		// 同样的输入产生同样的输出
		assert.Equal(t, chunks, s.Split(text))
	}
}

func TestSplit_OverlapMatchesPreviousTail(t *testing.T) {
	s := NewTextSplitter(2000, 200)
	text := strings.Repeat("Risk factors include market volatility. ", 200)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		assert.Equal(t, string(prev[len(prev)-200:]), string(cur[:200]))
	}
}

func TestNewTextSplitter_Fallbacks(t *testing.T) {
	s := NewTextSplitter(0, -1)
	assert.Equal(t, DefaultChunkSize, s.chunkSize)
	assert.Equal(t, 0, s.chunkOverlap)

	s = NewTextSplitter(100, 100)
	assert.Equal(t, 100, s.chunkSize)
	assert.Equal(t, 0, s.chunkOverlap)

	chunks := s.Split(strings.Repeat("b", 250))
	assert.Equal(t, []string{strings.Repeat("b", 100), strings.Repeat("b", 100), strings.Repeat("b", 50)}, chunks)
}
