package pipeline

import "unicode"

const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
)

// TextSplitter 按字符（rune）窗口切分长文本，相邻分块有固定重叠。
// 分块尽量在段落、换行、句末或空白处结束，找不到时在窗口末尾硬切。
type TextSplitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewTextSplitter 创建切分器。参数非法时回退：size<=0 用默认值，
// overlap 非法时不重叠。
func NewTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &TextSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split 返回按顺序排列的分块。chunks[0] 与之后每个分块去掉前 overlap 个字符后拼接，
// 即为原文。空字符串返回 nil。
func (s *TextSplitter) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		end := start + s.chunkSize
		if end >= n {
			chunks = append(chunks, string(runes[start:n]))
			return chunks
		}
		cut := s.findCut(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - s.chunkOverlap
	}
}

// findCut 在 (lo, end] 中从后往前找最合适的切点。
// lo 保证下一个分块的起点严格大于 start。
func (s *TextSplitter) findCut(runes []rune, start, end int) int {
	lo := start + s.chunkSize/2
	if floor := start + s.chunkOverlap + 1; lo < floor {
		lo = floor
	}

	// 段落
	for p := end; p > lo; p-- {
		if p >= 2 && runes[p-1] == '\n' && runes[p-2] == '\n' {
			return p
		}
	}
	// 换行
	for p := end; p > lo; p-- {
		if runes[p-1] == '\n' {
			return p
		}
	}
	// 句末标点后跟空白
	for p := end; p > lo; p-- {
		if p < len(runes) && isSentenceEnd(runes[p-1]) && unicode.IsSpace(runes[p]) {
			return p
		}
	}
	// 空白
	for p := end; p > lo; p-- {
		if unicode.IsSpace(runes[p-1]) {
			return p
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
