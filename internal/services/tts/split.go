package tts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChunkBytes stays under the 5000-byte input limit of text:synthesize.
const DefaultMaxChunkBytes = 4500

// SplitText breaks text into chunks of at most maxBytes, preferring sentence
// boundaries, then word boundaries, then rune boundaries.
func SplitText(text string, maxBytes int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxChunkBytes
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	for _, sentence := range splitSentences(text) {
		for _, piece := range fitPieces(sentence, maxBytes) {
			extra := len(piece)
			if current.Len() > 0 {
				extra++
			}
			if current.Len()+extra > maxBytes {
				flush()
			}
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(piece)
		}
	}
	flush()
	return chunks
}

// splitSentences cuts after terminal punctuation followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if !isTerminal(r) {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) && text[next] == ' ' {
			sentences = append(sentences, strings.TrimSpace(text[start:next]))
			start = next + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？', '؟', '।':
		return true
	}
	return false
}

// fitPieces splits an oversized sentence on spaces, and oversized words on runes.
func fitPieces(sentence string, maxBytes int) []string {
	if len(sentence) <= maxBytes {
		return []string{sentence}
	}
	var pieces []string
	var current strings.Builder
	for _, word := range strings.FieldsFunc(sentence, unicode.IsSpace) {
		for len(word) > maxBytes {
			cut := runeCut(word, maxBytes)
			if current.Len() > 0 {
				pieces = append(pieces, current.String())
				current.Reset()
			}
			pieces = append(pieces, word[:cut])
			word = word[cut:]
		}
		if current.Len() > 0 && current.Len()+1+len(word) > maxBytes {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

// runeCut returns the largest byte offset <= limit that falls on a rune boundary.
func runeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return cut
}
