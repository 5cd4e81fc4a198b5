package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type wordRange struct {
	text  string
	width int
}

func splitWords(text string) []wordRange {
	fields := strings.Fields(text)
	words := make([]wordRange, 0, len(fields))
	for _, f := range fields {
		words = append(words, wordRange{text: f, width: runewidth.StringWidth(f)})
	}
	return words
}

// wrapText breaks text into lines no wider than width display cells. Words
// wider than a line are split by cell.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, word := range splitWords(text) {
		if word.width > width {
			if lineWidth > 0 {
				flush()
			}
			for _, chunk := range splitByWidth(word.text, width) {
				line.WriteString(chunk)
				lineWidth = runewidth.StringWidth(chunk)
				if lineWidth == width {
					flush()
				}
			}
			continue
		}
		needed := word.width
		if lineWidth > 0 {
			needed++
		}
		if lineWidth+needed > width {
			flush()
			needed = word.width
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word.text)
		lineWidth += needed
	}
	if lineWidth > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

func splitByWidth(s string, width int) []string {
	var out []string
	var chunk strings.Builder
	chunkWidth := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if chunkWidth+w > width && chunkWidth > 0 {
			out = append(out, chunk.String())
			chunk.Reset()
			chunkWidth = 0
		}
		chunk.WriteRune(r)
		chunkWidth += w
	}
	if chunkWidth > 0 {
		out = append(out, chunk.String())
	}
	return out
}

// hangingIndent wraps text after a prefix, aligning continuation lines under
// the first character following the prefix.
func hangingIndent(prefix, text string, width int) string {
	prefixWidth := runewidth.StringWidth(prefix)
	lines := wrapText(text, width-prefixWidth)
	pad := strings.Repeat(" ", prefixWidth)
	for i := range lines {
		if i == 0 {
			lines[i] = prefix + lines[i]
			continue
		}
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
