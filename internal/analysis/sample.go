package analysis

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// TruncationMarker separates the head and tail of a truncated file.
const TruncationMarker = "\n... (content truncated) ...\n"

type SamplingLimits struct {
	PerFileChars int
	TotalChars   int
}

var DefaultSamplingLimits = SamplingLimits{
	PerFileChars: 3000,
	TotalChars:   100_000,
}

// SampledFile is the possibly truncated content of one discovered file.
type SampledFile struct {
	RelPath string
	Content string
	Size    int64
}

// Truncate shortens content to budget characters by keeping its head and tail
// around TruncationMarker. The result, marker included, is exactly budget
// characters long. Content within budget is returned unchanged.
func Truncate(content string, budget int) string {
	n := utf8.RuneCountInString(content)
	if budget <= 0 || n <= budget {
		return content
	}

	keep := budget - utf8.RuneCountInString(TruncationMarker)
	if keep <= 0 {
		return content[:runeOffset(content, budget)]
	}

	tail := keep / 2
	head := keep - tail
	return content[:runeOffset(content, head)] + TruncationMarker + content[runeOffset(content, n-tail):]
}

// runeOffset returns the byte offset of the i-th character of s.
func runeOffset(s string, i int) int {
	for off := range s {
		if i == 0 {
			return off
		}
		i--
	}
	return len(s)
}

// Sample reads files in order, truncating each to PerFileChars. Sampling stops
// at the first file whose content would push the running total past
// TotalChars; that file is left out.
func Sample(files []DiscoveredFile, limits SamplingLimits) ([]SampledFile, error) {
	sampled := make([]SampledFile, 0, len(files))
	total := 0

	for _, f := range files {
		if limits.TotalChars > 0 && total >= limits.TotalChars {
			break
		}

		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.RelPath, err)
		}

		content := Truncate(string(data), limits.PerFileChars)
		n := utf8.RuneCountInString(content)
		if limits.TotalChars > 0 && total+n > limits.TotalChars {
			break
		}

		total += n
		sampled = append(sampled, SampledFile{
			RelPath: f.RelPath,
			Content: content,
			Size:    f.Size,
		})
	}

	return sampled, nil
}
