package fieldset

import (
	"strings"
)

const DefaultDelimiterSampleSize = 1024

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// DetectDelimiter guesses the delimiter of CSV content by analyzing a sample
// of the first few lines. Each candidate delimiter is scored per line by its
// raw occurrence count, with a bonus when multiple lines agree on the count
// and another when the implied column count is plausible (2-20 delimiters).
// Empty or structureless input defaults to comma.
func DetectDelimiter(content string, sampleSize int) rune {
	if sampleSize <= 0 {
		sampleSize = DefaultDelimiterSampleSize
	}
	sample := content
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	lines := strings.Split(sample, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return ','
	}

	scores := make(map[rune]int, len(candidateDelimiters))
	for _, delim := range candidateDelimiters {
		score := 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}

			count := strings.Count(line, string(delim))
			if count == 0 {
				continue
			}
			score += count

			// Consistent delimiter count across lines is a strong signal.
			matching := 0
			for _, other := range lines {
				if strings.Count(other, string(delim)) == count {
					matching++
				}
			}
			if matching > 1 {
				score += 2
			}

			if count >= 2 && count <= 20 {
				score++
			}
		}
		scores[delim] = score
	}

	best := ','
	bestScore := 0
	for _, delim := range candidateDelimiters {
		if scores[delim] > bestScore {
			best = delim
			bestScore = scores[delim]
		}
	}
	if bestScore == 0 {
		return ','
	}
	return best
}
