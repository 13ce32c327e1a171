package importer

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// delimiter candidates in preference order
var delimiters = []rune{',', ';', '\t'}

// DetectDelimiter picks the delimiter whose per-line count is highest and
// most consistent across the first few non-empty lines
func DetectDelimiter(content string) rune {
	sample := make([]string, 0, 5)
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) >= 5 {
				break
			}
		}
	}
	if len(sample) == 0 {
		return ','
	}

	best := ','
	bestScore := 0.0

	for _, delim := range delimiters {
		sum := 0
		counts := make([]int, 0, len(sample))
		for _, line := range sample {
			n := strings.Count(line, string(delim))
			counts = append(counts, n)
			sum += n
		}
		avg := float64(sum) / float64(len(counts))
		if avg == 0 {
			continue
		}

		variance := 0.0
		for _, n := range counts {
			diff := float64(n) - avg
			variance += diff * diff
		}
		variance /= float64(len(counts))

		score := avg / (1.0 + variance)
		if score > bestScore {
			bestScore = score
			best = delim
		}
	}
	return best
}

// ParseCSV parses a campaign CSV export. Encoding and delimiter are
// detected from the content; the first row must be a header row.
func ParseCSV(content []byte) (*Result, error) {
	decoded, err := decodeToUTF8(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(decoded))
	reader.Comma = DetectDelimiter(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return buildResult(rows), nil
}
