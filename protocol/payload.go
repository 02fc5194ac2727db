package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// PayloadSeparator separates metadata and score in an analysis payload.
	PayloadSeparator = "|"
	// MaxScore is the upper bound of a virality score.
	MaxScore = 100
)

// FormatAnalysisPayload renders "<metadata>|<score>".
func FormatAnalysisPayload(metadata string, score uint64) string {
	return metadata + PayloadSeparator + strconv.FormatUint(score, 10)
}

// ParseAnalysisPayload splits "<metadata>|<score>" into an AnalysisResult.
// Exactly one separator is allowed, metadata must be non-empty and the score
// must be an integer in [0, MaxScore]. Errors wrap ErrParse.
func ParseAnalysisPayload(payload string) (AnalysisResult, error) {
	metadata, rawScore, found := strings.Cut(payload, PayloadSeparator)
	if !found {
		return AnalysisResult{}, fmt.Errorf("%w: missing %q separator in %q", ErrParse, PayloadSeparator, payload)
	}
	if strings.Contains(rawScore, PayloadSeparator) {
		return AnalysisResult{}, fmt.Errorf("%w: more than one %q separator in %q", ErrParse, PayloadSeparator, payload)
	}

	metadata = strings.TrimSpace(metadata)
	if metadata == "" {
		return AnalysisResult{}, fmt.Errorf("%w: empty metadata", ErrParse)
	}

	score, err := parseScore(rawScore)
	if err != nil {
		return AnalysisResult{}, err
	}

	return AnalysisResult{Metadata: metadata, Score: score}, nil
}

// ParseCompletionAnswer extracts metadata and score from a model answer of the form
// "M:key1,...,key10;P:SCORE". Keys are matched case-insensitively, both are required.
// Parts without a colon are ignored.
// When P carries several comma separated values the first one is the score.
func ParseCompletionAnswer(answer string) (AnalysisResult, error) {
	fields := make(map[string]string, 2)
	for part := range strings.SplitSeq(answer, ";") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		fields[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	metadata, ok := fields["M"]
	if !ok || metadata == "" {
		return AnalysisResult{}, fmt.Errorf("%w: answer %q has no metadata (M) field", ErrParse, answer)
	}
	if strings.Contains(metadata, PayloadSeparator) {
		return AnalysisResult{}, fmt.Errorf("%w: metadata must not contain %q", ErrParse, PayloadSeparator)
	}

	rawScore, ok := fields["P"]
	if !ok || rawScore == "" {
		return AnalysisResult{}, fmt.Errorf("%w: answer %q has no prediction (P) field", ErrParse, answer)
	}
	first, _, _ := strings.Cut(rawScore, ",")
	score, err := parseScore(first)
	if err != nil {
		return AnalysisResult{}, err
	}

	return AnalysisResult{Metadata: metadata, Score: score}, nil
}

func parseScore(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	score, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q is not a non-negative integer", ErrParse, raw)
	}
	if score > MaxScore {
		return 0, fmt.Errorf("%w: score %d out of range [0, %d]", ErrParse, score, MaxScore)
	}
	return score, nil
}
