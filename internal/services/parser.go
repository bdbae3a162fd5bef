package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ScoreResult is the outcome of one ATS evaluation. A nil Score means
// no score is available; zero is a real score.
type ScoreResult struct {
	Score    *int
	Feedback string
}

const fallbackFeedback = "No feedback provided"

var (
	fencedBlockRe  = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")
	jsonSpanRe     = regexp.MustCompile(`\{[\s\S]*\}`)
	labeledScoreRe = regexp.MustCompile(`(?i)"?score"?\s*:\s*"?(\d{1,3})`)
	feedbackRe     = regexp.MustCompile(`(?i)"feedback"\s*:\s*"((?:[^"\\]|\\.)*)`)
	bareNumberRe   = regexp.MustCompile(`\b(\d{1,3})\b`)
)

// parseStrategy attempts to read a score and feedback out of a raw
// model reply. Strategies are tried in order; the first that succeeds
// wins.
type parseStrategy func(text string) (ScoreResult, bool)

var parseStrategies = []parseStrategy{
	parseFencedJSON,
	parseEmbeddedJSON,
	parseManually,
}

// ParseModelResponse extracts a clamped score and feedback from the
// model's free-text reply. It never fails: the manual strategy accepts
// any input.
func ParseModelResponse(text string) ScoreResult {
	text = strings.TrimSpace(text)

	var result ScoreResult
	for _, strategy := range parseStrategies {
		if parsed, ok := strategy(text); ok {
			result = parsed
			break
		}
	}

	if strings.TrimSpace(result.Feedback) == "" {
		result.Feedback = fallbackFeedback
	}
	return result
}

// parseFencedJSON handles replies wrapping the JSON payload in a
// markdown code fence, with or without a json language tag.
func parseFencedJSON(text string) (ScoreResult, bool) {
	match := fencedBlockRe.FindStringSubmatch(text)
	if match == nil {
		return ScoreResult{}, false
	}
	return parseJSONPayload(match[1])
}

// parseEmbeddedJSON grabs the outermost {...} span, which also covers
// JSON buried in prose.
func parseEmbeddedJSON(text string) (ScoreResult, bool) {
	match := jsonSpanRe.FindString(text)
	if match == "" {
		return ScoreResult{}, false
	}
	return parseJSONPayload(match)
}

// parseManually regex-extracts a labeled score and feedback, falling
// back to the first bare 1-3 digit number. It always succeeds.
func parseManually(text string) (ScoreResult, bool) {
	var score *int
	if match := labeledScoreRe.FindStringSubmatch(text); match != nil {
		score = clampScore(mustAtoiFloat(match[1]))
	} else if match := bareNumberRe.FindStringSubmatch(text); match != nil {
		score = clampScore(mustAtoiFloat(match[1]))
	}

	feedback := text
	if match := feedbackRe.FindStringSubmatch(text); match != nil {
		feedback = strings.ReplaceAll(match[1], `\n`, "\n")
		feedback = strings.ReplaceAll(feedback, `\"`, `"`)
	}

	return ScoreResult{Score: score, Feedback: feedback}, true
}

func parseJSONPayload(payload string) (ScoreResult, bool) {
	var parsed struct {
		Score    json.RawMessage `json:"score"`
		Feedback string          `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return ScoreResult{}, false
	}

	return ScoreResult{
		Score:    scoreFromRaw(parsed.Score),
		Feedback: parsed.Feedback,
	}, true
}

// scoreFromRaw accepts a JSON number, a quoted number, or null. The
// model is not reliable about which one it emits.
func scoreFromRaw(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return clampScore(number)
	}

	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		if value, err := strconv.ParseFloat(strings.TrimSpace(quoted), 64); err == nil {
			return clampScore(value)
		}
	}

	return nil
}

func clampScore(value float64) *int {
	score := int(math.Round(value))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return &score
}

func mustAtoiFloat(digits string) float64 {
	value, _ := strconv.Atoi(digits)
	return float64(value)
}
