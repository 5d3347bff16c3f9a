package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ParseFailure reports model output that could not be turned into a Result.
type ParseFailure struct {
	Reason string
	Err    error
}

func (e *ParseFailure) Error() string {
	if e.Err == nil {
		return "parse model output: " + e.Reason
	}
	return fmt.Sprintf("parse model output: %s: %v", e.Reason, e.Err)
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

var errNoObject = errors.New("no JSON object found")

// extractor pulls a JSON object out of free-form text.
type extractor struct {
	name    string
	extract func(raw string) (string, bool)
}

var extractors = []extractor{
	{name: "line boundaries", extract: fromLineBoundaries},
	{name: "outermost braces", extract: fromOutermostBraces},
}

var bracesPattern = regexp.MustCompile(`(?s)\{.*\}`)

// fromLineBoundaries joins everything from the first line that opens with "{"
// through the last line that closes with "}".
func fromLineBoundaries(raw string) (string, bool) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	start, end := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if start == -1 && strings.HasPrefix(trimmed, "{") {
			start = i
		}
		if strings.HasSuffix(trimmed, "}") {
			end = i
		}
	}

	if start == -1 || end < start {
		return "", false
	}
	return strings.Join(lines[start:end+1], "\n"), true
}

func fromOutermostBraces(raw string) (string, bool) {
	match := bracesPattern.FindString(raw)
	return match, match != ""
}

// Parse interprets raw model output. It never fails: anything it cannot read
// yields DefaultResult.
func Parse(raw string) Result {
	result, err := parse(raw)
	if err != nil {
		return DefaultResult()
	}
	return result
}

func parse(raw string) (Result, error) {
	var lastErr error = errNoObject

	for _, ex := range extractors {
		candidate, ok := ex.extract(raw)
		if !ok {
			continue
		}

		var data map[string]any
		if err := json.Unmarshal([]byte(candidate), &data); err != nil {
			lastErr = fmt.Errorf("%s: %w", ex.name, err)
			continue
		}

		return decodeResult(data)
	}

	return Result{}, &ParseFailure{Reason: "no decodable JSON object", Err: lastErr}
}

func decodeResult(data map[string]any) (Result, error) {
	if v, ok := data["score"]; ok && v != nil {
		bounded := make(map[string]any, len(data))
		for k, val := range data {
			bounded[k] = val
		}
		bounded["score"] = boundScore(v)
		data = bounded
	}

	var result Result
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Result{}, &ParseFailure{Reason: "build decoder", Err: err}
	}

	if err := decoder.Decode(data); err != nil {
		return Result{}, &ParseFailure{Reason: "unexpected field types", Err: err}
	}

	if data["score"] == nil {
		result.Score = defaultScore
	}
	if strings.TrimSpace(result.Summary) == "" {
		result.Summary = defaultSummary
	}

	for _, list := range []*[]string{
		&result.Strengths,
		&result.Weaknesses,
		&result.RecommendedRoles,
		&result.RedFlags,
		&result.GreenFlags,
		&result.InterviewQuestions,
	} {
		if *list == nil {
			*list = []string{}
		}
	}

	return result, nil
}

// boundScore keeps numeric scores inside [MinScore, MaxScore] before the int
// conversion, which would otherwise overflow for huge values. Non-numeric
// values are left for the decoder to reject.
func boundScore(v any) any {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return v
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return v
		}
		f = parsed
	default:
		return v
	}

	if math.IsNaN(f) {
		return v
	}
	return int(math.Max(MinScore, math.Min(MaxScore, f)))
}
