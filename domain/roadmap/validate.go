package roadmap

import (
	"encoding/json"
	"fmt"
)

// ValidationResult tags the outcome of parsing generation-service output.
// Exactly one of Valid/Invalid holds: Valid carries a roadmap, Invalid
// carries the reason. There is no partially-valid state.
type ValidationResult struct {
	Valid   bool
	Roadmap Roadmap
	Reason  string
}

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{Reason: fmt.Sprintf(format, args...)}
}

// ParseShape decodes raw generation output into a Roadmap, requiring only
// that a non-empty weeks array is present. Week numbering is normalized but
// the count is left as generated.
func ParseShape(raw []byte) ValidationResult {
	var rm Roadmap
	if err := json.Unmarshal(raw, &rm); err != nil {
		return invalid("response is not valid JSON: %v", err)
	}
	if len(rm.Weeks) == 0 {
		return invalid("response has no weeks array")
	}
	for i := range rm.Weeks {
		rm.Weeks[i].Week = i + 1
		if rm.Weeks[i].Goals == nil {
			rm.Weeks[i].Goals = []string{}
		}
		if rm.Weeks[i].Resources == nil {
			rm.Weeks[i].Resources = []Resource{}
		}
	}
	return ValidationResult{Valid: true, Roadmap: rm}
}

// Validate decodes raw generation output and corrects it to exactly
// targetWeeks weeks: extra weeks are truncated, missing weeks are padded
// with placeholder weeks, and numbering is rewritten 1..targetWeeks.
func Validate(raw []byte, targetWeeks int) ValidationResult {
	if targetWeeks < 1 {
		targetWeeks = 1
	}
	res := ParseShape(raw)
	if !res.Valid {
		return res
	}
	res.Roadmap.Weeks = normalizeWeeks(res.Roadmap.Weeks, targetWeeks)
	return res
}

func normalizeWeeks(weeks []Week, target int) []Week {
	if len(weeks) > target {
		weeks = weeks[:target]
	}
	for len(weeks) < target {
		weeks = append(weeks, placeholderWeek(len(weeks)+1))
	}
	for i := range weeks {
		weeks[i].Week = i + 1
	}
	return weeks
}

func placeholderWeek(n int) Week {
	return Week{
		Week:      n,
		Focus:     fmt.Sprintf("Week %d", n),
		Goals:     []string{"Learn core concepts"},
		Resources: []Resource{},
	}
}

// Fallback builds the deterministic placeholder roadmap used when generation
// fails entirely. It always has exactly the requested number of weeks, each
// with empty resources, so the week-count invariant holds on every path.
func Fallback(topic, summary string, weeks int) Roadmap {
	if weeks < 1 {
		weeks = 1
	}
	rm := Roadmap{
		Title:   fmt.Sprintf("%s Roadmap", topic),
		Summary: summary,
		Weeks:   make([]Week, 0, weeks),
	}
	for i := 1; i <= weeks; i++ {
		rm.Weeks = append(rm.Weeks, placeholderWeek(i))
	}
	return rm
}
