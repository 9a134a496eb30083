package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sections are the scored resume sections in report order.
var Sections = []string{"Objective", "Experience", "Projects", "Skills", "Education", "Certifications"}

// Report is the JSON document returned by the analyze endpoint.
type Report struct {
	Objective      float64     `json:"Objective"`
	Experience     float64     `json:"Experience"`
	Projects       float64     `json:"Projects"`
	Skills         float64     `json:"Skills"`
	Education      float64     `json:"Education"`
	Certifications float64     `json:"Certifications"`
	Overall        float64     `json:"Overall"`
	Suggestions    Suggestions `json:"Suggestions"`
}

type Suggestions struct {
	Objective      string `json:"Objective"`
	Experience     string `json:"Experience"`
	Projects       string `json:"Projects"`
	Skills         string `json:"Skills"`
	Education      string `json:"Education"`
	Certifications string `json:"Certifications"`
}

func (r *Report) scores() []*float64 {
	return []*float64{&r.Objective, &r.Experience, &r.Projects, &r.Skills, &r.Education, &r.Certifications, &r.Overall}
}

func (s *Suggestions) fields() []*string {
	return []*string{&s.Objective, &s.Experience, &s.Projects, &s.Skills, &s.Education, &s.Certifications}
}

func parseReport(raw string) (*Report, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, errors.New("no JSON object in model response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	var report Report
	keys := append(append([]string(nil), Sections...), "Overall")
	for i, score := range report.scores() {
		v, ok := lookup(data, keys[i])
		if !ok {
			return nil, fmt.Errorf("model response is missing %q", keys[i])
		}
		*score = clamp(coerceFloat(v))
	}

	suggestions, _ := lookup(data, "Suggestions")
	fields := report.Suggestions.fields()
	switch val := suggestions.(type) {
	case map[string]any:
		for i, section := range Sections {
			if s, ok := lookup(val, section); ok {
				*fields[i] = coerceString(s)
			}
		}
	case []any:
		for i := 0; i < len(val) && i < len(fields); i++ {
			*fields[i] = coerceString(val[i])
		}
	}

	return &report, nil
}

// lookup finds key ignoring case.
func lookup(data map[string]any, key string) (any, bool) {
	if v, ok := data[key]; ok {
		return v, true
	}
	for k, v := range data {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// extractJSON strips code fences and any prose around the outermost braces.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if i := strings.Index(trimmed, "/"); i != -1 {
			trimmed = strings.TrimSpace(trimmed[:i])
		}
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return f
	}
}
