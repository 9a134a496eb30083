package scoring

import (
	"math"
	"strings"
	"testing"
)

func TestParseReport(t *testing.T) {
	raw := "Sure! Here is the analysis:\n```json\n" + `{
  "Objective": 70,
  "Experience": "85",
  "projects": "90%",
  "Skills": 120,
  "Education": -5,
  "Certifications": "n/a",
  "Overall": "78/100",
  "Suggestions": {"Objective": " Be specific. ", "Skills": ["Go", "SQL"]}
}` + "\n```\nHope this helps."

	report, err := parseReport(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string][2]float64{
		"Objective":      {report.Objective, 70},
		"Experience":     {report.Experience, 85},
		"Projects":       {report.Projects, 90},
		"Skills":         {report.Skills, 100},
		"Education":      {report.Education, 0},
		"Certifications": {report.Certifications, 0},
		"Overall":        {report.Overall, 78},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Fatalf("%s: expected %v, got %v", name, c[1], c[0])
		}
	}

	if report.Suggestions.Objective != "Be specific." {
		t.Fatalf("unexpected objective suggestion: %q", report.Suggestions.Objective)
	}
	if report.Suggestions.Skills != `["Go","SQL"]` {
		t.Fatalf("unexpected skills suggestion: %q", report.Suggestions.Skills)
	}
}

func TestParseReportSuggestionList(t *testing.T) {
	raw := `{"Objective":1,"Experience":2,"Projects":3,"Skills":4,"Education":5,"Certifications":6,"Overall":7,
"Suggestions":["a","b","c","d","e","f","g"]}`

	report, err := parseReport(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Suggestions.Objective != "a" || report.Suggestions.Certifications != "f" {
		t.Fatalf("unexpected suggestions: %+v", report.Suggestions)
	}
}

func TestParseReportErrors(t *testing.T) {
	tests := map[string]string{
		"no json":       "I cannot score this resume.",
		"broken json":   `{"Objective": 70,`,
		"missing score": `{"Objective":1,"Experience":2,"Projects":3,"Skills":4,"Education":5,"Certifications":6}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseReport(raw); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	if got := coerceFloat(" 42 "); got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
	if !math.IsNaN(coerceFloat(true)) {
		t.Fatal("expected NaN for bool")
	}
	if got := clamp(math.NaN()); got != 0 {
		t.Fatalf("expected NaN clamped to 0, got %v", got)
	}
}

func TestBuildPromptListsSections(t *testing.T) {
	prompt := buildPrompt("Go developer")
	for _, s := range append(Sections, "Overall", "Suggestions", "Go developer") {
		if !strings.Contains(prompt, s) {
			t.Fatalf("prompt is missing %q", s)
		}
	}
}
