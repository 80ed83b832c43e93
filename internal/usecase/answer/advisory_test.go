package answer

import "testing"

func TestAdvisory_Matches(t *testing.T) {
	adv := Advisory{
		Name:     "model-selection",
		Keywords: []string{"gpt", "openai model"},
		Advice:   "Use the model named in the assignment.",
	}

	tests := []struct {
		name     string
		question string
		want     bool
	}{
		{"keyword present", "which gpt should i pick?", true},
		{"keyword inside word", "interrupting the gptimer", true},
		{"multi-word keyword", "is any openai model allowed?", true},
		{"no keyword", "how do i submit the assignment?", false},
		{"empty question", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := adv.Matches(tc.question); got != tc.want {
				t.Errorf("Matches(%q) = %v, want %v", tc.question, got, tc.want)
			}
		})
	}
}

func TestAdvisory_MatchesExpectsLoweredInput(t *testing.T) {
	adv := Advisory{Keywords: []string{"gpt"}, Advice: "advice"}
	if adv.Matches("GPT") {
		t.Error("Matches is a plain substring check; callers lower-case first")
	}
}
