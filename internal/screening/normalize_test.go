package screening

import "testing"

func TestNormalizeResumeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "empty input",
			input:  "",
			expect: "",
		},
		{
			name:   "collapses whitespace runs",
			input:  "data   scientist\twith\n\nexperience",
			expect: "Data scientist with experience",
		},
		{
			name:   "strips disallowed characters",
			input:  "skills: python™ and sql®",
			expect: "Skills: python and sql",
		},
		{
			name:   "tightens punctuation spacing",
			input:  "worked at acme ( remote ) , since 2020 .",
			expect: "Worked at acme (remote), since 2020.",
		},
		{
			name:   "capitalizes sentence starts",
			input:  "first sentence. second one! third? fourth",
			expect: "First sentence. Second one! Third? Fourth",
		},
		{
			name:   "keeps email addresses intact",
			input:  "contact jane.doe@example.com for details",
			expect: "Contact jane.doe@example.com for details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeResumeText(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "empty input",
			input:  "",
			expect: NameUnknown,
		},
		{
			name:   "unknown sentinel passes through",
			input:  NameUnknown,
			expect: NameUnknown,
		},
		{
			name:   "round trip preserves title case",
			input:  "Jane Doe",
			expect: "Jane Doe",
		},
		{
			name:   "title cases lower input",
			input:  "jane doe",
			expect: "Jane Doe",
		},
		{
			name:   "strips digits and symbols",
			input:  "Jane Doe 42 <resume>",
			expect: "Jane Doe",
		},
		{
			name:   "caps token count at three",
			input:  "jane alexandra doe smith",
			expect: "Jane Alexandra Doe",
		},
		{
			name:   "only symbols becomes unknown",
			input:  "1234 @#$",
			expect: NameUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeName(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
