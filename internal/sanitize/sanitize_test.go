package sanitize_test

import (
	"strings"
	"testing"

	"github.com/cartelera/billboard/internal/sanitize"
)

func TestCleanStripsMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "Banda del Sur",
			want: "Banda del Sur",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  Banda del Sur  ",
			want: "Banda del Sur",
		},
		{
			name: "script element dropped entirely",
			in:   "<script>alert(1)</script>Gig tonight",
			want: "Gig tonight",
		},
		{
			name: "tags stripped, text kept",
			in:   "Big <b>show</b> downtown",
			want: "Big show downtown",
		},
		{
			name: "javascript scheme removed",
			in:   "click javascript:alert(1) here",
			want: "click alert(1) here",
		},
		{
			name: "inline handler removed",
			in:   `img onerror=alert(1) src`,
			want: "img alert(1) src",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sanitize.Clean(tc.in)
			if got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanNeverEmitsActiveContent(t *testing.T) {
	hostile := []string{
		`<img src=x onerror="alert(1)">`,
		`<a href="javascript:alert(1)">x</a>`,
		`<svg/onload=alert(1)>`,
		`JAVASCRIPT:void(0)`,
	}

	for _, in := range hostile {
		got := sanitize.Clean(in)

		lower := strings.ToLower(got)
		if strings.Contains(lower, "javascript:") || strings.Contains(got, "<") || strings.Contains(got, ">") {
			t.Fatalf("Clean(%q) left active content: %q", in, got)
		}
	}
}

func TestCleanPtr(t *testing.T) {
	sanitize.CleanPtr(nil) // must not panic

	s := "  <i>bio</i>  "
	sanitize.CleanPtr(&s)

	if s != "bio" {
		t.Fatalf("got %q, want %q", s, "bio")
	}
}
