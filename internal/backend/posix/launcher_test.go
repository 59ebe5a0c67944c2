//go:build !windows

package posix

import (
	"reflect"
	"testing"

	"github.com/mkrein/sigfuzz/internal/fuzz"
)

func TestSubstituteArgs(t *testing.T) {
	cases := []struct {
		name      string
		template  []string
		token     string
		input     string
		fuzzStdin bool
		want      []string
	}{
		{
			name:     "exact token replaced",
			template: []string{"target", "@@", "rest"},
			token:    "@@",
			input:    "/tmp/f1",
			want:     []string{"target", "/tmp/f1", "rest"},
		},
		{
			name:     "embedded token spliced",
			template: []string{"target", "--in=@@", "rest"},
			token:    "@@",
			input:    "/tmp/f1",
			want:     []string{"target", "--in=/tmp/f1", "rest"},
		},
		{
			name:     "text after token is dropped",
			template: []string{"a@@b"},
			token:    "@@",
			input:    "/tmp/f1",
			want:     []string{"a/tmp/f1"},
		},
		{
			name:     "no token passes through",
			template: []string{"target", "--fast"},
			token:    "@@",
			input:    "/tmp/f1",
			want:     []string{"target", "--fast"},
		},
		{
			name:      "stdin mode leaves template untouched",
			template:  []string{"target", "--in=@@", "rest"},
			token:     "@@",
			input:     "/tmp/f1",
			fuzzStdin: true,
			want:      []string{"target", "--in=@@", "rest"},
		},
		{
			name:     "default placeholder token",
			template: []string{"target", "___FILE___"},
			token:    "___FILE___",
			input:    "/tmp/f2",
			want:     []string{"target", "/tmp/f2"},
		},
		{
			name:     "empty token never substitutes",
			template: []string{"target", "@@"},
			token:    "",
			input:    "/tmp/f1",
			want:     []string{"target", "@@"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := substituteArgs(tc.template, tc.token, tc.input, tc.fuzzStdin)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("substituteArgs() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLaunchChildReportsLaunchError(t *testing.T) {
	b := New()
	c := &fuzz.Context{
		CommandTemplate: []string{"/nonexistent/sigfuzz-target", "@@"},
		Placeholder:     "@@",
	}
	if err := b.LaunchChild(c, "/tmp/input"); err == nil {
		t.Fatal("expected launch error for missing target")
	}

	c.CommandTemplate = nil
	if err := b.LaunchChild(c, "/tmp/input"); err == nil {
		t.Fatal("expected launch error for empty template")
	}
}
