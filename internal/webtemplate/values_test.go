package webtemplate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseValues(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{"empty", "", map[string]any{}},
		{"blank", "  \n", map[string]any{}},
		{"integers", `{"n":3,"neg":-2}`, map[string]any{"n": int64(3), "neg": int64(-2)}},
		{"floats", `{"f":1.5}`, map[string]any{"f": 1.5}},
		{"nested", `{"items":[{"n":1}],"ok":true,"s":null}`, map[string]any{
			"items": []any{map[string]any{"n": int64(1)}},
			"ok":    true,
			"s":     nil,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValues(tt.raw)
			if err != nil {
				t.Fatalf("ParseValues(%q): %v", tt.raw, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseValues(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}
