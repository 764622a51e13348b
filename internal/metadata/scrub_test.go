package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrub(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Title", "title"},
		{"Hero Section", "hero_section"},
		{"  Call-to-Action  Link ", "call_to_action_link"},
		{"Image (Left)", "image_left"},
		{"already_scrubbed", "already_scrubbed"},
		{"__leading__trailing__", "leading_trailing"},
		{"Año 2024", "a_o_2024"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Scrub(tc.in))
		})
	}
}

func TestScrub_Idempotent(t *testing.T) {
	for _, in := range []string{"Hero Section", "A--B  c", "x", "Web Template", "9 Lives!"} {
		once := Scrub(in)
		assert.Equal(t, once, Scrub(once), "input %q", in)
	}
}
