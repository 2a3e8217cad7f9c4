package pushoptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"--no-verify -o ci.skip", []string{"--no-verify", "--push-option=ci.skip"}},
		{"-o ci.skip", []string{"--push-option=ci.skip"}},
		{"--atomic -o a=1 -o b=2", []string{"--atomic", "--push-option=a=1", "--push-option=b=2"}},
		{"--atomic  -o\tci.skip", []string{"--atomic", "--push-option=ci.skip"}},
		{"--push-option=ci.skip", []string{"--push-option=ci.skip"}},
		{"--force-with-lease", []string{"--force-with-lease"}},
		{"--no-verify", []string{"--no-verify"}},
		{"", []string{}},
		{"   ", []string{}},
		// Not bounded by whitespace on both sides.
		{"--atomic -o", []string{"--atomic", "-o"}},
		{"-oci.skip", []string{"-oci.skip"}},
		{"--repo=-o x", []string{"--repo=-o", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := Tokens(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_SinglePass(t *testing.T) {
	t.Parallel()

	// The replacement glues the value to the flag; a value that itself reads
	// "-o" is not rewritten a second time.
	assert.Equal(t, "--push-option=-o x", Normalize("-o -o x"))
}

func TestJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "--no-verify -o ci.skip", Join([]string{"--no-verify", "-o ci.skip"}))
	assert.Empty(t, Join(nil))
}
