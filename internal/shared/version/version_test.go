package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "v1.2.3", Normalize("1.2.3"))
	assert.Equal(t, "v1.2.3", Normalize(" v1.2.3 "))
	assert.Equal(t, "", Normalize(""))
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1.4.0", true},
		{"v2.0.0", true},
		{"1.4.0-rc.1", false},
		{"dev", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelease(tt.in))
		})
	}
}

func TestCurrent(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "1.4"
	info := Current()
	assert.Equal(t, "v1.4.0", info.Version)
	assert.True(t, info.Release)

	Version = "dev"
	info = Current()
	assert.Equal(t, "dev", info.Version)
	assert.False(t, info.Release)
}
