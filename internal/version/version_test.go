package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
	}{
		{
			name: "no vcs data",
			want: "v1.0.0 (go1.25.0)",
		},
		{
			name: "clean revision",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef0123"},
				{Key: "vcs.modified", Value: "false"},
			},
			want: "v1.0.0 (0123456789ab, go1.25.0)",
		},
		{
			name: "modified tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			},
			want: "v1.0.0 (abc123-dirty, go1.25.0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := &debug.BuildInfo{GoVersion: "go1.25.0", Settings: tt.settings}
			assert.Equal(t, tt.want, format("v1.0.0", info))
		})
	}
}

func TestStringStartsWithVersion(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(String(), Version))
}
