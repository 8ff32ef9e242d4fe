package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSemverGte(t *testing.T) {
	tests := []struct {
		name    string
		version string
		min     string
		want    bool
	}{
		{"equal", "2.1.0", "2.1.0", true},
		{"above", "2.2.0", "2.1.0", true},
		{"below", "2.0.9", "2.1.0", false},
		{"major below", "1.9.9", "2.0.0", false},
		{"patch above", "2.1.1", "2.1.0", true},
		{"unparseable version passes", "dev-build", "2.1.0", true},
		{"unparseable bound passes", "2.1.0", "latest", true},
		{"both unparseable pass", "", "", true},
		{"prerelease suffix ignored", "2.1.0-beta", "2.1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SemverGte(tt.version, tt.min))
		})
	}
}

func TestSemverLte(t *testing.T) {
	tests := []struct {
		name    string
		version string
		max     string
		want    bool
	}{
		{"equal", "3.0.0", "3.0.0", true},
		{"below", "2.9.9", "3.0.0", true},
		{"above", "3.0.1", "3.0.0", false},
		{"unparseable version passes", "nightly", "3.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SemverLte(tt.version, tt.max))
		})
	}
}
