package ridership

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"multiple lines", "Grand Central-42 St (4,5,6,7,S)", []string{"4", "5", "6", "7", "S"}},
		{"no parenthetical", "Rockefeller Ctr", []string{}},
		{"unsorted with spaces", "Canal St (R, N, Q, J, Z, 6, W)", []string{"6", "J", "N", "Q", "R", "W", "Z"}},
		{"several groups with duplicates", "Court Sq (E,M) (7,G,E)", []string{"7", "E", "G", "M"}},
		{"empty group", "Somewhere ()", []string{}},
		{"digits sort before letters", "Times Sq-42 St (N,Q,R,W,S,1,2,3,7)", []string{"1", "2", "3", "7", "N", "Q", "R", "S", "W"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractLines(tt.input))
		})
	}
}

func TestFormatDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Times Sq-42 St (1,2,3,7,S)", "Times Sq-42 St"},
		{"Rockefeller Ctr", "Rockefeller Ctr"},
		{"Court Sq (E,M) (7,G)", "Court Sq"},
		{"  Padded (A)  ", "Padded"},
		{"Mid (A) Name", "Mid Name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDisplayName(tt.input))
		})
	}
}

func TestResolveLines_TramUsesComplexID(t *testing.T) {
	assert.Equal(t, []string{TramLine}, ResolveLines("TRAM1", "RIT-Manhattan (R042)"))
	assert.Equal(t, []string{TramLine}, ResolveLines("tram2", "RIT-Roosevelt (R044)"))
	assert.Equal(t, []string{"R042"}, ResolveLines("999", "RIT-Manhattan (R042)"))
}

func TestJoinLines(t *testing.T) {
	assert.Equal(t, "1, 2", JoinLines([]string{"1", "2"}))
	assert.Equal(t, "", JoinLines(nil))
}
