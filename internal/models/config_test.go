package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridership.subwaydash.org/internal/clock"
)

func TestGitPropertiesJSONTags(t *testing.T) {
	props := GitProperties{
		GitBranch:       "main",
		GitCommitId:     "abc12345",
		GitBuildVersion: "1.0.0",
		GitDirty:        "false",
	}

	data, err := json.Marshal(props)
	require.NoError(t, err)
	jsonString := string(data)

	assert.Contains(t, jsonString, `"git.branch":"main"`)
	assert.Contains(t, jsonString, `"git.commit.id":"abc12345"`)
	assert.Contains(t, jsonString, `"git.build.version":"1.0.0"`)
	assert.NotContains(t, jsonString, "GitBranch")
}

func TestNewEntryResponse(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	resp := NewEntryResponse(DefaultDatesModel{StartDate: "2024-06-14", EndDate: "2024-06-15"}, clock.NewMockClock(fixed))

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": 200,
		"currentTime": 1718461800000,
		"text": "OK",
		"version": 2,
		"data": {"entry": {"startDate": "2024-06-14", "endDate": "2024-06-15", "empty": false}}
	}`, string(b))
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]string{"Bronx", "Queens"}, false, clock.NewMockClock(time.Unix(0, 0)))

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":200,"currentTime":0,"text":"OK","version":2,
		"data":{"list":["Bronx","Queens"],"limitExceeded":false}}`, string(b))
}
