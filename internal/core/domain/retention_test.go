package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortResults_ByProjectThenEnvironment(t *testing.T) {
	results := []RetentionResult{
		{ReleaseID: "R3", ProjectID: "P2", EnvironmentID: "E1"},
		{ReleaseID: "R2", ProjectID: "P1", EnvironmentID: "E2"},
		{ReleaseID: "R1", ProjectID: "P1", EnvironmentID: "E1"},
	}

	SortResults(results)

	assert.Equal(t, "R1", results[0].ReleaseID)
	assert.Equal(t, "R2", results[1].ReleaseID)
	assert.Equal(t, "R3", results[2].ReleaseID)
}

func TestSortResults_PreservesRankWithinGroup(t *testing.T) {
	results := []RetentionResult{
		{ReleaseID: "R9", ProjectID: "P2", EnvironmentID: "E1"},
		{ReleaseID: "newest", ProjectID: "P1", EnvironmentID: "E1"},
		{ReleaseID: "older", ProjectID: "P1", EnvironmentID: "E1"},
	}

	SortResults(results)

	assert.Equal(t, "newest", results[0].ReleaseID)
	assert.Equal(t, "older", results[1].ReleaseID)
	assert.Equal(t, "R9", results[2].ReleaseID)
}

func TestIsMaxTimestamp(t *testing.T) {
	assert.True(t, IsMaxTimestamp(MaxTimestamp))
	assert.True(t, IsMaxTimestamp(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, IsMaxTimestamp(time.Date(9999, 12, 31, 23, 59, 58, 0, time.UTC)))
	assert.False(t, IsMaxTimestamp(time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.False(t, IsMaxTimestamp(time.Time{}))
}
