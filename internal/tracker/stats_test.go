package tracker

import (
	"testing"

	"gira/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	pts := func(n int) *int { return &n }
	story := func(status models.StoryStatus, points *int) models.Story {
		return models.Story{Status: status, StoryPoints: points}
	}

	tests := []struct {
		name    string
		stories []models.Story
		want    models.SprintStats
	}{
		{
			name: "empty",
			want: models.SprintStats{},
		},
		{
			name: "three of five done",
			stories: []models.Story{
				story(models.StoryDone, pts(3)),
				story(models.StoryDone, pts(5)),
				story(models.StoryDone, nil),
				story(models.StoryDoing, pts(2)),
				story(models.StoryTodo, pts(1)),
			},
			want: models.SprintStats{
				Total: 5, Completed: 3, CompletionRate: 60,
				Todo: 1, Doing: 1, Done: 3,
				TotalPoints: 11, CompletedPoints: 8,
			},
		},
		{
			name:    "nothing done",
			stories: []models.Story{story(models.StoryTodo, nil), story(models.StoryDoing, nil)},
			want:    models.SprintStats{Total: 2, Todo: 1, Doing: 1},
		},
		{
			name:    "one of three",
			stories: []models.Story{story(models.StoryDone, nil), story(models.StoryTodo, nil), story(models.StoryTodo, nil)},
			want:    models.SprintStats{Total: 3, Completed: 1, CompletionRate: 100.0 / 3, Todo: 2, Done: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.stories)
			assert.InDelta(t, tt.want.CompletionRate, got.CompletionRate, 1e-9)
			got.CompletionRate = tt.want.CompletionRate
			assert.Equal(t, tt.want, got)
		})
	}
}
