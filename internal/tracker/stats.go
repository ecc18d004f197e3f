package tracker

import (
	"context"

	"gira/internal/models"
)

// ComputeStats summarizes a set of stories. The completion rate is the
// percentage of stories in done, and 0 for an empty set.
func ComputeStats(stories []models.Story) models.SprintStats {
	var st models.SprintStats
	for _, story := range stories {
		st.Total++

		points := 0
		if story.StoryPoints != nil {
			points = *story.StoryPoints
		}
		st.TotalPoints += points

		switch story.Status {
		case models.StoryTodo:
			st.Todo++
		case models.StoryDoing:
			st.Doing++
		case models.StoryDone:
			st.Done++
			st.Completed++
			st.CompletedPoints += points
		}
	}

	if st.Total > 0 {
		st.CompletionRate = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}

// sprintView loads the stories of sp and computes its stats.
func (s *Service) sprintView(ctx context.Context, sp *models.Sprint) (*models.SprintView, []models.Story, error) {
	stories, err := s.store.Stories(ctx, models.StoryFilter{ProjectID: sp.ProjectID, SprintID: &sp.ID})
	if err != nil {
		return nil, nil, err
	}
	return &models.SprintView{Sprint: *sp, Stats: ComputeStats(stories)}, stories, nil
}
