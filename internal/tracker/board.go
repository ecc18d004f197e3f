package tracker

import (
	"context"

	"gira/internal/models"
)

// Board is the kanban view of a project's active sprint. Sprint is nil and
// the columns are empty when no sprint is active.
type Board struct {
	Project models.Project     `json:"project"`
	Sprint  *models.Sprint     `json:"sprint"`
	Todo    []models.Story     `json:"todo"`
	Doing   []models.Story     `json:"doing"`
	Done    []models.Story     `json:"done"`
	Stats   models.SprintStats `json:"stats"`
}

// SprintPlan is a sprint shown on the backlog page with its stories.
type SprintPlan struct {
	models.SprintView
	Stories []models.Story `json:"stories"`
}

// Backlog lists the stories without a sprint and every sprint that is not
// completed yet.
type Backlog struct {
	Project models.Project `json:"project"`
	Stories []models.Story `json:"stories"`
	Sprints []SprintPlan   `json:"sprints"`
}

func (s *Service) Board(ctx context.Context, projectID uint) (*Board, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	board := &Board{
		Project: *p,
		Todo:    []models.Story{},
		Doing:   []models.Story{},
		Done:    []models.Story{},
	}

	active, err := s.store.Sprints(ctx, projectID, models.SprintActive)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return board, nil
	}

	sp := active[0]
	view, stories, err := s.sprintView(ctx, &sp)
	if err != nil {
		return nil, err
	}
	board.Sprint = &sp
	board.Stats = view.Stats

	for _, st := range stories {
		switch st.Status {
		case models.StoryTodo:
			board.Todo = append(board.Todo, st)
		case models.StoryDoing:
			board.Doing = append(board.Doing, st)
		case models.StoryDone:
			board.Done = append(board.Done, st)
		}
	}
	return board, nil
}

func (s *Service) Backlog(ctx context.Context, projectID uint) (*Backlog, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stories, err := s.store.Stories(ctx, models.StoryFilter{ProjectID: projectID, Backlog: true})
	if err != nil {
		return nil, err
	}

	sprints, err := s.store.Sprints(ctx, projectID, models.SprintPlanning, models.SprintActive)
	if err != nil {
		return nil, err
	}

	plans := make([]SprintPlan, 0, len(sprints))
	for i := range sprints {
		view, linked, err := s.sprintView(ctx, &sprints[i])
		if err != nil {
			return nil, err
		}
		plans = append(plans, SprintPlan{SprintView: *view, Stories: linked})
	}

	return &Backlog{Project: *p, Stories: stories, Sprints: plans}, nil
}
