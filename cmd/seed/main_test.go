package main

import (
	"context"
	"testing"

	"gira/internal/database"
	"gira/internal/logging"
	"gira/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	store := database.NewTestStore(t)
	log := logging.Discard()

	require.NoError(t, seedDemo(ctx, store, log))
	// повторный запуск ничего не дублирует
	require.NoError(t, seedDemo(ctx, store, log))

	users, err := store.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(demoUsers))

	projects, err := store.Projects(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	p := projects[0]
	assert.Equal(t, demoKey, p.Key)

	sprints, err := store.Sprints(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, sprints, demoSprints)
	assert.Equal(t, "Sprint 3", sprints[2].Name)

	backlog, err := store.Stories(ctx, models.StoryFilter{ProjectID: p.ID, Backlog: true})
	require.NoError(t, err)
	assert.Len(t, backlog, len(demoStories)-storiesInPlans)

	for _, sp := range sprints {
		stories, err := store.Stories(ctx, models.StoryFilter{ProjectID: p.ID, SprintID: &sp.ID})
		require.NoError(t, err)
		assert.Len(t, stories, 2, sp.Name)
	}
}
