// Command seed fills the database with a demo project: three users, the
// DEMO project with three planning sprints and ten stories.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gira/internal/auth"
	"gira/internal/config"
	"gira/internal/database"
	"gira/internal/logging"
	"gira/internal/models"
	"gira/internal/tracker"

	"github.com/sirupsen/logrus"
)

var demoUsers = []auth.RegisterInput{
	{Username: "yamada", Email: "yamada@example.com", Password: "password", FirstName: "Taro", LastName: "Yamada", AvatarColor: "#2D8738"},
	{Username: "tanaka", Email: "tanaka@example.com", Password: "password", FirstName: "Hanako", LastName: "Tanaka", AvatarColor: "#0052CC"},
	{Username: "suzuki", Email: "suzuki@example.com", Password: "password", FirstName: "Ichiro", LastName: "Suzuki", AvatarColor: "#CD1F1F"},
}

var demoStories = []string{
	"User registration",
	"Login",
	"Profile editing",
	"Password reset",
	"Email notifications",
	"Dashboard page",
	"Admin page",
	"Reports",
	"API authentication",
	"Performance tuning",
}

const (
	demoKey        = "DEMO"
	demoSprints    = 3
	storiesInPlans = 6
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}
	store := database.NewStore(db)

	if err := seedDemo(context.Background(), store, log); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	log.Info("created demo data")
}

// seedDemo пропускает пользователей, которые уже есть, и ничего не делает,
// если проект DEMO уже создан.
func seedDemo(ctx context.Context, store *database.Store, log logrus.FieldLogger) error {
	as := auth.NewService(store, log)
	tr := tracker.NewService(store, log)

	var users []*models.User
	for _, in := range demoUsers {
		u, err := as.Register(ctx, in)
		if errors.Is(err, models.ErrConflict) {
			if u, err = store.UserByUsername(ctx, in.Username); err != nil {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("user %s: %w", in.Username, err)
		}
		users = append(users, u)
	}

	project, err := tr.CreateProject(ctx, tracker.CreateProjectInput{Key: demoKey, Name: "Demo Project"})
	if errors.Is(err, models.ErrConflict) {
		log.Info("demo project already exists")
		return nil
	}
	if err != nil {
		return err
	}

	var sprints []*models.Sprint
	for i := 0; i < demoSprints; i++ {
		sp, err := tr.CreateSprint(ctx, project.ID, tracker.CreateSprintInput{})
		if err != nil {
			return err
		}
		sprints = append(sprints, sp)
	}

	for i, title := range demoStories {
		points := i%8 + 1
		priority := models.Priority(i % 5)
		in := tracker.CreateStoryInput{
			Title:       title,
			Description: title + ": details.",
			StoryPoints: &points,
			Priority:    &priority,
		}
		// примерно каждая третья история без исполнителя
		if i%3 != 2 {
			in.AssigneeID = &users[i%len(users)].ID
		}

		st, err := tr.CreateStory(ctx, project.ID, in)
		if err != nil {
			return err
		}
		if i < storiesInPlans {
			if _, err := tr.MoveStory(ctx, st.ID, &sprints[i/2].ID); err != nil {
				return err
			}
		}
	}
	return nil
}
