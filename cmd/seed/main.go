// Command seed replaces the database contents with demo users, goals and a group.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Rahnken/ReframeMe-backend/internal/config"
	"github.com/Rahnken/ReframeMe-backend/internal/cycle"
	"github.com/Rahnken/ReframeMe-backend/internal/database"
	"github.com/Rahnken/ReframeMe-backend/internal/logger"
	"github.com/Rahnken/ReframeMe-backend/internal/models"
	"github.com/Rahnken/ReframeMe-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type demoUser struct {
	username string
	email    string
	password string
}

type demoGoal struct {
	title      string
	desc       string
	private    bool
	smart      [5]string
	weeks      int
	target     int
	achieved   int
	noteFormat string
}

var users = []demoUser{
	{"EDonn1", "eric@eric.com", "P4$$word!?"},
	{"JHiggz", "jon@jon.com", "P@$$w0rd2"},
}

var goals = []demoGoal{
	{
		title:   "Lose 12 Pounds",
		desc:    "Lose an average of 1 pound each week",
		private: true,
		smart: [5]string{
			"Lose 12 pounds of body weight through diet and exercise",
			"Track weight loss weekly, aiming for 1 pound per week",
			"Based on recommended healthy weight loss of 1-2 pounds per week",
			"Improve overall health and fitness to feel more energetic",
			"Achieve goal within 12 weeks, by end of quarter",
		},
		weeks:      12,
		target:     1,
		achieved:   3,
		noteFormat: "Week %d: Made good progress towards weight loss goal",
	},
	{
		title: "Do 15 Pushups each day",
		desc:  "Generate Muscle by doing 15 pushups every day",
		smart: [5]string{
			"Complete 15 pushups every single day to build upper body strength",
			"Track daily completion of 15 pushups, totaling 105 per week",
			"Starting with current fitness level, 15 pushups is achievable",
			"Build muscle strength and improve overall fitness for daily activities",
			"Maintain consistency for 12 weeks to see muscle development",
		},
		weeks:      12,
		target:     105,
		achieved:   5,
		noteFormat: "Week %d: Completed daily pushup routine successfully",
	},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "")

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("starting to seed database")
	if err := seed(db, cfg.BcryptCost, time.Now().UTC()); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seeding complete")
}

func seed(db *gorm.DB, bcryptCost int, now time.Time) error {
	if err := database.Clear(db); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	created := make([]*models.User, 0, len(users))
	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.username, err)
		}
		user := &models.User{Username: u.username, Email: u.email, HashedPassword: string(hashed)}
		if err := userRepo.Create(user); err != nil {
			return fmt.Errorf("create user %s: %w", u.username, err)
		}
		created = append(created, user)
	}
	eric, jon := created[0], created[1]

	group := &models.Group{Name: "Accountability Crew", Description: "Weekly check-ins"}
	if err := groupRepo.Create(group, eric.ID, now); err != nil {
		return err
	}
	if err := groupRepo.ApplyMembership(group.ID, repository.MembershipChange{
		Add: []models.GroupUser{{UserID: jon.ID, Role: models.RoleMember, JoinedAt: now}},
	}); err != nil {
		return err
	}

	start := now.AddDate(0, 0, -7*5)
	for _, g := range goals {
		goal := newDemoGoal(eric.ID, g, start)

		var shareTo []string
		if !g.private {
			shareTo = []string{group.ID}
		}
		if err := goalRepo.Create(goal, shareTo); err != nil {
			return fmt.Errorf("create goal %q: %w", g.title, err)
		}
		slog.Info("seeded goal", "title", goal.Title, "weeks", len(goal.GoalWeeks), "shared", len(shareTo) > 0)
	}
	return nil
}

func newDemoGoal(userID string, g demoGoal, start time.Time) *models.Goal {
	overrides := make(map[int]cycle.Override, g.achieved)
	for week := 1; week <= g.achieved; week++ {
		note := fmt.Sprintf(g.noteFormat, week)
		overrides[week] = cycle.Override{Achieved: true, Notes: &note}
	}
	schedule := cycle.ApplyOverrides(cycle.WeeklySchedule(g.weeks, g.target), overrides)

	weeks := make([]models.GoalProgress, len(schedule))
	for i, w := range schedule {
		weeks[i] = models.GoalProgress{
			WeekNumber:   w.WeekNumber,
			TargetAmount: w.TargetAmount,
			Achieved:     w.Achieved,
			Notes:        w.Notes,
		}
		if w.Achieved {
			weeks[i].CompletedAmount = w.TargetAmount
		}
	}

	return &models.Goal{
		UserID:        userID,
		Title:         g.title,
		Description:   g.desc,
		IsPrivate:     g.private,
		Specific:      &g.smart[0],
		Measurable:    &g.smart[1],
		Attainable:    &g.smart[2],
		Relevant:      &g.smart[3],
		TimeBound:     &g.smart[4],
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 7*g.weeks),
		CycleDuration: g.weeks,
		GoalWeeks:     weeks,
	}
}
