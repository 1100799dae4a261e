package projects

import (
	"context"
	"math"
	"time"

	"github.com/taskforge/taskforge/internal/app/domain/task"
)

// Metrics is a read-side progress summary for one project.
type Metrics struct {
	TotalTasks         int
	TasksByStatus      map[task.Status]int
	OverdueTasks       int
	CompletedThisWeek  int
	MemberCount        int
	ProgressPercentage int
	DaysRemaining      int
	IsOverdue          bool
}

// ComputeMetrics derives the project's progress summary from its current
// tasks and membership. Progress is the share of done tasks rounded to the
// nearest whole percent, zero when there are no tasks. The completion window
// starts Monday 00:00 UTC of the current week. DaysRemaining counts whole
// days to the due date rounded up and goes negative once the date passed; a
// project with no due date reports zero and is never overdue. Completed and
// cancelled projects are not overdue regardless of date.
func (s *Service) ComputeMetrics(ctx context.Context, projectID string) (Metrics, error) {
	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return Metrics{}, err
	}
	tasks, err := s.tasks.ListTasks(ctx, projectID)
	if err != nil {
		return Metrics{}, err
	}
	members, err := s.members.List(ctx, projectID)
	if err != nil {
		return Metrics{}, err
	}

	now := s.now()
	weekStart := startOfWeek(now)

	m := Metrics{
		TotalTasks:    len(tasks),
		TasksByStatus: make(map[task.Status]int),
		MemberCount:   len(members),
	}
	done := 0
	for _, t := range tasks {
		m.TasksByStatus[t.Status]++
		if t.Status == task.StatusDone {
			done++
			if t.CompletedAt != nil && !t.CompletedAt.Before(weekStart) {
				m.CompletedThisWeek++
			}
			continue
		}
		if t.DueDate != nil && t.DueDate.Before(now) {
			m.OverdueTasks++
		}
	}
	if m.TotalTasks > 0 {
		m.ProgressPercentage = int(math.Round(float64(done) / float64(m.TotalTasks) * 100))
	}

	if p.DueDate != nil {
		m.DaysRemaining = int(math.Ceil(p.DueDate.Sub(now).Hours() / 24))
		m.IsOverdue = p.DueDate.Before(now) && !p.Status.Closed()
	}
	return m, nil
}

// startOfWeek returns Monday 00:00 UTC of the week containing t.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
