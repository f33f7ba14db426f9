package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sampahku/internal/models"
)

// Runner polls the queue and executes due tasks through the registry
type Runner struct {
	Store    TaskStore
	Registry *Registry
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewRunner(store TaskStore, registry *Registry, logger *zap.Logger) *Runner {
	return &Runner{Store: store, Registry: registry, Logger: logger, Now: time.Now}
}

// Run processes due tasks immediately and then on every tick until ctx is cancelled
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce executes every task that is due now and returns how many ran
func (r *Runner) RunOnce(ctx context.Context) int {
	r.Logger.Debug("Checking for pending tasks")

	pending, err := r.Store.DueTasks(ctx, r.Now())
	if err != nil {
		r.Logger.Error("Error fetching pending tasks", zap.Error(err))
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	r.Logger.Info("Found pending tasks", zap.Int("count", len(pending)))

	ran := 0
	for _, task := range pending {
		if ctx.Err() != nil {
			break
		}
		r.execute(ctx, task)
		ran++
	}
	return ran
}

// execute runs a task up to MaxAttempt times, recording each attempt in the history
func (r *Runner) execute(ctx context.Context, task models.ScheduledTask) {
	log := r.Logger.With(zap.Uint("task_id", task.ID), zap.String("task", task.TaskName))
	log.Info("Processing task")

	if task.Arguments == nil {
		task.Arguments = make(map[string]interface{})
	}

	handler, found := r.Registry.Get(task.TaskName)
	if !found {
		log.Warn("Task handler not found, marking as failure")
		now := r.Now()
		r.update(ctx, task, map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})
		r.record(ctx, &models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   1,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		})
		return
	}

	maxAttempt := task.MaxAttempt
	if maxAttempt < 1 {
		maxAttempt = 1
	}

	var (
		startTime time.Time
		err       error
	)
	for attempt := 1; attempt <= maxAttempt; attempt++ {
		startTime = r.Now()
		var result map[string]interface{}
		result, err = handler(ctx, task)
		runtimeMs := int(r.Now().Sub(startTime).Milliseconds())

		status := "success"
		resultData := result
		if err != nil {
			status = "failure"
			resultData = map[string]interface{}{"error": err.Error()}
			log.Warn("Task attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		r.record(ctx, &models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           startTime,
			Runtime:         runtimeMs,
			Status:          status,
			AttemptNumber:   attempt,
			Arguments:       task.Arguments,
			Result:          resultData,
		})
		if err == nil || ctx.Err() != nil {
			break
		}
	}

	updates := map[string]interface{}{"last_run": &startTime}
	switch task.TaskType {
	case models.ScheduledTaskTypeRecurring:
		// a failed occurrence does not stop the schedule
		nextDue := task.NextDueAfter(r.Now())
		if nextDue.After(task.Due) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = nextDue
		} else if err != nil {
			updates["status"] = models.ScheduledTaskStatusFailure
		} else {
			updates["status"] = models.ScheduledTaskStatusDone
		}
	default:
		if err != nil {
			updates["status"] = models.ScheduledTaskStatusFailure
		} else {
			updates["status"] = models.ScheduledTaskStatusDone
		}
	}

	if err != nil {
		log.Error("Task failed", zap.Error(err))
	} else {
		log.Info("Task completed successfully")
	}
	r.update(ctx, task, updates)
}

func (r *Runner) update(ctx context.Context, task models.ScheduledTask, updates map[string]interface{}) {
	if err := r.Store.UpdateTask(ctx, task, updates); err != nil {
		r.Logger.Error("Failed to update task", zap.Uint("task_id", task.ID), zap.Error(err))
	}
}

func (r *Runner) record(ctx context.Context, h *models.ScheduledTaskHistory) {
	if err := r.Store.RecordHistory(ctx, h); err != nil {
		r.Logger.Error("Failed to record task history", zap.Uint("task_id", h.ScheduledTaskID), zap.Error(err))
	}
}
