package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sampahku/internal/models"
	"sampahku/internal/services"
	"sampahku/internal/tasks"
)

func scheduleTaskCmd() *cobra.Command {
	var (
		taskName   string
		argsStr    string
		dueStr     string
		taskType   string
		recurring  string
		maxAttempt int
	)

	cmd := &cobra.Command{
		Use:   "schedule-task",
		Short: "Queue a task for the worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var args map[string]interface{}
			if err := json.Unmarshal([]byte(argsStr), &args); err != nil {
				return fmt.Errorf("invalid JSON arguments: %w", err)
			}
			due, err := parseDue(dueStr)
			if err != nil {
				return err
			}

			var recurringPtr *string
			if recurring != "" {
				recurringPtr = &recurring
			}
			task, err := tasks.BuildScheduledTask(taskName, args, due, recurringPtr, models.ScheduledTaskType(taskType), maxAttempt)
			if err != nil {
				return err
			}
			return createTask(cmd, task)
		},
	}

	cmd.Flags().StringVar(&taskName, "task-name", "", "Name of the task (mandatory)")
	cmd.Flags().StringVar(&argsStr, "arguments", "{}", "JSON arguments for the task")
	cmd.Flags().StringVar(&dueStr, "due", "", "Due date (RFC3339 or '2006-01-02 15:04' local time, default now)")
	cmd.Flags().StringVar(&taskType, "tasktype", string(models.ScheduledTaskTypeOneTime), "Task type: onetime or recurring")
	cmd.Flags().StringVar(&recurring, "recurring", "", "Recurring interval rule (RRULE)")
	cmd.Flags().IntVar(&maxAttempt, "max-attempt", 3, "Max attempts")
	_ = cmd.MarkFlagRequired("task-name")
	return cmd
}

func scheduleRemindersCmd() *cobra.Command {
	var (
		period string
		dueStr string
		rule   string
		once   bool
	)

	cmd := &cobra.Command{
		Use:   "schedule-reminders",
		Short: "Queue the payment reminder task, recurring by default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			due, err := parseDue(dueStr)
			if err != nil {
				return err
			}
			if period != "" {
				if period, err = models.NormalizePeriod(period); err != nil {
					return err
				}
			}
			if once {
				rule = ""
			} else if rule == "" {
				rule = cfg.ReminderRule
			}

			def := &tasks.SendPaymentRemindersTaskDef{}
			task, err := def.CreateTask(tasks.SendPaymentRemindersArgs{Period: period}, due, rule)
			if err != nil {
				return err
			}
			return createTask(cmd, task)
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Fixed period such as 'Juni 2024' (default: the month of each run)")
	cmd.Flags().StringVar(&dueStr, "due", "", "First run (default now)")
	cmd.Flags().StringVar(&rule, "rule", "", "RRULE for the schedule (default REMINDER_RRULE)")
	cmd.Flags().BoolVar(&once, "once", false, "Run a single time instead of recurring")
	return cmd
}

func createTask(cmd *cobra.Command, task *models.ScheduledTask) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL, logger, false)
	if err != nil {
		return fmt.Errorf("failed to connect DB: %w", err)
	}
	if err := services.AutoMigrate(db, logger); err != nil {
		return err
	}
	if err := tasks.NewGormTaskStore(db).CreateTask(cmd.Context(), task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Successfully created task ID: %d\n", task.ID)
	fmt.Fprintf(out, "Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due.Format(time.RFC3339), task.TaskType)
	if task.RecurringInterval != nil {
		fmt.Fprintf(out, "Rule: %s\n", *task.RecurringInterval)
	}
	return nil
}

// parseDue accepts RFC3339 or "2006-01-02 15:04" in local time; empty means now
func parseDue(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if due, err := time.Parse(time.RFC3339, s); err == nil {
		return due, nil
	}
	due, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date format, use '2006-01-02 15:04' (local) or RFC3339: %w", err)
	}
	return due, nil
}
