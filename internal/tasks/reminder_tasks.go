package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"sampahku/internal/models"
	"sampahku/internal/repository"
	"sampahku/internal/services"
)

// SendPaymentRemindersArgs are the arguments of the send_payment_reminders task
type SendPaymentRemindersArgs struct {
	// Period defaults to the current month
	Period string `json:"period,omitempty"`
	// CitizenIDs limits a retry to citizens whose WhatsApp delivery failed
	CitizenIDs   []string `json:"citizen_ids,omitempty"`
	AttemptCount int      `json:"attempt_count,omitempty"`
}

// SendPaymentRemindersTaskDef issues payment reminders to every citizen who
// has not paid for the period and mails each RT head a digest of their area
type SendPaymentRemindersTaskDef struct {
	Payments      *services.PaymentService
	Notifications *services.NotificationService
	Accounts      *repository.AccountRepository
	Messenger     services.Messenger
	Mailer        services.Mailer
	Queue         TaskStore
	Logger        *zap.Logger
	Now           func() time.Time
	RetryDelay    time.Duration
}

// TaskID returns the unique identifier for this task
func (t *SendPaymentRemindersTaskDef) TaskID() string {
	return "send_payment_reminders"
}

// CreateTask builds a ScheduledTask record for this task. A non-empty rule makes it recurring.
func (t *SendPaymentRemindersTaskDef) CreateTask(args SendPaymentRemindersArgs, due time.Time, rule string) (*models.ScheduledTask, error) {
	if rule == "" {
		return BuildScheduledTask(t.TaskID(), args, due, nil, models.ScheduledTaskTypeOneTime, 3)
	}
	return BuildScheduledTask(t.TaskID(), args, due, &rule, models.ScheduledTaskTypeRecurring, 3)
}

// HandleExecution handles one reminder run
func (t *SendPaymentRemindersTaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	var args SendPaymentRemindersArgs
	if err := decodeArgs(task.Arguments, &args); err != nil {
		return nil, err
	}

	period := models.PeriodLabel(t.now())
	if args.Period != "" {
		label, err := models.NormalizePeriod(args.Period)
		if err != nil {
			return nil, fmt.Errorf("invalid period %q: %w", args.Period, err)
		}
		period = label
	}
	retry := len(args.CitizenIDs) > 0
	only := make(map[string]bool, len(args.CitizenIDs))
	for _, id := range args.CitizenIDs {
		only[id] = true
	}

	rows, err := t.Payments.StatusBoard(ctx, models.Area{}, period)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve status board: %w", err)
	}

	var (
		unpaid    []models.Citizen
		created   int
		sent      int
		skipped   int
		failures  []string
		failedIDs []string
	)
	for _, row := range rows {
		if row.Status == models.PaymentStatusPaid {
			continue
		}
		if retry && !only[row.Citizen.ID] {
			continue
		}
		unpaid = append(unpaid, row.Citizen)

		_, isNew, err := t.Notifications.IssueReminder(ctx, row.Citizen, period)
		if err != nil {
			return nil, fmt.Errorf("failed to issue reminder for %s: %w", row.Citizen.ID, err)
		}
		if isNew {
			created++
		}

		// an existing reminder means the citizen was already messaged
		if t.Messenger == nil || row.Citizen.Phone == "" || (!isNew && !retry) {
			skipped++
			continue
		}
		msg := services.ReminderMessage(row.Citizen, period)
		if err := t.Messenger.SendMessage(ctx, row.Citizen.Phone, msg); err != nil {
			t.Logger.Warn("Failed to send WhatsApp reminder", zap.String("citizen_id", row.Citizen.ID), zap.Error(err))
			failures = append(failures, fmt.Sprintf("%s: %v", row.Citizen.ID, err))
			failedIDs = append(failedIDs, row.Citizen.ID)
			continue
		}
		sent++
	}

	result := map[string]interface{}{
		"period":            period,
		"unpaid":            len(unpaid),
		"reminders_created": created,
		"whatsapp_sent":     sent,
		"whatsapp_skipped":  skipped,
		"whatsapp_failed":   len(failedIDs),
	}

	if !retry {
		result["digests_sent"] = t.sendDigests(ctx, period, unpaid)
	}

	if len(failedIDs) == 0 {
		return result, nil
	}
	result["errors"] = failures

	// Failures from here on are reported in the result, not as an error:
	// the runner would re-run the handler and message the delivered citizens again.
	maxRetries := task.MaxAttempt
	if args.AttemptCount >= maxRetries {
		t.Logger.Warn("Giving up on WhatsApp reminders",
			zap.Int("citizens", len(failedIDs)),
			zap.Int("attempt", args.AttemptCount))
		result["gave_up"] = true
		return result, nil
	}

	retryArgs := SendPaymentRemindersArgs{Period: period, CitizenIDs: failedIDs, AttemptCount: args.AttemptCount + 1}
	retryTask, err := BuildScheduledTask(t.TaskID(), retryArgs, t.now().Add(t.retryDelay()), nil, models.ScheduledTaskTypeOneTime, maxRetries)
	if err != nil {
		result["retry_error"] = err.Error()
		return result, nil
	}
	if t.Queue != nil {
		if err := t.Queue.CreateTask(ctx, retryTask); err != nil {
			t.Logger.Error("Failed to create retry task", zap.Error(err))
			result["retry_error"] = err.Error()
			return result, nil
		}
		result["retry_task_id"] = retryTask.ID
	}
	t.Logger.Info("Rescheduled failed WhatsApp reminders",
		zap.Int("citizens", len(failedIDs)),
		zap.Int("attempt", retryArgs.AttemptCount))
	return result, nil
}

// sendDigests mails every active RT head with an email the list of unpaid citizens in their area
func (t *SendPaymentRemindersTaskDef) sendDigests(ctx context.Context, period string, unpaid []models.Citizen) int {
	if t.Mailer == nil || t.Accounts == nil || len(unpaid) == 0 {
		return 0
	}

	byArea := map[models.Area][]models.Citizen{}
	for _, c := range unpaid {
		byArea[c.Area()] = append(byArea[c.Area()], c)
	}

	accounts, err := t.Accounts.ListRT(ctx)
	if err != nil {
		t.Logger.Warn("Failed to list RT accounts for digest", zap.Error(err))
		return 0
	}

	sent := 0
	for _, acc := range accounts {
		citizens := byArea[acc.Area()]
		if acc.IsDeactivated || acc.Email == "" || len(citizens) == 0 {
			continue
		}
		subject := fmt.Sprintf("Rekap iuran sampah %s RT %s/RW %s", period, acc.RT, acc.RW)
		if err := t.Mailer.SendEmail([]string{acc.Email}, subject, DigestBody(period, citizens)); err != nil {
			t.Logger.Warn("Failed to send RT digest", zap.String("account_id", acc.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// DigestBody lists unpaid citizens, sorted by name
func DigestBody(period string, citizens []models.Citizen) string {
	sorted := append([]models.Citizen(nil), citizens...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "Warga yang belum lunas iuran sampah periode %s:\n\n", period)
	for i, c := range sorted {
		fmt.Fprintf(&b, "%d. %s (kupon %s) - %s\n", i+1, c.Name, c.CouponNumber, c.Address)
	}
	fmt.Fprintf(&b, "\nTotal: %d warga\n", len(sorted))
	return b.String()
}

func (t *SendPaymentRemindersTaskDef) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *SendPaymentRemindersTaskDef) retryDelay() time.Duration {
	if t.RetryDelay > 0 {
		return t.RetryDelay
	}
	return 5 * time.Minute
}
