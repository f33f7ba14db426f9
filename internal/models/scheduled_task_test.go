package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduledTaskNextDueAfter(t *testing.T) {
	due := time.Date(2024, time.June, 20, 9, 0, 0, 0, time.UTC)
	monthly := "FREQ=MONTHLY;BYMONTHDAY=20;BYHOUR=9;BYMINUTE=0"
	broken := "FREQ=SOMETIMES"

	tests := []struct {
		name string
		task ScheduledTask
		now  time.Time
		want time.Time
	}{
		{
			name: "recurring advances past now",
			task: ScheduledTask{Due: due, TaskType: ScheduledTaskTypeRecurring, RecurringInterval: &monthly},
			now:  due.Add(5 * time.Minute),
			want: time.Date(2024, time.July, 20, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "recurring skips missed occurrences",
			task: ScheduledTask{Due: due, TaskType: ScheduledTaskTypeRecurring, RecurringInterval: &monthly},
			now:  time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.September, 20, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "one-time keeps due",
			task: ScheduledTask{Due: due, TaskType: ScheduledTaskTypeOneTime, RecurringInterval: &monthly},
			now:  due.Add(time.Hour),
			want: due,
		},
		{
			name: "unparsable rule keeps due",
			task: ScheduledTask{Due: due, TaskType: ScheduledTaskTypeRecurring, RecurringInterval: &broken},
			now:  due.Add(time.Hour),
			want: due,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.task.NextDueAfter(tt.now)), "got %s", tt.task.NextDueAfter(tt.now))
		})
	}
}
