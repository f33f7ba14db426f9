package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"sampahku/internal/models"
)

// BuildScheduledTask is a helper to build ScheduledTask records generically
func BuildScheduledTask(taskName string, args interface{}, due time.Time, recurringInterval *string, taskType models.ScheduledTaskType, maxAttempt int) (*models.ScheduledTask, error) {
	mapArgs, err := toMap(args)
	if err != nil {
		return nil, err
	}

	return &models.ScheduledTask{
		TaskName:          taskName,
		Arguments:         mapArgs,
		Due:               due,
		RecurringInterval: recurringInterval,
		Status:            models.ScheduledTaskStatusActive,
		TaskType:          taskType,
		MaxAttempt:        maxAttempt,
	}, nil
}

func toMap(args interface{}) (map[string]interface{}, error) {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var mapArgs map[string]interface{}
	if err := json.Unmarshal(argsBytes, &mapArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into map: %w", err)
	}
	if mapArgs == nil {
		mapArgs = map[string]interface{}{}
	}
	return mapArgs, nil
}

// decodeArgs parses task arguments into a typed struct
func decodeArgs(args map[string]interface{}, dst interface{}) error {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}
	if err := json.Unmarshal(argsBytes, dst); err != nil {
		return fmt.Errorf("failed to unmarshal args: %w", err)
	}
	return nil
}
