package tasks

// DefineTasks registers all available tasks
func DefineTasks(r *Registry, logInfo *LogInfoTaskDef, reminders *SendPaymentRemindersTaskDef) {
	r.Register(logInfo.TaskID(), logInfo.HandleExecution)
	if reminders != nil {
		r.Register(reminders.TaskID(), reminders.HandleExecution)
	}
}
