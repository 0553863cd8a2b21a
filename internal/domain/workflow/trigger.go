package workflow

// Trigger is an event that moves finalization to its next phase
type Trigger string

const (
	TriggerSubmit            Trigger = "SUBMIT"
	TriggerOrderCreated      Trigger = "ORDER_CREATED"
	TriggerCreateFailed      Trigger = "CREATE_FAILED"
	TriggerStepsSettled      Trigger = "STEPS_SETTLED"
	TriggerNotificationsSent Trigger = "NOTIFICATIONS_SENT"
	TriggerCleanupFinished   Trigger = "CLEANUP_FINISHED"
)

func (t Trigger) String() string {
	return string(t)
}
