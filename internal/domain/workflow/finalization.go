package workflow

// NewFinalizationMachine returns a machine in StateEditing wired with the
// order finalization lifecycle:
//
//	EDITING -> CREATING -> PERSISTING_STEPS -> NOTIFYING -> CLEANING_UP -> DONE
//	                   \-> FAILED
//
// Only order creation can fail the lifecycle. Later phases always move forward.
func NewFinalizationMachine(opts ...MachineOption) StateMachine {
	b := NewBuilder()

	b.Configure(StateEditing).
		Permit(TriggerSubmit, StateCreating)

	b.Configure(StateCreating).
		Permit(TriggerOrderCreated, StatePersistingSteps).
		Permit(TriggerCreateFailed, StateFailed)

	b.Configure(StatePersistingSteps).
		Permit(TriggerStepsSettled, StateNotifying)

	b.Configure(StateNotifying).
		Permit(TriggerNotificationsSent, StateCleaningUp)

	b.Configure(StateCleaningUp).
		Permit(TriggerCleanupFinished, StateDone)

	return b.Build(StateEditing, opts...)
}
