package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TaskProcessDueFollowUps runs one scan of due follow-ups.
const TaskProcessDueFollowUps = "followups.process_due"

// ProcessDuePayload carries the instant the tick was scheduled for.
type ProcessDuePayload struct {
	ScheduledAt time.Time `json:"scheduledAt"`
}

// NewProcessDueTask encodes payload as a follow-up sweep task.
func NewProcessDueTask(payload ProcessDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProcessDueFollowUps, data), nil
}

// ParseProcessDuePayload decodes a sweep task. An empty payload is valid.
func ParseProcessDuePayload(task *asynq.Task) (ProcessDuePayload, error) {
	var payload ProcessDuePayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessDuePayload{}, err
	}
	return payload, nil
}
