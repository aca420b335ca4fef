package scheduler

import (
	"encoding/json"
	"errors"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskLeadImport = "leads.import"

type LeadImportPayload struct {
	ManagerID string             `json:"managerId"`
	ActorID   string             `json:"actorId"`
	Rows      []domain.RawRecord `json:"rows"`
}

func NewLeadImportTask(payload LeadImportPayload) (*asynq.Task, error) {
	if _, err := uuid.Parse(payload.ManagerID); err != nil {
		return nil, errors.New("lead import task: invalid manager id")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadImport, data), nil
}

func ParseLeadImportPayload(task *asynq.Task) (LeadImportPayload, error) {
	var payload LeadImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadImportPayload{}, err
	}
	return payload, nil
}
