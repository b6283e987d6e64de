// internal/workers/content/validate-content/handler.go
package validatecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	cmerrors "narrative-workers/internal/common/errors"
	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/metrics"
	"narrative-workers/internal/narrative/slots"
)

const (
	TaskType = "validate-content"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

// Handler checks arbitrary section content against a component's slot
// schema. Validation findings are job output, never job failures; only an
// unknown component fails the job.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err))
		return
	}

	output, err := h.execute(&input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(started).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(input *Input) (*Output, error) {
	if input.ComponentID == "" {
		return nil, fmt.Errorf("%w: componentId is required", ErrInvalidInput)
	}

	required, err := slots.RequiredSlots(input.ComponentID)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", input.ComponentID, err)
	}
	optional, err := slots.OptionalSlots(input.ComponentID)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", input.ComponentID, err)
	}

	result, err := slots.ValidateMap(input.Content, input.ComponentID)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", input.ComponentID, err)
	}

	var missing []string
	for _, e := range result.Errors {
		if e.Code == "missing_required" {
			missing = append(missing, e.Slot)
		}
	}

	h.logger.Info("content validated", map[string]interface{}{
		"componentId": input.ComponentID,
		"valid":       result.Valid,
		"errorCount":  len(result.Errors),
	})

	return &Output{
		ComponentID:     input.ComponentID,
		Valid:           result.Valid,
		Errors:          result.Errors,
		MissingRequired: missing,
		RequiredSlots:   required,
		OptionalSlots:   optional,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// classifyError maps sentinel errors onto the shared taxonomy; only bad
// input and an unknown component reach here, and neither earns a retry.
func classifyError(err error) cmerrors.ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return cmerrors.ErrCodeInvalidInput
	case errors.Is(err, slots.ErrSlotSchemaNotFound):
		return cmerrors.ErrCodeSlotSchemaNotFound
	default:
		return cmerrors.ErrCodeUnknown
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := cmerrors.ConvertToBPMNError(cmerrors.New(classifyError(err), err))

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": bpmnErr.Code,
		"retries":   bpmnErr.Retries,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(bpmnErr.Message).
		Send(context.Background())
}

// Execute method for direct usage
func (h *Handler) Execute(input *Input) (*Output, error) {
	return h.execute(input)
}
