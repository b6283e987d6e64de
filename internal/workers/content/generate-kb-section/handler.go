// internal/workers/content/generate-kb-section/handler.go
package generatekbsection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	cmerrors "narrative-workers/internal/common/errors"
	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/metrics"
	"narrative-workers/internal/models"
	"narrative-workers/internal/narrative/populate"
	"narrative-workers/internal/narrative/slots"
	"narrative-workers/internal/stores"
)

const (
	TaskType = "generate-kb-section"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

// Handler populates one section purely from knowledge entities, with no
// synthesis dependency. Used for instant previews and as the deterministic
// baseline next to the synthesis-backed generate-content worker.
type Handler struct {
	config *Config
	facts  stores.FactStore
	logger logger.Logger
}

func NewHandler(config *Config, facts stores.FactStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		facts:  facts,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(started).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.WorkspaceID == "" {
		return nil, fmt.Errorf("%w: workspaceId is required", ErrInvalidInput)
	}
	if !models.IsValidNarrativeRole(input.NarrativeRole) {
		return nil, fmt.Errorf("%w: unknown narrative role %q", ErrInvalidInput, input.NarrativeRole)
	}
	if _, err := slots.Get(input.ComponentID); err != nil {
		return nil, fmt.Errorf("component %q: %w", input.ComponentID, err)
	}

	opts := stores.FetchOptions{
		MinConfidence: h.config.MinConfidence,
		Limit:         h.config.MaxEntities,
	}
	if input.EntityFilter != nil {
		for _, t := range input.EntityFilter.Types {
			opts.Types = append(opts.Types, models.EntityType(t))
		}
		if input.EntityFilter.MinConfidence > 0 {
			opts.MinConfidence = input.EntityFilter.MinConfidence
		}
		if input.EntityFilter.Limit > 0 {
			opts.Limit = input.EntityFilter.Limit
		}
	}

	fetched, err := h.facts.FetchEntities(ctx, input.WorkspaceID, opts)
	if err != nil {
		return nil, err
	}

	role := models.NarrativeRole(input.NarrativeRole)
	result := populate.PopulateKBGrounded(role, fetched)

	validation, err := slots.ValidateContent(result.Content, input.ComponentID)
	if err != nil {
		return nil, err
	}

	grounded := strconv.FormatBool(!result.Traceability.IsGenericFallback)
	metrics.SectionsGenerated.WithLabelValues("kb-section", grounded).Inc()
	if result.UsedFallback {
		metrics.SynthesisFallbacks.WithLabelValues("kb-section").Inc()
	}

	h.logger.Info("knowledge-grounded section populated", map[string]interface{}{
		"workspaceId": input.WorkspaceID,
		"role":        input.NarrativeRole,
		"componentId": input.ComponentID,
		"entityCount": len(fetched),
		"confidence":  result.Traceability.Confidence,
		"generic":     result.Traceability.IsGenericFallback,
	})

	return &Output{
		ComponentID:  input.ComponentID,
		Stage:        input.NarrativeRole,
		Content:      result.Content,
		Traceability: result.Traceability,
		FieldSources: result.FieldSources,
		Validation:   validation,
		UsedFallback: result.UsedFallback,
		EntityCount:  len(fetched),
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

// classifyError maps sentinel errors onto the shared taxonomy; the taxonomy
// decides the retry count per code.
func classifyError(err error) cmerrors.ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return cmerrors.ErrCodeInvalidInput
	case errors.Is(err, slots.ErrSlotSchemaNotFound):
		return cmerrors.ErrCodeSlotSchemaNotFound
	case errors.Is(err, stores.ErrKnowledgeTimeout):
		return cmerrors.ErrCodeKnowledgeTimeout
	case errors.Is(err, stores.ErrKnowledgeFetchFailed):
		return cmerrors.ErrCodeKnowledgeFetchFailed
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
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
