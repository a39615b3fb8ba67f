// internal/workers/subscription/verify-subscription/handler.go
package verifysubscription

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"subscription-workers/internal/audit"
	"subscription-workers/internal/common/errors"
	"subscription-workers/internal/common/logger"
	"subscription-workers/internal/common/metrics"
	"subscription-workers/internal/models"
	"subscription-workers/internal/verification"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "verify-subscription"
)

const resultCachePrefix = "verify:result:"

// VerifierSource resolves the verification strategy serving a franchise.
// Satisfied by routing.Selector.
type VerifierSource interface {
	VerifierFor(ctx context.Context, franchiseID string) (verification.Verifier, models.SubscriptionBackend, error)
}

type Handler struct {
	config       *Config
	selector     VerifierSource
	redis        *redis.Client
	audit        audit.Recorder
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, selector VerifierSource, redisClient *redis.Client, recorder audit.Recorder, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Handler{
		config:       config,
		selector:     selector,
		redis:        redisClient,
		audit:        recorder,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	if err := h.validateVariables([]byte(job.Variables)); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.FranchiseID == "" {
		return nil, errors.NewInvalidInputError("franchiseId is required")
	}

	req, err := buildRequest(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	cacheKey := h.cacheKey(input)
	if output, ok := h.cachedOutput(ctx, cacheKey); ok {
		metrics.VerificationCacheHits.WithLabelValues("result").Inc()
		h.record(ctx, input, output, time.Since(start))
		return output, nil
	}

	verifier, backend, err := h.selector.VerifierFor(ctx, input.FranchiseID)
	if err != nil {
		return nil, err
	}

	result, err := verifier.Verify(ctx, req)
	if err != nil {
		return nil, err
	}

	output := &Output{
		VerificationResult:  result,
		VerificationStatus:  result.Status(),
		SubscriptionBackend: string(backend),
	}

	// Rejections can clear on the next attempt, so only settled verdicts
	// are worth a cache slot.
	if result.Status() != verification.StatusError {
		h.storeOutput(ctx, cacheKey, output)
	}

	h.record(ctx, input, output, time.Since(start))
	return output, nil
}

// buildRequest converts the loosely typed job input into a verification
// request. An empty subscriptionId stays a nil pointer so the verifiers
// treat it as absent rather than as the zero UUID.
func buildRequest(input *Input) (verification.Request, error) {
	req := verification.Request{Metadata: input.Metadata}

	if input.SubscriptionID != "" {
		id, err := uuid.Parse(input.SubscriptionID)
		if err != nil {
			return verification.Request{}, errors.NewInvalidSubscriptionIDError(input.SubscriptionID)
		}
		req.SubscriptionID = &id
	}

	if input.SubscriptionExternalID != "" {
		externalID := input.SubscriptionExternalID
		req.SubscriptionExternalID = &externalID
	}

	return req, nil
}

// validateVariables checks the raw job variables against the registry input
// schema when one was configured.
func (h *Handler) validateVariables(raw []byte) error {
	if len(h.config.InputSchema) == 0 {
		return nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(h.config.InputSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("schema validation: %v", err))
	}

	if !result.Valid() {
		descs := make([]string, len(result.Errors()))
		for i, d := range result.Errors() {
			descs[i] = d.String()
		}
		return errors.NewInvalidInputError(strings.Join(descs, "; "))
	}

	return nil
}

func (h *Handler) cacheKey(input *Input) string {
	// Metadata is deliberately not part of the key. The verdict follows the
	// subscription, not the request context, and the TTL is short.
	return resultCachePrefix + input.FranchiseID + ":" + input.SubscriptionID + ":" + input.SubscriptionExternalID
}

func (h *Handler) cachedOutput(ctx context.Context, key string) (*Output, bool) {
	if h.redis == nil {
		return nil, false
	}

	val, err := h.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var entry cachedResult
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, false
	}

	return &Output{
		VerificationResult:  entry.Result,
		VerificationStatus:  entry.Result.Status(),
		SubscriptionBackend: entry.Backend,
		CacheHit:            true,
	}, true
}

func (h *Handler) storeOutput(ctx context.Context, key string, output *Output) {
	if h.redis == nil {
		return
	}

	data, err := json.Marshal(cachedResult{
		Result:  output.VerificationResult,
		Backend: output.SubscriptionBackend,
	})
	if err != nil {
		return
	}

	if err := h.redis.Set(ctx, key, data, h.config.ResultCacheTTL).Err(); err != nil {
		h.logger.Warn("result cache store failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (h *Handler) record(ctx context.Context, input *Input, output *Output, elapsed time.Duration) {
	metrics.VerificationResults.WithLabelValues(output.SubscriptionBackend, output.VerificationStatus).Inc()
	h.audit.Record(ctx, audit.Event{
		FranchiseID: input.FranchiseID,
		UserID:      input.UserID,
		Backend:     output.SubscriptionBackend,
		Status:      output.VerificationStatus,
		Message:     output.VerificationResult.Message(),
		CacheHit:    output.CacheHit,
		DurationMs:  elapsed.Milliseconds(),
	})
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":  job.Key,
		"status":  output.VerificationStatus,
		"backend": output.SubscriptionBackend,
	})
}

// Execute runs one verification outside the Camunda job lifecycle.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
