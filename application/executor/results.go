package executor

import (
	"time"

	"chartfusion-agent/application/actions"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// ExecutionResult is the outcome of one action. Results are transient
// report-back values: they are returned to the caller and never persisted.
type ExecutionResult struct {
	// Index is the action's position in the submitted batch
	Index int `json:"index"`

	// Kind is the action that produced this result
	Kind actions.Kind `json:"kind"`

	// Success reports whether the action completed
	Success bool `json:"success"`

	// Payload carries kind-specific output such as created element IDs
	Payload map[string]interface{} `json:"payload,omitempty"`

	// ErrorMessage is the technical failure detail, empty on success
	ErrorMessage string `json:"errorMessage,omitempty"`

	// HumanMessage is safe to surface to the end user verbatim
	HumanMessage string `json:"humanMessage"`

	// Duration is how long the action took to run
	Duration time.Duration `json:"duration"`
}

// BatchSummary aggregates a finished batch for logging and events
type BatchSummary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Summarize counts successes and failures across a result set
func Summarize(batchID string, results []ExecutionResult, duration time.Duration) BatchSummary {
	summary := BatchSummary{BatchID: batchID, Total: len(results), Duration: duration}
	for _, result := range results {
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

func successResult(index int, kind actions.Kind, payload map[string]interface{}, human string, duration time.Duration) ExecutionResult {
	return ExecutionResult{
		Index:        index,
		Kind:         kind,
		Success:      true,
		Payload:      payload,
		HumanMessage: human,
		Duration:     duration,
	}
}

func failureResult(index int, kind actions.Kind, err error, duration time.Duration) ExecutionResult {
	return ExecutionResult{
		Index:        index,
		Kind:         kind,
		Success:      false,
		ErrorMessage: err.Error(),
		HumanMessage: humanMessageFor(err),
		Duration:     duration,
	}
}

// humanMessageFor translates an error into wording an end user can act on.
// Technical detail stays in ErrorMessage.
func humanMessageFor(err error) string {
	switch pkgerrors.TypeOf(err) {
	case pkgerrors.ErrorTypeQuota:
		return "I've reached today's AI usage limit. Chart layout and organization still work, and AI features return tomorrow."
	case pkgerrors.ErrorTypeThrottled:
		return "The AI service is busy right now. I'm slowing down; please try again in a moment."
	case pkgerrors.ErrorTypeRemote:
		return "An upstream service had a problem completing this. Please try again."
	case pkgerrors.ErrorTypeValidation:
		return "That request had invalid details: " + err.Error()
	case pkgerrors.ErrorTypeNotFound:
		return "I couldn't find that element on the canvas. It may have been deleted."
	case pkgerrors.ErrorTypeConfiguration:
		return "The agent is misconfigured for this action. Nothing was changed."
	default:
		return "Something went wrong on my side while running this. Nothing else in your request was affected."
	}
}
