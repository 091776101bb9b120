package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/workbasehq/workbase/internal/models"
	"github.com/workbasehq/workbase/pkg/logger"
	"github.com/workbasehq/workbase/pkg/metrics"
)

// Evaluator is the unit of work for one (automation, record) pair: gate on
// the active flag, evaluate the condition groups, run the actions, and record
// exactly one log entry per call.
type Evaluator struct {
	logs     *LogService
	executor *ActionExecutor
	log      *zap.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(logs *LogService, executor *ActionExecutor) (*Evaluator, error) {
	if logs == nil {
		return nil, errors.New("evaluator: log service is required")
	}
	if executor == nil {
		return nil, errors.New("evaluator: action executor is required")
	}
	return &Evaluator{
		logs:     logs,
		executor: executor,
		log:      logger.WithModule("evaluator"),
	}, nil
}

// Evaluate runs one automation against one record. It returns true only when
// the conditions passed and the actions ran; callers use the result for batch
// counting, not control flow.
func (e *Evaluator) Evaluate(ctx context.Context, automation *models.Automation, record *models.Record) (result bool) {
	ctx = ensureContext(ctx)
	recordID := record.ID

	defer func() {
		if r := recover(); r != nil {
			result = false
			message := fmt.Sprintf("Automation execution failed: %v", r)
			e.writeLog(ctx, e.logs.Failed, automation.ID, recordID, message, map[string]any{"panic": fmt.Sprintf("%v", r)})
			metrics.AutomationRuns.WithLabelValues(string(models.RunFailed)).Inc()
			e.log.Error("automation execution failed",
				zap.String("automation_id", automation.ID),
				zap.String("record_id", recordID),
				zap.Any("panic", r))
		}
	}()

	if !automation.IsActive {
		e.writeLog(ctx, e.logs.Skipped, automation.ID, recordID, "Automation is not active", nil)
		metrics.AutomationRuns.WithLabelValues(string(models.RunSkipped)).Inc()
		return false
	}

	if !e.evaluateConditions(automation, record) {
		e.writeLog(ctx, e.logs.Skipped, automation.ID, recordID, "Conditions not met", nil)
		metrics.AutomationRuns.WithLabelValues(string(models.RunSkipped)).Inc()
		return false
	}

	e.executor.ExecuteAll(ctx, automation, record)

	e.writeLog(ctx, e.logs.Success, automation.ID, recordID, "Automation executed successfully", nil)
	metrics.AutomationRuns.WithLabelValues(string(models.RunSuccess)).Inc()
	return true
}

// evaluateConditions applies the group semantics: conditions sharing a group
// label are OR-combined and short-circuit on the first pass; distinct groups
// are AND-combined and short-circuit on the first failing group. An empty
// condition set is vacuously true.
func (e *Evaluator) evaluateConditions(automation *models.Automation, record *models.Record) bool {
	if len(automation.Conditions) == 0 {
		return true
	}

	groups := make(map[string][]*models.AutomationCondition)
	var order []string
	for i := range automation.Conditions {
		condition := &automation.Conditions[i]
		label := condition.GroupLabel()
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], condition)
	}

	for _, label := range order {
		passed := false
		for _, condition := range groups[label] {
			if condition.Evaluate(record.FieldValue(condition.Field)) {
				passed = true
				break
			}
		}
		if !passed {
			return false
		}
	}
	return true
}

type logWriteFunc func(ctx context.Context, automationID string, recordID *string, message string, context map[string]any) error

func (e *Evaluator) writeLog(ctx context.Context, write logWriteFunc, automationID, recordID, message string, logCtx map[string]any) {
	var recordRef *string
	if recordID != "" {
		recordRef = &recordID
	}
	if err := write(ctx, automationID, recordRef, message, logCtx); err != nil {
		e.log.Error("automation log write failed",
			zap.String("automation_id", automationID),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}
