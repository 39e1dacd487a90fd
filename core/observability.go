package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// instrumentation is shared by the services created from one Service so all
// operations log and measure under the same metric prefix.
type instrumentation struct {
	prefix          string
	logger          Logger
	metricsRecorder MetricsRecorder
}

func newInstrumentation(serviceName string, logger Logger, recorder MetricsRecorder) *instrumentation {
	prefix := normalizeOperation(serviceName)
	if prefix == "" {
		prefix = "tink"
	}
	if recorder == nil {
		recorder = NopMetricsRecorder{}
	}
	return &instrumentation{prefix: prefix, logger: logger, metricsRecorder: recorder}
}

func (i *instrumentation) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if i == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
		if IsCancelled(err) {
			status = "cancelled"
		}
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
		enrichErrorFields(contextFields, err)
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"provider_id", "status_class", "error_text_code"} {
		if value := strings.TrimSpace(fmt.Sprint(contextFields[key])); value != "" && value != "<nil>" {
			tags[key] = value
		}
	}

	i.recordCounter(ctx, i.prefix+"."+operation+".total", 1, tags)
	i.recordHistogram(ctx, i.prefix+"."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)

	if err != nil && status != "cancelled" {
		i.logError(ctx, operation+" failed", contextFields)
		return
	}
	i.logInfo(ctx, operation+" "+statusVerb(status), contextFields)
}

func statusVerb(status string) string {
	if status == "cancelled" {
		return "cancelled"
	}
	return "succeeded"
}

func enrichErrorFields(fields map[string]any, err error) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr == nil {
		return
	}
	fields["error_category"] = richErr.Category.String()
	if richErr.TextCode != "" {
		fields["error_text_code"] = richErr.TextCode
	}
	if richErr.Code != 0 {
		fields["error_code"] = richErr.Code
	}
	fields["error_severity"] = richErr.Severity.String()
	if class, ok := richErr.Metadata["status_class"].(string); ok && class != "" {
		fields["status_class"] = class
	}
}

func (i *instrumentation) logInfo(ctx context.Context, message string, fields map[string]any) {
	i.logWithLevel(ctx, "info", message, fields)
}

func (i *instrumentation) logError(ctx context.Context, message string, fields map[string]any) {
	i.logWithLevel(ctx, "error", message, fields)
}

func (i *instrumentation) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if i == nil || i.logger == nil {
		return
	}
	logger := i.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (i *instrumentation) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if i == nil || i.metricsRecorder == nil {
		return
	}
	i.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (i *instrumentation) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if i == nil || i.metricsRecorder == nil {
		return
	}
	i.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
