package lambda

import (
	"context"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/zoobzio/capitan"
)

// Signals for handler events.
var (
	SignalRequestComplete = capitan.NewSignal("lambda.request.complete", "Compile request answered")
	SignalCompileComplete = capitan.NewSignal("lambda.compile.complete", "Compiler returned")
)

// Keys for typed event data.
var (
	KeyResponseType = capitan.NewStringKey("response_type")
	KeyStatus       = capitan.NewIntKey("status")
	KeyBoard        = capitan.NewStringKey("board")
	KeyRevision     = capitan.NewStringKey("revision")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
)

var compileDuration = metrics.GetOrCreateSummary(`param_lambda_compile_duration_seconds`)

// emitRequestComplete emits an event and counts the response.
func emitRequestComplete(ctx context.Context, resp Response, revision string, duration time.Duration) {
	fields := []capitan.Field{
		KeyResponseType.Field(resp.ResponseType()),
		KeyRevision.Field(revision),
		KeyDuration.Field(duration),
	}

	if e, ok := resp.(Error); ok {
		metrics.GetOrCreateCounter(fmt.Sprintf(`param_lambda_responses_total{type=%q,status="%d"}`, TypeError, e.Status)).Inc()
		fields = append(fields, KeyStatus.Field(e.Status))
		capitan.Error(ctx, SignalRequestComplete, fields...)
		return
	}

	metrics.GetOrCreateCounter(fmt.Sprintf(`param_lambda_responses_total{type=%q}`, resp.ResponseType())).Inc()
	capitan.Emit(ctx, SignalRequestComplete, fields...)
}

// emitCompileComplete emits an event and records the compile duration.
func emitCompileComplete(ctx context.Context, board string, start time.Time, err error) {
	compileDuration.UpdateDuration(start)

	fields := []capitan.Field{
		KeyBoard.Field(board),
		KeyDuration.Field(time.Since(start)),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCompileComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalCompileComplete, fields...)
	}
}
