package param

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for param events.
var (
	SignalRegistryBuilt = capitan.NewSignal("param.registry.built", "Serializer registry constructed")
	SignalPlanBuilt     = capitan.NewSignal("param.plan.built", "Bind plan constructed for a type")
	SignalBindStart     = capitan.NewSignal("param.bind.start", "Bind operation beginning")
	SignalBindComplete  = capitan.NewSignal("param.bind.complete", "Bind operation finished")
	SignalFieldParsed   = capitan.NewSignal("param.field.parsed", "Field parsed")
	SignalFieldFailed   = capitan.NewSignal("param.field.failed", "Field failed to parse")
)

// Keys for typed event data.
var (
	KeyTypeName        = capitan.NewStringKey("type_name")
	KeyField           = capitan.NewStringKey("field")
	KeyErrorKind       = capitan.NewStringKey("error_kind")
	KeyFieldCount      = capitan.NewIntKey("field_count")
	KeySerializerCount = capitan.NewIntKey("serializer_count")
	KeyDuration        = capitan.NewDurationKey("duration")
	KeyError           = capitan.NewErrorKey("error")
)

// emitRegistryBuilt emits an event when a registry is constructed.
func emitRegistryBuilt(ctx context.Context, count int) {
	capitan.Emit(ctx, SignalRegistryBuilt,
		KeySerializerCount.Field(count),
	)
}

// emitPlanBuilt emits an event when a bind plan is built.
func emitPlanBuilt(ctx context.Context, typeName string, count int) {
	capitan.Emit(ctx, SignalPlanBuilt,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(count),
	)
}

// emitBindStart emits an event when bind begins.
func emitBindStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalBindStart,
		KeyTypeName.Field(typeName),
	)
}

// emitBindComplete emits an event when bind finishes.
func emitBindComplete(ctx context.Context, typeName string, count int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(count),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalBindComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalBindComplete, fields...)
	}
}

// emitFieldParsed emits an event when a field parses.
func emitFieldParsed(ctx context.Context, typeName, field string) {
	capitan.Emit(ctx, SignalFieldParsed,
		KeyTypeName.Field(typeName),
		KeyField.Field(field),
	)
}

// emitFieldFailed emits an event when a field fails to parse.
func emitFieldFailed(ctx context.Context, typeName string, pe *ParseError) {
	capitan.Error(ctx, SignalFieldFailed,
		KeyTypeName.Field(typeName),
		KeyField.Field(pe.Field),
		KeyErrorKind.Field(pe.KindName()),
		KeyError.Field(pe),
	)
}
