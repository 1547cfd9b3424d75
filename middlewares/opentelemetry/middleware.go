package opentelemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coderi421/orm"
)

const instrumentationName = "github.com/coderi421/orm/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

// 可以由用户传递进来
// func NewMiddlewareBuilder(tracer trace.Tracer) *MiddlewareBuilder {
// 	return &MiddlewareBuilder{
// 		Tracer: tracer,
// 	}
// }

func (m *MiddlewareBuilder) Build() orm.Middleware {
	if m.Tracer == nil {
		// 创建 tracer 实例
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			tbl := "unknown"
			if qc.Model != nil {
				tbl = qc.Model.TableName
			}

			spanCtx, span := m.Tracer.Start(ctx, qc.Type+"-"+tbl)
			defer span.End()

			span.SetAttributes(attribute.String("component", "orm"))
			span.SetAttributes(attribute.String("table", tbl))

			res := next(spanCtx, qc)
			if res.Err != nil {
				span.RecordError(res.Err)
			}
			return res
		}
	}
}
