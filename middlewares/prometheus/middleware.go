package prometheus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coderi421/orm"
)

type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      m.Name,
		Subsystem: m.Subsystem,
		Namespace: m.Namespace,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,  // 99 线
			0.999: 0.0001, // 999 线
		},
	}, []string{"type", "table"})

	prometheus.MustRegister(vector)

	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			// 开始时间
			startTime := time.Now()
			// defer 算结束时间
			defer func() {
				duration := time.Since(startTime).Milliseconds()
				tbl := "unknown"
				if qc.Model != nil {
					tbl = qc.Model.TableName
				}
				vector.WithLabelValues(qc.Type, tbl).Observe(float64(duration))
			}()
			return next(ctx, qc)
		}
	}
}
