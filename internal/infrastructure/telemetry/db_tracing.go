package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// RegisterGormTracing adds a span per statement to db. Query variables are
// left out of the spans.
func RegisterGormTracing(db *gorm.DB, dbSystem string, provider trace.TracerProvider) error {
	return db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
		otelgorm.WithTracerProvider(provider),
	))
}
