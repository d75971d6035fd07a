package db

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const spanKey = "otel:span"

// RegisterOpenTelemetryPlugin wraps every gorm operation in a span taken from
// the global tracer provider.
func RegisterOpenTelemetryPlugin(d *gorm.DB) error {
	tracer := otel.Tracer("github.com/memodb-io/roombook/internal/infra/db")

	before := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx, span := tracer.Start(tx.Statement.Context, "gorm."+op,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(attribute.String("db.system", "postgresql")),
			)
			tx.Statement.Context = ctx
			tx.InstanceSet(spanKey, span)
		}
	}
	after := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(spanKey)
		if !ok {
			return
		}
		span, ok := v.(trace.Span)
		if !ok {
			return
		}
		defer span.End()
		span.SetAttributes(
			attribute.String("db.sql.table", tx.Statement.Table),
			attribute.String("db.statement", tx.Statement.SQL.String()),
			attribute.Int64("db.rows_affected", tx.Statement.RowsAffected),
		)
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			span.RecordError(tx.Error)
			span.SetStatus(codes.Error, tx.Error.Error())
		}
	}

	cb := d.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("otel:before_create", before("create")),
		cb.Create().After("gorm:create").Register("otel:after_create", after),
		cb.Query().Before("gorm:query").Register("otel:before_query", before("query")),
		cb.Query().After("gorm:query").Register("otel:after_query", after),
		cb.Update().Before("gorm:update").Register("otel:before_update", before("update")),
		cb.Update().After("gorm:update").Register("otel:after_update", after),
		cb.Delete().Before("gorm:delete").Register("otel:before_delete", before("delete")),
		cb.Delete().After("gorm:delete").Register("otel:after_delete", after),
		cb.Row().Before("gorm:row").Register("otel:before_row", before("row")),
		cb.Row().After("gorm:row").Register("otel:after_row", after),
		cb.Raw().Before("gorm:raw").Register("otel:before_raw", before("raw")),
		cb.Raw().After("gorm:raw").Register("otel:after_raw", after),
	)
}
