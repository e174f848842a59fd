package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_sales_appmax_order_id", TableName: "sales", Message: "duplicate key"}
	err := Wrap(CodeConflict, fmt.Errorf("insert sale: %w", pgErr), "sale already exists")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PG.Code != "23505" || d.PG.Constraint != "ux_sales_appmax_order_id" || d.PG.Table != "sales" {
		t.Fatalf("unexpected pg fields %+v", d.PG)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected chain to include wrapped causes, got %v", d.Chain)
	}
}

func TestDumpExtractsLibPQFields(t *testing.T) {
	err := fmt.Errorf("goose: %w", &pq.Error{Code: "42P01", Table: "webhooks_logs", Message: "relation does not exist"})

	d := Dump(err)
	if d.PG.Code != "42P01" || d.PG.Table != "webhooks_logs" {
		t.Fatalf("unexpected pg fields %+v", d.PG)
	}
}

func TestLogFieldsOmitEmptyPostgresDetails(t *testing.T) {
	fields := Dump(New(CodeValidation, "bad input")).LogFields()
	if _, ok := fields["pg_code"]; ok {
		t.Fatalf("pg_code should be omitted for non-database errors: %v", fields)
	}
	if fields["error_code"] != CodeValidation {
		t.Fatalf("unexpected error_code %v", fields["error_code"])
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil error should dump empty")
	}
}
