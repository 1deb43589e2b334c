package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeCouponRejected, status: http.StatusUnprocessableEntity, publicMsg: "coupon cannot be applied", detailsOK: true},
		{code: CodeInsufficientStock, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsMatchesWrappedCode(t *testing.T) {
	inner := New(CodeInsufficientStock, "not enough").WithDetails(map[string]any{"requested": 3})
	outer := fmt.Errorf("checkout: %w", inner)
	if !Is(outer, CodeInsufficientStock) {
		t.Fatalf("expected wrapped code to match")
	}
	if Is(outer, CodeConflict) {
		t.Fatalf("unexpected match on other code")
	}
	if Is(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestDumpIncludesChainAndRetryable(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("db down"), "load coupon")
	d := Dump(err)
	if d.Code != CodeDependency || !d.Retryable {
		t.Fatalf("unexpected dump %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "coupons_code_key", TableName: "coupons"}
	d := Dump(Wrap(CodeConflict, fmt.Errorf("insert coupon: %w", pgErr), "coupon code already exists"))
	if d.Postgres == nil || d.Postgres.Constraint != "coupons_code_key" {
		t.Fatalf("expected postgres constraint in dump, got %+v", d.Postgres)
	}
	fields := d.Fields()
	if fields["pg_code"] != "23505" || fields["error_code"] != CodeConflict {
		t.Fatalf("unexpected fields %v", fields)
	}

	pqDump := Dump(&pq.Error{Code: "40001"})
	if pqDump.Postgres == nil || pqDump.Postgres.Code != "40001" {
		t.Fatalf("expected lib/pq details, got %+v", pqDump.Postgres)
	}
	if _, ok := Dump(stdErrors.New("plain")).Fields()["pg_code"]; ok {
		t.Fatal("plain errors should not carry pg fields")
	}
}

func TestPublicMessageAndDetails(t *testing.T) {
	rejected := New(CodeCouponRejected, "coupon has expired").WithDetails(map[string]string{"reason": "EXPIRED"})
	if rejected.PublicMessage() != "coupon has expired" || rejected.PublicDetails() == nil {
		t.Fatalf("coupon rejections expose message and details")
	}
	internal := Wrap(CodeInternal, stdErrors.New("nil pointer"), "sql: secret").WithDetails("x")
	if internal.PublicMessage() != "internal server error" {
		t.Fatalf("internal errors must hide their message, got %q", internal.PublicMessage())
	}
	if internal.PublicDetails() != nil {
		t.Fatal("internal errors must hide details")
	}
	unauth := New(CodeUnauthorized, "").WithDetails("x")
	if unauth.PublicMessage() != "authentication required" || unauth.PublicDetails() != nil {
		t.Fatalf("unexpected unauthorized rendering")
	}
}
