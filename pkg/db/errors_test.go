package db

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := errors.New(`ERROR: duplicate key value violates unique constraint "rfqs_number_key" (SQLSTATE 23505)`)

	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("raw postgres duplicate key message not recognized")
	}
	if !IsUniqueViolation(pgErr, "rfqs_number_key") {
		t.Fatal("constraint name lookup failed")
	}
	if IsUniqueViolation(pgErr, "orders_number_key") {
		t.Fatal("matched the wrong constraint name")
	}
	if !IsUniqueViolation(fmt.Errorf("create rfq: %w", gorm.ErrDuplicatedKey), "") {
		t.Fatal("wrapped gorm duplicate key error not recognized")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error treated as unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error treated as unique violation")
	}
}
