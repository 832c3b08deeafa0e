package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert booking: %w", &pq.Error{Code: "23505", Constraint: "bookings_reference_key"})

	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "bookings_reference_key", constraint)

	_, ok = UniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("boom"))
	assert.False(t, ok)
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, IsCheckViolation(&pq.Error{Code: "23514"}))
	assert.False(t, IsCheckViolation(&pq.Error{Code: "23505"}))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp: connection refused")))
	assert.True(t, isRetryableError(&pq.Error{Code: "08006"}))
	assert.False(t, isRetryableError(&pq.Error{Code: "42P01"}))
	assert.False(t, isRetryableError(errors.New("syntax error")))
	assert.False(t, isRetryableError(nil))
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "gotrip", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=gotrip sslmode=disable", cfg.DSN())
}

func TestMigrationsAreOrdered(t *testing.T) {
	assert.NotEmpty(t, migrations)
	// users must precede every table referencing it
	assert.Contains(t, migrations[0], "CREATE TABLE IF NOT EXISTS users")
	for _, m := range migrations {
		assert.Contains(t, m, "IF NOT EXISTS")
	}
}
