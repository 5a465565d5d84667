package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/appointment-availability-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "appointments", SSLMode: "require"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=appointments sslmode=require connect_timeout=5", dsn)
}
