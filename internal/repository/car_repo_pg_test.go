package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewCarRepository(t *testing.T) {
	db := NewDB(&pgxpool.Pool{})
	repo := NewCarRepository(db)
	assert.NotNil(t, repo)
}

func TestNewMaintenanceRepository(t *testing.T) {
	db := NewDB(&pgxpool.Pool{})
	repo := NewMaintenanceRepository(db)
	assert.NotNil(t, repo)
}

func TestNewPaymentRepository(t *testing.T) {
	db := NewDB(&pgxpool.Pool{})
	repo := NewPaymentRepository(db)
	assert.NotNil(t, repo)
}
