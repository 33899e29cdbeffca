package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskminder/internal/config"
	"taskminder/internal/model"
)

func TestInitSQLiteMigrates(t *testing.T) {
	conn, err := Init(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Ping(conn))

	for _, table := range []interface{}{
		&model.Person{},
		&model.Task{},
		&model.TaskCompletion{},
		&model.ProcessedEmail{},
		&model.IngestLog{},
	} {
		assert.True(t, conn.Migrator().HasTable(table))
	}
	assert.True(t, conn.Migrator().HasIndex(&model.TaskCompletion{}, "idx_task_completion_person_task"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
