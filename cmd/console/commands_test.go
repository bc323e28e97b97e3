package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
)

func TestNewAppCommands(t *testing.T) {
	app := newApp()

	var names []string
	for _, command := range app.Commands {
		names = append(names, command.Name)
	}

	assert.Equal(t, []string{"migrate", "init", "create-admin", "prune-resets", "env"}, names)
}

func TestEnvCommand(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out

	require.NoError(t, app.Run([]string{"console", "env"}))

	assert.Contains(t, out.String(), "DB_DRIVER")
	assert.Contains(t, out.String(), "TOKEN_SECRET")
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"console", "create-admin", "--email", "ops@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestPruneResetsRejectsUnknownKind(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"console", "prune-resets", "--kind", "vendor"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown account kind "vendor"`)
}

func TestRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run([]string{"console", "--config", "missing.yaml", "--log-level", "chatty", "migrate"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"Admin", " customer "})
	require.NoError(t, err)
	assert.Equal(t, []models.AccountKind{models.KindAdmin, models.KindCustomer}, kinds)

	kinds, err = parseKinds(nil)
	require.NoError(t, err)
	assert.Empty(t, kinds)
}

func TestInitCommandHasForceFlag(t *testing.T) {
	command := initCommand()

	require.Len(t, command.Flags, 1)
	assert.Equal(t, "force", command.Flags[0].Names()[0])
}
