package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xRadioAc7iv/go-carstore/internal/utils"
	"github.com/0xRadioAc7iv/go-carstore/pkg/carstore"
)

func run(t *testing.T, store *carstore.Service, line string) (string, error) {
	t.Helper()
	cmd, args, err := utils.SplitStringIntoCommandAndArguments(line)
	require.NoError(t, err)
	return execute(store, cmd, args)
}

func TestExecuteSession(t *testing.T) {
	store, err := carstore.Open(t.TempDir())
	require.NoError(t, err)

	steps := []string{
		`add-model 1 "Model 3" Tesla`,
		`add-car VIN1 1 39999.00 2024-01-15`,
		`add-car VIN2 1 41999`,
		`sell S1 VIN1 38500 2024-02-01`,
	}
	for _, line := range steps {
		_, err := run(t, store, line)
		require.NoError(t, err, line)
	}

	out, err := run(t, store, "info VIN1")
	require.NoError(t, err)
	assert.Contains(t, out, `"car_model_name": "Model 3"`)
	assert.Contains(t, out, `"status": "sold"`)

	out, err = run(t, store, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "VIN2")
	assert.NotContains(t, out, "VIN1")

	out, err = run(t, store, "TOP")
	require.NoError(t, err)
	assert.Contains(t, out, `"sales_number": 1`)

	_, err = run(t, store, "revert S1")
	require.NoError(t, err)

	out, err = run(t, store, "list sold")
	require.NoError(t, err)
	assert.Equal(t, "nil", out)

	_, err = run(t, store, "rename-vin VIN2 VIN3")
	require.NoError(t, err)

	out, err = run(t, store, "info VIN2")
	require.NoError(t, err)
	assert.Equal(t, "nil", out)

	out, err = run(t, store, "backup "+filepath.Join(t.TempDir(), "store.tar.zst"))
	require.NoError(t, err)
	assert.Equal(t, "OK", out)
}

func TestExecuteErrors(t *testing.T) {
	store, err := carstore.Open(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name string
		line string
	}{
		{"unknown command", "fly VIN1"},
		{"missing args", "add-model 1"},
		{"bad model id", "add-model one Name Brand"},
		{"bad price", "add-car VIN1 1 cheap"},
		{"bad date", "sell S1 VIN1 100 yesterday"},
		{"unknown sale", "revert S404"},
		{"bad status", "list reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, store, tt.line)
			assert.Error(t, err)
		})
	}

	out, err := run(t, store, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "ADD-MODEL")
}
