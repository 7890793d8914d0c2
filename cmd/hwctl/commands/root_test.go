package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "hwctl", cmd.Use)
	assert.Equal(t, "Manage HelloWorld resources", cmd.Short)
	assert.True(t, cmd.SilenceUsage)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{
		"init",
		"apply",
		"status",
		"inject",
		"version",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), len(expectedSubcommands))
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	kubeconfig := cmd.PersistentFlags().Lookup("kubeconfig")
	require.NotNil(t, kubeconfig)
	assert.Equal(t, "", kubeconfig.DefValue)

	namespace := cmd.PersistentFlags().Lookup("namespace")
	require.NotNil(t, namespace)
	assert.Equal(t, "n", namespace.Shorthand)
	assert.Equal(t, "default", namespace.DefValue)
}
