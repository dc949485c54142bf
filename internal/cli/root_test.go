package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erkkaervice/philosophers/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "philo", cmd.Name())
	assert.Contains(t, cmd.Long, "philosophers")
}

func TestVersionFlag(t *testing.T) {
	out, _, err := executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "philo version "+ir.Version+"\n", out)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"trace", "runs", "check", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestNumericArgsSelectRoot(t *testing.T) {
	cmd := NewRootCommand()
	found, args, err := cmd.Find([]string{"5", "800", "200", "200"})
	require.NoError(t, err)
	assert.Same(t, cmd, found)
	assert.Equal(t, []string{"5", "800", "200", "200"}, args)
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestSimulationFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"db", "timeout", "poll", "no-stagger"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag --%s", name)
	}
	assert.Equal(t, "250µs", cmd.Flags().Lookup("poll").DefValue)
}

func TestSubcommandDatabaseFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"trace", "runs"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)

		dbFlag := sub.Flags().Lookup("db")
		require.NotNil(t, dbFlag, "%s --db", name)
		assert.Equal(t, []string{"true"}, dbFlag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"1", "200", "100", "100", "--format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSubcommandFlagErrorHasNoUsageLine(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"runs", "--db", "x.db", "--bogus"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.NotContains(t, err.Error(), UsageLine)
}
