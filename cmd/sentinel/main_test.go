package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func loggerContext(level string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", level, "")
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO", "Debug"} {
			assert.NoError(t, setupLogger(loggerContext(level)), level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := setupLogger(loggerContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "short", firstLine("short", 120))
	assert.Equal(t, "first", firstLine("first\nsecond", 120))
	assert.Equal(t, "abcde...", firstLine("abcdefgh", 5))
}

func TestIngestCommandRequiresFiles(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	err := ingestCommand(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one file")
}
