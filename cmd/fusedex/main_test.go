package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/weecici/fusedex/search"
)

func findStringFlag(flags []cli.Flag, name string) *cli.StringFlag {
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	return nil
}

func findIntFlag(flags []cli.Flag, name string) *cli.IntFlag {
	for _, flag := range flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	return nil
}

func TestCommonFlags(t *testing.T) {
	flags := commonFlags()

	t.Run("db is required", func(t *testing.T) {
		dbFlag := findStringFlag(flags, "db")
		require.NotNil(t, dbFlag)
		assert.True(t, dbFlag.Required)
		assert.Contains(t, dbFlag.Aliases, "d")
	})

	t.Run("collection has a default", func(t *testing.T) {
		collectionFlag := findStringFlag(flags, "collection")
		require.NotNil(t, collectionFlag)
		assert.Equal(t, "default", collectionFlag.Value)
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		hostFlag := findStringFlag(flags, "embedding-host")
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("api-token reads the environment", func(t *testing.T) {
		tokenFlag := findStringFlag(flags, "api-token")
		require.NotNil(t, tokenFlag)
		assert.Contains(t, tokenFlag.EnvVars, "FUSEDEX_API_TOKEN")
	})
}

func TestCommandFlagDefaults(t *testing.T) {
	t.Run("ingest batch-size defaults to 100", func(t *testing.T) {
		flags := append(commonFlags(), &cli.IntFlag{Name: "batch-size", Value: 100})
		batchFlag := findIntFlag(flags, "batch-size")
		require.NotNil(t, batchFlag)
		assert.Equal(t, 100, batchFlag.Value)
	})

	t.Run("search top-k matches the searcher default", func(t *testing.T) {
		assert.Equal(t, 5, search.DefaultTopK)
		assert.Equal(t, 2.0, search.DefaultOverfetchMultiplier)
	})
}

func TestMissingRequiredFlags(t *testing.T) {
	app := &cli.App{
		Name: "fusedex",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags:  commonFlags(),
			},
		},
	}

	t.Run("missing db flag fails", func(t *testing.T) {
		err := app.Run([]string{"fusedex", "search", "lantern"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}
		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				require.NoError(t, newApp().Run([]string{"test", "--log-level", tc.input}))
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				require.NoError(t, newApp().Run([]string{"test", "--log-level", tc}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		require.NoError(t, newApp().Run([]string{"test", "-l", "debug"}))
	})
}
