package app

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalfriend/lineup-server/internal/config"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "ff-lineup-api", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "version")
}

func TestServeCmd_RequiresConfig(t *testing.T) {
	flag := serveCmd.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
}

func TestNewClassifier(t *testing.T) {
	assert.NotNil(t, newClassifier(&config.Config{}))
	assert.NotNil(t, newClassifier(&config.Config{
		MusicBrainz: &config.MusicBrainzConfig{
			Endpoint:        "https://mb.example.com/ws/2",
			RequestInterval: "100ms",
		},
	}))
}
