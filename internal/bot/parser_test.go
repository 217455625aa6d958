package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	cmd, args, ok := p.ParseCommand("/complete_payment abc def")
	require.True(t, ok)
	require.Equal(t, "complete_payment", cmd)
	require.Equal(t, []string{"abc", "def"}, args)

	cmd, args, ok = p.ParseCommand("  /START  ")
	require.True(t, ok)
	require.Equal(t, "start", cmd)
	require.Empty(t, args)
}

func TestParseCommandStripsBotMention(t *testing.T) {
	p := NewCommandParser()

	cmd, _, ok := p.ParseCommand("/help@photo_admin_bot")
	require.True(t, ok)
	require.Equal(t, "help", cmd)
}

func TestParseCommandNotACommand(t *testing.T) {
	p := NewCommandParser()

	for _, text := range []string{"привет", "", "  ", "/"} {
		_, _, ok := p.ParseCommand(text)
		require.False(t, ok, text)
	}
}
