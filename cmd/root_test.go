package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	viper.Set("invite-link", "https://discord.gg/abc")
	viper.Set("commands.prefix", "?")
	t.Cleanup(func() {
		viper.Set("invite-link", "")
		viper.Set("commands.prefix", "!")
	})

	config, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, "csv", config.Contacts.Backend)
	assert.Equal(t, "ollama", config.AI.Provider)
	assert.Equal(t, "mistral", config.AI.Ollama.ScoringModel)
	assert.Equal(t, ":5001", config.Serve.Addr)
	assert.Equal(t, 587, config.Mail.Port)

	assert.Equal(t, 60*time.Second, config.Intake.Timeout)
	assert.Equal(t, "alumni-requests", config.Intake.VolunteerChannel)
	assert.Equal(t, 10*time.Second, config.Onboarding.FollowUpDelay)
	assert.Equal(t, []string{"general", "college-community"}, config.Onboarding.WelcomeChannels)

	assert.Equal(t, "https://discord.gg/abc", config.Commands.InviteLink)
	assert.Equal(t, "?", config.Onboarding.CommandPrefix)
}
