// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	os.Clearenv()
	for k, v := range vars {
		require.NoError(t, os.Setenv(k, v))
	}
	t.Cleanup(os.Clearenv)
}

func baseEnv() map[string]string {
	return map[string]string{
		"API_ID":       "12345",
		"API_HASH":     "abcdef0123456789",
		"BOT_TOKEN":    "123456:real-token",
		"DATABASE_URI": "mongodb://localhost:27017",
		"REDIS_URI":    "redis://localhost:6379",
	}
}

func TestLoadWithKoanfAppliesDefaults(t *testing.T) {
	setupEnv(t, baseEnv())

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Quota.DailyRetrievalLimit)
	assert.Equal(t, 30*24*time.Hour, cfg.Quota.PremiumDuration)
	assert.Equal(t, 5*time.Minute, cfg.Delivery.AutoDeleteAfter)
	assert.Equal(t, 12, cfg.Delivery.MaxButtonsPerPage)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "botcore", cfg.Store.Database)
}

func TestLoadWithKoanfEnvOverridesDefaults(t *testing.T) {
	env := baseEnv()
	env["NON_PREMIUM_DAILY_LIMIT"] = "25"
	env["PREMIUM_DURATION_DAYS"] = "90"
	env["MESSAGE_DELETE_SECONDS"] = "60"
	env["LOG_LEVEL"] = "debug"
	setupEnv(t, env)

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Quota.DailyRetrievalLimit)
	assert.Equal(t, 90*24*time.Hour, cfg.Quota.PremiumDuration)
	assert.Equal(t, 60*time.Second, cfg.Delivery.AutoDeleteAfter)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithKoanfParsesAdminsAndChannelsAsSlices(t *testing.T) {
	env := baseEnv()
	env["OWNER_ID"] = "100"
	env["ADMINS"] = "100,200,300"
	env["CHANNELS"] = "-1001,-1002"
	setupEnv(t, env)

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{100, 200, 300}, cfg.Owners.Admins)
	assert.ElementsMatch(t, []int64{-1001, -1002}, cfg.Channels.Monitored)
}

func TestLoadWithKoanfOwnerIsImplicitlyAdmin(t *testing.T) {
	env := baseEnv()
	env["OWNER_ID"] = "999"
	env["ADMINS"] = "111"
	setupEnv(t, env)

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)

	assert.Contains(t, cfg.Owners.Admins, int64(999))
	assert.Contains(t, cfg.Owners.Admins, int64(111))
	assert.Contains(t, cfg.Owners.AuthUsers, int64(999))
}

func TestLoadWithKoanfRequestChannelFallsBackToLogChannel(t *testing.T) {
	env := baseEnv()
	env["LOG_CHANNEL"] = "-500"
	setupEnv(t, env)

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)

	assert.Equal(t, int64(-500), cfg.Channels.RequestChannel)
}

func TestLoadWithKoanfFailsValidationWithoutCredentials(t *testing.T) {
	setupEnv(t, map[string]string{})

	_, err := LoadWithKoanf()
	assert.Error(t, err)
}

func TestEnvTransformFuncSkipsUnmappedKeys(t *testing.T) {
	assert.Empty(t, envTransformFunc("PATH"))
	assert.Empty(t, envTransformFunc("HOME"))
	assert.Equal(t, "platform.bot_token", envTransformFunc("BOT_TOKEN"))
}
