package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:45678", c.ListenAddr())
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 0, c.SSHPort)
	assert.Equal(t, MaxClients, c.Clients)
	assert.Equal(t, 60*time.Second, c.Wait)
	assert.Zero(t, c.ReadTimeout)
	assert.Equal(t, 1, c.StartLevel)
	assert.Equal(t, zerolog.InfoLevel, c.LogLevel)
	assert.False(t, c.Observe)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SNARL_PORT", "5000")
	t.Setenv("SNARL_CLIENTS", "2")
	t.Setenv("SNARL_WAIT", "5s")
	t.Setenv("SNARL_OBSERVE", "true")
	t.Setenv("SNARL_HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 5000, c.Port)
	assert.Equal(t, 2, c.Clients)
	assert.Equal(t, 5*time.Second, c.Wait)
	assert.True(t, c.Observe)
	assert.Empty(t, c.HTTPAddr, "an empty SNARL_HTTP_ADDR disables HTTP")
	assert.Equal(t, zerolog.DebugLevel, c.LogLevel)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SNARL_PORT", "5000")
	c, err := Load([]string{"-port", "6000", "-clients", "1", "-seed", "42", "-log-level", "warn", "-anchor"})
	require.NoError(t, err)
	assert.Equal(t, 6000, c.Port)
	assert.Equal(t, 1, c.Clients)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, zerolog.WarnLevel, c.LogLevel)
	assert.True(t, c.UseAnchor)
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"too many clients", nil, []string{"-clients", "5"}, "clients must be between 1 and 4"},
		{"no clients", nil, []string{"-clients", "0"}, "clients must be between 1 and 4"},
		{"level zero", nil, []string{"-start", "0"}, "start level"},
		{"negative timeout", nil, []string{"-read-timeout", "-1s"}, "read timeout"},
		{"bad env int", map[string]string{"SNARL_PORT": "lots"}, nil, "SNARL_PORT"},
		{"bad env duration", map[string]string{"SNARL_WAIT": "soon"}, nil, "SNARL_WAIT"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, nil, "LOG_LEVEL"},
		{"unknown flag", nil, []string{"-nope"}, "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(tc.args)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("SNARL_NAME", "ann")
	c, err := LoadClient([]string{"-kind", "ghost", "-port", "7000"})
	require.NoError(t, err)
	assert.Equal(t, "ann", c.Name)
	assert.Equal(t, "ghost", c.Kind)
	assert.Equal(t, "127.0.0.1:7000", c.Addr())
	assert.Empty(t, c.URL)

	_, err = LoadClient([]string{"-kind", "dragon"})
	assert.ErrorContains(t, err, "unknown kind")
}
