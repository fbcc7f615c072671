/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "tls pair", modify: func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }},
		{name: "cert without key", modify: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: "--tls-key"},
		{name: "key without cert", modify: func(c *Config) { c.tlsKey = "key.pem" }, wantErr: "--tls-cert"},
		{name: "port zero", modify: func(c *Config) { c.port = 0 }, wantErr: "invalid port"},
		{name: "port too large", modify: func(c *Config) { c.port = 65536 }, wantErr: "invalid port"},
		{name: "retention", modify: func(c *Config) { c.roomRetention = 0 }, wantErr: "room retention"},
		{name: "sweep interval", modify: func(c *Config) { c.sweepInterval = -time.Second }, wantErr: "sweep interval"},
		{name: "rate limit", modify: func(c *Config) { c.rateLimit = 0 }, wantErr: "rate limit"},
		{name: "rate burst", modify: func(c *Config) { c.rateBurst = 0 }, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Scheme(t *testing.T) {
	cfg := testConfig()
	require.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	require.Equal(t, "https", cfg.scheme())
}

func TestNewCmd_Flags(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags([]string{"--port", "8080", "--rate-limit", "2.5", "--room-retention", "30m", "-v"}))

	require.Equal(t, 8080, cfg.port)
	require.Equal(t, 2.5, cfg.rateLimit)
	require.Equal(t, 30*time.Minute, cfg.roomRetention)
	require.Equal(t, time.Hour, cfg.sweepInterval)
	require.True(t, cfg.verbose)
}

func TestNewCmd_Env(t *testing.T) {
	t.Setenv("PLANNINGPOKER_PORT", "9090")
	t.Setenv("PLANNINGPOKER_SWEEP_INTERVAL", "5m")

	cfg := &Config{}
	newCmd(cfg)

	require.Equal(t, 9090, cfg.port)
	require.Equal(t, 5*time.Minute, cfg.sweepInterval)
}
