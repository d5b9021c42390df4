// Package bridgeconfig reads the bridge's BRIDGE_* environment variables
// (spec.md §6's configuration table, plus the diagnostics/gops variables
// added in SPEC_FULL.md). There is no config file: the teacher's
// cmd/cc-backend main.go layers flags over a JSON file, but the bridge has
// nowhere to put a flag (it is a plugin, not a standalone process), so the
// environment is the only surface, loaded through joho/godotenv for an
// optional .env file in the process's current working directory.
package bridgeconfig

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aeroflybridge/bridge/internal/bridgeerr"
	"github.com/aeroflybridge/bridge/pkg/blog"
)

// Config is the fully resolved, immutable configuration for one bridge
// instance.
type Config struct {
	WSEnable    bool
	WSPort      int
	BroadcastMS int
	TCPDataPort int
	TCPCmdPort  int
	LogLevel    string

	DiagEnable bool
	DiagPort   int
	GopsEnable bool
	Dev        bool
}

const (
	defaultWSPort      = 8765
	defaultBroadcastMS = 20
	minBroadcastMS     = 5
	defaultTCPDataPort = 12345
	defaultTCPCmdPort  = 12346
	defaultDiagPort    = 8766
)

// Load reads BRIDGE_* environment variables, first trying to layer in an
// optional .env file (absent is not an error, matching godotenv's
// conventional use in CLI tools). A malformed value for a given variable
// is a ConfigError that is logged and ignored in favor of its default --
// spec.md §7 scopes ConfigError to "unusable environment value", not a
// fatal condition.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		blog.Warnf("bridgeconfig: .env load: %v", err)
	}

	c := Config{
		WSEnable:    envBool("BRIDGE_WS_ENABLE", true),
		WSPort:      envInt("BRIDGE_WS_PORT", defaultWSPort),
		BroadcastMS: envInt("BRIDGE_BROADCAST_MS", defaultBroadcastMS),
		TCPDataPort: envInt("BRIDGE_TCP_DATA_PORT", defaultTCPDataPort),
		TCPCmdPort:  envInt("BRIDGE_TCP_CMD_PORT", defaultTCPCmdPort),
		LogLevel:    envString("BRIDGE_LOG_LEVEL", ""),

		DiagEnable: envBool("BRIDGE_DIAG_ENABLE", true),
		DiagPort:   envInt("BRIDGE_DIAG_PORT", defaultDiagPort),
		GopsEnable: envBool("BRIDGE_GOPS_ENABLE", false),
		Dev:        envBool("BRIDGE_DEV", false),
	}

	if c.BroadcastMS < minBroadcastMS {
		blog.Warnf("bridgeconfig: BRIDGE_BROADCAST_MS clamped to minimum %dms", minBroadcastMS)
		c.BroadcastMS = minBroadcastMS
	}

	if c.LogLevel == "" {
		if c.Dev {
			c.LogLevel = "debug"
		} else {
			c.LogLevel = "info"
		}
	}

	return c
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logConfigError(key, v, err)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logConfigError(key, v, err)
		return def
	}
	return n
}

func logConfigError(key, value string, err error) {
	e := bridgeerr.New(bridgeerr.ConfigError, "bridgeconfig.Load", err)
	blog.Warnf("%v: %s=%q invalid, falling back to default", e, key, value)
}
