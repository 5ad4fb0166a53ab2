package config

import (
	"os"
	"strconv"
)

// readDBConfigFromEnv reads one DBConfig from environment variables named
// "<prefix>_TYPE", "<prefix>_HOST", etc., e.g. prefix "SOURCE_DB" or
// "TARGET_DB".
func readDBConfigFromEnv(prefix string) DBConfig {
	port, _ := strconv.Atoi(os.Getenv(prefix + "_PORT"))
	return DBConfig{
		Type:        os.Getenv(prefix + "_TYPE"),
		Host:        os.Getenv(prefix + "_HOST"),
		Port:        port,
		Database:    os.Getenv(prefix + "_DATABASE"),
		Username:    os.Getenv(prefix + "_USERNAME"),
		Password:    os.Getenv(prefix + "_PASSWORD"),
		ServiceName: os.Getenv(prefix + "_SERVICE_NAME"),
	}
}
