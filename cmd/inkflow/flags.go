package main

// Flag names for Viper binding
const (
	// Global flags
	FlagConfig  = "config"
	FlagEnvFile = "env-file"
	FlagDBType  = "db-type"
	FlagDBPath  = "db"
	FlagDBURL   = "db-url"
	FlagUser    = "user"
	FlagLogFile = "log-file"
	FlagVerbose = "verbose"

	// Card flags
	FlagImage = "image"
	FlagChar  = "char"
	FlagNotes = "notes"
	FlagTags  = "tags"

	// Review flags
	FlagMode = "mode"
	FlagCard = "card"

	// Box flags
	FlagName     = "name"
	FlagInterval = "interval"

	// Remind flags
	FlagOnce = "once"

	// History flags
	FlagSession = "session"
	FlagLimit   = "limit"
)

// flagKeys maps global flags to configuration keys
var flagKeys = map[string]string{
	FlagConfig:  "config",
	FlagEnvFile: "env_file",
	FlagDBType:  "database_type",
	FlagDBPath:  "database_path",
	FlagDBURL:   "database_url",
	FlagUser:    "user_id",
	FlagLogFile: "log_file",
}
