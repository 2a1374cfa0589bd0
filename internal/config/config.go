package config

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var envBindings = map[string]string{
	"server.port": "PORT",

	"database.host":     "DATABASE_HOST",
	"database.port":     "DATABASE_PORT",
	"database.user":     "DATABASE_USER",
	"database.password": "DATABASE_PASSWORD",
	"database.name":     "DATABASE_NAME",
	"database.ssl_mode": "DATABASE_SSL_MODE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"mongo.uri":      "MONGO_URI",
	"mongo.database": "MONGO_DB",

	"jwt.secret_key": "JWT_SECRET_KEY",

	"log.level":  "LOG_LEVEL",
	"log.format": "LOG_FORMAT",
}

// Load reads an optional .env file and binds the environment into viper.
// Values already present in the process environment win over the file.
func Load(envFile string) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debugf("No %s file loaded, using environment only: %v", envFile, err)
	}

	viper.AutomaticEnv()
	for key, env := range envBindings {
		viper.BindEnv(key, env)
	}

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("mongo.database", "smarttoll")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// ConfigureLogging applies log.level and log.format to the standard logrus logger.
func ConfigureLogging() {
	level, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.Warnf("Unknown log level %q, defaulting to info", viper.GetString("log.level"))
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if viper.GetString("log.format") == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
