package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port        string
	DSN         string
	JWTSecret   string
	JWTTTLHrs   int
	CORSOrigins string
	Env         string
}

func Load() *Config {
	_ = godotenv.Load()
	ttl, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil {
		ttl = 24
	}

	c := &Config{
		Port:        getEnv("PORT", "8080"),
		DSN:         mustEnv("DB_DSN"),
		JWTSecret:   mustEnv("JWT_SECRET"),
		JWTTTLHrs:   ttl,
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Env:         getEnv("ENV", "dev"),
	}
	logrus.WithFields(logrus.Fields{"env": c.Env, "port": c.Port}).Info("config loaded")
	return c
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		logrus.Fatalf("missing env: %s", k)
	}
	return v
}
