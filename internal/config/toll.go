package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type TollConfig struct {
	RateCacheTTL           time.Duration
	TrafficHighThreshold   int
	TrafficNormalThreshold int
	AggregationLookback    time.Duration
	AggregationConcurrency int
	TrafficSink            string
	PricingTimezone        string
}

func LoadTollConfig() *TollConfig {
	return &TollConfig{
		RateCacheTTL:           getEnvAsDuration("RATE_CACHE_TTL", 5*time.Minute),
		TrafficHighThreshold:   getEnvAsInt("TRAFFIC_HIGH_THRESHOLD", 100),
		TrafficNormalThreshold: getEnvAsInt("TRAFFIC_NORMAL_THRESHOLD", 50),
		AggregationLookback:    getEnvAsDuration("AGGREGATION_LOOKBACK", 24*time.Hour),
		AggregationConcurrency: getEnvAsInt("AGGREGATION_CONCURRENCY", 4),
		TrafficSink:            strings.ToLower(getEnv("TRAFFIC_SINK", "postgres")),
		PricingTimezone:        getEnv("PRICING_TIMEZONE", "Local"),
	}
}

// Location resolves PricingTimezone, falling back to time.Local.
func (c *TollConfig) Location() *time.Location {
	if c.PricingTimezone == "" || c.PricingTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.PricingTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
