// internal/workers/content/generate-storyline/config.go
package generatestoryline

import "time"

type Config struct {
	Timeout       time.Duration
	MinConfidence float64
	MaxEntities   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       45 * time.Second,
		MinConfidence: 0.5,
		MaxEntities:   50,
	}
}
