// internal/workers/content/generate-content/config.go
package generatecontent

import "time"

type Config struct {
	Timeout       time.Duration
	MinConfidence float64
	MaxEntities   int
	MaxSections   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       60 * time.Second,
		MinConfidence: 0.5,
		MaxEntities:   50,
		MaxSections:   20,
	}
}
