// internal/workers/content/generate-kb-section/config.go
package generatekbsection

import "time"

type Config struct {
	Timeout       time.Duration
	MinConfidence float64
	MaxEntities   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       15 * time.Second,
		MinConfidence: 0.5,
		MaxEntities:   50,
	}
}
