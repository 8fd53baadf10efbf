package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "staging":
		prefix = "staging"
	case "test":
		prefix = "test"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyPoolCount is the cached pool count for one cache generation
func (kb *KeyBuilder) KeyPoolCount(generation int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyPoolCount, generation))
}

func (kb *KeyBuilder) KeyPoolCountGeneration() string {
	return kb.BuildKey(KeyPoolCountGeneration)
}
