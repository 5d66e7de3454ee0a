package store

import (
	"testing"
	"time"
)

func TestNewRedisStoreValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *RedisConfig
		wantErr bool
	}{
		{"nil config uses defaults", nil, false},
		{"valid config", &RedisConfig{Addr: "localhost:6379", Prefix: "x:", TTL: time.Hour}, false},
		{"missing addr", &RedisConfig{Prefix: "x:"}, true},
		{"missing prefix", &RedisConfig{Addr: "localhost:6379"}, true},
		{"db out of range", &RedisConfig{Addr: "localhost:6379", Prefix: "x:", DB: 16}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRedisStore(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRedisStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s == nil {
				t.Error("NewRedisStore() returned nil store without error")
			}
		})
	}
}
