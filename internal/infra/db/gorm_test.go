package db

import (
	"testing"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name      string
		dsn       string
		enableTLS bool
		want      string
	}{
		{
			name: "tls disabled leaves dsn untouched",
			dsn:  "host=db sslmode=disable",
			want: "host=db sslmode=disable",
		},
		{
			name:      "tls replaces existing sslmode",
			dsn:       "host=db sslmode=disable port=5432",
			enableTLS: true,
			want:      "host=db sslmode=require port=5432",
		},
		{
			name:      "tls appends sslmode when missing",
			dsn:       "host=db port=5432",
			enableTLS: true,
			want:      "host=db port=5432 sslmode=require",
		},
		{
			name:      "sslmode match is case insensitive",
			dsn:       "host=db SSLMODE = prefer",
			enableTLS: true,
			want:      "host=db sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Database: config.DatabaseCfg{DSN: tt.dsn, EnableTLS: tt.enableTLS}}
			assert.Equal(t, tt.want, DSN(cfg))
		})
	}
}
