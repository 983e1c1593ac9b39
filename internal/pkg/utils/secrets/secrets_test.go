package secrets

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret_Format(t *testing.T) {
	phc, err := HashSecret("glt-user-secret", "pepper")
	require.NoError(t, err)

	parts := strings.Split(phc, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, fmt.Sprintf("m=%d,t=%d,p=%d", MemoryMB*1024, Time, Threads), parts[3])

	again, err := HashSecret("glt-user-secret", "pepper")
	require.NoError(t, err)
	assert.NotEqual(t, phc, again, "salt must differ between hashes")
}

func TestHashSecret_Empty(t *testing.T) {
	phc, err := HashSecret("", "pepper")
	assert.Error(t, err)
	assert.Empty(t, phc)
}

func TestVerifySecret(t *testing.T) {
	valid, err := HashSecret("s3cret", "pepper")
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		pepper  string
		phc     string
		want    bool
		wantErr string
	}{
		{name: "match", secret: "s3cret", pepper: "pepper", phc: valid, want: true},
		{name: "wrong secret", secret: "nope", pepper: "pepper", phc: valid},
		{name: "wrong pepper", secret: "s3cret", pepper: "salt", phc: valid},
		{name: "bcrypt hash", secret: "s3cret", pepper: "pepper", phc: "$2a$10$abc", wantErr: "unsupported hash format"},
		{name: "truncated phc", secret: "s3cret", pepper: "pepper", phc: "$argon2id$v=19$m=1", wantErr: "invalid phc"},
		{name: "bad params", secret: "s3cret", pepper: "pepper", phc: "$argon2id$v=19$x$c2FsdA$a2V5", wantErr: "input does not match format"},
		{name: "bad salt", secret: "s3cret", pepper: "pepper", phc: "$argon2id$v=19$m=16384,t=2,p=1$***$a2V5", wantErr: "illegal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifySecret(tt.secret, tt.pepper, tt.phc)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
