package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "campusgate/pkg/domain-errors"
)

func TestNormalize(t *testing.T) {
	t.Run("trims and lowercases", func(t *testing.T) {
		got, err := Normalize("  Student@DBCBLR.Edu.In ")
		require.NoError(t, err)
		assert.Equal(t, "student@dbcblr.edu.in", got)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := Normalize("   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects missing at sign", func(t *testing.T) {
		_, err := Normalize("not-an-email")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty local part", func(t *testing.T) {
		_, err := Normalize("@dbcblr.edu.in")
		require.Error(t, err)
	})

	t.Run("rejects double at sign", func(t *testing.T) {
		_, err := Normalize("a@b@c.edu")
		require.Error(t, err)
	})

	t.Run("rejects bare domain without dot", func(t *testing.T) {
		_, err := Normalize("user@localhost")
		require.Error(t, err)
	})
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "dbcblr.edu.in", Domain("student@dbcblr.edu.in"))
	assert.Equal(t, "gmail.com", Domain("guest@GMAIL.COM"))
	assert.Equal(t, "", Domain("no-domain"))
	assert.Equal(t, "", Domain("trailing@"))
}

func TestDeriveNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		first string
		last  string
	}{
		{"jane.doe@dbcblr.edu.in", "Jane", "Doe"},
		{"arun_kumar@gmail.com", "Arun", "Kumar"},
		{"admin@wl.example", "Admin", "User"},
		{"...@x.edu", "User", "User"},
	}
	for _, tc := range tests {
		first, last := DeriveNameFromEmail(tc.email)
		assert.Equal(t, tc.first, first, tc.email)
		assert.Equal(t, tc.last, last, tc.email)
	}
}
