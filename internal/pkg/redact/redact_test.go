package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsername_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii", in: "alice", want: "al***"},
		{name: "three_runes", in: "bob", want: "bo***"},
		{name: "two_runes", in: "bo", want: "***"},
		{name: "empty", in: "", want: "***"},
		{name: "unicode", in: "юзер", want: "юз***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Username(tt.in))
		})
	}
}

func TestTokenID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0b8e2f6c…", TokenID("0b8e2f6c-5a0e-4f4e-9d5c-1f7f0f3a8c11"))
	require.Equal(t, "***", TokenID("short"))
}

func TestLiterals_TokenAndPassword(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token())
	require.Equal(t, "[REDACTED_PASSWORD]", Password())
}
