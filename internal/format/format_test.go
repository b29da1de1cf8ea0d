package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigitsOnly(t *testing.T) {
	require.Equal(t, "11999998888", DigitsOnly("(11) 99999-8888"))
	require.Equal(t, "", DigitsOnly("abc"))
}

func TestFormatCPF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345678900", "123.456.789-00"},
		{"123.456.789-00", "123.456.789-00"},
		{"", NotInformed},
		{"1234", "1234"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatCPF(tt.in), "input %q", tt.in)
	}
}

func TestMaskCPF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345678900", "123.***.***-00"},
		{"123.456.789-00", "123.***.***-00"},
		{"", NotInformed},
		{"99", "99"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, MaskCPF(tt.in), "input %q", tt.in)
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11999998888", "(11) 99999-8888"},
		{"1133334444", "(11) 3333-4444"},
		{"(11) 99999-8888", "(11) 99999-8888"},
		{"", NotInformed},
		{"123", "123"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatPhone(tt.in), "input %q", tt.in)
	}
}
