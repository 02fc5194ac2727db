package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidVideoID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "canonical id", id: "tJ85t5wi5qc", want: true},
		{name: "underscore and dash", id: "a_b-c_d-e_f", want: true},
		{name: "all digits", id: "01234567890", want: true},
		{name: "too short", id: "short", want: false},
		{name: "space and punctuation", id: "has space!!", want: false},
		{name: "empty", id: "", want: false},
		{name: "twelve chars", id: "tJ85t5wi5qcX", want: false},
		{name: "ten chars", id: "tJ85t5wi5q", want: false},
		{name: "slash", id: "tJ85t5wi/qc", want: false},
		{name: "pipe", id: "tJ85t5wi|qc", want: false},
		{name: "multibyte rune with 11 bytes", id: "tJ85t5wi5é", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidVideoID(tt.id))
		})
	}
}

func TestIsValidVideoID_EveryAllowedCharacter(t *testing.T) {
	alphabet := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"
	for _, c := range alphabet {
		id := strings.Repeat(string(c), VideoIDLength)
		assert.True(t, IsValidVideoID(id), "expected %q to be valid", id)
	}
}

func TestIsValidVideoID_ForeignCharacters(t *testing.T) {
	for _, c := range " !\"#$%&'()*+,./:;<=>?@[\\]^`{|}~\t\n" {
		id := "abcde" + string(c) + "fghij"
		assert.False(t, IsValidVideoID(id), "expected %q to be invalid", id)
	}
}
