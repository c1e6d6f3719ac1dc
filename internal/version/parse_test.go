package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected []string
	}{
		{input: "1.0", expected: []string{"1", "0"}},
		{input: "1.10.0.2b", expected: []string{"1", "10", "0", "2b"}},
		{input: "1-2_3/4", expected: []string{"1", "2", "3", "4"}},
		{input: "1;2:3", expected: []string{"1", "2", "3"}},
		{input: "1..2", expected: []string{"1", "", "2"}},
		{input: "1.0.", expected: []string{"1", "0"}},
		{input: "1", expected: []string{"1"}},
		{input: "", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Split(tt.input))
		})
	}
}

func TestParse_Strict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "two segments", input: "1.0", want: []string{"1", "0"}},
		{name: "four segments", input: "1.10.0.2b", want: []string{"1", "10", "0", "2b"}},
		{name: "single segment", input: "1", wantErr: true},
		{name: "five segments", input: "1.2.3.4.5", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.input, true)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedVersion))

				var malformed *MalformedVersionError
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, tt.input, malformed.Version)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Lenient(t *testing.T) {
	t.Parallel()

	got, err := Parse("1.2.3.4.5", false)
	assert.NoError(t, err)
	assert.Empty(t, got)

	got, err = Parse("3.1", false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, got)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid("1.0"))
	assert.True(t, Valid("1.0.0.0"))
	assert.False(t, Valid("1"))
	assert.False(t, Valid("garbage"))
	assert.False(t, Valid("1.0.0.0.0"))
}

func TestMalformedVersionError(t *testing.T) {
	t.Parallel()

	err := &MalformedVersionError{Version: "1", Segments: 1}
	assert.Equal(t, `malformed version "1": got 1 segments, want 2 to 4`, err.Error())
	assert.True(t, err.Is(&MalformedVersionError{}))
	assert.False(t, err.Is(errors.New("other")))
}
