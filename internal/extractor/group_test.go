package extractor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		declared      []string
		group         string
		caseSensitive bool
		expected      bool
	}{
		{name: "empty declared matches any", declared: nil, group: "android", expected: true},
		{name: "empty declared matches none", declared: nil, group: "", expected: true},
		{name: "exact", declared: []string{"ios", "android"}, group: "android", expected: true},
		{name: "absent group", declared: []string{"android"}, group: "", expected: false},
		{name: "other group", declared: []string{"android"}, group: "ios", expected: false},
		{name: "case folded when insensitive", declared: []string{"Android"}, group: "android", expected: true},
		{name: "case kept when sensitive", declared: []string{"Android"}, group: "android", caseSensitive: true, expected: false},
		{name: "sensitive exact", declared: []string{"Android"}, group: "Android", caseSensitive: true, expected: true},
		{name: "unicode folding", declared: []string{"STRASSE"}, group: "strasse", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MatchesGroup(tt.declared, tt.group, GroupEqualFunc(tt.caseSensitive))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractor_GroupEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, New(Config{}).GroupEqual()("android", "Android"))
	assert.False(t, New(Config{CaseSensitive: true}).GroupEqual()("android", "Android"))
}

func TestEqualFold_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, EqualFold("ClientType", "clienttype"))
				assert.False(t, EqualFold("ios", "android"))
			}
		}()
	}
	wg.Wait()
}
