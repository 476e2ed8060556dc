package placeholder

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCachedMatchesFormat(t *testing.T) {
	ClearCache()
	defer ClearCache()

	text := "{a} and {{b}} and {c}}}"
	wantNormalized, wantArgs := Format(text)

	for i := 0; i < 2; i++ {
		normalized, args := FormatCached(text)
		assert.Equal(t, wantNormalized, normalized)
		assert.Equal(t, wantArgs, args)
	}
}

func TestFormatCachedReturnsCopies(t *testing.T) {
	ClearCache()
	defer ClearCache()

	_, args := FormatCached("{a}")
	args[0] = "mutated"

	_, again := FormatCached("{a}")
	assert.Equal(t, []string{"a"}, again)
}

func TestFormatCachedConcurrent(t *testing.T) {
	ClearCache()
	defer ClearCache()

	templates := []string{"{a}", "{{b}}", "{c} {d}", "}{"}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := templates[i%len(templates)]
			wantNormalized, wantArgs := Format(text)
			normalized, args := FormatCached(text)
			assert.Equal(t, wantNormalized, normalized)
			assert.Equal(t, wantArgs, args)
		}(i)
	}
	wg.Wait()
}
