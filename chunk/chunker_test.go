package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		size int
		want []string
	}{
		{name: "empty document", doc: "", size: 4, want: []string{}},
		{name: "shorter than window", doc: "abc", size: 4, want: []string{"abc"}},
		{name: "exact multiple", doc: "abcdefgh", size: 4, want: []string{"abcd", "efgh"}},
		{name: "short tail", doc: "abcdefghij", size: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "window of one", doc: "abc", size: 1, want: []string{"a", "b", "c"}},
		{name: "multi-byte runes", doc: "héllo wörld", size: 3, want: []string{"hél", "lo ", "wör", "ld"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.doc, tt.size))
		})
	}
}

func TestSplit_Reconstructs(t *testing.T) {
	docs := []string{
		"",
		"a",
		strings.Repeat("The history of IIUC. ", 137),
		"চট্টগ্রাম আন্তর্জাতিক ইসলামী বিশ্ববিদ্যালয়",
		"mixed ascii and 日本語 text\nwith newlines\n\n",
	}

	for _, doc := range docs {
		for size := 1; size <= 17; size++ {
			parts := Split(doc, size)
			require.Equal(t, doc, strings.Join(parts, ""), "size %d", size)
			for i, p := range parts {
				n := utf8.RuneCountInString(p)
				if i < len(parts)-1 {
					assert.Equal(t, size, n, "only the final window may be short")
				} else {
					assert.LessOrEqual(t, n, size)
					assert.Positive(t, n)
				}
			}
		}
	}
}

func TestChunks_Restartable(t *testing.T) {
	seq := Chunks("abcdefg", 3)

	first := make([]string, 0)
	for c := range seq {
		first = append(first, c)
	}
	second := make([]string, 0)
	for c := range seq {
		second = append(second, c)
	}

	assert.Equal(t, []string{"abc", "def", "g"}, first)
	assert.Equal(t, first, second)
}

func TestChunks_EarlyStop(t *testing.T) {
	var got []string
	for c := range Chunks("abcdefgh", 2) {
		got = append(got, c)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"ab", "cd"}, got)
}

func TestChunks_DefaultSize(t *testing.T) {
	doc := strings.Repeat("x", DefaultSize+1)

	parts := Split(doc, 0)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], DefaultSize)
	assert.Len(t, parts[1], 1)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count("", 10))
	assert.Equal(t, 1, Count("abc", 10))
	assert.Equal(t, 3, Count("abcdefghij", 4))
	assert.Equal(t, 4, Count("héllo wörld", 3))
	assert.Equal(t, 2, Count(strings.Repeat("y", 1500), -5))

	doc := strings.Repeat("z", 2501)
	assert.Equal(t, len(Split(doc, 1000)), Count(doc, 1000))
}
