package app

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleContextEmpty(t *testing.T) {
	assert.Empty(t, AssembleContext(nil))
	assert.Empty(t, AssembleContext([]SearchResult{}))
}

func TestAssembleContextNumberingMatchesOrder(t *testing.T) {
	results := []SearchResult{
		{DocID: "doc-1", Content: "first content", Similarity: 0.9},
		{DocID: "doc-2", Content: "second content", Similarity: 0.5, Title: "Guide"},
	}

	block := AssembleContext(results)
	assert.True(t, strings.HasPrefix(block, contextHeader))
	assert.Contains(t, block, "[Source 1: doc-1]\nfirst content")
	assert.Contains(t, block, "[Source 2: Guide]\nsecond content")
	assert.Less(t, strings.Index(block, "[Source 1:"), strings.Index(block, "[Source 2:"))
	assert.Equal(t, 1, strings.Count(block, sourceDelimiter))
}

func TestAssembleContextLabelFallsBackToDocID(t *testing.T) {
	block := AssembleContext([]SearchResult{{DocID: "doc-9", Content: "body"}})
	assert.Contains(t, block, "[Source 1: doc-9]")
}

func TestAssembleContextUsesFullContentOverSnippet(t *testing.T) {
	block := AssembleContext([]SearchResult{{
		DocID:   "doc-1",
		Content: "full untruncated content",
		Snippet: "full untr",
	}})
	assert.Contains(t, block, "full untruncated content")
}

func TestAssembleContextDeterministic(t *testing.T) {
	results := make([]SearchResult, 0, 5)
	for i := 0; i < 5; i++ {
		results = append(results, SearchResult{
			DocID:   fmt.Sprintf("doc-%d", i),
			Content: fmt.Sprintf("content %d", i),
		})
	}
	assert.Equal(t, AssembleContext(results), AssembleContext(results))
}
