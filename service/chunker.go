package service

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/tieubaoca/docqa-be/types"
)

// Chunker splits text on newlines and regroups the lines into chunks of at
// most MaxChunkSize characters, repeating up to OverlapSize characters of
// trailing lines at the start of the next chunk. A single line longer than
// MaxChunkSize is kept whole.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewChunker(config types.DocumentServiceConfig) (*Chunker, error) {
	if config.MaxChunkSize <= 0 || config.OverlapSize < 0 || config.OverlapSize >= config.MaxChunkSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunkConfig, config.MaxChunkSize, config.OverlapSize)
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators([]string{"\n"}),
			textsplitter.WithChunkSize(config.MaxChunkSize),
			textsplitter.WithChunkOverlap(config.OverlapSize),
		),
	}, nil
}

// Split drops empty lines before grouping, so runs of blank lines neither
// survive into chunks nor count against the size and overlap budgets.
func (c *Chunker) Split(text string) ([]string, error) {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line != "" {
			kept = append(kept, line)
		}
	}
	text = strings.Join(kept, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return c.splitter.SplitText(text)
}
