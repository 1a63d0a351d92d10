package chunker

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the BPE shared with OpenAI embedding models.
const DefaultEncoding = "cl100k_base"

var loaderOnce sync.Once

// TiktokenTokenizer implements Tokenizer with an embedded (offline) BPE table.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding without touching the network.
func NewTiktoken(encoding string) (*TiktokenTokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

// Encode tokenizes text, treating special-token strings as ordinary text.
func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.enc.EncodeOrdinary(text)
}

// Decode returns the raw bytes covered by tokens.
func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
