package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const defaultHashDimensions = 256

// HashProvider is a deterministic local embedder: a normalized
// token-frequency vector over hashed buckets. It needs no network and gives
// stable similarity ordering, which makes it the default for offline use
// and for reproducible tests. Semantically related texts only score high
// when they share vocabulary.
type HashProvider struct {
	dims int
}

// NewHashProvider creates a hash embedder with the given dimensionality
func NewHashProvider(dims int) *HashProvider {
	if dims <= 0 {
		dims = defaultHashDimensions
	}
	return &HashProvider{dims: dims}
}

// Name returns the provider name
func (p *HashProvider) Name() string { return "hash" }

// Dimensions returns the vector dimensionality
func (p *HashProvider) Dimensions() int { return p.dims }

// Embed hashes each token (and adjacent token bigram) into a bucket and
// L2-normalizes the resulting frequency vector. Tokens split on any
// non-alphanumeric rune, so rendered formula text and plain prose share
// vocabulary.
func (p *HashProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dims)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, tok := range tokens {
		vec[p.bucket(tok)]++
		if i > 0 {
			vec[p.bucket(tokens[i-1]+" "+tok)] += 0.5
		}
	}

	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag > 0 {
		norm := float32(1 / math.Sqrt(mag))
		for i := range vec {
			vec[i] *= norm
		}
	}

	return vec, nil
}

func (p *HashProvider) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(p.dims))
}
