package embed

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIDimensions = 1536

// OpenAIProvider implements the Provider interface using the OpenAI
// embeddings API
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI embedding provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Dimensions returns the vector dimensionality of the configured model
func (p *OpenAIProvider) Dimensions() int {
	if p.config.Dimensions > 0 {
		return p.config.Dimensions
	}
	return defaultOpenAIDimensions
}

// Embed generates an embedding via the OpenAI embeddings endpoint
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embModel := openai.EmbeddingModel(p.config.Model)
	if p.config.Model == "" {
		embModel = openai.SmallEmbedding3
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctxWithTimeout, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: embModel,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: openai returned no embedding", ErrEmbedding)
	}

	return resp.Data[0].Embedding, nil
}
