package llm

import (
	"context"
	"fmt"
)

// BedrockConfig holds configuration for the AWS Bedrock provider
type BedrockConfig struct {
	Region          string
	ModelID         string // e.g., "anthropic.claude-3-sonnet-20240229-v1:0"
	MaxTokens       int
	RoleARN         string // For cross-account or assumed role access
	UseOIDC         bool   // Use OIDC federation for auth
	OIDCProviderARN string
}

// BedrockProvider implements the LLM Provider interface for AWS Bedrock
type BedrockProvider struct {
	config BedrockConfig
}

// NewBedrockProvider creates a new AWS Bedrock provider
func NewBedrockProvider(cfg BedrockConfig) (*BedrockProvider, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if cfg.ModelID == "" {
		cfg.ModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	return &BedrockProvider{
		config: cfg,
	}, nil
}

// Complete sends a chat completion request to AWS Bedrock
func (p *BedrockProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	// TODO: Implement Bedrock completion using AWS SDK
	// Use github.com/aws/aws-sdk-go-v2/service/bedrockruntime
	//
	// client := bedrockruntime.NewFromConfig(awsCfg)
	// input := &bedrockruntime.InvokeModelInput{
	//     ModelId:     aws.String(p.config.ModelID),
	//     ContentType: aws.String("application/json"),
	//     Body:        requestBody,
	// }
	// output, err := client.InvokeModel(ctx, input)

	return nil, fmt.Errorf("Bedrock provider not yet implemented")
}

// StreamComplete sends a streaming chat completion request
func (p *BedrockProvider) StreamComplete(ctx context.Context, req ChatRequest, callback func(chunk string) error) error {
	// TODO: Implement Bedrock streaming using InvokeModelWithResponseStream
	return fmt.Errorf("Bedrock streaming not yet implemented")
}

// Name returns the provider name
func (p *BedrockProvider) Name() string {
	return "bedrock"
}

// Model returns the model being used
func (p *BedrockProvider) Model() string {
	return p.config.ModelID
}
