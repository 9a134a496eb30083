package ai

import "context"

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// ImageTextPrompt asks a vision model to transcribe an image.
const ImageTextPrompt = "Transcribe all text visible in this image. Return only the text, without commentary."

// Generator answers a single text prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ImageReader extracts text from an image. Vision-capable providers implement it.
type ImageReader interface {
	ReadImage(ctx context.Context, data []byte, mimeType string) (string, error)
}
