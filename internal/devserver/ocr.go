package devserver

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

// InvoiceExtractor turns an invoice photo into structured fields.
type InvoiceExtractor interface {
	Extract(ctx context.Context, imageBase64 string) (*models.OCRResult, error)
}

// OpenAIExtractor extracts invoice data from images using the vision API.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIExtractor creates a vision-backed extractor.
func NewOpenAIExtractor(apiKey, model string, logger *zap.Logger) *OpenAIExtractor {
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

const extractionSystemPrompt = `You are an expert in reading Bulgarian supplier invoices (фактури).
Extract structured data from the invoice image. Respond with a JSON object with these keys:
supplier (string), invoice_number (string), amount_without_vat (number), vat_amount (number),
total_amount (number), invoice_date (YYYY-MM-DD string), corrections (array of strings describing
any arithmetic you had to fix), confidence (0-1 number).
Amounts are in BGN. VAT is normally 20%. If total_amount != amount_without_vat + vat_amount,
correct the inconsistency and note it in corrections.`

// Extract sends the image to the vision model and parses its JSON reply.
func (e *OpenAIExtractor) Extract(ctx context.Context, imageBase64 string) (*models.OCRResult, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract the invoice fields from this image.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + imageBase64,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("Failed to call OpenAI API", zap.Error(err))
		return nil, fmt.Errorf("failed to extract invoice data: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	var result models.OCRResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		e.logger.Error("Failed to parse extraction result",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}

	if result.Supplier == "" && result.InvoiceNumber == "" {
		return nil, fmt.Errorf("failed to extract supplier or invoice number")
	}

	e.logger.Info("Invoice data extracted",
		zap.String("supplier", result.Supplier),
		zap.String("invoice_number", result.InvoiceNumber),
		zap.Float64("total_amount", result.TotalAmount))
	return &result, nil
}

// StubExtractor returns deterministic fields derived from the image
// bytes, so the scan flow can be exercised without an API key.
type StubExtractor struct{}

func (StubExtractor) Extract(_ context.Context, imageBase64 string) (*models.OCRResult, error) {
	sum := sha256.Sum256([]byte(imageBase64))
	net := 100 + float64(sum[0])
	vat := net * 0.2
	return &models.OCRResult{
		Supplier:         "Демо доставчик ЕООД",
		InvoiceNumber:    fmt.Sprintf("%010d", uint32(sum[1])<<16|uint32(sum[2])<<8|uint32(sum[3])),
		AmountWithoutVAT: net,
		VATAmount:        vat,
		TotalAmount:      net + vat,
		Confidence:       0.5,
	}, nil
}
