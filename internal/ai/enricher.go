package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/david/cfp-radar/internal/ingest"
)

// ExtractCallFields asks the model for the fields the heuristics could not
// find. It implements ingest.TextEnricher.
func (c *OllamaClient) ExtractCallFields(ctx context.Context, pageText string) (*ingest.EnrichedFields, error) {
	prompt := fmt.Sprintf(`You are an expert research-funding analyst. Extract key information from the following call-for-proposals text into JSON.

Text:
%s

Instructions:
1. title: the name of the funding call, or "" if unclear.
2. deadline: the application deadline as YYYY-MM-DD, or "" if none is stated.
3. eligibility: one short sentence describing who can apply, or "".
4. budget: the funding amount exactly as written in the text, or "".
5. area: the research area in a few words, or "".

JSON Schema:
{
	"title": "string",
	"deadline": "YYYY-MM-DD or empty string",
	"eligibility": "string",
	"budget": "string",
	"area": "string"
}

Respond ONLY with the JSON object.`, pageText)

	// JSON mode first, plain text with robust extraction as fallback.
	resp, err := c.GenerateCompletion(ctx, prompt, true)
	if err == nil {
		if data, parseErr := parseEnricherResponse(resp); parseErr == nil {
			return data, nil
		} else {
			log.Printf("JSON mode failed parsing: %v. Retrying with text mode...", parseErr)
		}
	} else {
		log.Printf("JSON mode generation failed: %v. Retrying with text mode...", err)
	}

	resp, err = c.GenerateCompletion(ctx, prompt, false)
	if err != nil {
		return nil, err
	}

	data, err := parseEnricherResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM JSON after retry: %w", err)
	}
	return data, nil
}

func parseEnricherResponse(resp string) (*ingest.EnrichedFields, error) {
	cleaned := strings.TrimSpace(resp)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	if jsonStr, ok := extractFirstJSONObject(cleaned); ok {
		cleaned = jsonStr
	}

	var data ingest.EnrichedFields
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// extractFirstJSONObject finds the first outermost balanced {...}
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if !inString {
			if char == '{' {
				depth++
			} else if char == '}' {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
