package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const azureAPIVersion = "2023-04-01"

// AzureClient calls the Azure AI Language sentiment analysis REST API.
type AzureClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewAzureClient builds a client for the given Azure Language resource
// endpoint (e.g. https://myresource.cognitiveservices.azure.com).
func NewAzureClient(endpoint, apiKey string, timeout time.Duration) *AzureClient {
	return &AzureClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type azureRequest struct {
	Kind          string             `json:"kind"`
	AnalysisInput azureAnalysisInput `json:"analysisInput"`
}

type azureAnalysisInput struct {
	Documents []azureDocument `json:"documents"`
}

type azureDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type azureResponse struct {
	Results struct {
		Documents []struct {
			ID        string `json:"id"`
			Sentiment string `json:"sentiment"`
		} `json:"documents"`
		Errors []struct {
			ID    string `json:"id"`
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		} `json:"errors"`
	} `json:"results"`
}

// AnalyzeSentiment submits the text as a single document and returns the
// document-level sentiment.
func (c *AzureClient) AnalyzeSentiment(ctx context.Context, text string) (Label, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	body, err := json.Marshal(azureRequest{
		Kind: "SentimentAnalysis",
		AnalysisInput: azureAnalysisInput{
			Documents: []azureDocument{{ID: "1", Text: text}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/language/:analyze-text?api-version=%s", c.endpoint, azureAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call sentiment api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("sentiment api status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed azureResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Results.Errors) > 0 {
		e := parsed.Results.Errors[0].Error
		return "", fmt.Errorf("sentiment api error %s: %s", e.Code, e.Message)
	}
	if len(parsed.Results.Documents) == 0 {
		return "", fmt.Errorf("sentiment api returned no documents")
	}

	return labelFromAzure(parsed.Results.Documents[0].Sentiment)
}

func labelFromAzure(sentiment string) (Label, error) {
	switch strings.ToLower(sentiment) {
	case "positive":
		return Positive, nil
	case "neutral":
		return Neutral, nil
	case "negative":
		return Negative, nil
	case "mixed":
		return Mixed, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", sentiment)
	}
}
