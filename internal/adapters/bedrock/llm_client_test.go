package bedrock

import (
	"encoding/json"
	"testing"

	"github.com/mikey/pr-contact-miner/internal/utils"
	"go.uber.org/zap"
)

func newTestClient(modelID string) *BedrockClient {
	logger := zap.NewNop()
	return NewBedrockClient(nil, modelID, 512, 0.1, 0.9, 0, logger, utils.NewTextProcessor(logger))
}

func TestRequestBody(t *testing.T) {
	t.Parallel()

	cases := []struct {
		modelID string
		key     string
	}{
		{"anthropic.claude-3-5-sonnet-20240620-v1:0", "messages"},
		{"us.anthropic.claude-3-haiku-20240307-v1:0", "anthropic_version"},
		{"amazon.titan-text-express-v1", "inputText"},
		{"meta.llama3-8b-instruct-v1:0", "prompt"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.modelID, func(t *testing.T) {
			t.Parallel()

			body, err := newTestClient(tc.modelID).requestBody("classify these")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var decoded map[string]interface{}
			if err := json.Unmarshal(body, &decoded); err != nil {
				t.Fatalf("request body is not JSON: %v", err)
			}
			if _, ok := decoded[tc.key]; !ok {
				t.Fatalf("expected key %q in %s", tc.key, body)
			}
		})
	}
}

func TestResponseText(t *testing.T) {
	t.Parallel()

	claude := newTestClient("anthropic.claude-3-haiku-20240307-v1:0")
	got, err := claude.responseText([]byte(`{"content":[{"type":"text","text":"[{\"email_index\":1}"},{"type":"text","text":"]"}]}`))
	if err != nil || got != `[{"email_index":1}]` {
		t.Fatalf("unexpected Claude text %q (%v)", got, err)
	}
	if _, err := claude.responseText([]byte(`{"content":[]}`)); err == nil {
		t.Fatal("expected error for empty Claude content")
	}

	titan := newTestClient("amazon.titan-text-express-v1")
	if got, err := titan.responseText([]byte(`{"results":[{"outputText":"[]"}]}`)); err != nil || got != "[]" {
		t.Fatalf("unexpected Titan text %q (%v)", got, err)
	}

	generic := newTestClient("cohere.command-r-v1:0")
	if got, err := generic.responseText([]byte(`{"text":"[\"Technology\"]"}`)); err != nil || got != `["Technology"]` {
		t.Fatalf("unexpected generic text %q (%v)", got, err)
	}
}
