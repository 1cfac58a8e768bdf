package judge

import "testing"

type verdictPayload struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
}

func TestDecodeJudgeJSONDirect(t *testing.T) {
	var out verdictPayload
	if err := DecodeJudgeJSON(`{"match":true,"confidence":0.97}`, &out); err != nil {
		t.Fatalf("DecodeJudgeJSON: %v", err)
	}
	if !out.Match || out.Confidence != 0.97 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestDecodeJudgeJSONStripsCodeFence(t *testing.T) {
	payload := "```json\n{\"match\":false,\"confidence\":0.2}\n```"
	var out verdictPayload
	if err := DecodeJudgeJSON(payload, &out); err != nil {
		t.Fatalf("DecodeJudgeJSON: %v", err)
	}
	if out.Match || out.Confidence != 0.2 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestDecodeJudgeJSONExtractsEmbeddedObject(t *testing.T) {
	payload := `Here is my verdict: {"match":true,"confidence":0.95} hope that helps.`
	var out verdictPayload
	if err := DecodeJudgeJSON(payload, &out); err != nil {
		t.Fatalf("DecodeJudgeJSON: %v", err)
	}
	if !out.Match || out.Confidence != 0.95 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestDecodeJudgeJSONRejectsGarbage(t *testing.T) {
	var out verdictPayload
	if err := DecodeJudgeJSON("no json here at all", &out); err == nil {
		t.Error("expected decode error")
	}
	if err := DecodeJudgeJSON("   ", &out); err == nil {
		t.Error("expected empty payload error")
	}
}

func TestSummarizePayloadSnippetTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "0123456789"
	}
	snippet := summarizePayloadSnippet(long)
	if len(snippet) != 163 {
		t.Errorf("len(snippet) = %d, want 163", len(snippet))
	}
	if summarizePayloadSnippet("") != "<empty>" {
		t.Errorf("empty snippet = %q", summarizePayloadSnippet(""))
	}
}
