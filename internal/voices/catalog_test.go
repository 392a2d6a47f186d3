package voices

import "testing"

func TestResolveKnownVoice(t *testing.T) {
	c := NewCatalog()

	p, ok := c.Resolve("fem-soft")
	if !ok {
		t.Fatal("expected fem-soft to resolve")
	}
	if p.Gender != "female" || p.Tone != "soft" {
		t.Errorf("unexpected params: %+v", p)
	}
	if p.ElevenLabsVoiceID == "" || p.OpenAIVoice == "" {
		t.Error("provider voice ids must be set for every catalog entry")
	}
}

func TestResolveUnknownVoice(t *testing.T) {
	c := NewCatalog()

	if _, ok := c.Resolve("robot-9000"); ok {
		t.Error("unknown voice id must not resolve")
	}
	if _, ok := c.Resolve(""); ok {
		t.Error("empty voice id must not resolve")
	}
}

func TestIDsStableAndComplete(t *testing.T) {
	c := NewCatalog()

	ids := c.IDs()
	if len(ids) == 0 {
		t.Fatal("catalog is empty")
	}

	for _, id := range ids {
		p, ok := c.Resolve(id)
		if !ok {
			t.Errorf("listed id %q does not resolve", id)
		}
		if p.CartesiaVoiceID == "" || p.GeminiVoice == "" {
			t.Errorf("voice %q missing provider mapping: %+v", id, p)
		}
	}

	again := c.IDs()
	for i := range ids {
		if ids[i] != again[i] {
			t.Fatal("IDs order is not stable")
		}
	}
}
