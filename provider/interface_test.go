package provider_test

import (
	"context"
	"testing"
	"time"

	"mic/model"
	"mic/provider/testutil"
)

// TestProviderContract defines the contract all providers must satisfy.
// Live backends are exercised manually; the mock keeps the contract honest.
func TestProviderContract(t *testing.T) {
	tests := []struct {
		name     string
		provider model.Provider
	}{
		{"Mock", testutil.NewMockProvider("test-model")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("GetResponse", func(t *testing.T) {
				testProviderGetResponse(t, tt.provider)
			})
			t.Run("StreamResponse", func(t *testing.T) {
				testProviderStreamResponse(t, tt.provider)
			})
			t.Run("ModelManagement", func(t *testing.T) {
				testProviderModelManagement(t, tt.provider)
			})
			t.Run("HealthCheck", func(t *testing.T) {
				testProviderHealthCheck(t, tt.provider)
			})
		})
	}
}

func testProviderGetResponse(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := p.GetResponse(ctx, testutil.SingleUserMessage("Hello"))
	if err != nil {
		t.Errorf("GetResponse() error = %v", err)
	}
	if got == "" {
		t.Error("GetResponse() returned empty text")
	}
}

func testProviderStreamResponse(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	text, errEv := model.Collect(p.StreamResponse(ctx, testutil.SingleUserMessage("What is 2+2?"), testutil.TestMCPTools()))
	if errEv != nil {
		t.Errorf("StreamResponse() error event = %q", errEv.Content)
	}
	if text == "" {
		t.Error("StreamResponse() yielded no tokens")
	}
}

func testProviderModelManagement(t *testing.T, p model.Provider) {
	if p.GetModel() == "" {
		t.Error("GetModel() returned empty string")
	}

	p.SetModel("new-test-model")
	if got := p.GetModel(); got != "new-test-model" {
		t.Errorf("After SetModel(new-test-model), GetModel() = %s", got)
	}
}

func testProviderHealthCheck(t *testing.T, p model.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMockProviderImplementsInterface(t *testing.T) {
	var _ model.Provider = (*testutil.MockProvider)(nil)
}
