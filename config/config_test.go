package config

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MIC_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("MIC_OLLAMA_HOST", "")
	t.Setenv("MIC_OLLAMA_MODEL", "")
	return home
}

func TestLoadCreatesDefaults(t *testing.T) {
	home := setupHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	dataDir := filepath.Join(home, "data")
	if cfg.DataDir() != dataDir {
		t.Errorf("DataDir() = %q, want %q", cfg.DataDir(), dataDir)
	}
	if !FileExists(GetUserConfigPath(dataDir)) {
		t.Error("config.toml was not created")
	}
	if cfg.OllamaURL() != "http://localhost:11434" {
		t.Errorf("OllamaURL() = %q", cfg.OllamaURL())
	}
	if cfg.DefaultProvider != "ollama" {
		t.Errorf("DefaultProvider = %q, want ollama", cfg.DefaultProvider)
	}
	if cfg.PlannerTimeout() != 60*time.Second {
		t.Errorf("PlannerTimeout() = %v, want 60s", cfg.PlannerTimeout())
	}
	if len(cfg.Tasks) != 2 {
		t.Errorf("len(Tasks) = %d, want 2", len(cfg.Tasks))
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("data dir perms = %o, want 0700", info.Mode().Perm())
	}
}

func TestTemplateParsesLikeDefaults(t *testing.T) {
	setupHome(t)
	dataDir := t.TempDir()

	if err := CreateDefaultUserConfig(dataDir); err != nil {
		t.Fatal(err)
	}
	// second load reads the file written by the first
	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}

	defaults := DefaultUserConfig()
	if len(cfg.Models.Supported) != len(defaults.Models.Supported) {
		t.Errorf("supported models = %d, want %d", len(cfg.Models.Supported), len(defaults.Models.Supported))
	}
	if got := cfg.Tasks[0].Prompts["date"]; got == "" {
		t.Error("schedule_meeting date prompt missing")
	}
	if len(cfg.Planner.ComputationalTools) != len(DefaultComputationalTools) {
		t.Errorf("computational tools = %v", cfg.Planner.ComputationalTools)
	}
}

func TestEnvOverrides(t *testing.T) {
	setupHome(t)
	t.Setenv("MIC_OLLAMA_HOST", "http://gpu-box:11434")
	t.Setenv("MIC_OLLAMA_MODEL", "qwen2.5:0.5b")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OllamaURL() != "http://gpu-box:11434" {
		t.Errorf("OllamaURL() = %q", cfg.OllamaURL())
	}
	if cfg.Model() != "qwen2.5:0.5b" {
		t.Errorf("Model() = %q", cfg.Model())
	}
}

func TestPlannerTimeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"unset", 0, 60 * time.Second},
		{"negative", -5, 60 * time.Second},
		{"explicit", 5, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Planner: PlannerConfig{TimeoutSeconds: tt.seconds}}
			if got := cfg.PlannerTimeout(); got != tt.want {
				t.Errorf("PlannerTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateProviderField(t *testing.T) {
	setupHome(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.UpdateProviderField("openai", "enabled", "true"); err != nil {
		t.Fatalf("UpdateProviderField() error = %v", err)
	}
	p, ok := cfg.Provider("openai")
	if !ok || !p.Enabled {
		t.Errorf("openai provider = %+v, want enabled", p)
	}

	if err := cfg.UpdateProviderField("openai", "apikey", "sk-test"); err != nil {
		t.Fatal(err)
	}
	reloaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.CredentialStore.Get("openai"); got != "sk-test" {
		t.Errorf("reloaded apikey = %q, want sk-test", got)
	}
	if p, _ := reloaded.Provider("openai"); !p.Enabled {
		t.Error("enabled flag was not persisted")
	}

	if err := cfg.UpdateProviderField("nope", "enabled", "true"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("unknown provider error = %v, want ErrUnknownProvider", err)
	}
	if err := cfg.UpdateProviderField("ollama", "apikey", "x"); err == nil {
		t.Error("expected error setting ollama apikey")
	}
}

func writeSSHKey(t *testing.T, passphrase string) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte(passphrase))
	}
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCredentialStoreSSHRoundTrip(t *testing.T) {
	keyPath := writeSSHKey(t, "")
	dataDir := t.TempDir()

	store := NewCredentialStore(SecuritySSHKey, keyPath)
	if err := store.Set("anthropic", "sk-ant"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(dataDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(encryptedCredentialsPath(dataDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) == 0 || bytes.Contains(raw, []byte("sk-ant")) {
		t.Error("credentials.enc should not contain the plaintext key")
	}

	fresh := NewCredentialStore(SecuritySSHKey, keyPath)
	if err := fresh.Load(dataDir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fresh.Get("anthropic"); got != "sk-ant" {
		t.Errorf("Get() = %q, want sk-ant", got)
	}
}

func TestLoadSSHSignerPassphrase(t *testing.T) {
	keyPath := writeSSHKey(t, "hunter2")

	if _, err := LoadSSHSigner(keyPath, ""); !errors.Is(err, ErrPassphraseRequired) {
		t.Errorf("LoadSSHSigner() error = %v, want ErrPassphraseRequired", err)
	}
	if _, err := LoadSSHSigner(keyPath, "wrong"); err == nil {
		t.Error("expected error with wrong passphrase")
	}
	if _, err := LoadSSHSigner(keyPath, "hunter2"); err != nil {
		t.Errorf("LoadSSHSigner() error = %v", err)
	}
}
