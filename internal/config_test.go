package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.SQLite.Enabled() {
		t.Error("index should be disabled by default")
	}
	if got := cfg.Vault.MetaDir(); got != "keywords/.meta" {
		t.Errorf("MetaDir = %q", got)
	}
}

func TestVaultConfig_KeywordsDirMustBeInsideVault(t *testing.T) {
	for _, dir := range []string{"", ".", "..", "../out", "/abs/keywords"} {
		cfg := VaultConfig{Path: ".", KeywordsDir: dir}
		if err := cfg.Validate(); err == nil {
			t.Errorf("keywords_dir %q should fail validation", dir)
		}
	}
	cfg := VaultConfig{Path: ".", KeywordsDir: "meta/tags/"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("nested keywords_dir should pass: %v", err)
	}
	if got := cfg.MetaDir(); got != "meta/tags/.meta" {
		t.Errorf("MetaDir = %q", got)
	}
}

func TestVaultConfig_SkipDirs(t *testing.T) {
	cfg := VaultConfig{Path: ".", KeywordsDir: "meta/tags", IgnoreDirs: []string{".git"}}
	got := cfg.SkipDirs()
	if len(got) != 2 || got[0] != "tags" || got[1] != ".git" {
		t.Errorf("SkipDirs = %v", got)
	}
	if len(cfg.IgnoreDirs) != 1 {
		t.Error("SkipDirs modified IgnoreDirs")
	}
}

func TestExtractorConfig_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ExtractorConfig)
		ok     bool
	}{
		{"defaults", func(*ExtractorConfig) {}, true},
		{"levenshtein", func(c *ExtractorConfig) { c.DedupAlgorithm = "levenshtein" }, true},
		{"unknown algorithm", func(c *ExtractorConfig) { c.DedupAlgorithm = "cosine" }, false},
		{"unknown language", func(c *ExtractorConfig) { c.Language = "fr" }, false},
		{"threshold above one", func(c *ExtractorConfig) { c.DedupThreshold = 1.5 }, false},
		{"zero window", func(c *ExtractorConfig) { c.WindowSize = 0 }, false},
		{"min above max", func(c *ExtractorConfig) { c.MinTop, c.MaxTop = 8, 4 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Extractor
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestExtractorConfig_Conversion(t *testing.T) {
	cfg := NewDefaultConfig().Extractor
	cfg.WindowSize = 2
	cfg.MaxTop = 5

	p := cfg.Params()
	if p.WindowSize != 2 || string(p.DedupAlgorithm) != cfg.DedupAlgorithm || p.Language != cfg.Language {
		t.Errorf("Params = %+v", p)
	}
	if n := cfg.Sizing().TopN(10000); n != 5 {
		t.Errorf("TopN = %d, want 5", n)
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := WatchConfig{Debounce: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail")
	}
}
