package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Digest records one file read or written by a run.
type Digest struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// Manifest captures what a run read, which model it used and what it wrote.
type Manifest struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	Commit      string    `json:"commit"`
	Model       string    `json:"model,omitempty"`
	LLMBaseURL  string    `json:"llm_base_url,omitempty"`
	LLMCache    bool      `json:"llm_cache"`
	Categories  []string  `json:"categories"`
	Inputs      []Digest  `json:"inputs"`
	Outputs     []Digest  `json:"outputs"`
	Warnings    []string  `json:"warnings"`
	GeneratedAt time.Time `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func digestFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Digest{}, err
	}
	return Digest{Path: path, SHA256: hex.EncodeToString(h.Sum(nil)), Bytes: n}, nil
}

func digestFiles(paths []string) ([]Digest, error) {
	out := make([]Digest, 0, len(paths))
	for _, p := range paths {
		d, err := digestFile(p)
		if err != nil {
			return nil, fmt.Errorf("digest %s: %w", p, err)
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// writeManifest writes manifest.json into dir and returns its path.
func writeManifest(dir string, m Manifest) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
