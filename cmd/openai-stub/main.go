// Command openai-stub is an OpenAI-compatible server that answers every
// category prompt with a small well-formed report, for offline runs.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goinsight/internal/prompt"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newHandler(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newHandler(model string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model", "owned_by": "stub"}},
		})
	})
	r.Post("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		content, ok := cannedReport(req.Messages)
		if !ok {
			http.Error(w, "unexpected system prompt", http.StatusBadRequest)
			return
		}
		if req.Stream {
			streamReply(w, req.Model, content)
			return
		}
		render.JSON(w, r, map[string]any{
			"id":     "stub-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       chatMessage{Role: "assistant", Content: content},
				"finish_reason": "stop",
			}},
		})
	})
	return r
}

// cannedReport picks the category from the system prompt and writes one
// bullet under every mandatory section, mentioning how many rows were sent.
func cannedReport(msgs []chatMessage) (string, bool) {
	if len(msgs) < 2 {
		return "", false
	}
	sys := strings.TrimSpace(msgs[0].Content)
	rows := 0
	for _, line := range strings.Split(msgs[1].Content, "\n") {
		if strings.HasPrefix(line, "Row ") {
			rows++
		}
	}
	for _, p := range prompt.Profiles() {
		if p.SystemPrompt != sys {
			continue
		}
		var b strings.Builder
		for i, s := range p.Outline {
			fmt.Fprintf(&b, "SECTION: %s\n- Observation %d drawn from %d rows\n\n", s, i+1, rows)
		}
		return strings.TrimSpace(b.String()), true
	}
	return "", false
}

// streamReply sends content as server-sent events, one word per chunk.
func streamReply(w http.ResponseWriter, model, content string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)
	words := strings.SplitAfter(content, " ")
	for _, word := range words {
		chunk := map[string]any{
			"id":     "stub-1",
			"object": "chat.completion.chunk",
			"model":  model,
			"choices": []map[string]any{{
				"index": 0,
				"delta": map[string]string{"content": word},
			}},
		}
		b, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", b)
		if flusher != nil {
			flusher.Flush()
		}
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}
