package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeLister struct {
	ids []string
	err error
}

func (f fakeLister) ListModels(context.Context) (openai.ModelsList, error) {
	var list openai.ModelsList
	for _, id := range f.ids {
		list.Models = append(list.Models, openai.Model{ID: id})
	}
	return list, f.err
}

func TestHasModel(t *testing.T) {
	ok, err := HasModel(context.Background(), fakeLister{ids: []string{"a", "b"}}, "b")
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
	if ok, _ := HasModel(context.Background(), fakeLister{ids: []string{"a"}}, "z"); ok {
		t.Fatalf("unexpected model match")
	}
	if _, err := HasModel(context.Background(), fakeLister{err: errors.New("down")}, "a"); err == nil {
		t.Fatalf("expected listing error")
	}
}

func TestCollect_StreamsDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"SECTION: ", "Key Insights\n", "- a"} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL+"/v1", "test")
	stream, err := p.CreateChatCompletionStream(context.Background(), openai.ChatCompletionRequest{
		Model:    "m",
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
		Stream:   true,
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	var chunks int
	got, err := Collect(stream, func(string) { chunks++ })
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got != "SECTION: Key Insights\n- a" || chunks != 3 {
		t.Fatalf("got %q in %d chunks", got, chunks)
	}
}
