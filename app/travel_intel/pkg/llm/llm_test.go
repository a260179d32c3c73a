package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
)

const itemsSchema = `{
	"type": "object",
	"required": ["items"],
	"properties": {
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["summary", "source"],
				"properties": {
					"summary": {"type": "string"},
					"source": {"type": "string"}
				}
			}
		}
	}
}`

type fakeChat struct {
	content string
	err     error
	calls   int
	got     []*schema.Message
}

func (f *fakeChat) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.content}, nil
}

func newTestGenerator(chats map[string]*fakeChat) (*EinoGenerator, *int) {
	created := 0
	g := NewEinoGenerator(config.LLMConfig{}, config.ConcurrencyConfig{RPM: 6000, QPS: 100})
	g.newModel = func(ctx context.Context, name string) (chatModel, error) {
		created++
		cm, ok := chats[name]
		if !ok {
			return nil, errors.New("unknown model")
		}
		return cm, nil
	}
	return g, &created
}

func TestEinoGenerator_Generate(t *testing.T) {
	sch := MustCompileSchema("items", itemsSchema)
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", `{"items":[{"summary":"s","source":"https://a.example"}]}`, false},
		{"fenced", "```json\n{\"items\":[]}\n```", false},
		{"bare fence", "```\n{\"items\":[]}\n```", false},
		{"missing field", `{"items":[{"summary":"s"}]}`, true},
		{"not json", `Sure! Here is the summary.`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGenerator(map[string]*fakeChat{"m": {content: tt.content}})
			out, err := g.Generate(context.Background(), "prompt", sch, "m")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOutput) {
					t.Errorf("Generate() error = %v, want ErrInvalidOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if err := sch.Validate(out); err != nil {
				t.Errorf("output does not validate: %v", err)
			}
		})
	}
}

func TestEinoGenerator_Messages(t *testing.T) {
	chat := &fakeChat{content: `{"items":[]}`}
	g, _ := newTestGenerator(map[string]*fakeChat{"m": chat})
	if _, err := g.Generate(context.Background(), "summarize this", nil, "m"); err != nil {
		t.Fatal(err)
	}
	if len(chat.got) != 2 || chat.got[0].Role != schema.System || chat.got[1].Content != "summarize this" {
		t.Errorf("messages = %+v", chat.got)
	}
}

func TestEinoGenerator_ModelCache(t *testing.T) {
	g, created := newTestGenerator(map[string]*fakeChat{
		"primary":  {content: `{}`},
		"fallback": {content: `{}`},
	})
	for _, m := range []string{"primary", "primary", "fallback", "primary"} {
		if _, err := g.Generate(context.Background(), "p", nil, m); err != nil {
			t.Fatalf("Generate(%s) error = %v", m, err)
		}
	}
	if *created != 2 {
		t.Errorf("models created = %d, want 2", *created)
	}
}

func TestEinoGenerator_Errors(t *testing.T) {
	boom := errors.New("503 service unavailable")
	g, _ := newTestGenerator(map[string]*fakeChat{"m": {err: boom}})

	if _, err := g.Generate(context.Background(), "p", nil, "m"); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
	if _, err := g.Generate(context.Background(), "p", nil, "other"); err == nil {
		t.Error("expected init error for unknown model")
	}
	if _, err := g.Generate(context.Background(), "p", nil, ""); err == nil {
		t.Error("expected error for empty model name")
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	if _, err := CompileSchema("bad", `{"type": 12}`); err == nil {
		t.Error("expected compile error")
	}
}
