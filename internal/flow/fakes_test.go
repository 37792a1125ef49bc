package flow

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yesminehe/CVHelperBot/internal/grammar"
	"github.com/yesminehe/CVHelperBot/internal/skills"
	"github.com/yesminehe/CVHelperBot/internal/worker"
)

const (
	testChannel = "chan-1"
	testUser    = "user-1"
)

type fakeTransport struct {
	sent chan string

	mu    sync.Mutex
	files map[string]string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sent: make(chan string, 64), files: make(map[string]string)}
}

func (f *fakeTransport) Send(_ context.Context, _ string, text string) error {
	f.sent <- text
	return nil
}

func (f *fakeTransport) Open(_ context.Context, att Attachment) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.files[att.Filename]
	if !ok {
		return nil, fmt.Errorf("no such attachment %s", att.Filename)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeTransport) put(name, body string) Attachment {
	f.mu.Lock()
	f.files[name] = body
	f.mu.Unlock()
	return Attachment{ID: name, Filename: name, URL: "https://cdn.example.com/" + name}
}

// fakeExtractor treats the uploaded bytes as the document text.
type fakeExtractor struct {
	calls atomic.Int32
}

func (f *fakeExtractor) Extract(_ context.Context, r io.Reader) (string, error) {
	f.calls.Add(1)
	b, err := io.ReadAll(r)
	return string(b), err
}

type fakeGrammar struct {
	issues []grammar.Issue
}

func (f *fakeGrammar) Check(context.Context, string) ([]grammar.Issue, error) {
	return f.issues, nil
}

type fakeGenerator struct {
	feedback  string
	questions string
	courses   string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	switch {
	case strings.Contains(prompt, "Interview Questions:"):
		return f.questions, nil
	case strings.Contains(prompt, "lacks these skills"):
		return f.courses, nil
	default:
		return f.feedback, nil
	}
}

type fakeFetcher struct {
	text string
}

func (f *fakeFetcher) Fetch(context.Context, string) string {
	return f.text
}

type harness struct {
	t         *testing.T
	transport *fakeTransport
	router    *Router
	extractor *fakeExtractor
	generator *fakeGenerator
	grammar   *fakeGrammar
	fetcher   *fakeFetcher
	settings  Settings
	ctrl      *Controller
}

func newHarness(t *testing.T, tune func(*Settings)) *harness {
	t.Helper()
	settings := DefaultSettings()
	settings.UploadTimeout = 2 * time.Second
	settings.TextTimeout = 2 * time.Second
	settings.ConsentTimeout = 2 * time.Second
	settings.AnswerTimeout = 2 * time.Second
	if tune != nil {
		tune(&settings)
	}

	h := &harness{
		t:         t,
		transport: newFakeTransport(),
		router:    NewRouter(),
		extractor: &fakeExtractor{},
		generator: &fakeGenerator{feedback: "Solid CV with clear experience."},
		grammar:   &fakeGrammar{},
		fetcher:   &fakeFetcher{},
		settings:  settings,
	}

	cmds, err := NewCommands(Services{
		Extractor:     h.extractor,
		Grammar:       h.grammar,
		Generator:     h.generator,
		Fetcher:       h.fetcher,
		CompareSkills: skills.Heuristic{},
		MatchSkills:   skills.Keyword{},
		Pool:          worker.NewPool(2),
	}, settings)
	require.NoError(t, err)

	h.ctrl = NewController(cmds.Registry(), h.router, h.transport, settings.Prefix)
	return h
}

func (h *harness) run(content string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.ctrl.Execute(context.Background(), Message{ChannelID: testChannel, AuthorID: testUser, Content: content})
	}()
	return done
}

// expect reads the next message the bot sent and checks it contains want.
func (h *harness) expect(want string) string {
	h.t.Helper()
	select {
	case msg := <-h.transport.sent:
		require.Contains(h.t, msg, want)
		return msg
	case <-time.After(3 * time.Second):
		h.t.Fatalf("timed out waiting for bot message containing %q", want)
		return ""
	}
}

func (h *harness) say(content string) {
	h.t.Helper()
	require.True(h.t, h.router.Publish(Message{ChannelID: testChannel, AuthorID: testUser, Content: content}),
		"nobody was waiting for %q", content)
}

func (h *harness) upload(name, text string) {
	h.t.Helper()
	att := h.transport.put(name, text)
	require.True(h.t, h.router.Publish(Message{ChannelID: testChannel, AuthorID: testUser, Attachments: []Attachment{att}}))
}

func (h *harness) finish(done <-chan struct{}) {
	h.t.Helper()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		h.t.Fatal("command did not finish")
	}
	select {
	case msg := <-h.transport.sent:
		h.t.Fatalf("unexpected extra message %q", msg)
	default:
	}
	require.Zero(h.t, h.router.Pending())
}
