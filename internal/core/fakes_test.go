package core

import (
	"context"
	"errors"
	"sync"

	"thrive-chatbot/internal/llm"
	"thrive-chatbot/pkg"
)

type completeCall struct {
	Messages []pkg.Message
	Opts     llm.Options
}

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   []completeCall
	singles []string
}

func (f *fakeLLM) Complete(_ context.Context, messages []pkg.Message, opts llm.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]pkg.Message, len(messages))
	copy(cp, messages)
	f.calls = append(f.calls, completeCall{Messages: cp, Opts: opts})
	return f.reply, f.err
}

func (f *fakeLLM) CompleteSingle(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singles = append(f.singles, prompt)
	return f.reply, f.err
}

type fakeStore struct {
	profiles map[string]pkg.UserProfile
	entries  map[string]pkg.HealthEntry
	err      error
	lookups  int
}

func (f *fakeStore) FetchProfile(_ context.Context, userID string) (pkg.UserProfile, error) {
	f.lookups++
	if f.err != nil {
		return pkg.UserProfile{}, f.err
	}
	return f.profiles[userID], nil
}

func (f *fakeStore) FetchLatestEntry(_ context.Context, userID string) (pkg.HealthEntry, error) {
	if f.err != nil {
		return pkg.HealthEntry{}, f.err
	}
	return f.entries[userID], nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract([]byte) (string, error) { return f.text, f.err }

var errBoom = errors.New("boom")

func intPtr(n int) *int { return &n }
