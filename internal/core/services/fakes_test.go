package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/domain"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
)

// fakeKV is an in-memory KVStore with switchable failure modes.
type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	delErr  error
	setKeys []string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = append([]byte(nil), value...)
	f.setKeys = append(f.setKeys, key)
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

var _ driven.KVStore = (*fakeKV)(nil)

// fakeFile is one document in a fakeSource folder.
type fakeFile struct {
	file    driven.File
	content []byte
	err     error
}

// fakeSource is a scripted DocumentSource.
type fakeSource struct {
	folders    []driven.Folder
	files      map[string][]fakeFile // folder ID -> files
	listErr    error
	folderErrs map[string]error // folder ID -> ListFiles error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		files:      map[string][]fakeFile{},
		folderErrs: map[string]error{},
	}
}

func (f *fakeSource) addFolder(id, name string) {
	f.folders = append(f.folders, driven.Folder{ID: id, Name: name})
}

func (f *fakeSource) addFile(folderID, id, name, mimeType string, content []byte) {
	f.files[folderID] = append(f.files[folderID], fakeFile{
		file: driven.File{
			ID:       id,
			Name:     name,
			MIMEType: mimeType,
			Size:     int64(len(content)),
		},
		content: content,
	})
}

func (f *fakeSource) ListFolders(_ context.Context, _ string) ([]driven.Folder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.folders, nil
}

func (f *fakeSource) ListFiles(_ context.Context, folderID string) ([]driven.File, error) {
	if err := f.folderErrs[folderID]; err != nil {
		return nil, err
	}
	files := make([]driven.File, 0, len(f.files[folderID]))
	for _, entry := range f.files[folderID] {
		files = append(files, entry.file)
	}
	return files, nil
}

func (f *fakeSource) Download(_ context.Context, fileID string) ([]byte, error) {
	return f.lookup(fileID)
}

func (f *fakeSource) ExportText(_ context.Context, fileID string) ([]byte, error) {
	return f.lookup(fileID)
}

func (f *fakeSource) lookup(fileID string) ([]byte, error) {
	for _, files := range f.files {
		for _, entry := range files {
			if entry.file.ID == fileID {
				if entry.err != nil {
					return nil, entry.err
				}
				return entry.content, nil
			}
		}
	}
	return nil, errors.New("file not found")
}

var _ driven.DocumentSource = (*fakeSource)(nil)

// fakeFallback returns a fixed fallback payload.
type fakeFallback struct {
	content string
}

func (f *fakeFallback) Payload() *domain.VaultPayload {
	content := f.content
	if content == "" {
		content = "=== FALLBACK VAULT ===\nEmergency business context."
	}
	return &domain.VaultPayload{
		Content:       content,
		TokenEstimate: domain.EstimateTokens(content),
		EstimatedCost: domain.EstimateCost(domain.EstimateTokens(content)),
		FoldersLoaded: []string{"fallback"},
		Status:        domain.StatusFallback,
	}
}

var _ driven.FallbackStore = (*fakeFallback)(nil)

// fakeLLM is a scripted LLMService.
type fakeLLM struct {
	name    string
	reply   string
	err     error
	calls   int
	lastMsg []driven.ChatMessage
}

func (f *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	f.calls++
	f.lastMsg = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string {
	return f.name
}

var _ driven.LLMService = (*fakeLLM)(nil)

// seedCache encodes a payload and stores it under key, bypassing the
// manager. Panics on failure since this is test setup.
func seedCache(kv *fakeKV, key, content string) {
	payload := domain.NewOperationalPayload(content, []string{"00_EnforcementShell"}, 2)
	entry, err := EncodeEntry(payload)
	if err != nil {
		panic(fmt.Sprintf("seed cache: %v", err))
	}
	data, err := json.Marshal(entry)
	if err != nil {
		panic(fmt.Sprintf("seed cache: %v", err))
	}
	kv.data[key] = data
}
