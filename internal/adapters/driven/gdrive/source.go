package gdrive

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/core/ports/driven"
	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/extract"
)

// maxDownloadSize caps reads of individual files (12MB, slightly above
// the assembler's own per-file limit so the limit check stays in one
// place).
const maxDownloadSize = 12 * 1024 * 1024

// Source implements the document source port against Google Drive.
type Source struct {
	svc     *drive.Service
	limiter *RateLimiter
}

var _ driven.DocumentSource = (*Source)(nil)

// NewSource creates a Drive-backed document source. limiter may be nil
// to disable client-side rate limiting.
func NewSource(svc *drive.Service, limiter *RateLimiter) *Source {
	return &Source{svc: svc, limiter: limiter}
}

// ListFolders returns the immediate subfolders of parentID.
func (s *Source) ListFolders(ctx context.Context, parentID string) ([]driven.Folder, error) {
	query := fmt.Sprintf(
		"'%s' in parents and mimeType='%s' and trashed=false",
		parentID, extract.MimeFolder,
	)

	var folders []driven.Folder
	pageToken := ""
	for {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		call := s.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			s.recordRateLimit(err)
			return nil, fmt.Errorf("list folders: %w", WrapError(err))
		}

		for _, f := range list.Files {
			folders = append(folders, driven.Folder{ID: f.Id, Name: f.Name})
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			return folders, nil
		}
	}
}

// ListFiles returns the files directly inside folderID.
func (s *Source) ListFiles(ctx context.Context, folderID string) ([]driven.File, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var files []driven.File
	pageToken := ""
	for {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		call := s.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType, size)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			s.recordRateLimit(err)
			return nil, fmt.Errorf("list files: %w", WrapError(err))
		}

		for _, f := range list.Files {
			files = append(files, driven.File{
				ID:       f.Id,
				Name:     f.Name,
				MIMEType: f.MimeType,
				Size:     f.Size,
			})
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

// Download fetches the raw bytes of a regular file.
func (s *Source) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		s.recordRateLimit(err)
		return nil, fmt.Errorf("download file: %w", WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	return data, nil
}

// ExportText exports a Google Workspace document as plain text.
func (s *Source) ExportText(ctx context.Context, fileID string) ([]byte, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.svc.Files.Export(fileID, extract.MimeText).Context(ctx).Download()
	if err != nil {
		s.recordRateLimit(err)
		return nil, fmt.Errorf("export file: %w", WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return data, nil
}

func (s *Source) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

func (s *Source) recordRateLimit(err error) {
	if s.limiter != nil && IsRateLimited(err) {
		s.limiter.RecordRateLimitError(0)
	}
}
