// Package drive lists and streams law PDFs from Google Drive or a local folder.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"thai-legal-rag/internal/domain"
)

// MIME types the law folder is expected to hold.
const (
	MimeTypePDF       = "application/pdf"
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypeFolder    = "application/vnd.google-apps.folder"
)

const (
	listFields  = "nextPageToken, files(id, name, mimeType)"
	pageSize    = 200
	maxAttempts = 3
)

// Client implements domain.PDFSource over the Drive v3 API.
type Client struct {
	svc     *drive.Service
	limiter *RateLimiter
	log     *zap.Logger
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		if r != nil {
			c.limiter = r
		}
	}
}

// NewClient authenticates with the cached OAuth token.
func NewClient(ctx context.Context, creds Credentials, opts ...Option) (*Client, error) {
	ts, err := creds.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewClientWithService(svc, opts...), nil
}

// NewClientWithService wraps an existing service.
func NewClientWithService(svc *drive.Service, opts ...Option) *Client {
	c := &Client{svc: svc, limiter: NewRateLimiter(DefaultRateLimit), log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListPDFs returns PDFs and Google Docs under folderID, descending into subfolders.
func (c *Client) ListPDFs(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	if folderID == "" {
		return nil, ErrFolderNotConfigured
	}
	var out []domain.RemoteFile
	if err := c.walk(ctx, folderID, &out); err != nil {
		return nil, err
	}
	c.log.Info("drive folder listed", zap.String("folder", folderID), zap.Int("files", len(out)))
	return out, nil
}

func (c *Client) walk(ctx context.Context, folderID string, out *[]domain.RemoteFile) error {
	q := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	var subfolders []string
	pageToken := ""
	for {
		var list *drive.FileList
		err := c.call(ctx, func() error {
			call := c.svc.Files.List().Q(q).Fields(listFields).PageSize(pageSize).OrderBy("name").Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			list, err = call.Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("list folder %s: %w", folderID, err)
		}
		for _, f := range list.Files {
			switch f.MimeType {
			case MimeTypeFolder:
				subfolders = append(subfolders, f.Id)
			case MimeTypePDF, MimeTypeGoogleDoc:
				*out = append(*out, domain.RemoteFile{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
			}
		}
		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}
	for _, id := range subfolders {
		if err := c.walk(ctx, id, out); err != nil {
			return err
		}
	}
	return nil
}

// StreamPDF downloads a file; Google Docs are exported as PDF.
func (c *Client) StreamPDF(ctx context.Context, fileID string) ([]byte, error) {
	var meta *drive.File
	err := c.call(ctx, func() error {
		var err error
		meta, err = c.svc.Files.Get(fileID).Fields("mimeType, name").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}

	var data []byte
	err = c.call(ctx, func() error {
		var resp *http.Response
		var err error
		if meta.MimeType == MimeTypeGoogleDoc {
			resp, err = c.svc.Files.Export(fileID, MimeTypePDF).Context(ctx).Download()
		} else {
			resp, err = c.svc.Files.Get(fileID).Context(ctx).Download()
		}
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	return data, nil
}

// call runs fn under the rate limiter, retrying on 429.
func (c *Client) call(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return werr
		}
		err = fn()
		var gerr *googleapi.Error
		if !errors.As(err, &gerr) || gerr.Code != http.StatusTooManyRequests {
			return err
		}
		retry := retryAfter(gerr.Header)
		c.log.Warn("drive rate limited", zap.Int("attempt", attempt+1), zap.Duration("retry_after", retry))
		c.limiter.RecordRateLimitError(retry)
	}
	return err
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
