// Package objectstore keeps uploaded report files and field photos. The live
// backend is any S3-compatible bucket; demo mode keeps objects in memory.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

type Store interface {
	// Put stores data under key. An empty contentType is sniffed from data.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// SignedURL returns a time-limited read URL that suggests downloadName
	// to the browser.
	SignedURL(ctx context.Context, key, downloadName string, ttl time.Duration) (string, error)
	// List returns every key under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// DeletePrefix removes every object under prefix and reports how many
	// were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

func contentTypeOf(data []byte, contentType string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	return mimetype.Detect(data).String()
}

// contentDisposition keeps non-ASCII names intact via the RFC 5987 form.
func contentDisposition(name string) string {
	if name == "" {
		return "attachment"
	}
	return fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name))
}

// folder makes prefix match whole path segments only.
func folder(prefix string) string {
	if prefix == "" || prefix[len(prefix)-1] == '/' {
		return prefix
	}
	return prefix + "/"
}
