package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobInfo describes one stored blob.
type BlobInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// ListResult is one page of blob listings. NextMarker is empty when the
// listing is exhausted.
type ListResult struct {
	Blobs      []BlobInfo `json:"blobs"`
	NextMarker string     `json:"next_marker,omitempty"`
}

// ParseMaxResults parses a max_results query value, clamping to limit.
// An empty value yields the limit itself.
func ParseMaxResults(s string, limit int32) (int32, error) {
	if s == "" {
		return limit, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid max_results: %q", s)
	}
	return min(int32(n), limit), nil
}

// List returns one page of blobs under prefix, starting at marker.
func (a *azure) List(ctx context.Context, prefix, marker string, maxResults int32) (*ListResult, error) {
	opts := &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: &maxResults,
	}
	if marker != "" {
		opts.Marker = &marker
	}

	pager := a.client.NewListBlobsFlatPager(a.container, opts)
	if !pager.More() {
		return &ListResult{}, nil
	}

	page, err := pager.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	result := &ListResult{
		Blobs: make([]BlobInfo, 0, len(page.Segment.BlobItems)),
	}
	for _, item := range page.Segment.BlobItems {
		info := BlobInfo{}
		if item.Name != nil {
			info.Key = *item.Name
		}
		if item.Properties != nil {
			if item.Properties.ContentLength != nil {
				info.Size = *item.Properties.ContentLength
			}
			if item.Properties.ContentType != nil {
				info.ContentType = *item.Properties.ContentType
			}
			if item.Properties.LastModified != nil {
				info.LastModified = *item.Properties.LastModified
			}
		}
		result.Blobs = append(result.Blobs, info)
	}
	if page.NextMarker != nil {
		result.NextMarker = *page.NextMarker
	}

	return result, nil
}
