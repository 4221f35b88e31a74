package catalog

import (
	"context"
	"strings"

	"github.com/example/rentalshop/pkg/apperr"
)

// ImageUploader stores embedded image data and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, data string) (string, error)
}

func isDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:image/")
}

// resolveImage uploads data URIs and passes plain references through.
func resolveImage(ctx context.Context, up ImageUploader, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || !isDataURI(ref) {
		return ref, nil
	}
	if up == nil {
		return "", apperr.Validation("Image upload is not configured")
	}
	url, err := up.Upload(ctx, ref)
	if err != nil {
		return "", apperr.Internal("Failed to upload image", err)
	}
	return url, nil
}

func resolveImages(ctx context.Context, up ImageUploader, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		url, err := resolveImage(ctx, up, ref)
		if err != nil {
			return nil, err
		}
		if url != "" {
			out = append(out, url)
		}
	}
	return out, nil
}
