// Package files resolves and stores uploaded prescription files in Cloud
// Storage.
package files

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

var ErrNoBucket = errors.New("storage bucket is not configured")

type Resolver interface {
	// URL returns a browser-usable link for ref. gs:// references are
	// signed; anything else is returned unchanged.
	URL(ctx context.Context, ref string) (string, error)
}

// Signer produces a signed GET URL for one object.
type Signer func(bucket, object string, expires time.Time) (string, error)

type Store struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
	sign   Signer
	now    func() time.Time
}

func NewStore(client *storage.Client, bucket string, ttl time.Duration) *Store {
	s := &Store{client: client, bucket: bucket, ttl: ttl, now: time.Now}
	s.sign = func(b, object string, expires time.Time) (string, error) {
		return client.Bucket(b).SignedURL(object, &storage.SignedURLOptions{
			Scheme:  storage.SigningSchemeV4,
			Method:  http.MethodGet,
			Expires: expires,
		})
	}
	return s
}

func (s *Store) URL(_ context.Context, ref string) (string, error) {
	bucket, object, ok := parseGS(ref)
	if !ok {
		return ref, nil
	}
	if s.sign == nil {
		return "", ErrNoBucket
	}
	signed, err := s.sign(bucket, object, s.now().Add(s.ttl))
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", ref, err)
	}
	return signed, nil
}

// Upload writes data under prescriptions/ in the configured bucket and
// returns its gs:// reference.
func (s *Store) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if s.client == nil || s.bucket == "" {
		return "", ErrNoBucket
	}
	objectPath := fmt.Sprintf("prescriptions/%s-%s", uuid.NewString(), url.PathEscape(name))
	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return "gs://" + s.bucket + "/" + objectPath, nil
}

func parseGS(ref string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(ref, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// Passthrough returns references unchanged. Used when no bucket is configured.
type Passthrough struct{}

func (Passthrough) URL(_ context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "gs://") {
		return "", ErrNoBucket
	}
	return ref, nil
}
