// Package media handles recipe image uploads: base64 payloads are decoded,
// content-sniffed and stored under a date-keyed object path.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recipegram/apiserver/internal/storage"
)

// ErrInvalidImage is returned for payloads that do not decode to a
// supported image format.
var ErrInvalidImage = errors.New("invalid image")

var extensionByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Store saves uploaded images into an object-storage backend.
type Store struct {
	objects *storage.Storage
}

func NewStore(objects *storage.Storage) *Store {
	return &Store{objects: objects}
}

// Save decodes a base64 image (optionally a data URL) and writes it under
// img/<year>/<month>/<day>/<random>.<ext>, returning the object key.
func (s *Store) Save(ctx context.Context, encoded string) (string, error) {
	data, contentType, ext, err := Decode(encoded)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("img/%s/%s.%s", time.Now().Format("2006/01/02"), uuid.NewString()[:12], ext)
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Decode strips an optional data-URL header, base64-decodes the payload and
// sniffs its content type.
func Decode(encoded string) (data []byte, contentType, extension string, err error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, "", "", ErrInvalidImage
	}
	if strings.Contains(encoded, ";base64,") {
		_, encoded, _ = strings.Cut(encoded, ";base64,")
	}

	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", "", ErrInvalidImage
	}

	contentType = http.DetectContentType(data)
	extension, ok := extensionByContentType[contentType]
	if !ok {
		return nil, "", "", ErrInvalidImage
	}
	return data, contentType, extension, nil
}
