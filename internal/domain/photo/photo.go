package photo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 UTC layout of CreatedTimestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Document is the indexed record of one photo (immutable value object).
type Document struct {
	objectKey        string
	bucket           string
	createdTimestamp string
	labels           []string
}

// New builds a Document stamped with the given instant.
// objectKey and bucket must be non-empty; labels are copied as given.
func New(objectKey, bucket string, labels []string, now time.Time) (Document, error) {
	if objectKey == "" {
		return Document{}, fmt.Errorf("object key is required")
	}
	if bucket == "" {
		return Document{}, fmt.Errorf("bucket is required")
	}

	l := make([]string, len(labels))
	copy(l, labels)

	return Document{
		objectKey:        objectKey,
		bucket:           bucket,
		createdTimestamp: now.UTC().Format(TimestampLayout),
		labels:           l,
	}, nil
}

// Reconstruct creates a Document without validation (index hydration).
func Reconstruct(objectKey, bucket, createdTimestamp string, labels []string) Document {
	return Document{objectKey: objectKey, bucket: bucket, createdTimestamp: createdTimestamp, labels: labels}
}

// ObjectKey returns the decoded object key within its bucket.
func (d *Document) ObjectKey() string { return d.objectKey }

// Bucket returns the storage bucket.
func (d *Document) Bucket() string { return d.bucket }

// CreatedTimestamp returns the indexing instant.
func (d *Document) CreatedTimestamp() string { return d.createdTimestamp }

// Labels returns the merged labels.
func (d *Document) Labels() []string { return d.labels }

// ID returns the deterministic index identifier: hex SHA-256 of "bucket/objectKey".
// Re-ingesting the same object lands in the same index slot.
func (d *Document) ID() string {
	return DocumentID(d.bucket, d.objectKey)
}

// DocumentID derives the index identifier for an object.
func DocumentID(bucket, objectKey string) string {
	h := sha256.Sum256([]byte(bucket + "/" + objectKey))
	return hex.EncodeToString(h[:])
}

// DecodeKey URL-decodes an object key as delivered by storage notifications ('+' means space).
// A '%' that does not start a valid escape is kept literally, so "100%.jpg" stays as is.
func DecodeKey(raw string) string {
	if key, err := url.QueryUnescape(raw); err == nil {
		return key
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]):
			b.WriteByte(unhex(raw[i+1])<<4 | unhex(raw[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

// WriteResult is the engine answer to a document write, kept for logging.
type WriteResult struct {
	DocumentID string
	Status     int
	Body       string
}

// OK reports a 2xx engine status.
func (w WriteResult) OK() bool { return w.Status >= 200 && w.Status < 300 }
