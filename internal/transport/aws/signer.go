package aws

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// DefaultSigningService is the SigV4 service name of managed OpenSearch domains.
const DefaultSigningService = "es"

const contentSHA256Header = "X-Amz-Content-Sha256"

// SigningTransport is an http.RoundTripper that signs index engine requests
// with SigV4 using one identity for the process lifetime.
type SigningTransport struct {
	creds   aws.CredentialsProvider
	signer  *v4.Signer
	service string
	region  string
	next    http.RoundTripper
	now     func() time.Time
}

// NewSigningTransport wraps next (http.DefaultTransport when nil) with SigV4 signing.
func NewSigningTransport(awsCfg aws.Config, service string, next http.RoundTripper) *SigningTransport {
	if service == "" {
		service = DefaultSigningService
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return &SigningTransport{
		creds:   awsCfg.Credentials,
		signer:  v4.NewSigner(),
		service: service,
		region:  awsCfg.Region,
		next:    next,
		now:     time.Now,
	}
}

// RoundTrip signs a copy of req over its exact body and sends it.
func (t *SigningTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	payload, err := drainBody(req)
	if err != nil {
		return nil, fmt.Errorf("sigv4: read body: %w", err)
	}
	if t.creds == nil {
		return nil, fmt.Errorf("sigv4: no aws credentials configured")
	}

	ctx := req.Context()
	creds, err := t.creds.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("sigv4: retrieve credentials: %w", err)
	}

	signed := req.Clone(ctx)
	if payload != nil {
		signed.Body = io.NopCloser(bytes.NewReader(payload))
		signed.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(payload)), nil }
		signed.ContentLength = int64(len(payload))
	}

	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])
	signed.Header.Set(contentSHA256Header, hash)
	if err := t.signer.SignHTTP(ctx, creds, signed, hash, t.service, t.region, t.now()); err != nil {
		return nil, fmt.Errorf("sigv4: %w", err)
	}
	return t.next.RoundTrip(signed)
}

// drainBody reads the full request body and closes the original.
// It returns nil for a request without a body.
func drainBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return io.ReadAll(req.Body)
}
