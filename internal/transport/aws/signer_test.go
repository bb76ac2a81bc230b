package aws

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransport records the request it is handed.
type captureTransport struct {
	req  *http.Request
	body []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.req = req
	if req.Body != nil {
		c.body, _ = io.ReadAll(req.Body)
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func staticConfig(region string) aws.Config {
	return aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}
}

func TestSigningTransport_SignsOverBody(t *testing.T) {
	next := &captureTransport{}
	st := NewSigningTransport(staticConfig("us-east-1"), "", next)
	st.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	body := `{"labels":["dog"]}`
	req, err := http.NewRequest(http.MethodPut, "https://search.example.com/photos/_doc/abc", strings.NewReader(body))
	require.NoError(t, err)

	_, err = st.RoundTrip(req)
	require.NoError(t, err)
	require.NotNil(t, next.req)

	auth := next.req.Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKID/20260102/us-east-1/es/aws4_request"), auth)
	assert.Equal(t, "20260102T030405Z", next.req.Header.Get("X-Amz-Date"))
	sum := sha256.Sum256([]byte(body))
	assert.Equal(t, hex.EncodeToString(sum[:]), next.req.Header.Get(contentSHA256Header))
	assert.Equal(t, body, string(next.body), "body must reach the wire unchanged")
	assert.Empty(t, req.Header.Get("Authorization"), "caller request must not be mutated")
}

func TestSigningTransport_CustomService(t *testing.T) {
	next := &captureTransport{}
	st := NewSigningTransport(staticConfig("eu-west-1"), "aoss", next)

	req, err := http.NewRequest(http.MethodGet, "https://search.example.com/", nil)
	require.NoError(t, err)
	_, err = st.RoundTrip(req)
	require.NoError(t, err)
	assert.Contains(t, next.req.Header.Get("Authorization"), "/eu-west-1/aoss/aws4_request")
}

func TestSigningTransport_NoCredentials(t *testing.T) {
	next := &captureTransport{}
	st := NewSigningTransport(aws.Config{Region: "us-east-1"}, "es", next)

	req, err := http.NewRequest(http.MethodGet, "https://search.example.com/", nil)
	require.NoError(t, err)
	_, err = st.RoundTrip(req)
	assert.Error(t, err)
	assert.Nil(t, next.req, "unsigned request must not be sent")
}

func TestSigningTransport_CredentialError(t *testing.T) {
	next := &captureTransport{}
	cfg := aws.Config{
		Region: "us-east-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{}, errors.New("expired")
		}),
	}
	st := NewSigningTransport(cfg, "es", next)

	req, err := http.NewRequest(http.MethodGet, "https://search.example.com/", nil)
	require.NoError(t, err)
	_, err = st.RoundTrip(req)
	assert.ErrorContains(t, err, "expired")
	assert.Nil(t, next.req)
}
