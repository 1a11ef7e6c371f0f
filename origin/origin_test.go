package origin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

type statusCodeError struct{ code int }

func (e *statusCodeError) Error() string       { return "http error" }
func (e *statusCodeError) HTTPStatusCode() int { return e.code }

// Helper functions

func testHTTPConfig(serverURL string) HTTPConfig {
	cfg := DefaultConfig().HTTP
	cfg.URLTemplate = serverURL + "/emojis/{id}?size=160&animated=true"
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

// Tests

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, TypeHTTP, config.Type)
	assert.Equal(t, "https://cdn.discordapp.com/emojis/{id}?size=160&animated=true", config.HTTP.URLTemplate)
	assert.Equal(t, "image/webp,image/*", config.HTTP.Accept)
	assert.NoError(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name        string
		modify      func(c *Config)
		expectError bool
	}{
		{"Valid config", func(c *Config) {}, false},
		{"Mock type", func(c *Config) { c.Type = TypeMock }, false},
		{"Unknown type", func(c *Config) { c.Type = "ftp" }, true},
		{"Zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, true},
		{"Template without placeholder", func(c *Config) { c.HTTP.URLTemplate = "https://cdn.example/emojis/x" }, true},
		{"Template not http", func(c *Config) { c.HTTP.URLTemplate = "ftp://cdn.example/{id}" }, true},
		{"Zero connect timeout", func(c *Config) { c.HTTP.ConnectTimeout = 0 }, true},
		{"Zero request timeout", func(c *Config) { c.HTTP.RequestTimeout = 0 }, true},
		{"S3 without bucket", func(c *Config) { c.Type = TypeS3 }, true},
		{"S3 valid", func(c *Config) { c.Type = TypeS3; c.S3.Bucket = "emojis" }, false},
		{"S3 half credentials", func(c *Config) { c.Type = TypeS3; c.S3.Bucket = "emojis"; c.S3.AccessKey = "AK" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.modify(config)
			err := config.Validate()
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPOrigin_Success(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/webp")
		w.Write([]byte("RIFF-bytes"))
	}))
	defer server.Close()

	o := NewHTTPOrigin(testHTTPConfig(server.URL), 1<<20)
	asset, err := o.Fetch(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, "/emojis/123", gotPath)
	assert.Equal(t, "size=160&animated=true", gotQuery)
	assert.Equal(t, "image/webp,image/*", gotAccept)
	assert.Contains(t, gotUA, "emoji-resizer")

	assert.Equal(t, "123", asset.ID)
	assert.Equal(t, []byte("RIFF-bytes"), asset.Data)
	assert.Equal(t, "image/webp", asset.ContentType)
	assert.Equal(t, server.URL+"/emojis/123?size=160&animated=true", asset.SourceURL)
}

func TestHTTPOrigin_SourceURLEscapesID(t *testing.T) {
	o := NewHTTPOrigin(testHTTPConfig("https://cdn.example"), 1<<20)
	assert.Equal(t, "https://cdn.example/emojis/a%2Fb?size=160&animated=true", o.SourceURL("a/b"))
}

func TestHTTPOrigin_StatusMapping(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		}},
		{"forbidden", http.StatusForbidden, func(t *testing.T, err error) {
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
		}},
		{"not modified", http.StatusNotModified, func(t *testing.T, err error) {
			var statusErr *StatusError
			assert.True(t, errors.As(err, &statusErr))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			o := NewHTTPOrigin(testHTTPConfig(server.URL), 1<<20)
			asset, err := o.Fetch(context.Background(), "1")
			assert.Nil(t, asset)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestHTTPOrigin_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	o := NewHTTPOrigin(testHTTPConfig(url), 1<<20)
	_, err := o.Fetch(context.Background(), "1")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "1", fetchErr.ID)
}

func TestHTTPOrigin_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testHTTPConfig(server.URL)
	cfg.RequestTimeout = 100 * time.Millisecond
	o := NewHTTPOrigin(cfg, 1<<20)

	_, err := o.Fetch(context.Background(), "slow")
	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestHTTPOrigin_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewHTTPOrigin(testHTTPConfig(server.URL), 1<<20)
	_, err := o.Fetch(ctx, "1")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPOrigin_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	o := NewHTTPOrigin(testHTTPConfig(server.URL), 32)
	_, err := o.Fetch(context.Background(), "big")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, err.Error(), "exceeds 32 bytes")
}

func TestS3Origin_Success(t *testing.T) {
	client := &MockS3Client{}
	client.On("GetObject", "emoji-bucket", "emojis/42").Return(&s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader("payload")),
		ContentType: aws.String("image/png"),
	}, nil)

	o := newS3OriginWithClient(S3Config{Bucket: "emoji-bucket", Prefix: "emojis/"}, client, 1<<20)
	asset, err := o.Fetch(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, []byte("payload"), asset.Data)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, "s3://emoji-bucket/emojis/42", asset.SourceURL)
	client.AssertExpectations(t)
}

func TestS3Origin_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{"NoSuchKey type", &types.NoSuchKey{}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"NotFound type", &types.NotFound{}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"generic NoSuchKey code", &smithy.GenericAPIError{Code: "NoSuchKey"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"http 404", &statusCodeError{code: 404}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"http 403", &statusCodeError{code: 403}, func(t *testing.T, err error) {
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, 403, statusErr.StatusCode)
		}},
		{"network", errors.New("dial tcp: connection refused"), func(t *testing.T, err error) {
			var fetchErr *FetchError
			assert.True(t, errors.As(err, &fetchErr))
		}},
		{"deadline", context.DeadlineExceeded, func(t *testing.T, err error) {
			var fetchErr *FetchError
			assert.True(t, errors.As(err, &fetchErr))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := &MockS3Client{}
			client.On("GetObject", "b", "x").Return(nil, tc.err)

			o := newS3OriginWithClient(S3Config{Bucket: "b"}, client, 1<<20)
			asset, err := o.Fetch(context.Background(), "x")
			assert.Nil(t, asset)
			tc.check(t, err)
		})
	}
}

func TestMockOrigin(t *testing.T) {
	o := NewMockOrigin()
	o.Set("1", []byte("one"))
	o.SetStatus("2", http.StatusBadGateway)
	o.SetStatus("3", http.StatusNotFound)
	o.SetError("4", errors.New("reset by peer"))

	asset, err := o.Fetch(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), asset.Data)
	assert.Equal(t, "mock://emojis/1", asset.SourceURL)

	var statusErr *StatusError
	_, err = o.Fetch(context.Background(), "2")
	assert.True(t, errors.As(err, &statusErr))

	_, err = o.Fetch(context.Background(), "3")
	assert.ErrorIs(t, err, ErrNotFound)

	var fetchErr *FetchError
	_, err = o.Fetch(context.Background(), "4")
	assert.True(t, errors.As(err, &fetchErr))

	_, err = o.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, o.Calls("1"))
	assert.Equal(t, 0, o.Calls("never"))
}

func TestInstrumented_RecordsMetrics(t *testing.T) {
	mockOrigin := NewMockOrigin()
	mockOrigin.Set("1", []byte("12345"))
	o := Instrument(mockOrigin, prometheus.NewRegistry())

	_, err := o.Fetch(context.Background(), "1")
	require.NoError(t, err)
	_, err = o.Fetch(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, float64(1), testutil.ToFloat64(o.metrics.RequestsTotal.WithLabelValues("mock", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(o.metrics.RequestsTotal.WithLabelValues("mock", "not_found")))
	assert.Equal(t, float64(5), testutil.ToFloat64(o.metrics.BytesRead.WithLabelValues("mock")))
	assert.Same(t, mockOrigin, o.Unwrap())
	assert.Equal(t, "mock://emojis/1", o.SourceURL("1"))
}

func TestNew(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = TypeMock

	o, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, TypeMock, o.Name())
	_, ok := o.Unwrap().(*MockOrigin)
	assert.True(t, ok)

	cfg.Type = "bogus"
	_, err = New(context.Background(), cfg, prometheus.NewRegistry())
	assert.Error(t, err)
}

