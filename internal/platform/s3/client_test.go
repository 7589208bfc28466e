package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swarmconfig "github.com/imamik/swarmflow/internal/config"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient:   server.Client(),
	})

	return &Client{s3: client, bucket: "secrets"}
}

func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func xmlError(code string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>%s</Code>
  <Message>%s</Message>
</Error>`, code, code)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), swarmconfig.BackupConfig{
		Endpoint:  "https://fsn1.your-objectstorage.com",
		Region:    "fsn1",
		Bucket:    "secrets",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "secrets", client.Bucket())

	_, err = NewClient(context.Background(), swarmconfig.BackupConfig{Region: "fsn1"})
	require.Error(t, err)
}

func TestBucketExists(t *testing.T) {
	t.Parallel()

	t.Run("exists", func(t *testing.T) {
		t.Parallel()
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			assert.Equal(t, "/secrets", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		exists, err := client.BucketExists(context.Background())
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			xmlResponse(w, http.StatusNotFound, xmlError("NotFound"))
		}))
		exists, err := client.BucketExists(context.Background())
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("denied", func(t *testing.T) {
		t.Parallel()
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			xmlResponse(w, http.StatusForbidden, xmlError("AccessDenied"))
		}))
		_, err := client.BucketExists(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check bucket secrets")
	})
}

func TestEnsureBucket_Creates(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var methods []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		switch r.Method {
		case http.MethodHead:
			xmlResponse(w, http.StatusNotFound, xmlError("NotFound"))
		case http.MethodPut:
			xmlResponse(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?><CreateBucketResult/>`)
		}
	}))

	require.NoError(t, client.EnsureBucket(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{http.MethodHead, http.MethodPut}, methods)
}

func TestEnsureBucket_AlreadyOwned(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			xmlResponse(w, http.StatusNotFound, xmlError("NotFound"))
			return
		}
		xmlResponse(w, http.StatusConflict, xmlError("BucketAlreadyOwnedByYou"))
	}))

	require.NoError(t, client.EnsureBucket(context.Background()))
}

func TestUploadFile(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotPath string
	var gotBody []byte
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	path := filepath.Join(t.TempDir(), "airflow.env.enc")
	require.NoError(t, os.WriteFile(path, []byte("ciphertext"), 0o600))

	require.NoError(t, client.UploadFile(context.Background(), "airflow/airflow.env.enc", path))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/secrets/airflow/airflow.env.enc", gotPath)
	assert.Equal(t, "ciphertext", string(gotBody))
}

func TestUploadFile_Missing(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}))

	err := client.UploadFile(context.Background(), "k", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, http.StatusForbidden, xmlError("AccessDenied"))
	}))

	err := client.PutObject(context.Background(), "airflow/x.enc", []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object airflow/x.enc in bucket secrets")
}

func TestListObjects(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "airflow/", r.URL.Query().Get("prefix"))
		xmlResponse(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>secrets</Name>
  <Prefix>airflow/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>airflow/a.enc</Key><Size>1</Size></Contents>
  <Contents><Key>airflow/b.enc</Key><Size>2</Size></Contents>
</ListBucketResult>`)
	}))

	keys, err := client.ListObjects(context.Background(), "airflow/")
	require.NoError(t, err)
	assert.Equal(t, []string{"airflow/a.enc", "airflow/b.enc"}, keys)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, isBucketAlreadyOwnedByYou(fmt.Errorf("outer: %w", &s3types.BucketAlreadyOwnedByYou{})))
	assert.False(t, isBucketAlreadyOwnedByYou(fmt.Errorf("outer: %w", &s3types.BucketAlreadyExists{})))
	assert.False(t, isBucketAlreadyOwnedByYou(nil))

	assert.True(t, isNotFoundError(fmt.Errorf("outer: %w", &s3types.NoSuchBucket{})))
	assert.True(t, isNotFoundError(&s3types.NotFound{}))
	assert.False(t, isNotFoundError(fmt.Errorf("inner error")))
	assert.False(t, isNotFoundError(nil))
}
