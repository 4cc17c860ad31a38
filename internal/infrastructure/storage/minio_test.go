package storage

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 trả về danh sách object cố định và từ chối mọi multi-delete.
func fakeS3(t *testing.T, keys []string, deletes *int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case r.Method == http.MethodGet && q.Get("list-type") == "2":
			var contents strings.Builder
			for _, key := range keys {
				fmt.Fprintf(&contents,
					`<Contents><Key>%s</Key><LastModified>2024-01-01T00:00:00.000Z</LastModified><ETag>"e"</ETag><Size>1</Size><StorageClass>STANDARD</StorageClass></Contents>`,
					key)
			}
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w,
				`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>media</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>%s</ListBucketResult>`,
				q.Get("prefix"), len(keys), contents.String())
		case r.Method == http.MethodPost && q.Has("delete"):
			atomic.AddInt32(deletes, 1)
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied.</Message></Error>`)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
}

func newTestStorage(t *testing.T, endpoint string) *MinIOStorage {
	t.Helper()

	u, err := url.Parse(endpoint)
	require.NoError(t, err)

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4("key", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)

	return &MinIOStorage{client: client, bucket: "media", publicURL: "/media"}
}

func TestDeleteByPrefix_ReturnsFirstErrorAfterDraining(t *testing.T) {
	keys := []string{"ads/7/a.jpg", "ads/7/b.jpg", "ads/7/c.jpg"}
	var deletes int32
	srv := fakeS3(t, keys, &deletes)
	defer srv.Close()

	s := newTestStorage(t, srv.URL)

	err := s.DeleteByPrefix(t.Context(), "ads/7/")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ads/7/a.jpg")
	assert.Contains(t, err.Error(), "Access Denied")
	assert.EqualValues(t, 1, atomic.LoadInt32(&deletes))
}

func TestDeleteByPrefix_EmptyPrefixListing(t *testing.T) {
	var deletes int32
	srv := fakeS3(t, nil, &deletes)
	defer srv.Close()

	s := newTestStorage(t, srv.URL)

	require.NoError(t, s.DeleteByPrefix(t.Context(), "ads/8/"))
	assert.EqualValues(t, 0, atomic.LoadInt32(&deletes))
}
