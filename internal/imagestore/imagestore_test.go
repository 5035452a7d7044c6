package imagestore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/artesan_shop/internal/config"
)

func TestLocal_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	key := ProductKey("ABC-123")
	assert.Equal(t, "products/abc-123.jpg", key)

	require.NoError(t, s.Save(ctx, key, []byte("jpeg")))
	got, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Load(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	require.NoError(t, s.Delete(ctx, key))
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = s.Save(context.Background(), "../outside.jpg", []byte("x"))
	require.Error(t, err)
}

func TestProductKey_StripsUnsafeCharacters(t *testing.T) {
	assert.Equal(t, "products/etcpasswd.jpg", ProductKey("../etc/passwd"))
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, &config.Config{ImageStore: "embedded"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(ctx, &config.Config{ImageStore: "local", ImageLocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	_, err = New(ctx, &config.Config{ImageStore: "s3"})
	require.Error(t, err)

	_, err = New(ctx, &config.Config{ImageStore: "ftp"})
	require.Error(t, err)
}

func TestNewS3_RequiresCredentials(t *testing.T) {
	_, err := NewS3(context.Background(), S3Options{Bucket: "b", Region: "us-east-1"})
	require.Error(t, err)

	s, err := NewS3(context.Background(), S3Options{
		Bucket: "b", Region: "us-east-1", Prefix: "/shop/",
		AccessKeyID: "id", SecretAccessKey: "secret", Endpoint: "minio:9000",
	})
	require.NoError(t, err)
	assert.Equal(t, "shop/products/x.jpg", s.key("products/x.jpg"))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.False(t, isNotFound(errors.New("boom")))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
}
