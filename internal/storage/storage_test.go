package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"crmapi/internal/config"
)

func TestFileKey(t *testing.T) {
	assert.Equal(t, "files/t1/abc.pdf", FileKey("t1", "abc", "Quarterly Report.pdf"))
	assert.Equal(t, "files/t1/abc", FileKey("t1", "abc", "README"))
	assert.Equal(t, "files/t1/abc.png", FileKey("t1", "abc", "../../etc/logo.png"))
}

func TestNewMinIO_RequiresConfig(t *testing.T) {
	ctx := context.Background()
	_, err := NewMinIO(ctx, config.MinIOConfig{})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = NewMinIO(ctx, config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.EqualError(t, err, "minio credentials are required")

	_, err = NewMinIO(ctx, config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.EqualError(t, err, "minio bucket is required")
}

func TestAttachment(t *testing.T) {
	assert.Equal(t, "attachment", attachment(""))
	assert.Equal(t, "attachment; filename=report.pdf", attachment("report.pdf"))
	assert.Equal(t, `attachment; filename="Q3 report.pdf"`, attachment("Q3 report.pdf"))
}
