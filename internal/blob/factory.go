package blob

import (
	"context"
	"fmt"

	infras3 "canvascore/internal/infra/blob/s3"
)

// Options selects and parameterizes a blob backend. The zero value opens the
// filesystem driver at its default root.
type Options struct {
	Driver      Driver
	FSRoot      string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(opts.FSRoot)
	case DriverS3:
		return infras3.New(ctx, infras3.Config{
			Bucket:    opts.S3Bucket,
			Region:    opts.S3Region,
			Endpoint:  opts.S3Endpoint,
			PathStyle: opts.S3PathStyle,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
