package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Options configures the S3 client
type S3Options struct {
	Region         string
	Endpoint       string
	ForcePathStyle bool
}

// S3Engine serves s3://bucket/key URIs with ranged GetObject calls
type S3Engine struct {
	client s3iface.S3API
}

var _ Engine = (*S3Engine)(nil)

// NewS3Engine creates an engine with a client built from opts and the
// default credential chain
func NewS3Engine(opts S3Options) (*S3Engine, error) {
	cfg := aws.NewConfig()
	if opts.Region != "" {
		cfg = cfg.WithRegion(opts.Region)
	}
	if opts.Endpoint != "" {
		cfg = cfg.WithEndpoint(opts.Endpoint)
	}
	cfg = cfg.WithS3ForcePathStyle(opts.ForcePathStyle)
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return NewS3EngineWithClient(s3.New(sess)), nil
}

// NewS3EngineWithClient creates an engine over an existing client
func NewS3EngineWithClient(client s3iface.S3API) *S3Engine {
	return &S3Engine{client: client}
}

func bucketKey(u *URI) (string, string, error) {
	if u.Scheme() != S3Scheme || u.Host == "" {
		return "", "", fmt.Errorf("not an s3 location: %s", u)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func (e *S3Engine) Open(ctx context.Context, u *URI) (Reader, error) {
	bucket, key, err := bucketKey(u)
	if err != nil {
		return nil, err
	}
	head, err := e.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(u, err)
	}
	return &s3Reader{
		ctx:    ctx,
		client: e.client,
		uri:    u,
		bucket: bucket,
		key:    key,
		size:   aws.Int64Value(head.ContentLength),
	}, nil
}

func (e *S3Engine) List(ctx context.Context, u *URI) ([]Info, error) {
	bucket, prefix, err := bucketKey(u)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var infos []Info
	err = e.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			infos = append(infos, Info{
				Name: strings.TrimPrefix(aws.StringValue(obj.Key), prefix),
				Size: aws.Int64Value(obj.Size),
			})
		}
		return true
	})
	if err != nil {
		return nil, wrapS3Error(u, err)
	}
	return infos, nil
}

func wrapS3Error(u *URI, err error) error {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	return err
}

type s3Reader struct {
	ctx    context.Context
	client s3iface.S3API
	uri    *URI
	bucket string
	key    string
	size   int64
}

func (r *s3Reader) Size() int64 { return r.size }

func (r *s3Reader) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := min(off+int64(len(p)), r.size)
	out, err := r.client.GetObjectWithContext(r.ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end-1)),
	})
	if err != nil {
		return 0, wrapS3Error(r.uri, err)
	}
	defer out.Body.Close()

	n, err := io.ReadFull(out.Body, p[:end-off])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *s3Reader) Close() error { return nil }
