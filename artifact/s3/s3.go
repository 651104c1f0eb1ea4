// Package s3 provides an AWS S3 backed core.ArtifactStore. Artifacts are
// serialized as JSON objects under a configurable key prefix, one object per
// invocation ID.
package s3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/skyviz/vizflow/artifact"
	"github.com/skyviz/vizflow/core"
)

// Client is the narrow slice of the S3 API the store consumes. The concrete
// *s3.Client satisfies it; tests substitute a fake.
type Client interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// Options configures the Store.
type Options struct {
	// Prefix is prepended to every object key. Defaults to "artifacts".
	Prefix string
}

// Store persists artifacts in a single S3 bucket.
type Store struct {
	client Client
	bucket string
	prefix string
}

// NewStore constructs a Store over an existing client.
func NewStore(client Client, bucket string, optFns ...func(o *Options)) *Store {
	opts := Options{Prefix: "artifacts"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
	}
}

// NewStoreFromConfig loads the default AWS configuration from the
// environment and constructs a Store around a fresh S3 client.
func NewStoreFromConfig(ctx context.Context, bucket string, optFns ...func(o *Options)) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewStore(awss3.NewFromConfig(cfg), bucket, optFns...), nil
}

func (s *Store) key(invocationID string) string {
	return path.Join(s.prefix, invocationID+".json")
}

// Save implements core.ArtifactStore.
func (s *Store) Save(ctx context.Context, a core.Artifact) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(a.InvocationID)),
		Body:        strings.NewReader(string(body)),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put artifact %s: %w", a.InvocationID, err)
	}
	return nil
}

// Get implements core.ArtifactStore. A missing object maps to
// artifact.ErrNotFound.
func (s *Store) Get(ctx context.Context, invocationID string) (core.Artifact, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(invocationID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return core.Artifact{}, artifact.ErrNotFound
		}
		return core.Artifact{}, fmt.Errorf("get artifact %s: %w", invocationID, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return core.Artifact{}, fmt.Errorf("read artifact %s: %w", invocationID, err)
	}
	var a core.Artifact
	if err := json.Unmarshal(body, &a); err != nil {
		return core.Artifact{}, fmt.Errorf("decode artifact %s: %w", invocationID, err)
	}
	return a, nil
}

// List implements core.ArtifactStore, paginating through the prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix + "/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			id := strings.TrimSuffix(path.Base(key), ".json")
			if id != "" {
				ids = append(ids, id)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return ids, nil
}

// Delete implements core.ArtifactStore. S3 deletes are idempotent, so a
// missing object is not reported.
func (s *Store) Delete(ctx context.Context, invocationID string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(invocationID)),
	})
	if err != nil {
		return fmt.Errorf("delete artifact %s: %w", invocationID, err)
	}
	return nil
}
