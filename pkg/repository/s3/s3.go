// Package s3 exposes an S3 bucket (or an S3-compatible store) as a
// hierarchical repository.
//
// Key Design:
//   - Repository paths map to object keys without the leading "/"
//     (e.g. "/public/report.ktr" -> "<prefix>public/report.ktr")
//   - Folders are key prefixes, listed as common prefixes with delimiter "/"
//   - Zero-byte objects whose key ends in "/" are folder markers
//   - S3 has no stable object ids, so the id of an entry is its path
//   - Names starting with "." are reported as hidden
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/dittorepo/pkg/pathutil"
	"github.com/marmos91/dittorepo/pkg/repository"
)

// API is the subset of *s3.Client used by the repository.
type API interface {
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3RepositoryConfig is decoded from the repository.s3 config section.
type S3RepositoryConfig struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// Repository implements repository.Client on top of an S3 bucket.
//
// Every call goes to S3, there is no local state. Safe for concurrent use.
type Repository struct {
	client    API
	bucket    string
	keyPrefix string
}

// New creates a repository reading bucket through client. A non-empty
// keyPrefix scopes the repository to the keys below it.
func New(client API, bucket, keyPrefix string) (*Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if keyPrefix != "" && !strings.HasSuffix(keyPrefix, "/") {
		keyPrefix += "/"
	}

	return &Repository{
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}, nil
}

// objectKey returns the object key of the entry at path.
func (r *Repository) objectKey(path string) string {
	return r.keyPrefix + strings.TrimPrefix(path, pathutil.Separator)
}

// folderPrefix returns the listing prefix of the folder at path.
func (r *Repository) folderPrefix(path string) string {
	if path == pathutil.Separator || path == "" {
		return r.keyPrefix
	}
	return r.objectKey(path) + "/"
}

// GetFileByPath implements repository.Client.
//
// A path is a file when an object with that exact key exists, and a folder
// when at least one key lives below it.
func (r *Repository) GetFileByPath(ctx context.Context, path string) (*repository.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path == pathutil.Separator {
		return newEntry(pathutil.Separator, true), nil
	}

	key := r.objectKey(path)
	if !strings.HasSuffix(key, "/") {
		_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return newEntry(path, false), nil
		}
		if !isNotFound(err) {
			return nil, r.ioError("head object failed", path, err)
		}
	}

	out, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(r.bucket),
		Prefix:  aws.String(r.folderPrefix(path)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, r.ioError("list objects failed", path, err)
	}
	if len(out.Contents) == 0 && len(out.CommonPrefixes) == 0 {
		return nil, nil
	}
	return newEntry(path, true), nil
}

// ListChildren implements repository.Client. The id of an entry is its path.
func (r *Repository) ListChildren(ctx context.Context, id string, filter repository.Filter) ([]*repository.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := r.folderPrefix(id)
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(r.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	result := []*repository.File{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, r.ioError("list objects failed", id, err)
		}

		if filter == repository.FilterFolders {
			for _, cp := range page.CommonPrefixes {
				name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
				if name == "" {
					continue
				}
				result = append(result, newEntry(pathutil.Child(id, name), true))
			}
			continue
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			// folder marker of the listed folder itself
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			result = append(result, newEntry(pathutil.Child(id, name), false))
		}
	}

	return result, nil
}

func newEntry(path string, folder bool) *repository.File {
	name := pathutil.Base(path)
	return &repository.File{
		ID:     path,
		Name:   name,
		Path:   path,
		Folder: folder,
		Hidden: strings.HasPrefix(name, "."),
	}
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

func (r *Repository) ioError(message, path string, err error) error {
	return fmt.Errorf("%w: %v", &repository.StoreError{
		Code:    repository.ErrIOError,
		Message: fmt.Sprintf("%s (bucket %s)", message, r.bucket),
		Path:    path,
	}, err)
}
