package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient(t.Context(), "https://objects.example.invalid", "eu-central-1", "key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

// fakeAPI serves canned list pages and records the continuation tokens
// it was asked for.
type fakeAPI struct {
	pages  []*awss3.ListObjectsV2Output
	tokens []string
}

func (f *fakeAPI) CreateBucket(context.Context, *awss3.CreateBucketInput, ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error) {
	return &awss3.CreateBucketOutput{}, nil
}

func (f *fakeAPI) PutObject(context.Context, *awss3.PutObjectInput, ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, params *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	f.tokens = append(f.tokens, aws.ToString(params.ContinuationToken))
	return f.pages[len(f.tokens)-1], nil
}

func TestListObjects_FollowsContinuationTokens(t *testing.T) {
	fake := &fakeAPI{pages: []*awss3.ListObjectsV2Output{
		{
			Contents: []types.Object{
				{Key: aws.String("rkeup/20240301120000/cluster-20240301120000.yml")},
				{Key: aws.String("rkeup/20240301120000/apply-20240301120000.log")},
			},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("token-1"),
		},
		{
			Contents: []types.Object{
				{Key: aws.String("rkeup/20240415093000/upgrade-20240415093000.done")},
			},
			IsTruncated: aws.Bool(false),
		},
	}}
	client := &Client{s3: fake}

	keys, err := client.ListObjects(t.Context(), "archive", "rkeup/")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rkeup/20240301120000/cluster-20240301120000.yml",
		"rkeup/20240301120000/apply-20240301120000.log",
		"rkeup/20240415093000/upgrade-20240415093000.done",
	}, keys)

	assert.Equal(t, []string{"", "token-1"}, fake.tokens)
}

func TestIsBucketAlreadyOwned(t *testing.T) {
	assert.True(t, isBucketAlreadyOwned(&types.BucketAlreadyOwnedByYou{}))
	assert.True(t, isBucketAlreadyOwned(&types.BucketAlreadyExists{}))

	// S3-compatible services may only return the bare API code.
	assert.True(t, isBucketAlreadyOwned(&smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}))
	assert.True(t, isBucketAlreadyOwned(&smithy.GenericAPIError{Code: "BucketAlreadyExists"}))

	assert.False(t, isBucketAlreadyOwned(nil))
	assert.False(t, isBucketAlreadyOwned(errors.New("access denied")))
	assert.False(t, isBucketAlreadyOwned(&smithy.GenericAPIError{Code: "AccessDenied"}))
}
