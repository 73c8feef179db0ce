// Package storage persists relayed messages to durable object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectKey derives the date-partitioned storage key for a message. The date
// comes from the moment of persistence (UTC), so a redelivered message on the
// same day overwrites its earlier copy instead of duplicating it.
func ObjectKey(messageID string, t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("messages/%04d/%02d/%02d/%s.json", u.Year(), int(u.Month()), u.Day(), messageID)
}

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// Client is an S3-backed object store keyed by string path.
type Client struct {
	client    s3API
	bucket    string
	bucketPtr *string
}

// NewClient creates a Client bound to one bucket.
func NewClient(client s3API, bucket string) *Client {
	c := &Client{
		client: client,
		bucket: bucket,
	}
	c.bucketPtr = &c.bucket
	return c
}

// Put writes body at key, overwriting any existing object.
func (c *Client) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &awss3.PutObjectInput{
		Bucket: c.bucketPtr,
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object key=%q: %w", key, err)
	}
	return nil
}

// Get reads the object at key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := c.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: c.bucketPtr,
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object key=%q: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object key=%q: %w", key, err)
	}
	return body, nil
}

// List returns the keys under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := c.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            c.bucketPtr,
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects prefix=%q: %w", prefix, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// Delete removes the object at key.
func (c *Client) Delete(ctx context.Context, key string) error {
	if _, err := c.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: c.bucketPtr,
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object key=%q: %w", key, err)
	}
	return nil
}
