package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	MaxFileSize = 10 * 1024 * 1024 // 10MB
)

var (
	s3Client   *s3.Client
	bucketName string
	region     string

	allowedTypes = map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"image/webp":      true,
		"application/pdf": true,
	}
)

func InitStorage(bucket, awsRegion string) error {
	bucketName = bucket
	region = awsRegion

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			key,
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

func IsAllowedType(contentType string) bool {
	return allowedTypes[contentType]
}

// UploadAttachment stores a quotation/invoice attachment or a visit
// photo under users/<id>/<kind>/ and returns its public URL. Caller is
// responsible for any image re-encode before handing over the bytes.
func UploadAttachment(userID uint, kind, fileName, contentType string, body []byte) (string, error) {
	safeName := slug.Make(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	if safeName == "" {
		safeName = "file"
	}
	ext := filepath.Ext(fileName)
	objectKey := fmt.Sprintf("users/%d/%s/%s-%s%s", userID, kind, safeName, uuid.New().String(), ext)

	_, err := s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketName, region, objectKey), nil
}

// ReadMultipartFile loads a multipart upload into memory, enforcing the
// size cap.
func ReadMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > MaxFileSize {
		return nil, fmt.Errorf("file size too large. Maximum size is %d bytes", MaxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

// DeleteAttachment removes a previously uploaded object by its URL.
func DeleteAttachment(fileURL string) error {
	parts := strings.Split(fileURL, "/")
	if len(parts) < 4 {
		return fmt.Errorf("malformed attachment URL")
	}
	key := strings.Join(parts[3:], "/")

	_, err := s3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})

	return err
}
