package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/snapshot"
)

// openStore opens the snapshot store selected by cfg. The returned func
// releases it.
func openStore(cfg *config.Config) (snapshot.Store, func() error, error) {
	nop := func() error { return nil }

	switch cfg.Snapshot.Store {
	case "bolt":
		store, err := snapshot.OpenBolt(cfg.SnapshotPath())
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case "s3":
		return snapshot.NewS3Store(newS3Client(cfg), cfg.Snapshot.Bucket, cfg.Snapshot.Prefix), nop, nil

	case "memory":
		return snapshot.NewMemoryStore(), nop, nil
	}
	return nil, nil, errors.New("E400").
		WithDetail("unknown snapshot store " + cfg.Snapshot.Store)
}

// newS3Client builds an S3 client from the snapshot config and the
// standard AWS_* environment variables. AWS_ENDPOINT_URL selects an
// S3-compatible server and switches to path-style addressing.
func newS3Client(cfg *config.Config) *s3.Client {
	region := cfg.Snapshot.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	return s3.New(s3.Options{
		Region: region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}, nil
		}),
	}, func(o *s3.Options) {
		if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}
