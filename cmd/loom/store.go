package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	backend "github.com/redis/go-redis/v9"

	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/snapshot"
)

// openStore builds the snapshot store selected by cfg. It returns nil for
// the "none" store. The returned close function is never nil.
func openStore(ctx context.Context, cfg *config.Config) (snapshot.Store, func() error, error) {
	noop := func() error { return nil }
	sc := cfg.Snapshot

	switch sc.Store {
	case config.StoreFile:
		store, err := snapshot.NewFileStore(sc.Dir)
		return store, noop, err

	case config.StoreS3:
		client := s3.New(s3.Options{
			Region:       sc.Region,
			BaseEndpoint: optional(sc.Endpoint),
			UsePathStyle: sc.Endpoint != "",
			Credentials:  aws.NewCredentialsCache(envCredentials()),
		})
		return snapshot.NewS3Store(client, sc.Bucket, sc.Prefix), noop, nil

	case config.StoreRedis:
		var opts []snapshot.RedisOption
		if ttl := cfg.SnapshotTTL(); ttl > 0 {
			opts = append(opts, snapshot.WithTTL(ttl))
		}
		store := snapshot.NewRedisStore(backend.NewClient(&backend.Options{Addr: sc.RedisAddr}), opts...)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, noop, errors.New("E150").Wrap(err).
				WithDetail("Cannot reach redis at " + sc.RedisAddr)
		}
		return store, store.Close, nil
	}
	return nil, noop, nil
}

// envCredentials reads static credentials from the standard AWS
// environment variables.
func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, errors.New("E150").
				WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
		}
		return creds, nil
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
