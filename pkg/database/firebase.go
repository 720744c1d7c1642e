package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type Firebase struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
	Config    *FirebaseConfig
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	StorageBucket   string
}

// NewFirebase falls back to application default credentials when no credentials file is given.
func NewFirebase(ctx context.Context, config *FirebaseConfig) (*Firebase, error) {
	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     config.ProjectID,
		StorageBucket: config.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create Auth client: %w", err)
	}

	return &Firebase{
		App:       app,
		Firestore: client,
		Auth:      authClient,
		Config:    config,
	}, nil
}

func (f *Firebase) Close() error {
	return f.Firestore.Close()
}
