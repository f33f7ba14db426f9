package services

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirestore initializes the Firebase Admin SDK and returns a Firestore client
func InitFirestore(ctx context.Context, credPath, projectID string) (*firestore.Client, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	opt := option.WithCredentialsFile(credPath)
	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, err
	}
	return app.Firestore(ctx)
}
