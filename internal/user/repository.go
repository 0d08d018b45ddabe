package user

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// document is the stored shape of a user: the public profile plus the
// password hash, which never leaves this package.
type document struct {
	Profile
	HashedPassword string `json:"-" firestore:"hashed_password"`
}

// Repository persists user profiles in the users collection.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates a new Repository on top of an existing Firestore client.
func NewRepository(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

// Create stores a new profile and returns the generated document id.
// password may be empty for profiles created without credentials.
func (r *Repository) Create(ctx context.Context, p Profile, password string) (string, error) {
	doc := document{Profile: p}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		doc.HashedPassword = string(hash)
	}

	ref := r.client.Collection(usersCollection).NewDoc()
	if _, err := ref.Set(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return ref.ID, nil
}

// Get retrieves a profile by document id. Returns (nil, nil) when the user
// does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Profile, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	var doc document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	doc.Profile.ID = snap.Ref.ID
	return &doc.Profile, nil
}

// GetByEmail looks up a user by email. Returns the profile and the stored
// password hash, or (nil, "", nil) when no user has that email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Profile, string, error) {
	iter := r.client.Collection(usersCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to query user by email: %w", err)
	}

	var doc document
	if err := snap.DataTo(&doc); err != nil {
		return nil, "", fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
	}
	doc.Profile.ID = snap.Ref.ID
	return &doc.Profile, doc.HashedPassword, nil
}

// Update merges the given fields into the user document. Callers are
// responsible for only passing recognized profile fields.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) error {
	_, err := r.client.Collection(usersCollection).Doc(id).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
