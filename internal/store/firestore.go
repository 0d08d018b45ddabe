// Package store persists weekly plans in Firestore, one document per plan,
// under each user's meal_plans subcollection.
package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"fitia-backend/internal/plan"
)

const (
	usersCollection = "users"
	plansCollection = "meal_plans"
)

// FirestoreStore implements plan.Store on top of a Firestore client.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a store over an existing Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) userPlans(userID string) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(plansCollection)
}

// GetUserPlans streams all stored plans for a user. Firestore document ids
// are not sequential, so the returned order carries no guarantee.
func (s *FirestoreStore) GetUserPlans(ctx context.Context, userID string) ([]plan.PlanDocument, error) {
	iter := s.userPlans(userID).Documents(ctx)
	defer iter.Stop()

	var docs []plan.PlanDocument
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stream plans for user %s: %w", userID, err)
		}

		var wp plan.WeeklyPlan
		if err := snap.DataTo(&wp); err != nil {
			return nil, fmt.Errorf("failed to decode plan %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, plan.PlanDocument{ID: snap.Ref.ID, Plan: wp})
	}
	return docs, nil
}

// AddPlan writes a new plan document and returns its id.
func (s *FirestoreStore) AddPlan(ctx context.Context, userID string, p plan.WeeklyPlan) (string, error) {
	id := uuid.NewString()
	if _, err := s.userPlans(userID).Doc(id).Set(ctx, p); err != nil {
		return "", fmt.Errorf("failed to save plan for user %s: %w", userID, err)
	}
	return id, nil
}

// UpdatePlanField merges a single field into an existing plan document,
// leaving all other top-level fields untouched. The write is a plain
// last-write-wins set: no precondition, no document version check.
func (s *FirestoreStore) UpdatePlanField(ctx context.Context, userID, planID, field string, value any) error {
	_, err := s.userPlans(userID).Doc(planID).Set(ctx, map[string]any{field: value}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update field %s on plan %s: %w", field, planID, err)
	}
	return nil
}
