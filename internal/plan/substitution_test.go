package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
)

// fakeStore is an in-memory plan store. Reads return deep copies, as a real
// document store would after deserialization. When staleReads is set, reads
// keep returning the snapshot taken at construction while writes still land
// in plans — this simulates two writers that both read pre-mutation state.
type fakeStore struct {
	plans      map[string][]PlanDocument
	snapshot   map[string][]PlanDocument
	staleReads bool
	updates    int
}

func newFakeStore(userID string, docs ...PlanDocument) *fakeStore {
	s := &fakeStore{
		plans:    map[string][]PlanDocument{userID: docs},
		snapshot: map[string][]PlanDocument{userID: deepCopyDocs(docs)},
	}
	return s
}

func deepCopyDocs(docs []PlanDocument) []PlanDocument {
	raw, _ := json.Marshal(docs)
	var out []PlanDocument
	_ = json.Unmarshal(raw, &out)
	return out
}

func (s *fakeStore) GetUserPlans(_ context.Context, userID string) ([]PlanDocument, error) {
	if s.staleReads {
		return deepCopyDocs(s.snapshot[userID]), nil
	}
	return deepCopyDocs(s.plans[userID]), nil
}

func (s *fakeStore) AddPlan(_ context.Context, userID string, p WeeklyPlan) (string, error) {
	id := fmt.Sprintf("plan-%d", len(s.plans[userID])+1)
	s.plans[userID] = append(s.plans[userID], PlanDocument{ID: id, Plan: p})
	return id, nil
}

func (s *fakeStore) UpdatePlanField(_ context.Context, userID, planID, field string, value any) error {
	if field != "plan" {
		return fmt.Errorf("unexpected field %q", field)
	}
	days, ok := value.([]Day)
	if !ok {
		return fmt.Errorf("unexpected value type %T", value)
	}
	for i, doc := range s.plans[userID] {
		if doc.ID == planID {
			s.plans[userID][i].Plan.Days = deepCopyDocs([]PlanDocument{{Plan: WeeklyPlan{Days: days}}})[0].Plan.Days
			s.updates++
			return nil
		}
	}
	return fmt.Errorf("plan %s not found", planID)
}

// fakeRecipeSource returns the queued alternatives in order, then absent.
type fakeRecipeSource struct {
	queue []*AlternativeRecipe
	calls int
}

func (f *fakeRecipeSource) FindAlternative(_ context.Context, mealType string, excludeIDs, keywords []string) (*AlternativeRecipe, error) {
	f.calls++
	if len(f.queue) == 0 {
		return nil, nil
	}
	alt := f.queue[0]
	f.queue = f.queue[1:]
	return alt, nil
}

// absentSource mirrors the default operational state: no catalog upstream.
type absentSource struct{}

func (absentSource) FindAlternative(context.Context, string, []string, []string) (*AlternativeRecipe, error) {
	return nil, nil
}

func storedPlan() PlanDocument {
	return PlanDocument{
		ID: "plan-1",
		Plan: WeeklyPlan{
			BMR: 1500, TDEE: 2100, TargetCalories: 1600,
			Days: []Day{
				{
					Day:           "Lunes",
					TotalCalories: 2000,
					Meals: []Meal{
						{MealType: "Breakfast", Name: "Avena con Fruta", Calories: 400, RecipeID: "r-avena"},
						{MealType: "Lunch", Name: "Pollo con Arroz", Calories: 500, RecipeID: "r-pollo"},
						{MealType: "Dinner", Name: "Sopa de Verduras", Calories: 1100, RecipeID: "r-sopa"},
					},
				},
			},
		},
	}
}

func TestSubstitutionNoStoredPlan(t *testing.T) {
	store := newFakeStore("u1")
	sub := NewSubstituter(store, &fakeRecipeSource{})

	res, err := sub.UpdateLatestPlanMeal(context.Background(), "u1", "Lunch", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Success {
		t.Error("Expected failure for user with no plans")
	}
	if res.Message != "No active plan found to update." {
		t.Errorf("Message = %q", res.Message)
	}
	if store.updates != 0 {
		t.Error("No-plan path must not write to the store")
	}
}

func TestSubstitutionAbsentSourceLeavesPlanUntouched(t *testing.T) {
	store := newFakeStore("u1", storedPlan())
	before := deepCopyDocs(store.plans["u1"])

	sub := NewSubstituter(store, absentSource{})
	res, err := sub.UpdateLatestPlanMeal(context.Background(), "u1", "Lunch", []string{"pescado"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Success {
		t.Error("Expected failure when the recipe source is absent")
	}
	if res.Message != "Could not find a suitable alternative recipe." {
		t.Errorf("Message = %q", res.Message)
	}
	if store.updates != 0 {
		t.Error("Absent alternative must not write to the store")
	}
	if !reflect.DeepEqual(before, store.plans["u1"]) {
		t.Error("Stored plan changed despite failed substitution")
	}
}

func TestSubstitutionNoMealOfType(t *testing.T) {
	store := newFakeStore("u1", storedPlan())
	src := &fakeRecipeSource{queue: []*AlternativeRecipe{{ID: "r-x", Name: "X", Calories: 100, Type: "Snack"}}}

	sub := NewSubstituter(store, src)
	res, err := sub.UpdateLatestPlanMeal(context.Background(), "u1", "Snack", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Success {
		t.Error("Expected failure when no meal matches the type")
	}
	if src.calls != 0 {
		t.Error("Recipe source must not be queried without a matching meal")
	}
	if store.updates != 0 {
		t.Error("Store must not be written without a matching meal")
	}
}

func TestSubstitutionMatchIsCaseSensitive(t *testing.T) {
	store := newFakeStore("u1", storedPlan())
	sub := NewSubstituter(store, &fakeRecipeSource{queue: []*AlternativeRecipe{{ID: "r-x", Name: "X", Calories: 100, Type: "lunch"}}})

	res, _ := sub.UpdateLatestPlanMeal(context.Background(), "u1", "lunch", nil)
	if res.Success {
		t.Error("Lowercase meal type must not match capitalized entries")
	}
}

func TestSubstitutionAppliesCalorieDelta(t *testing.T) {
	store := newFakeStore("u1", storedPlan())
	alt := &AlternativeRecipe{ID: "r-pescado", Name: "Pescado a la Plancha", Calories: 650, Type: "Lunch"}
	sub := NewSubstituter(store, &fakeRecipeSource{queue: []*AlternativeRecipe{alt}})

	res, err := sub.UpdateLatestPlanMeal(context.Background(), "u1", "Lunch", []string{"pescado"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("Expected success, got %q", res.Message)
	}
	if res.Message != "Updated your Lunch to: Pescado a la Plancha" {
		t.Errorf("Message = %q", res.Message)
	}
	if res.NewMeal == nil || res.NewMeal.RecipeID != "r-pescado" {
		t.Fatalf("NewMeal = %+v", res.NewMeal)
	}

	stored := store.plans["u1"][0].Plan.Days[0]
	// 2000 + (650 - 500): signed delta, not a resum of the meal list.
	if stored.TotalCalories != 2150 {
		t.Errorf("total_calories = %f, want 2150", stored.TotalCalories)
	}

	// The replacement is the narrowed shape: macros, ingredients and image
	// are intentionally dropped.
	replaced := stored.Meals[1]
	if replaced.Name != "Pescado a la Plancha" || replaced.Calories != 650 || replaced.MealType != "Lunch" {
		t.Errorf("Replaced meal = %+v", replaced)
	}
	if replaced.ID != "" || replaced.Image != "" || replaced.PrepTime != "" || len(replaced.Ingredients) != 0 {
		t.Errorf("Replacement must drop the wide meal fields, got %+v", replaced)
	}

	// Untouched meals and the untouched day-level plan fields remain intact.
	if stored.Meals[0].Name != "Avena con Fruta" || stored.Meals[2].Name != "Sopa de Verduras" {
		t.Error("Sibling meals were modified")
	}
	if store.plans["u1"][0].Plan.BMR != 1500 {
		t.Error("Top-level plan fields must be left untouched")
	}
}

func TestSubstitutionExcludesCurrentRecipe(t *testing.T) {
	store := newFakeStore("u1", storedPlan())

	var gotExclude []string
	src := captureSource{alt: &AlternativeRecipe{ID: "r-new", Name: "Nuevo", Calories: 500, Type: "Lunch"}, exclude: &gotExclude}

	sub := NewSubstituter(store, src)
	if _, err := sub.UpdateLatestPlanMeal(context.Background(), "u1", "Lunch", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(gotExclude) != 1 || gotExclude[0] != "r-pollo" {
		t.Errorf("Exclude ids = %v, want [r-pollo]", gotExclude)
	}
}

type captureSource struct {
	alt     *AlternativeRecipe
	exclude *[]string
}

func (c captureSource) FindAlternative(_ context.Context, _ string, excludeIDs, _ []string) (*AlternativeRecipe, error) {
	*c.exclude = excludeIDs
	return c.alt, nil
}

// TestSubstitutionLostUpdateRace documents the accepted concurrency hazard:
// two substitutions that both read the same pre-mutation state end with only
// the second writer's change persisted. The first writer's change is
// silently discarded; the test asserts that outcome, not isolation.
func TestSubstitutionLostUpdateRace(t *testing.T) {
	store := newFakeStore("u1", storedPlan())
	store.staleReads = true

	first := NewSubstituter(store, &fakeRecipeSource{queue: []*AlternativeRecipe{
		{ID: "r-first", Name: "Primera Opción", Calories: 600, Type: "Breakfast"},
	}})
	second := NewSubstituter(store, &fakeRecipeSource{queue: []*AlternativeRecipe{
		{ID: "r-second", Name: "Segunda Opción", Calories: 700, Type: "Lunch"},
	}})

	if res, err := first.UpdateLatestPlanMeal(context.Background(), "u1", "Breakfast", nil); err != nil || !res.Success {
		t.Fatalf("First writer failed: %v %+v", err, res)
	}
	if res, err := second.UpdateLatestPlanMeal(context.Background(), "u1", "Lunch", nil); err != nil || !res.Success {
		t.Fatalf("Second writer failed: %v %+v", err, res)
	}

	final := store.plans["u1"][0].Plan.Days[0]

	// Second writer's change is present.
	if final.Meals[1].RecipeID != "r-second" {
		t.Errorf("Second writer's change missing: %+v", final.Meals[1])
	}
	// First writer's change was overwritten by the second full-plan write.
	if final.Meals[0].RecipeID == "r-first" {
		t.Error("First writer's change survived; expected last-write-wins overwrite")
	}
	if final.Meals[0].Name != "Avena con Fruta" {
		t.Errorf("Breakfast reverted incorrectly: %+v", final.Meals[0])
	}
	// The total reflects only the second delta applied to the stale baseline.
	if final.TotalCalories != 2200 {
		t.Errorf("total_calories = %f, want 2200 (2000 + (700-500))", final.TotalCalories)
	}
}
