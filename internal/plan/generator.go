package plan

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"hash/fnv"
	"log"
	"net/url"
	"strconv"
	"strings"
	"text/template"
	"time"

	"fitia-backend/internal/llm"
	"fitia-backend/internal/user"
)

//go:embed plan_prompt.md
var planPrompt string

// weekdays is the fixed 7-day cycle every plan uses, in order.
var weekdays = [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// defaultDistribution is used when the profile has no meal-type list.
var defaultDistribution = []string{"Breakfast", "Lunch", "Dinner"}

const (
	placeholderMealName = "Registrar Comida"
	placeholderImage    = "https://images.unsplash.com/photo-1498837167922-ddd27525d352?auto=format&fit=crop&q=80&w=300"
	imageEndpoint       = "https://image.pollinations.ai/prompt/"
)

// varietyInstructions keys the variety prompt variant by level. Unrecognized
// or absent levels fall back to the short balanced variant, which is not the
// same string as the Medium entry.
var varietyInstructions = map[user.VarietyLevel]string{
	user.VarietyLow:    "Repite las mismas comidas varios días (Ideal para Meal Prep/Cocinando en lote). Simplifica al máximo.",
	user.VarietyMedium: "Balance entre variedad y repetición. Puedes repetir desayunos o cenas.",
	user.VarietyHigh:   "Máxima variedad, intenta no repetir platos en la semana.",
}

const varietyFallback = "Balance entre variedad y repetición"

// Generator produces the weekly day list, either as a deterministic template
// (custom mode) or by delegating to the text generator (automatic mode).
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a Generator around the given text generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate returns the seven-day meal list for the profile. Custom mode
// always succeeds and never calls the text generator. Automatic mode
// degrades to an empty day list on any generator or parse failure; it never
// falls back to the template.
func (g *Generator) Generate(ctx context.Context, p user.Profile, dailyTarget int) ([]Day, llm.AgentMeta) {
	if p.PlanningMode == user.ModeCustom {
		return buildSkeleton(p.MealsPerDay, dailyTarget), llm.AgentMeta{AgentName: "PlanTemplate"}
	}

	start := time.Now()
	prompt, err := buildPlanPrompt(p, dailyTarget)
	if err != nil {
		log.Printf("Error building plan prompt: %v", err)
		return []Day{}, llm.AgentMeta{AgentName: "PlanGenerator"}
	}

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	meta := llm.AgentMeta{
		AgentName: "PlanGenerator",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		log.Printf("Error generating AI plan: %v", err)
		return []Day{}, meta
	}

	days, err := decodeWeek(resp.Content)
	if err != nil {
		log.Printf("Error parsing AI plan: %v", err)
		return []Day{}, meta
	}

	// Decorate every meal with a content-addressed id and an image reference.
	for di := range days {
		for mi := range days[di].Meals {
			days[di].Meals[mi].ID = MealID(days[di].Meals[mi].Name)
			days[di].Meals[mi].Image = ImageURL(days[di].Meals[mi].Name)
		}
	}

	return days, meta
}

// buildSkeleton emits the zero-valued 7-day template for custom mode. Meal
// ids are derived from day+mealType so repeated builds are identical.
func buildSkeleton(distribution []string, dailyTarget int) []Day {
	if len(distribution) == 0 {
		distribution = defaultDistribution
	}

	days := make([]Day, 0, len(weekdays))
	for _, day := range weekdays {
		meals := make([]Meal, 0, len(distribution))
		for _, mealType := range distribution {
			meals = append(meals, Meal{
				MealType:    mealType,
				Name:        placeholderMealName,
				Ingredients: []string{},
				PrepTime:    "0 min",
				Image:       placeholderImage,
				ID:          MealID(day + "-" + mealType),
			})
		}
		days = append(days, Day{
			Day:            day,
			TotalCalories:  0,
			TargetCalories: dailyTarget,
			Meals:          meals,
		})
	}
	return days
}

type promptData struct {
	Gender             user.Gender
	Age                int
	Weight             float64
	Region             string
	Country            string
	Goal               user.Goal
	DietType           string
	Foods              string
	PrepInstruction    string
	VarietyInstruction string
	DailyCalories      int
	Distribution       string
}

func buildPlanPrompt(p user.Profile, dailyTarget int) (string, error) {
	prepInstruction := "Lista de ingredientes simples para armar"
	if p.PreparationStyle == user.PrepRecipes {
		prepInstruction = "Recetas detalladas paso a paso"
	}

	variety, ok := varietyInstructions[p.VarietyLevel]
	if !ok {
		variety = varietyFallback
	}

	diet := string(p.DietType)
	if diet == "" {
		diet = "Cualquiera"
	}

	foods := "Sin restricciones específicas"
	if len(p.FoodsLike) > 0 {
		foods = strings.Join(p.FoodsLike, ", ")
	}

	distribution := "Desayuno, Almuerzo, Cena"
	if len(p.MealsPerDay) > 0 {
		distribution = strings.Join(p.MealsPerDay, ", ")
	}

	tmpl, err := template.New("plan").Parse(planPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, promptData{
		Gender:             p.Gender,
		Age:                p.Age,
		Weight:             p.Weight,
		Region:             p.Region,
		Country:            p.Country,
		Goal:               p.Goal,
		DietType:           diet,
		Foods:              foods,
		PrepInstruction:    prepInstruction,
		VarietyInstruction: variety,
		DailyCalories:      dailyTarget,
		Distribution:       distribution,
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// decodeWeek strictly decodes the generator output into the weekly shape.
// Code fences are stripped first: the prompt forbids them but the generator
// does not always comply.
func decodeWeek(raw string) ([]Day, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var week struct {
		Plan []Day `json:"plan"`
	}
	if err := json.Unmarshal([]byte(text), &week); err != nil {
		return nil, err
	}
	if week.Plan == nil {
		week.Plan = []Day{}
	}
	return week.Plan, nil
}

// MealID derives a stable identifier from meal content: same name, same id.
// Uniqueness is weak (name collisions collide); callers must tolerate that.
func MealID(name string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	return strconv.FormatUint(h.Sum64(), 10)
}

// ImageURL builds an image-generation-by-prompt reference for a meal name.
func ImageURL(name string) string {
	prompt := name + ", professional food photography, 4k, delicious, appetizing, studio lighting"
	return imageEndpoint + url.PathEscape(prompt)
}
