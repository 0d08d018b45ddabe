package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"fitia-backend/internal/auth"
	"fitia-backend/internal/chat"
	"fitia-backend/internal/llm"
	"fitia-backend/internal/plan"
	"fitia-backend/internal/user"
)

// UserStore is the subset of the user repository the handlers need.
type UserStore interface {
	Create(ctx context.Context, p user.Profile, password string) (string, error)
	Get(ctx context.Context, id string) (*user.Profile, error)
	GetByEmail(ctx context.Context, email string) (*user.Profile, string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// UsageRecorder receives generator execution metadata.
type UsageRecorder interface {
	RecordMeta(meta llm.AgentMeta) error
}

// SysReporter supplies process diagnostics and token-usage rollups.
type SysReporter interface {
	DailyUsage(days int) ([]DailyUsageEntry, error)
	Health() any
}

// DailyUsageEntry mirrors the metrics store rollup row.
type DailyUsageEntry struct {
	Date            string `json:"date"`
	TotalPrompt     int    `json:"total_prompt"`
	TotalCompletion int    `json:"total_completion"`
	TotalExecution  int    `json:"total_execution"`
}

// Handler carries the collaborators behind the HTTP surface.
type Handler struct {
	users       UserStore
	planSvc     *plan.Service
	planStore   plan.Store
	substituter *plan.Substituter
	assistant   *chat.Assistant
	tokens      *auth.TokenManager
	usage       UsageRecorder
	sys         SysReporter
}

// NewHandler wires the handler's collaborators.
func NewHandler(
	users UserStore,
	planSvc *plan.Service,
	planStore plan.Store,
	substituter *plan.Substituter,
	assistant *chat.Assistant,
	tokens *auth.TokenManager,
	usage UsageRecorder,
	sys SysReporter,
) *Handler {
	return &Handler{
		users:       users,
		planSvc:     planSvc,
		planStore:   planStore,
		substituter: substituter,
		assistant:   assistant,
		tokens:      tokens,
		usage:       usage,
		sys:         sys,
	}
}

// dummyHash keeps login response time constant when the email is unknown,
// preventing timing-based account enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

type registerRequest struct {
	user.Profile
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		apiError(c, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	existing, _, err := h.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if existing != nil {
		apiError(c, http.StatusBadRequest, "Email already registered")
		return
	}

	id, err := h.users.Create(c.Request.Context(), body.Profile, body.Password)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "User created successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	profile, hash, err := h.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}

	// Always run bcrypt so response time does not reveal whether the email
	// exists.
	hashToCheck := string(dummyHash)
	if profile != nil {
		hashToCheck = hash
	}
	passwordOK := user.VerifyPassword(hashToCheck, body.Password)

	if profile == nil || !passwordOK {
		apiError(c, http.StatusUnauthorized, "Incorrect username (email) or password")
		return
	}

	token, err := h.tokens.Issue(profile.ID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (h *Handler) createUser(c *gin.Context) {
	var profile user.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		apiError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	id, err := h.users.Create(c.Request.Context(), profile, "")
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "User created successfully"})
}

func (h *Handler) getUser(c *gin.Context) {
	profile, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		apiError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// updatableFields whitelists the profile fields a PUT may merge. Email and
// the password hash are deliberately excluded.
var updatableFields = map[string]bool{
	"name": true, "age": true, "weight": true, "height": true,
	"gender": true, "goal": true, "activity_level": true,
	"country": true, "region": true, "is_onboarding_complete": true,
	"diet_type": true, "foods_like": true, "meals_per_day": true,
	"preparation_style": true, "variety_level": true, "planning_mode": true,
}

func (h *Handler) updateUser(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	fields := make(map[string]any, len(body))
	for k, v := range body {
		if updatableFields[k] {
			fields[k] = v
		}
	}

	if err := h.users.Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "message": "User updated successfully"})
}

func (h *Handler) generatePlan(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		apiError(c, http.StatusUnprocessableEntity, "user_id is required")
		return
	}

	profile, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		apiError(c, http.StatusNotFound, "User not found")
		return
	}
	// Gender is a hard precondition for the calculator: legacy documents
	// without it must not fall through to a silent default.
	if profile.Gender == "" {
		apiError(c, http.StatusBadRequest, "User profile incomplete: missing gender")
		return
	}

	result, meta := h.planSvc.GenerateWeeklyPlan(c.Request.Context(), *profile)

	planID, err := h.planStore.AddPlan(c.Request.Context(), userID, result)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.usage.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record generation metrics: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"plan_id": planID, "summary": result})
}

func (h *Handler) latestPlan(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		apiError(c, http.StatusUnprocessableEntity, "user_id is required")
		return
	}

	docs, err := h.planStore.GetUserPlans(c.Request.Context(), userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if len(docs) == 0 {
		apiError(c, http.StatusNotFound, "No plan found for user")
		return
	}

	// Last element of whatever order the store returned. The store makes no
	// ordering promise; this mirrors generation-time behavior.
	c.JSON(http.StatusOK, gin.H{"summary": docs[len(docs)-1].Plan})
}

func (h *Handler) swapMeal(c *gin.Context) {
	var body struct {
		UserID   string   `json:"user_id"`
		MealType string   `json:"meal_type"`
		Keywords []string `json:"keywords"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.UserID == "" || body.MealType == "" {
		apiError(c, http.StatusUnprocessableEntity, "user_id and meal_type are required")
		return
	}

	result, err := h.substituter.UpdateLatestPlanMeal(c.Request.Context(), body.UserID, body.MealType, body.Keywords)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) chat(c *gin.Context) {
	var body struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.UserID == "" || body.Message == "" {
		apiError(c, http.StatusUnprocessableEntity, "user_id and message are required")
		return
	}

	reply, meta, err := h.assistant.HandleMessage(c.Request.Context(), body.UserID, body.Message)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.usage.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record chat metrics: %v", err)
	}

	c.JSON(http.StatusOK, reply)
}

func (h *Handler) sysHealth(c *gin.Context) {
	usage, err := h.sys.DailyUsage(7)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"system": h.sys.Health(), "daily_usage": usage})
}
