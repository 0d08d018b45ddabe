package plan

import (
	"context"

	"fitia-backend/internal/energy"
	"fitia-backend/internal/llm"
	"fitia-backend/internal/user"
)

// Service composes the energy calculator and the content generator into the
// full weekly-plan result. There is no partial-success state: the result is
// a full plan, a full skeleton, or a plan with empty days.
type Service struct {
	gen *Generator
}

// NewService creates the plan generation service.
func NewService(textGen llm.TextGenerator) *Service {
	return &Service{gen: NewGenerator(textGen)}
}

// GenerateWeeklyPlan computes the user's energy requirement and fills the
// week with content. The returned plan is the unit handed to the store.
func (s *Service) GenerateWeeklyPlan(ctx context.Context, p user.Profile) (WeeklyPlan, llm.AgentMeta) {
	req := energy.Calculate(p)
	days, meta := s.gen.Generate(ctx, p, req.TargetCalories)

	return WeeklyPlan{
		BMR:            int(req.BMR),
		TDEE:           int(req.TDEE),
		TargetCalories: req.TargetCalories,
		Days:           days,
	}, meta
}
