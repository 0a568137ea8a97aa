package skills

import (
	"github.com/gorilla/mux"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
)

func NewHandler(
	repo content.Repo[*SkillCategory],
	gate mux.MiddlewareFunc,
	metricsManager *metrics.Manager,
	onChange func(),
) *content.Handler[*SkillCategory] {
	return content.NewHandler(content.HandlerParams[*SkillCategory]{
		Name:           "skills",
		Label:          "Skill category",
		Repo:           repo,
		New:            New,
		UniqueFields:   map[string]string{categoryIDConstraint: "categoryId"},
		Gate:           gate,
		MetricsManager: metricsManager,
		OnChange:       onChange,
	})
}
