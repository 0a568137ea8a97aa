package projects

import (
	"github.com/gorilla/mux"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
)

func NewHandler(
	repo content.Repo[*Project],
	gate mux.MiddlewareFunc,
	metricsManager *metrics.Manager,
	onChange func(),
) *content.Handler[*Project] {
	return content.NewHandler(content.HandlerParams[*Project]{
		Name:           "projects",
		Label:          "Project",
		Repo:           repo,
		New:            New,
		Gate:           gate,
		MetricsManager: metricsManager,
		OnChange:       onChange,
	})
}
