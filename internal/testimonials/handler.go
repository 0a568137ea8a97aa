package testimonials

import (
	"github.com/gorilla/mux"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/telemetry/metrics"
)

func NewHandler(
	repo content.Repo[*Testimonial],
	gate mux.MiddlewareFunc,
	metricsManager *metrics.Manager,
	onChange func(),
) *content.Handler[*Testimonial] {
	return content.NewHandler(content.HandlerParams[*Testimonial]{
		Name:           "testimonials",
		Label:          "Testimonial",
		Repo:           repo,
		New:            New,
		Gate:           gate,
		MetricsManager: metricsManager,
		OnChange:       onChange,
	})
}
