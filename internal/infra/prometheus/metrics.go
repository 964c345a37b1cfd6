package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedirectsTotal counts redirect resolutions by terminal outcome:
	// redirect, not_found, error.
	RedirectsTotal = promauto.NewCounterVec(prom.CounterOpts{
		Name: "linklite_redirects_total",
		Help: "Redirect resolutions by outcome.",
	}, []string{"outcome"})

	// LinksCreatedTotal counts successfully created short links.
	LinksCreatedTotal = promauto.NewCounter(prom.CounterOpts{
		Name: "linklite_links_created_total",
		Help: "Short links created.",
	})
)
