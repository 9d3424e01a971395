package service

import "github.com/prometheus/client_golang/prometheus"

var (
	usersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_users_registered_total", Help: "Users created through registration",
	})
	loginFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_login_failures_total", Help: "Rejected login attempts",
	})
	itemsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_items_created_total", Help: "Items posted",
	})
	itemTakes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_item_takes_total", Help: "Take attempts by outcome",
	}, []string{"outcome"})
	feedbackRatings = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "lostfound_feedback_rating", Help: "Submitted feedback ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	})
)

func init() {
	prometheus.MustRegister(usersRegistered, loginFailures, itemsCreated, itemTakes, feedbackRatings)
}
