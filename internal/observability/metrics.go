// Package observability holds the Prometheus collectors for the blog.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPLatency records request latency by method and route template.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Logins counts login attempts by method (local, google) and result.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_logins_total",
		Help: "Total number of login attempts",
	}, []string{"method", "result"})

	// Registrations counts successful local registrations.
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_registrations_total",
		Help: "Total number of local registrations",
	})

	// ArticlesPublished counts draft to published transitions.
	ArticlesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_articles_published_total",
		Help: "Total number of published articles",
	})

	// ArticleViews counts views recorded against the store.
	ArticleViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_article_views_total",
		Help: "Total number of counted article views",
	})

	// ArticleLikes counts likes that created a row.
	ArticleLikes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_article_likes_total",
		Help: "Total number of article likes",
	})

	// Comments counts submitted comments.
	Comments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_comments_total",
		Help: "Total number of comments",
	})

	// SessionStoreErrors counts session store failures by operation.
	SessionStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_session_store_errors_total",
		Help: "Total number of session store errors by operation",
	}, []string{"operation"})
)

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, started time.Time) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
