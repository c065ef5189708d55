package main

import (
    "net/http"
    "strconv"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

type serverMetrics struct {
    Registry *prometheus.Registry
    Tokens *prometheus.CounterVec
    Expressions *prometheus.CounterVec
    Requests *prometheus.CounterVec
}

// Each server gets its own registry so that tests can create as many as they
// like without duplicate registration panics.
func newServerMetrics() *serverMetrics {
    reg := prometheus.NewRegistry()

    tokens := prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "simpletok",
            Name: "tokens_emitted_total",
            Help: "Number of tokens emitted, by tokenizer and tokenize reason.",
        },
        []string{ "tokenizer", "reason" },
    )

    expressions := prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "simpletok",
            Name: "expressions_synthesized_total",
            Help: "Number of match expressions built from query text.",
        },
        []string{ "outcome" },
    )

    requests := prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "simpletok",
            Name: "http_requests_total",
            Help: "Number of HTTP requests handled, by endpoint and status code.",
        },
        []string{ "endpoint", "status" },
    )

    reg.MustRegister(tokens, expressions, requests)
    return &serverMetrics{
        Registry: reg,
        Tokens: tokens,
        Expressions: expressions,
        Requests: requests,
    }
}

func (m *serverMetrics) observeExpression(expr string) {
    if expr == "" {
        m.Expressions.WithLabelValues("empty").Inc()
    } else {
        m.Expressions.WithLabelValues("built").Inc()
    }
}

func (m *serverMetrics) Handler() http.Handler {
    return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

/**********************************************************************/

type statusRecorder struct {
    http.ResponseWriter
    Status int
}

func (s *statusRecorder) WriteHeader(status int) {
    s.Status = status
    s.ResponseWriter.WriteHeader(status)
}

func (m *serverMetrics) instrument(endpoint string, handler func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
    return func(w http.ResponseWriter, r *http.Request) {
        rec := &statusRecorder{ ResponseWriter: w, Status: http.StatusOK }
        handler(rec, r)
        m.Requests.WithLabelValues(endpoint, strconv.Itoa(rec.Status)).Inc()
    }
}
