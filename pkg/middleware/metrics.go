package middleware

import (
	"fmt"
	"time"

	"github.com/betterhyq/LexPlain/pkg/common"
	"github.com/betterhyq/LexPlain/pkg/infra/prometheus"
	"github.com/betterhyq/LexPlain/pkg/utils"
	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

const metricsWorkers = 2

type metricsMiddleware struct {
	logger   *logrus.Logger
	taskChan chan func()
}

// NewMetricsMiddleware records request counters and latency off the request
// path on a small worker pool, and writes one access log line per request.
func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	m := &metricsMiddleware{
		logger:   logger,
		taskChan: make(chan func(), 1000),
	}
	m.startWorkers(metricsWorkers)
	return m
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		c.Locals(common.LatencyContextKey, startTime)

		err := c.Next()

		elapsed := time.Since(startTime)
		route := c.Route().Path
		statusCode := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				statusCode = fe.Code
			}
		}

		// Request strings alias fasthttp buffers that are reused once the
		// handler returns, so everything handed to the workers is copied.
		method := fiberUtils.CopyString(c.Method())
		requestID, _ := c.Locals(common.RequestIDKey).(string) //nolint:errcheck
		fields := logrus.Fields{
			"request_id": fiberUtils.CopyString(requestID),
			"method":     method,
			"path":       fiberUtils.CopyString(c.Path()),
			"status":     statusCode,
			"latency_ms": elapsed.Milliseconds(),
			"client_ip":  fiberUtils.CopyString(utils.ClientIP(func(key string) string { return c.Get(key) })),
		}
		if info := utils.ParseUserAgent(c.Get(fiber.HeaderUserAgent), c.Get(fiber.HeaderAcceptLanguage)); info != nil {
			fields["device"] = info.Device
			fields["browser"] = info.Browser
		}

		m.enqueueTask(func() {
			m.registryMetricsToPrometheus(route, method, statusCode, elapsed)
			m.logger.WithFields(fields).Debug("request completed")
		})

		return err
	}
}

func (m *metricsMiddleware) startWorkers(n int) {
	for i := 0; i < n; i++ {
		go func() {
			for task := range m.taskChan {
				task()
			}
		}()
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}

func (m *metricsMiddleware) registryMetricsToPrometheus(route, method string, statusCode int, elapsed time.Duration) {
	prometheus.RequestTotal.WithLabelValues(route, method, statusClass(statusCode)).Inc()
	if prometheus.Config.EnableLatency {
		prometheus.RequestLatency.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
	}
}

func (m *metricsMiddleware) enqueueTask(task func()) {
	select {
	case m.taskChan <- task:
	default:
		m.logger.Warn("metrics queue is full, dropping metrics task")
	}
}
