package tracing

import (
	"io"
	"os"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

const defaultAgentPort = "6831"

// InitTracer installs a jaeger tracer as the opentracing global tracer.
// The agent address comes from JAEGER_AGENT ("host" or "host:port"),
// reporting is disabled when it is not set. Spans are additionally logged
// when GIN_MODE is debug.
func InitTracer(serviceName string) (io.Closer, error) {
	agent := os.Getenv("JAEGER_AGENT")
	if agent == "" {
		return io.NopCloser(nil), nil
	}
	if !strings.Contains(agent, ":") {
		agent = agent + ":" + defaultAgentPort
	}

	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: agent,
			LogSpans:           os.Getenv("GIN_MODE") == "debug",
		},
	}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
