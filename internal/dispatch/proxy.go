package dispatch

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/vyrodovalexey/verroute/internal/observability"
	"github.com/vyrodovalexey/verroute/internal/util"
)

// ProxyConfig configures a reverse proxy handler.
type ProxyConfig struct {
	Name        string
	URL         string
	StripPrefix string
	// Breaker wraps the proxy in a circuit breaker when set.
	Breaker *BreakerConfig
	Logger  observability.Logger
}

// NewProxyFactory returns a Factory that builds a reverse proxy to the
// configured backend.
func NewProxyFactory(cfg ProxyConfig) Factory {
	return func() (http.Handler, error) {
		if err := util.ValidateUpstreamURL(cfg.URL); err != nil {
			return nil, util.NewUpstreamError(cfg.Name, "invalid upstream URL", err)
		}
		target, err := url.Parse(cfg.URL)
		if err != nil {
			return nil, util.NewUpstreamError(cfg.Name, "invalid upstream URL", err)
		}

		logger := cfg.Logger
		if logger == nil {
			logger = observability.NopLogger()
		}

		proxy := &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(target)
				pr.SetXForwarded()
				if cfg.StripPrefix != "" {
					stripPrefix(pr.Out, cfg.StripPrefix, target)
				}
			},
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				logger.WithContext(r.Context()).Error("upstream request failed",
					observability.String("url", cfg.URL),
					observability.Error(util.NewUpstreamError(cfg.Name, "proxy request failed", err)),
				)
				writeJSONError(w, http.StatusBadGateway, "backend unavailable")
			},
		}

		logger.Debug("proxy handler initialized",
			observability.String("handler", cfg.Name),
			observability.String("url", cfg.URL),
		)
		if cfg.Breaker != nil {
			return newBreakerHandler(cfg.Name, proxy, *cfg.Breaker, logger), nil
		}
		return proxy, nil
	}
}

// NewProxy returns a lazily built reverse proxy handler.
func NewProxy(cfg ProxyConfig) *Lazy {
	return NewLazy(cfg.Name, NewProxyFactory(cfg))
}

// stripPrefix removes prefix from the outgoing path after the target
// base path was joined in front of it.
func stripPrefix(out *http.Request, prefix string, target *url.URL) {
	base := strings.TrimSuffix(target.Path, "/")
	p := strings.TrimPrefix(out.URL.Path, base)
	p = strings.TrimPrefix(p, prefix)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	out.URL.Path = base + p
	out.URL.RawPath = ""
}
