package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"petclinic/internal/platform/httpclient"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/platform/respond"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"
)

var errNotConfigured = errors.New("service is not configured")

// Headers que pasan al downstream tal cual.
var forwardedHeaders = []string{
	"Accept",
	"Authorization",
	"Content-Type",
	"Cookie",
	"X-Forwarded-For",
}

// Headers de respuesta que vuelven al cliente.
var returnedHeaders = []string{
	"Content-Type",
	"Content-Disposition",
	"Location",
	"Set-Cookie",
}

// upstreamError marca qué servicio falló.
type upstreamError struct {
	service string
	err     error
}

func (e *upstreamError) Error() string { return e.service + ": " + e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

// forward reenvía el request según la ruta: path expandido + query + body.
func (g *Gateway) forward(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := expandTarget(rt.target(), r)
		if q := r.URL.RawQuery; q != "" {
			path += "?" + q
		}

		c, ok := g.clients[rt.Service]
		if !ok {
			g.writeUpstreamErr(w, &upstreamError{service: rt.Service, err: errNotConfigured})
			return
		}

		resp, err := c.Do(r.Context(), r.Method, path, forwardHeaders(r), r.Body)
		if err != nil {
			g.writeUpstreamErr(w, &upstreamError{service: rt.Service, err: err})
			return
		}
		if resp.StatusCode >= http.StatusBadRequest {
			metrics.UpstreamErrors.WithLabelValues(rt.Service, strconv.Itoa(resp.StatusCode)).Inc()
			respond.Error(w, resp.StatusCode, downstreamMessage(resp.StatusCode, resp.Body))
			return
		}

		for _, h := range returnedHeaders {
			for _, v := range resp.Header.Values(h) {
				w.Header().Add(h, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		if len(resp.Body) > 0 && resp.StatusCode != http.StatusNoContent {
			_, _ = w.Write(resp.Body)
		}
	}
}

// expandTarget reemplaza cada {param} del target con el valor escapado del request.
func expandTarget(target string, r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return target
	}
	for i, k := range rctx.URLParams.Keys {
		if k == "" || k == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		target = strings.ReplaceAll(target, "{"+k+"}", url.PathEscape(rctx.URLParams.Values[i]))
	}
	return target
}

func forwardHeaders(r *http.Request) http.Header {
	h := http.Header{}
	for _, k := range forwardedHeaders {
		for _, v := range r.Header.Values(k) {
			h.Add(k, v)
		}
	}
	if id := chimw.GetReqID(r.Context()); id != "" {
		h.Set(chimw.RequestIDHeader, id)
	}
	return h
}

// jsonHeaders es la versión para DoJSON de los agregadores.
func jsonHeaders(r *http.Request) map[string]string {
	out := map[string]string{}
	for k, vs := range forwardHeaders(r) {
		if k == "Content-Type" || k == "Accept" || len(vs) == 0 {
			continue
		}
		out[k] = vs[0]
	}
	return out
}

// downstreamMessage: campo "message" del body, si no el body recortado, si no el status text.
func downstreamMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		if m := strings.TrimSpace(gjson.GetBytes(body, "message").String()); m != "" {
			return m
		}
	}
	if b := strings.TrimSpace(string(body)); b != "" {
		return b
	}
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "upstream error"
}

// call hace un request JSON a un servicio y etiqueta el error con su nombre.
func (g *Gateway) call(ctx context.Context, r *http.Request, service, method, path string, in, out any) error {
	c, ok := g.clients[service]
	if !ok {
		return &upstreamError{service: service, err: errNotConfigured}
	}
	if err := c.DoJSON(ctx, method, path, jsonHeaders(r), in, out); err != nil {
		return &upstreamError{service: service, err: err}
	}
	return nil
}

// writeUpstreamErr traduce el error: status downstream si lo hubo, si no 503 con el servicio.
func (g *Gateway) writeUpstreamErr(w http.ResponseWriter, err error) {
	service := "upstream"
	var ue *upstreamError
	if errors.As(err, &ue) {
		service = ue.service
	}

	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		metrics.UpstreamErrors.WithLabelValues(service, strconv.Itoa(he.StatusCode)).Inc()
		respond.Error(w, he.StatusCode, downstreamMessage(he.StatusCode, []byte(he.Body)))
		return
	}

	metrics.UpstreamErrors.WithLabelValues(service, "unavailable").Inc()
	g.log.Warn("upstream unavailable", map[string]any{"service": service, "error": err.Error()})
	msg := service + " service unavailable"
	if errors.Is(err, errNotConfigured) {
		msg = service + " service is not configured"
	}
	respond.Error(w, http.StatusServiceUnavailable, msg)
}
