package livesync

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>patchwork</title></head>
<body>
<div id="patchwork-root">{{.HTML}}</div>
<script>
(function () {
  var root = document.getElementById("patchwork-root");
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type === "snapshot") { root.innerHTML = msg.html; return; }
    if (msg.type === "ops") {
      fetch("/snapshot").then(function (r) { return r.json(); }).then(function (s) { root.innerHTML = s.html; });
    }
  };
})();
</script>
</body>
</html>
`))

// Router returns the Hub's HTTP routes:
//
//	GET  /              page rendering the root, refreshed over /ws
//	GET  /ws            websocket stream
//	GET  /snapshot      {"seq":…,"html":…}
//	PUT  /state/{key}   JSON body assigned to key on the root
//	GET  /healthz
//	GET  /metrics       when Config.Gatherer is set
func (h *Hub) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", h.servePage)
	r.Get("/ws", h.HandleWebSocket)
	r.Get("/snapshot", h.serveSnapshot)
	r.Put("/state/{key}", h.serveSet)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if h.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Hub) servePage(w http.ResponseWriter, r *http.Request) {
	markup, _, err := h.Snapshot(r.Context())
	if err != nil {
		h.httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageTemplate.Execute(w, struct{ HTML template.HTML }{template.HTML(markup)})
}

func (h *Hub) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	markup, seq, err := h.Snapshot(r.Context())
	if err != nil {
		h.httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Seq  uint64 `json:"seq"`
		HTML string `json:"html"`
	}{seq, markup})
}

func (h *Hub) serveSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.MaxMessageSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, err := decodeValue(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON value: %v", err), http.StatusBadRequest)
		return
	}
	if err := h.Set(r.Context(), key, value); err != nil {
		h.httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Hub) httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrNotAttached) {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}
