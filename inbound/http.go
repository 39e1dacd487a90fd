package inbound

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

const CallbackPath = "/callback"

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewHTTPHandler mounts the relay on a chi router. GET reads the redirect
// from the query string and POST from a form body. A relayed or already
// relayed state answers 204.
func NewHTTPHandler(relay *Relay) chi.Router {
	r := chi.NewRouter()
	r.Get(CallbackPath, func(w http.ResponseWriter, req *http.Request) {
		serveRedirect(w, req, relay, req.URL.Query())
	})
	r.Post(CallbackPath, func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil {
			writeError(w, inboundWrapBadInput(err, "inbound: parse callback form"))
			return
		}
		serveRedirect(w, req, relay, req.Form)
	})
	return r
}

func serveRedirect(w http.ResponseWriter, req *http.Request, relay *Relay, values map[string][]string) {
	redirect, err := RedirectFromValues(values)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := relay.Dispatch(req.Context(), redirect); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: core.ServiceErrorInternal, Message: err.Error()}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.Code > 0 {
			status = rich.Code
		}
		if rich.TextCode != "" {
			body.Error = rich.TextCode
		}
		body.Message = rich.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
