package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"timeline_store/dal"
	"timeline_store/logic"
	"timeline_store/shared"
)

type apiHandlerGroup struct {
	cfg      *shared.Config
	logger   shared.ILogger
	provider dal.IProvider
	conv     logic.IConversation
	metrics  logic.IMetrics
}

func NewApiHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	provider dal.IProvider,
	conv logic.IConversation,
	metrics logic.IMetrics,
) IHandlerGroup {
	res := apiHandlerGroup{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		conv:     conv,
		metrics:  metrics,
	}
	return &res
}

func (hg *apiHandlerGroup) Prefix() string {
	return "/api"
}

func (hg *apiHandlerGroup) GroupDefs() []handlerDef {
	return []handlerDef{
		{"GET", "/healthz", func(w http.ResponseWriter, r *http.Request) { hg.getHealthz(w, r) }},
		{"GET", "/q/{uri:.*}", func(w http.ResponseWriter, r *http.Request) { hg.getQuery(w, r) }},
		{"GET", "/conversation/{msgId}", func(w http.ResponseWriter, r *http.Request) { hg.getConversation(w, r) }},
	}
}

func (hg *apiHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return emptyMW
}

func (hg *apiHandlerGroup) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(hg.logger, w, map[string]string{"status": "ok"})
}

// getQuery maps the path after /api/q/ straight onto a store identifier.
// Only the projection is caller-controlled; raw filters stay internal.
func (hg *apiHandlerGroup) getQuery(w http.ResponseWriter, r *http.Request) {

	obs := hg.metrics.StartApiRequestIn("query")
	defer obs.Finish()

	uri := mux.Vars(r)["uri"]
	var projection []string
	if cols := r.URL.Query().Get("cols"); cols != "" {
		projection = strings.Split(cols, ",")
	}

	rows, err := hg.provider.Query(uri, projection, "", nil, "")
	if err != nil {
		hg.writeQueryError(w, uri, err)
		return
	}
	writeJsonResponse(hg.logger, w, rows)
}

func (hg *apiHandlerGroup) getConversation(w http.ResponseWriter, r *http.Request) {

	obs := hg.metrics.StartApiRequestIn("conversation")
	defer obs.Finish()

	msgId, err := strconv.ParseInt(mux.Vars(r)["msgId"], 10, 64)
	if err != nil {
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}
	var accountId int64
	if acc := r.URL.Query().Get("account"); acc != "" {
		if accountId, err = strconv.ParseInt(acc, 10, 64); err != nil {
			writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
			return
		}
	}

	rows, err := hg.conv.Load(msgId, accountId)
	if err != nil {
		hg.writeQueryError(w, mux.Vars(r)["msgId"], err)
		return
	}
	writeJsonResponse(hg.logger, w, rows)
}

func (hg *apiHandlerGroup) writeQueryError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, shared.ErrMalformedUri),
		errors.Is(err, dal.ErrInvalidArgument),
		errors.Is(err, dal.ErrUnsupportedOperation):
		hg.logger.Infof("Bad request for %q: %v", what, err)
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
	default:
		hg.logger.Errorf("Query for %q failed: %v", what, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
	}
}
