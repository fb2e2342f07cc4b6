package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strings"

	"khon-reep/internal/catalog"
	"khon-reep/internal/config"
	"khon-reep/internal/eventlog"
	"khon-reep/internal/geolocation"
	"khon-reep/internal/location"
	"khon-reep/internal/mapview"
	"khon-reep/internal/pin"
	"khon-reep/internal/session"
	"khon-reep/internal/snapshot"
	"khon-reep/models"

	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	sessionName  = "khon-reep-session"
	sessionIDKey = "sid"
)

type WebHandler struct {
	sessions         *session.Manager
	picker           *pin.Picker
	catalog          *catalog.Catalog
	locationService  *location.LocationService
	eventLogHandlers *eventlog.EventLogHandlers
	snapshots        *snapshot.Service
	templates        *template.Template
	sessionStore     *sessions.CookieStore
	config           *config.Config
}

type PageData struct {
	State       session.State
	Options     []pin.Option
	FeedbackMS  int64
	IPLookupURL string
}

type EmbedPageData struct {
	Scene mapview.Scene
}

// NewWebHandler builds the HTTP layer. snapshots may be nil when map
// snapshots are disabled.
func NewWebHandler(
	sessionManager *session.Manager,
	picker *pin.Picker,
	incidentCatalog *catalog.Catalog,
	locationService *location.LocationService,
	eventLogService *eventlog.EventLogService,
	snapshots *snapshot.Service,
	cfg *config.Config,
) *WebHandler {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.PublicURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	return &WebHandler{
		sessions:         sessionManager,
		picker:           picker,
		catalog:          incidentCatalog,
		locationService:  locationService,
		eventLogHandlers: eventlog.NewEventLogHandlers(eventLogService),
		snapshots:        snapshots,
		templates:        tmpl,
		sessionStore:     store,
		config:           cfg,
	}
}

// coordinator returns the caller's coordinator, starting a session on first
// contact.
func (h *WebHandler) coordinator(w http.ResponseWriter, r *http.Request) *session.Coordinator {
	sess, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		// Undecodable cookie, usually after a secret rotation; sess is a fresh one
		log.Printf("Discarding invalid session cookie: %v", err)
	}

	id, _ := sess.Values[sessionIDKey].(string)
	if id == "" {
		id = session.NewID()
		sess.Values[sessionIDKey] = id
		if err := sess.Save(r, w); err != nil {
			log.Printf("Error saving session: %v", err)
		}
	}
	return h.sessions.Get(id)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Page Handlers
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	c := h.coordinator(w, r)
	data := PageData{
		State:       c.State(),
		Options:     pin.Options(h.catalog),
		FeedbackMS:  h.config.PinFeedbackDuration.Milliseconds(),
		IPLookupURL: h.config.IPLookupURL,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("Index: Template execution error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// EmbedMap renders every stored location on a standalone map. It keeps no
// session state.
func (h *WebHandler) EmbedMap(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locationService.FindAll(r.Context())
	if err != nil {
		log.Printf("EmbedMap: %v", err)
		locations = nil
	}

	view := mapview.NewMapView(h.catalog, mapview.NewSceneSurfaceFactory(h.config.TileURL))
	view.Mount()
	defer view.Unmount()
	if err := view.Render(locations); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	scene, err := view.Scene()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "embed_map.html", EmbedPageData{Scene: scene}); err != nil {
		log.Printf("EmbedMap: Template execution error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *WebHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// API Handlers
func (h *WebHandler) APIState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator(w, r).State())
}

type tabRequest struct {
	Tab string `json:"tab"`
}

type tabResponse struct {
	State session.State  `json:"state"`
	Scene *mapview.Scene `json:"scene,omitempty"`
}

func (h *WebHandler) APISwitchTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tab, err := session.ParseTab(req.Tab)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := h.coordinator(w, r)
	if err := c.SwitchTab(r.Context(), tab); err != nil {
		log.Printf("Error switching to %s tab: %v", tab, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := tabResponse{State: c.State()}
	if tab == session.TabMap {
		if scene, err := c.Scene(); err == nil {
			resp.Scene = &scene
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WebHandler) APIIncidentTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pin.Options(h.catalog))
}

type pinRequest struct {
	Type      models.IncidentType `json:"type"`
	IPAddress string              `json:"ip_address"`
	geolocation.Report
}

// reportedIP keeps the browser's own lookup only when it is a literal address
func (req pinRequest) reportedIP() string {
	ip := net.ParseIP(strings.TrimSpace(req.IPAddress))
	if ip == nil {
		return ""
	}
	return ip.String()
}

type pinResponse struct {
	Location   *models.Location `json:"location"`
	PinCount   int              `json:"pin_count"`
	FeedbackMS int64            `json:"feedback_ms"`
}

func (h *WebHandler) APICreatePin(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := h.coordinator(w, r)
	target := c.NewRequestTarget()
	local, err := h.picker.Submit(r.Context(), target, pin.Submission{
		Type:       req.Type,
		Locator:    req.Report,
		UserAgent:  r.UserAgent(),
		ReportedIP: req.reportedIP(),
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, pin.ErrUnknownIncidentType):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, pin.ErrLocationUnavailable):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, pin.ErrSaveFailed):
			status = http.StatusBadGateway
		}
		body := map[string]string{"error": err.Error()}
		if alerts := target.Alerts(); len(alerts) > 0 {
			body["alert"] = alerts[0]
		}
		writeJSON(w, status, body)
		return
	}

	state := c.State()
	writeJSON(w, http.StatusCreated, pinResponse{
		Location:   local,
		PinCount:   state.PinCount,
		FeedbackMS: state.SuccessRemainingMS,
	})
}

func (h *WebHandler) APIMapScene(w http.ResponseWriter, r *http.Request) {
	scene, err := h.coordinator(w, r).Scene()
	if err != nil {
		h.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *WebHandler) APIMapSelf(w http.ResponseWriter, r *http.Request) {
	var report geolocation.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	scene, err := h.coordinator(w, r).ShowSelf(r.Context(), report)
	if err != nil {
		h.writeSceneError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *WebHandler) writeSceneError(w http.ResponseWriter, err error) {
	if errors.Is(err, mapview.ErrNotMounted) {
		writeError(w, http.StatusConflict, "map tab is not active")
		return
	}
	log.Printf("Error building map scene: %v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *WebHandler) APIEventLogs(w http.ResponseWriter, r *http.Request) {
	h.eventLogHandlers.FindLatest(w, r)
}

func (h *WebHandler) APIMapSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		http.NotFound(w, r)
		return
	}
	png, err := h.snapshots.Capture(r.Context(), strings.TrimRight(h.config.PublicURL, "/")+"/embed/map")
	if err != nil {
		writeError(w, http.StatusBadGateway, "snapshot failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write(png)
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
