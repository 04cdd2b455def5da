// Package qbtest runs an in-process fake of the qBittorrent WebUI API for
// tests. It implements authentication, listing, adding, control,
// preferences, categories and tags, and records every call it receives.
package qbtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/google/uuid"
)

const apiPrefix = "/api/v2"

// Torrent is the subset of /torrents/info fields the fake keeps.
type Torrent struct {
	Hash         string  `json:"hash"`
	Name         string  `json:"name"`
	State        string  `json:"state"`
	Progress     float64 `json:"progress"`
	Category     string  `json:"category"`
	Tags         string  `json:"tags"`
	ETA          int64   `json:"eta"`
	AddedOn      int64   `json:"added_on"`
	CompletionOn int64   `json:"completion_on"`
	SavePath     string  `json:"save_path"`
	Size         int64   `json:"size"`
	TotalSize    int64   `json:"total_size"`
	Priority     int64   `json:"priority"`
}

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	// Filename of an uploaded .torrent part, if any.
	Filename string
}

// Server is a fake WebUI. Exported fields may be changed before the first
// request; use the methods afterwards.
type Server struct {
	*httptest.Server

	Username string
	Password string
	// Version is answered by /app/version and selects the endpoint dialect.
	Version    string
	CookieName string
	// MaxAge is sent on the session cookie when positive.
	MaxAge int
	// OmitCookie makes a successful login answer without any cookie.
	OmitCookie bool
	// FailAdd makes /torrents/add answer "Fails.".
	FailAdd bool
	// ListDelay hides added torrents from that many listing calls.
	ListDelay int
	// LoginDelay holds every login response for that long.
	LoginDelay time.Duration

	mu         sync.Mutex
	sessions   map[string]bool
	torrents   []Torrent
	hidden     map[string]int
	prefs      map[string]any
	categories map[string]map[string]string
	tags       []string
	calls      []Call
}

// NewServer starts a fake speaking the given version, e.g. "v4.6.2" or
// "v5.0.1", with credentials admin/adminadmin.
func NewServer(version string) *Server {
	s := &Server{
		Username:   "admin",
		Password:   "adminadmin",
		Version:    version,
		CookieName: "SID",
		sessions:   map[string]bool{},
		hidden:     map[string]int{},
		prefs: map[string]any{
			"save_path":     "/downloads",
			"max_connec":    float64(500),
			"dht":           true,
			"web_ui_domain": "*",
		},
		categories: map[string]map[string]string{},
		tags:       []string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// v5 reports whether the fake uses the 5.0 spellings.
func (s *Server) v5() bool {
	return strings.HasPrefix(strings.TrimPrefix(s.Version, "v"), "5")
}

// AddTorrents seeds the torrent list.
func (s *Server) AddTorrents(ts ...Torrent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torrents = append(s.torrents, ts...)
}

// SetState changes the state tag of hash.
func (s *Server) SetState(hash, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.torrents {
		if s.torrents[i].Hash == hash {
			s.torrents[i].State = state
		}
	}
}

// RemoveTorrent drops hash from the list.
func (s *Server) RemoveTorrent(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(hash)
}

// Torrents returns a copy of the torrent list.
func (s *Server) Torrents() []Torrent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Torrent(nil), s.torrents...)
}

// ExpireSessions forgets every issued session id, so the next request
// answers 403.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]bool{}
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the requests received for endpoint, e.g. "/auth/login".
func (s *Server) CallsTo(endpoint string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Path == endpoint {
			out = append(out, c)
		}
	}
	return out
}

// Preferences returns a copy of the stored preferences.
func (s *Server) Preferences() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.prefs))
	for k, v := range s.prefs {
		out[k] = v
	}
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, apiPrefix)
	call := Call{Method: r.Method, Path: endpoint, Query: r.URL.Query()}

	var file []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		call.Form = url.Values(r.MultipartForm.Value)
		for _, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				file, _ = io.ReadAll(f)
				f.Close()
				call.Filename = fh.Filename
			}
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		call.Form = r.PostForm
	}

	if endpoint == "/auth/login" && s.LoginDelay > 0 {
		time.Sleep(s.LoginDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)

	if endpoint == "/auth/login" {
		s.login(w, call)
		return
	}
	if !s.authorized(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	s.route(w, call, file)
}

func (s *Server) login(w http.ResponseWriter, call Call) {
	if call.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if call.Form.Get("username") != s.Username || call.Form.Get("password") != s.Password {
		io.WriteString(w, "Fails.")
		return
	}
	if !s.OmitCookie {
		sid := uuid.NewString()
		s.sessions[sid] = true
		http.SetCookie(w, &http.Cookie{Name: s.CookieName, Value: sid, Path: "/", MaxAge: s.MaxAge, HttpOnly: true})
	}
	io.WriteString(w, "Ok.")
}

func (s *Server) authorized(r *http.Request) bool {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil {
		return false
	}
	return s.sessions[cookie.Value]
}

func (s *Server) route(w http.ResponseWriter, call Call, file []byte) {
	form := call.Form
	switch call.Path {
	case "/app/version":
		io.WriteString(w, s.Version)
	case "/app/webapiVersion":
		io.WriteString(w, "2.9.3")
	case "/app/buildInfo":
		writeJSON(w, map[string]any{"qt": "6.4.2", "libtorrent": "2.0.9.0", "boost": "1.82.0", "openssl": "3.1.2", "zlib": "1.2.13", "bitness": 64})
	case "/app/preferences":
		writeJSON(w, s.prefs)
	case "/app/setPreferences":
		changes := map[string]any{}
		if err := json.Unmarshal([]byte(form.Get("json")), &changes); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for k, v := range changes {
			s.prefs[k] = v
		}
	case "/torrents/info":
		writeJSON(w, s.list(call.Query))
	case "/torrents/add":
		s.add(w, form, file)
	case "/torrents/pause", "/torrents/resume":
		if s.v5() {
			http.NotFound(w, nil)
			return
		}
		s.setStates(form.Get("hashes"), call.Path == "/torrents/pause")
	case "/torrents/stop", "/torrents/start":
		if !s.v5() {
			http.NotFound(w, nil)
			return
		}
		s.setStates(form.Get("hashes"), call.Path == "/torrents/stop")
	case "/torrents/delete":
		for _, h := range s.selected(form.Get("hashes")) {
			s.removeLocked(h)
		}
	case "/torrents/setCategory":
		category := form.Get("category")
		if _, ok := s.categories[category]; category != "" && !ok {
			http.Error(w, "Incorrect category name", http.StatusConflict)
			return
		}
		s.each(form.Get("hashes"), func(t *Torrent) { t.Category = category })
	case "/torrents/categories":
		writeJSON(w, s.categories)
	case "/torrents/createCategory", "/torrents/editCategory":
		name := form.Get("category")
		if name == "" {
			http.Error(w, "Invalid category name", http.StatusBadRequest)
			return
		}
		s.categories[name] = map[string]string{"name": name, "savePath": form.Get("savePath")}
	case "/torrents/removeCategories":
		for _, name := range strings.Split(form.Get("categories"), "\n") {
			delete(s.categories, name)
		}
	case "/torrents/tags":
		writeJSON(w, s.tags)
	case "/torrents/createTags":
		for _, tag := range strings.Split(form.Get("tags"), ",") {
			if tag != "" && !contains(s.tags, tag) {
				s.tags = append(s.tags, tag)
			}
		}
		sort.Strings(s.tags)
	case "/torrents/deleteTags":
		var kept []string
		drop := strings.Split(form.Get("tags"), ",")
		for _, tag := range s.tags {
			if !contains(drop, tag) {
				kept = append(kept, tag)
			}
		}
		s.tags = append([]string{}, kept...)
	case "/torrents/downloadLimit", "/torrents/uploadLimit":
		limits := map[string]int64{}
		for _, h := range s.selected(form.Get("hashes")) {
			limits[h] = 0
		}
		writeJSON(w, limits)
	default:
		if call.Method != http.MethodPost {
			http.NotFound(w, nil)
		}
	}
}

func (s *Server) list(q url.Values) []Torrent {
	out := []Torrent{}
	var wanted []string
	if h := q.Get("hashes"); h != "" {
		wanted = strings.Split(h, "|")
	}
	for _, t := range s.torrents {
		if n := s.hidden[t.Hash]; n > 0 {
			s.hidden[t.Hash] = n - 1
			continue
		}
		if wanted != nil && !contains(wanted, t.Hash) {
			continue
		}
		if c := q.Get("category"); c != "" && t.Category != c {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Server) add(w http.ResponseWriter, form url.Values, file []byte) {
	if s.FailAdd {
		io.WriteString(w, "Fails.")
		return
	}

	pausedField := "paused"
	if s.v5() {
		pausedField = "stopped"
	}
	state := "downloading"
	if form.Get(pausedField) == "true" {
		state = "pausedDL"
		if s.v5() {
			state = "stoppedDL"
		}
	}

	var hashes []string
	if file != nil {
		mi, err := metainfo.Load(bytes.NewReader(file))
		if err != nil {
			io.WriteString(w, "Fails.")
			return
		}
		hashes = append(hashes, mi.HashInfoBytes().HexString())
	}
	for _, u := range strings.Split(form.Get("urls"), "\n") {
		if u == "" {
			continue
		}
		m, err := metainfo.ParseMagnetUri(u)
		if err != nil {
			io.WriteString(w, "Fails.")
			return
		}
		hashes = append(hashes, m.InfoHash.HexString())
	}

	for _, h := range hashes {
		s.removeLocked(h)
		s.torrents = append(s.torrents, Torrent{
			Hash:     h,
			Name:     h,
			State:    state,
			Category: form.Get("category"),
			Tags:     strings.ReplaceAll(form.Get("tags"), ",", ", "),
			ETA:      8640000,
			SavePath: form.Get("savepath"),
		})
		if s.ListDelay > 0 {
			s.hidden[h] = s.ListDelay
		}
	}
	io.WriteString(w, "Ok.")
}

func (s *Server) setStates(hashes string, stop bool) {
	s.each(hashes, func(t *Torrent) {
		done := t.Progress == 1
		switch {
		case stop && done && s.v5():
			t.State = "stoppedUP"
		case stop && done:
			t.State = "pausedUP"
		case stop && s.v5():
			t.State = "stoppedDL"
		case stop:
			t.State = "pausedDL"
		case done:
			t.State = "uploading"
		default:
			t.State = "downloading"
		}
	})
}

func (s *Server) selected(hashes string) []string {
	if hashes == "all" {
		out := make([]string, 0, len(s.torrents))
		for _, t := range s.torrents {
			out = append(out, t.Hash)
		}
		return out
	}
	return strings.Split(hashes, "|")
}

func (s *Server) each(hashes string, fn func(*Torrent)) {
	for _, h := range s.selected(hashes) {
		for i := range s.torrents {
			if s.torrents[i].Hash == h {
				fn(&s.torrents[i])
			}
		}
	}
}

func (s *Server) removeLocked(hash string) {
	kept := s.torrents[:0]
	for _, t := range s.torrents {
		if t.Hash != hash {
			kept = append(kept, t)
		}
	}
	s.torrents = kept
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
