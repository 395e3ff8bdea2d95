package butterytoast

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jefferyq2/ButteryToast/pkg/remote"
	"github.com/jefferyq2/ButteryToast/pkg/toast"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

const maxTriggerBody = 64 << 10

// TriggerRequest is the body of POST /sessions/{session}/toasts.
type TriggerRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`

	// AutoDismiss overrides the configured default. A Go duration
	// string; "0" makes the toast stay until tapped.
	AutoDismiss string `json:"autoDismiss,omitempty"`

	// FixedHeight pins the container height in px. Zero means natural
	// height.
	FixedHeight float64 `json:"fixedHeight,omitempty"`
}

// TriggerResponse reports the presented toast.
type TriggerResponse struct {
	ToastID uint64 `json:"toastId"`
	Target  string `json:"target"`
}

// SessionInfo is one entry of GET /sessions.
type SessionInfo struct {
	ID             string `json:"id"`
	ViewportW      uint16 `json:"viewportW"`
	ViewportH      uint16 `json:"viewportH"`
	OpsSent        uint64 `json:"opsSent"`
	EventsReceived uint64 `json:"eventsReceived"`
}

func (a *App) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := remote.NewSession(conn,
		remote.WithLogger(a.logger),
		remote.WithHeartbeat(a.cfg.HeartbeatInterval()))
	if err := sess.Start(); err != nil {
		a.logger.Warn("session handshake failed", "error", err)
		return
	}

	a.addSession(sess)
}

func (a *App) handleTrigger(w http.ResponseWriter, r *http.Request) {
	ls, ok := a.lookup(chi.URLParam(r, "session"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req TriggerRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" && req.Body == "" {
		writeError(w, http.StatusBadRequest, "title or body required")
		return
	}

	opts, err := a.toastOptions(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := toast.New(toastView(req), opts...)
	t.SetDelegate(a.onDismiss)

	// Present must run on the session's scheduler. The handle is read
	// inside the same turn; afterwards the toast belongs to the loop.
	type presentResult struct {
		target string
		err    error
	}
	presented := make(chan presentResult, 1)
	ls.sess.Scheduler().Dispatch(func() {
		res := presentResult{err: t.Present(ls.surf)}
		if res.err == nil {
			res.target = t.Mounted().Target()
		}
		presented <- res
	})

	select {
	case res := <-presented:
		if res.err != nil {
			a.logger.Warn("present failed",
				"session_id", ls.sess.ID(),
				"toast_id", t.ID(),
				"error", res.err)
			writeError(w, http.StatusBadGateway, "present failed")
			return
		}
		writeJSON(w, http.StatusCreated, TriggerResponse{ToastID: t.ID(), Target: res.target})

	case <-ls.sess.Done():
		writeError(w, http.StatusGone, "session closed")

	case <-r.Context().Done():
	}
}

// toastOptions translates a trigger request into toast options, filling
// the auto-dismiss default from configuration.
func (a *App) toastOptions(req TriggerRequest) ([]toast.Option, error) {
	var opts []toast.Option

	autoDismiss := a.cfg.AutoDismissAfter()
	if req.AutoDismiss != "" {
		d, err := time.ParseDuration(req.AutoDismiss)
		if err != nil {
			return nil, fmt.Errorf("invalid autoDismiss %q", req.AutoDismiss)
		}
		if d < 0 {
			return nil, fmt.Errorf("autoDismiss must not be negative")
		}
		autoDismiss = d
	}
	if autoDismiss > 0 {
		opts = append(opts, toast.WithAutoDismiss(autoDismiss))
	}

	if req.FixedHeight < 0 {
		return nil, fmt.Errorf("fixedHeight must not be negative")
	}
	if req.FixedHeight > 0 {
		opts = append(opts, toast.WithFixedHeight(req.FixedHeight))
	}

	return opts, nil
}

// toastView builds the content tree for a triggered toast. The title
// renders as a heading so notification surfaces can pick it as the
// summary line.
func toastView(req TriggerRequest) *view.Node {
	return view.Div(view.Class("bt-body"),
		view.If(req.Title != "", view.H2(req.Title)),
		view.If(req.Body != "", view.P(req.Body)),
	)
}

func (a *App) handleSessions(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	infos := make([]SessionInfo, 0, len(a.sessions))
	for _, ls := range a.sessions {
		st := ls.sess.Stats()
		info := SessionInfo{
			ID:             ls.sess.ID(),
			OpsSent:        st.OpsSent,
			EventsReceived: st.EventsReceived,
		}
		if hello := ls.sess.Hello(); hello != nil {
			info.ViewportW = hello.ViewportW
			info.ViewportH = hello.ViewportH
		}
		infos = append(infos, info)
	}
	a.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"sessions": infos})
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.SessionCount(),
	})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxTriggerBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
