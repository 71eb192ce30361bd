// Copyright 2026 The IdlerMeow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/MoonlightPanel/IdlerMeow"
)

const maxUpload = 1 << 30

// Handler serves a Supervisor, its instances' files, and the daemon
// log.
type Handler struct {
	sup    *idlermeow.Supervisor
	prov   *idlermeow.Provisioner
	log    *idlermeow.Log
	logger *log.Logger
	r      *mux.Router
}

// errorCode maps an error from the idlermeow package to an HTTP status.
func errorCode(e error) int {
	switch {
	case errors.Is(e, idlermeow.ErrInvalidPath),
		errors.Is(e, idlermeow.ErrPathEscape),
		errors.Is(e, idlermeow.ErrInvalidRecord),
		errors.Is(e, idlermeow.ErrNotText):
		return http.StatusBadRequest
	case errors.Is(e, idlermeow.ErrNotFound),
		errors.Is(e, idlermeow.ErrConfigNotFound),
		errors.Is(e, idlermeow.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(e, idlermeow.ErrAlreadyRunning),
		errors.Is(e, idlermeow.ErrNotRunning),
		errors.Is(e, idlermeow.ErrExists):
		return http.StatusConflict
	case errors.Is(e, idlermeow.ErrShuttingDown):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeJson(w http.ResponseWriter, code int, v interface{}) {
	b, e := json.Marshal(v)
	if e != nil {
		http.Error(w, e.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mimeJson)
	w.WriteHeader(code)
	w.Write(b)
}

func (h *Handler) writeOk(w http.ResponseWriter, msg string) {
	h.writeJson(w, http.StatusOK, &Result{Success: true, Message: msg})
}

func (h *Handler) writeError(w http.ResponseWriter, e error) {
	var re *Error
	if !errors.As(e, &re) {
		re = &Error{Code: errorCode(e), Message: e.Error()}
	}
	if re.Code >= 500 {
		h.logger.Printf("%v", e)
	}
	h.writeJson(w, re.Code, re)
}

func badRequest(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg}
}

func (h *Handler) readJson(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if e := dec.Decode(v); e != nil {
		return badRequest("Malformed request: " + e.Error())
	}
	return nil
}

func port(r *http.Request) (int, error) {
	p, e := strconv.Atoi(mux.Vars(r)["port"])
	if e != nil || p <= 0 || p > 65535 {
		return 0, badRequest(fmt.Sprintf("Invalid port %q", mux.Vars(r)["port"]))
	}
	return p, nil
}

func (h *Handler) info(rec *idlermeow.Record) *InstanceInfo {
	users := rec.Users
	if users == nil {
		users = []string{}
	}
	return &InstanceInfo{
		Port:           rec.Port,
		Status:         h.sup.Status(rec.Port),
		StartupCommand: rec.StartupCommand,
		Owner:          rec.Owner,
		Users:          users,
		CPU:            rec.CPU,
		RAM:            rec.RAM,
		Disk:           rec.Disk,
	}
}

func (h *Handler) listInstances(w http.ResponseWriter, r *http.Request) {
	recs, e := h.prov.List()
	if e != nil {
		h.writeError(w, e)
		return
	}
	l := make([]*InstanceInfo, 0, len(recs))
	for _, rec := range recs {
		l = append(l, h.info(rec))
	}
	h.writeJson(w, http.StatusOK, l)
}

func (h *Handler) createInstance(w http.ResponseWriter, r *http.Request) {
	rec := &idlermeow.Record{}
	if e := h.readJson(r, rec); e != nil {
		h.writeError(w, e)
		return
	}
	if _, e := h.prov.Load(rec.Port); e == nil {
		h.writeError(w, &Error{Code: http.StatusConflict,
			Message: fmt.Sprintf("Instance %d already exists", rec.Port)})
		return
	}
	if e := h.prov.Create(r.Context(), rec); e != nil {
		h.writeError(w, e)
		return
	}
	h.writeJson(w, http.StatusCreated, &Result{Success: true, Message: "Server created"})
}

func (h *Handler) getInstance(w http.ResponseWriter, r *http.Request) {
	p, e := port(r)
	if e == nil {
		var rec *idlermeow.Record
		if rec, e = h.prov.Load(p); e == nil {
			h.writeJson(w, http.StatusOK, h.info(rec))
			return
		}
	}
	h.writeError(w, e)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	p, e := port(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	h.writeJson(w, http.StatusOK, &StatusInfo{Port: p, Status: h.sup.Status(p)})
}

// action wraps a supervisor operation on the port named in the URL.
func (h *Handler) action(fn func(port int) error, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, e := port(r)
		if e == nil {
			e = fn(p)
		}
		if e != nil {
			h.writeError(w, e)
			return
		}
		h.writeOk(w, msg)
	}
}

func (h *Handler) sendCommand(w http.ResponseWriter, r *http.Request) {
	p, e := port(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	var req CommandRequest
	if e := h.readJson(r, &req); e != nil {
		h.writeError(w, e)
		return
	}
	if e := h.sup.SendCommand(p, req.Command); e != nil {
		h.writeError(w, e)
		return
	}
	h.writeOk(w, "Command sent")
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	p, e := port(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	var req UserRequest
	if e := h.readJson(r, &req); e != nil {
		h.writeError(w, e)
		return
	}
	if req.Email == "" {
		h.writeError(w, badRequest("Missing email"))
		return
	}
	if e := h.prov.AddUser(p, req.Email); e != nil {
		h.writeError(w, e)
		return
	}
	h.writeOk(w, "User added successfully!")
}

func (h *Handler) removeUser(w http.ResponseWriter, r *http.Request) {
	p, e := port(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	if e := h.prov.RemoveUser(p, mux.Vars(r)["email"]); e != nil {
		h.writeError(w, e)
		return
	}
	h.writeOk(w, "User removed successfully!")
}

// getLog serves the daemon log.  With If-None-Match and the poll
// headers it waits for the log to change before answering.
func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	var last int64
	if tag := r.Header.Get(PollEtagHeader); tag != "" {
		if t, e := strconv.ParseInt(tag, 10, 64); e == nil {
			last = t
		}
		secs, _ := strconv.Atoi(r.Header.Get(PollTimeHeader))
		if secs > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), time.Duration(secs)*time.Second)
			h.log.Watch(ctx, last)
			cancel()
		}
	}

	p := 0
	if s := r.URL.Query().Get("port"); s != "" {
		p, _ = strconv.Atoi(s)
	}
	recs, id := h.log.Records(0, p)
	etag := strconv.FormatInt(id, 10)
	w.Header().Set("Etag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if recs == nil {
		recs = []idlermeow.LogRecord{}
	}
	h.writeJson(w, http.StatusOK, recs)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.r.ServeHTTP(w, req)
}

func (h *Handler) SetLogger(l *log.Logger) {
	h.logger = l
}

func NewHandler(sup *idlermeow.Supervisor, prov *idlermeow.Provisioner, l *idlermeow.Log) *Handler {
	r := mux.NewRouter()
	h := &Handler{
		sup:    sup,
		prov:   prov,
		log:    l,
		logger: log.New(io.Discard, "", 0),
		r:      r,
	}
	if h.log == nil {
		h.log = idlermeow.NewLog()
	}

	inst := "/instances/{port:[0-9]+}"
	r.HandleFunc("/instances", h.listInstances).Methods("GET")
	r.HandleFunc("/instances", h.createInstance).Methods("POST")
	r.HandleFunc(inst, h.getInstance).Methods("GET")
	r.HandleFunc(inst+"/status", h.getStatus).Methods("GET")
	r.HandleFunc(inst+"/start", h.action(sup.Start, "Server starting...")).Methods("POST")
	r.HandleFunc(inst+"/stop", h.action(sup.Stop, "Stopping server...")).Methods("POST")
	r.HandleFunc(inst+"/restart", h.action(sup.Restart, "Restarting server...")).Methods("POST")
	r.HandleFunc(inst+"/command", h.sendCommand).Methods("POST")
	r.HandleFunc(inst+"/users", h.addUser).Methods("POST")
	r.HandleFunc(inst+"/users/{email}", h.removeUser).Methods("DELETE")
	r.Handle(inst+"/console", h.consoleHandler()).Methods("GET")

	r.HandleFunc(inst+"/files", h.listFiles).Methods("GET")
	r.HandleFunc(inst+"/files/content", h.readFile).Methods("GET")
	r.HandleFunc(inst+"/files/content", h.writeFile).Methods("PUT")
	r.HandleFunc(inst+"/files/download", h.downloadFile).Methods("GET")
	r.HandleFunc(inst+"/files/create-file", h.createFile).Methods("POST")
	r.HandleFunc(inst+"/files/create-folder", h.createFolder).Methods("POST")
	r.HandleFunc(inst+"/files/rename", h.renameFile).Methods("POST")
	r.HandleFunc(inst+"/files/delete", h.deleteFiles).Methods("POST")
	r.HandleFunc(inst+"/files/archive", h.archiveFiles).Methods("POST")
	r.HandleFunc(inst+"/files/upload", h.uploadFiles).Methods("POST")

	r.HandleFunc("/log", h.getLog).Methods("GET")
	return h
}
