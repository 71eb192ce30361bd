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
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MoonlightPanel/IdlerMeow"
)

// files returns the file facade for the instance in the URL.  The
// instance must have a record.
func (h *Handler) files(r *http.Request) (*idlermeow.Files, error) {
	p, e := port(r)
	if e != nil {
		return nil, e
	}
	if _, e = h.prov.Load(p); e != nil {
		return nil, e
	}
	return idlermeow.NewFiles(h.prov.Dir(p))
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	path := r.URL.Query().Get("path")
	ents, e := f.List(path)
	if e != nil {
		h.writeError(w, e)
		return
	}
	if path == "" {
		path = "."
	}
	h.writeJson(w, http.StatusOK, &FileList{Path: path, Entries: ents})
}

func (h *Handler) readFile(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	path := r.URL.Query().Get("path")
	text, e := f.Read(path)
	if e != nil {
		h.writeError(w, e)
		return
	}
	h.writeJson(w, http.StatusOK, &FileContent{Path: path, Content: text})
}

func (h *Handler) writeFile(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	var req FileContent
	if e := h.readJson(r, &req); e != nil {
		h.writeError(w, e)
		return
	}
	if e := f.Write(req.Path, req.Content); e != nil {
		h.writeError(w, e)
		return
	}
	h.writeOk(w, "File saved")
}

func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	fd, info, e := f.Open(r.URL.Query().Get("path"))
	if e != nil {
		h.writeError(w, e)
		return
	}
	defer fd.Close()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name))
	http.ServeContent(w, r, info.Name, info.ModTime, fd)
}

func (h *Handler) createFile(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, dir bool) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	var req CreateRequest
	if e := h.readJson(r, &req); e != nil {
		h.writeError(w, e)
		return
	}
	if req.Name == "" {
		h.writeError(w, badRequest("Missing name"))
		return
	}
	if dir {
		e = f.CreateDirectory(req.Path, req.Name)
	} else {
		e = f.CreateFile(req.Path, req.Name)
	}
	if e != nil {
		h.writeError(w, e)
		return
	}
	if dir {
		h.writeOk(w, "Folder created")
	} else {
		h.writeOk(w, "File created")
	}
}

func (h *Handler) renameFile(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	var req RenameRequest
	if e := h.readJson(r, &req); e != nil {
		h.writeError(w, e)
		return
	}
	if req.NewName == "" {
		h.writeError(w, badRequest("Missing new name"))
		return
	}
	if e := f.Rename(req.OldPath, req.NewName); e != nil {
		h.writeError(w, e)
		return
	}
	h.writeOk(w, "File renamed successfully")
}

func (h *Handler) deleteFiles(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	var req DeleteRequest
	if e := h.readJson(r, &req); e != nil {
		h.writeError(w, e)
		return
	}
	deleted, e := f.Delete(req.Files)
	if e != nil {
		h.writeError(w, e)
		return
	}
	if deleted == nil {
		deleted = []string{}
	}
	h.writeJson(w, http.StatusOK, &DeleteResult{
		Result:  Result{Success: true, Message: "Files deleted successfully"},
		Deleted: deleted,
	})
}

func (h *Handler) archiveFiles(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	var req ArchiveRequest
	if e := h.readJson(r, &req); e != nil {
		h.writeError(w, e)
		return
	}
	res, e := f.Archive(req.Files, req.ArchiveName)
	if e != nil {
		h.writeError(w, e)
		return
	}
	h.writeJson(w, http.StatusOK, &ArchiveResult{
		Result:        Result{Success: true, Message: "Files archived successfully"},
		ArchiveResult: *res,
	})
}

// uploadFiles takes a multipart form: a "path" field naming the target
// directory and any number of "files" parts.
func (h *Handler) uploadFiles(w http.ResponseWriter, r *http.Request) {
	f, e := h.files(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	mr, e := r.MultipartReader()
	if e != nil {
		h.writeError(w, badRequest("Expected a multipart upload"))
		return
	}
	dir := ""
	n := 0
	for {
		part, e := mr.NextPart()
		if errors.Is(e, io.EOF) {
			break
		}
		if e != nil {
			h.writeError(w, uploadError(e))
			return
		}
		switch {
		case part.FormName() == "path" && part.FileName() == "":
			b, _ := io.ReadAll(io.LimitReader(part, 4096))
			dir = string(b)
		case part.FileName() != "":
			if _, e := f.Upload(dir, part.FileName(), part); e != nil {
				part.Close()
				h.writeError(w, e)
				return
			}
			n++
		}
		part.Close()
	}
	h.writeOk(w, fmt.Sprintf("%d files uploaded successfully", n))
}

func uploadError(e error) *Error {
	var mbe *http.MaxBytesError
	if errors.As(e, &mbe) {
		return &Error{Code: http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("Upload exceeds %d bytes", mbe.Limit)}
	}
	return badRequest("Malformed upload: " + e.Error())
}
