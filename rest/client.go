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
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/MoonlightPanel/IdlerMeow"
)

type Client struct {
	user   string // HTTP Basic-Auth
	pass   string
	auth   bool
	base   string // URI to root of tree on server
	client *http.Client

	logs map[int]*LogInfo // cached daemon logs, by port filter
	lock sync.Mutex
}

func (c *Client) SetAuth(user string, pass string) {
	c.user = user
	c.pass = pass
	c.auth = true
}

func (c *Client) url(port int, suffix string) string {
	return c.base + "/instances/" + strconv.Itoa(port) + suffix
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader, ctype string) (*http.Response, error) {
	req, e := http.NewRequestWithContext(ctx, method, u, body)
	if e != nil {
		return nil, e
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	if c.auth {
		req.SetBasicAuth(c.user, c.pass)
	}
	res, e := c.client.Do(req)
	if e != nil {
		return nil, e
	}
	if res.StatusCode >= 300 && res.StatusCode != http.StatusNotModified {
		defer res.Body.Close()
		re := &Error{Code: res.StatusCode, Message: res.Status}
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		json.Unmarshal(b, re)
		re.Code = res.StatusCode
		return nil, re
	}
	return res, nil
}

// call sends in (if not nil) as JSON and decodes the reply into out
// (if not nil).
func (c *Client) call(method, u string, in, out interface{}) error {
	var body io.Reader
	ctype := ""
	if in != nil {
		b, e := json.Marshal(in)
		if e != nil {
			return e
		}
		body = bytes.NewReader(b)
		ctype = mimeJson
	}
	res, e := c.do(context.Background(), method, u, body, ctype)
	if e != nil {
		return e
	}
	defer res.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) Instances() ([]*InstanceInfo, error) {
	var l []*InstanceInfo
	if e := c.call("GET", c.base+"/instances", nil, &l); e != nil {
		return nil, e
	}
	return l, nil
}

func (c *Client) Instance(port int) (*InstanceInfo, error) {
	info := &InstanceInfo{}
	if e := c.call("GET", c.url(port, ""), nil, info); e != nil {
		return nil, e
	}
	return info, nil
}

func (c *Client) Create(rec *idlermeow.Record) error {
	return c.call("POST", c.base+"/instances", rec, nil)
}

func (c *Client) Status(port int) (idlermeow.Status, error) {
	var si StatusInfo
	if e := c.call("GET", c.url(port, "/status"), nil, &si); e != nil {
		return idlermeow.Offline, e
	}
	return si.Status, nil
}

func (c *Client) postAction(port int, action string) (string, error) {
	var res Result
	if e := c.call("POST", c.url(port, "/"+action), nil, &res); e != nil {
		return "", e
	}
	return res.Message, nil
}

func (c *Client) Start(port int) (string, error) {
	return c.postAction(port, "start")
}

func (c *Client) Stop(port int) (string, error) {
	return c.postAction(port, "stop")
}

func (c *Client) Restart(port int) (string, error) {
	return c.postAction(port, "restart")
}

func (c *Client) SendCommand(port int, command string) error {
	return c.call("POST", c.url(port, "/command"), &CommandRequest{Command: command}, nil)
}

func (c *Client) AddUser(port int, email string) error {
	return c.call("POST", c.url(port, "/users"), &UserRequest{Email: email}, nil)
}

func (c *Client) RemoveUser(port int, email string) error {
	return c.call("DELETE", c.url(port, "/users/"+url.PathEscape(email)), nil, nil)
}

func (c *Client) ListFiles(port int, path string) (*FileList, error) {
	fl := &FileList{}
	if e := c.call("GET", c.url(port, "/files?path="+url.QueryEscape(path)), nil, fl); e != nil {
		return nil, e
	}
	return fl, nil
}

func (c *Client) ReadFile(port int, path string) (string, error) {
	var fc FileContent
	if e := c.call("GET", c.url(port, "/files/content?path="+url.QueryEscape(path)), nil, &fc); e != nil {
		return "", e
	}
	return fc.Content, nil
}

func (c *Client) WriteFile(port int, path, content string) error {
	return c.call("PUT", c.url(port, "/files/content"), &FileContent{Path: path, Content: content}, nil)
}

// Download copies the raw content of path to w.
func (c *Client) Download(port int, path string, w io.Writer) error {
	res, e := c.do(context.Background(), "GET",
		c.url(port, "/files/download?path="+url.QueryEscape(path)), nil, "")
	if e != nil {
		return e
	}
	defer res.Body.Close()
	_, e = io.Copy(w, res.Body)
	return e
}

func (c *Client) CreateFile(port int, dir, name string) error {
	return c.call("POST", c.url(port, "/files/create-file"), &CreateRequest{Path: dir, Name: name}, nil)
}

func (c *Client) CreateFolder(port int, dir, name string) error {
	return c.call("POST", c.url(port, "/files/create-folder"), &CreateRequest{Path: dir, Name: name}, nil)
}

func (c *Client) Rename(port int, path, newName string) error {
	return c.call("POST", c.url(port, "/files/rename"), &RenameRequest{OldPath: path, NewName: newName}, nil)
}

func (c *Client) Delete(port int, paths []string) ([]string, error) {
	var res DeleteResult
	if e := c.call("POST", c.url(port, "/files/delete"), &DeleteRequest{Files: paths}, &res); e != nil {
		return nil, e
	}
	return res.Deleted, nil
}

func (c *Client) Archive(port int, paths []string, name string) (*idlermeow.ArchiveResult, error) {
	var res ArchiveResult
	if e := c.call("POST", c.url(port, "/files/archive"),
		&ArchiveRequest{Files: paths, ArchiveName: name}, &res); e != nil {
		return nil, e
	}
	return &res.ArchiveResult, nil
}

// Upload sends r as a file called name into the directory dir.
func (c *Client) Upload(port int, dir, name string, r io.Reader) error {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if e := mw.WriteField("path", dir); e != nil {
		return e
	}
	fw, e := mw.CreateFormFile("files", name)
	if e != nil {
		return e
	}
	if _, e = io.Copy(fw, r); e != nil {
		return e
	}
	if e = mw.Close(); e != nil {
		return e
	}
	res, e := c.do(context.Background(), "POST", c.url(port, "/files/upload"), buf, mw.FormDataContentType())
	if e != nil {
		return e
	}
	res.Body.Close()
	return nil
}

// pollLog fetches the daemon log, filtered to port if it is not zero.
// With a previous LogInfo it asks the server to wait up to secs for a
// change; if nothing changed, last is returned.
func (c *Client) pollLog(ctx context.Context, port int, secs int, last *LogInfo) (*LogInfo, error) {
	u := c.base + "/log"
	if port != 0 {
		u += "?port=" + strconv.Itoa(port)
	}
	req, e := http.NewRequestWithContext(ctx, "GET", u, nil)
	if e != nil {
		return nil, e
	}
	if c.auth {
		req.SetBasicAuth(c.user, c.pass)
	}
	if last != nil && last.etag != "" {
		req.Header.Set("If-None-Match", last.etag)
		if secs > 0 {
			req.Header.Set(PollEtagHeader, last.etag)
			req.Header.Set(PollTimeHeader, strconv.Itoa(secs))
		}
	}
	res, e := c.client.Do(req)
	if e != nil {
		return nil, e
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case http.StatusNotModified:
		return last, nil
	case http.StatusOK:
	default:
		return nil, &Error{Code: res.StatusCode, Message: res.Status}
	}
	v := &LogInfo{etag: res.Header.Get("Etag")}
	if e := json.NewDecoder(res.Body).Decode(&v.Records); e != nil {
		return nil, e
	}
	c.lock.Lock()
	c.logs[port] = v
	c.lock.Unlock()
	return v, nil
}

// GetLog returns the daemon log without waiting.
func (c *Client) GetLog(port int) (*LogInfo, error) {
	c.lock.Lock()
	last := c.logs[port]
	c.lock.Unlock()
	return c.pollLog(context.Background(), port, 0, last)
}

// WatchLog waits up to five minutes for the log to move past last.
func (c *Client) WatchLog(ctx context.Context, port int, last *LogInfo) (*LogInfo, error) {
	return c.pollLog(ctx, port, 300, last)
}

// Console is a live connection to an instance console.
type Console struct {
	ws     *websocket.Conn
	events chan idlermeow.Event
	err    error
}

// Events delivers the instance's events.  It is closed when the
// connection ends; Err then says why.
func (cs *Console) Events() <-chan idlermeow.Event {
	return cs.events
}

func (cs *Console) Err() error {
	return cs.err
}

// Send writes command to the instance console.
func (cs *Console) Send(command string) error {
	return websocket.JSON.Send(cs.ws, &CommandRequest{Command: command})
}

func (cs *Console) Close() error {
	return cs.ws.Close()
}

func (cs *Console) run() {
	defer close(cs.events)
	for {
		var ev idlermeow.Event
		if e := websocket.JSON.Receive(cs.ws, &ev); e != nil {
			if e != io.EOF {
				cs.err = e
			}
			return
		}
		cs.events <- ev
	}
}

// Console attaches to the console of the instance on port.
func (c *Client) Console(port int) (*Console, error) {
	origin, e := url.Parse(c.base)
	if e != nil {
		return nil, e
	}
	loc := *origin
	switch loc.Scheme {
	case "https":
		loc.Scheme = "wss"
	default:
		loc.Scheme = "ws"
	}
	loc.Path = strings.TrimSuffix(loc.Path, "/") + fmt.Sprintf("/instances/%d/console", port)

	cfg, e := websocket.NewConfig(loc.String(), origin.String())
	if e != nil {
		return nil, e
	}
	if c.auth {
		cred := base64.StdEncoding.EncodeToString([]byte(c.user + ":" + c.pass))
		cfg.Header.Set("Authorization", "Basic "+cred)
	}
	ws, e := websocket.DialConfig(cfg)
	if e != nil {
		return nil, e
	}
	cs := &Console{ws: ws, events: make(chan idlermeow.Event, idlermeow.DefaultSubscriberDepth)}
	go cs.run()
	return cs, nil
}

// NewClient returns a Client handle.  The transport may be nil to use
// a default transport, but it may also be adjusted to support additional
// options such as TLS.  baseURI is the base URL to use.
func NewClient(t *http.Transport, baseURI string) *Client {
	if t == nil {
		t = &http.Transport{}
	}
	return &Client{
		base:   strings.TrimSuffix(baseURI, "/"),
		client: &http.Client{Transport: t},
		logs:   make(map[int]*LogInfo),
	}
}
