// Package vkapitest provides an in-memory implementation of the token endpoint and the
// likes.* methods, for testing code that talks to the API without touching the live service.
package vkapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vkqa/likes-contract-tests/vkapi"
)

const (
	TokenPath  = "/access_token"
	MethodPath = "/method/"
)

// User is an account known to the fake server.
type User struct {
	ID          int
	AccessToken string
}

// App is an OAuth application known to the fake server.
type App struct {
	ID          int
	Secret      string
	RedirectURI string
}

type likeKey struct {
	targetType string
	ownerID    int
	itemID     int
}

// Server is a fake API. The zero value is not usable; call NewServer.
//
// Owners can be made unreachable in two ways: PrivateProfile owners reject calls with error 30,
// AccessDenied owners with error 15. Every item of every other owner exists.
type Server struct {
	server        *httptest.Server
	apps          map[int]App
	codes         map[string]int
	tokens        map[string]int
	privateOwners map[int]bool
	deniedOwners  map[int]bool
	likes         map[likeKey][]int
	calls         []string
	lock          sync.Mutex
}

// NewServer starts a fake server. Close it when done.
func NewServer() *Server {
	s := &Server{
		apps:          make(map[int]App),
		codes:         make(map[string]int),
		tokens:        make(map[string]int),
		privateOwners: make(map[int]bool),
		deniedOwners:  make(map[int]bool),
		likes:         make(map[likeKey][]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

func (s *Server) Close() { s.server.Close() }

// URL is the server root.
func (s *Server) URL() string { return s.server.URL }

// TokenURL is the URL of the authorization-code exchange endpoint.
func (s *Server) TokenURL() string { return s.server.URL + TokenPath }

// MethodURL is the base URL for method calls.
func (s *Server) MethodURL() string { return s.server.URL + MethodPath }

func (s *Server) AddApp(app App) {
	s.lock.Lock()
	s.apps[app.ID] = app
	s.lock.Unlock()
}

// AddUser registers a user whose token is accepted by method calls.
func (s *Server) AddUser(user User) {
	s.lock.Lock()
	s.tokens[user.AccessToken] = user.ID
	s.lock.Unlock()
}

// IssueCode registers a single-use authorization code for the user.
func (s *Server) IssueCode(code string, userID int) {
	s.lock.Lock()
	s.codes[code] = userID
	s.lock.Unlock()
}

func (s *Server) SetPrivateProfile(ownerID int) {
	s.lock.Lock()
	s.privateOwners[ownerID] = true
	s.lock.Unlock()
}

func (s *Server) SetAccessDenied(ownerID int) {
	s.lock.Lock()
	s.deniedOwners[ownerID] = true
	s.lock.Unlock()
}

// SetLiked puts an item in a user's likes list directly, bypassing the API.
func (s *Server) SetLiked(targetType vkapi.Type, ownerID, itemID, userID int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	key := likeKey{string(targetType), ownerID, itemID}
	if indexOf(s.likes[key], userID) < 0 {
		s.likes[key] = append(s.likes[key], userID)
	}
}

// Likers returns the users who liked an item, in the order they liked it.
func (s *Server) Likers(targetType vkapi.Type, ownerID, itemID int) []int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]int(nil), s.likes[likeKey{string(targetType), ownerID, itemID}]...)
}

// Calls returns the names of the methods called so far, including "access_token" for
// exchanges.
func (s *Server) Calls() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) serveHTTP(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	switch {
	case req.URL.Path == TokenPath:
		s.serveToken(w, req)
	case strings.HasPrefix(req.URL.Path, MethodPath):
		s.serveMethod(w, req, strings.TrimPrefix(req.URL.Path, MethodPath))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) serveToken(w http.ResponseWriter, req *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls = append(s.calls, "access_token")

	appID, _ := strconv.Atoi(req.Form.Get("client_id"))
	app, ok := s.apps[appID]
	if !ok || app.Secret != req.Form.Get("client_secret") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "client_secret is incorrect",
		})
		return
	}
	if app.RedirectURI != req.Form.Get("redirect_uri") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_grant",
			"error_description": "redirect_uri is incorrect",
		})
		return
	}
	code := req.Form.Get("code")
	userID, ok := s.codes[code]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_grant",
			"error_description": "Code is invalid or expired.",
		})
		return
	}
	delete(s.codes, code)

	token := fmt.Sprintf("token-%d-%d", userID, len(s.tokens)+1)
	s.tokens[token] = userID
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"expires_in":   86400,
		"user_id":      userID,
	})
}

type methodError struct {
	code    int
	message string
}

func (s *Server) serveMethod(w http.ResponseWriter, req *http.Request, method string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls = append(s.calls, method)

	userID, ok := s.tokens[req.Form.Get("access_token")]
	if !ok {
		writeMethodError(w, methodError{vkapi.CodeAuthFailed, "User authorization failed: invalid access_token"})
		return
	}

	var result interface{}
	var merr *methodError
	switch method {
	case "likes.add":
		result, merr = s.add(req, userID)
	case "likes.delete":
		result, merr = s.remove(req, userID)
	case "likes.getList":
		result, merr = s.getList(req, userID)
	case "likes.isLiked":
		result, merr = s.isLiked(req, userID)
	default:
		merr = &methodError{3, "Unknown method passed"}
	}
	if merr != nil {
		writeMethodError(w, *merr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"response": result})
}

func (s *Server) target(req *http.Request, userID int) (likeKey, *methodError) {
	targetType := req.Form.Get("type")
	if !vkapi.Type(targetType).Valid() {
		return likeKey{}, paramError("type is undefined")
	}
	key := likeKey{targetType: targetType, ownerID: userID}
	if v := req.Form.Get("owner_id"); v != "" {
		ownerID, err := strconv.Atoi(v)
		if err != nil {
			return likeKey{}, paramError("owner_id not integer")
		}
		key.ownerID = ownerID
	}
	v := req.Form.Get("item_id")
	if v == "" {
		return likeKey{}, paramError("item_id is undefined")
	}
	itemID, err := strconv.Atoi(v)
	if err != nil || itemID <= 0 {
		return likeKey{}, paramError("item_id not integer")
	}
	key.itemID = itemID
	return key, s.checkOwner(key.ownerID)
}

func (s *Server) checkOwner(ownerID int) *methodError {
	if s.privateOwners[ownerID] {
		return &methodError{vkapi.CodePrivateProfile, "This profile is private"}
	}
	if s.deniedOwners[ownerID] {
		return &methodError{vkapi.CodeAccessDenied, "Access denied"}
	}
	return nil
}

func (s *Server) add(req *http.Request, userID int) (interface{}, *methodError) {
	key, merr := s.target(req, userID)
	if merr != nil {
		return nil, merr
	}
	if indexOf(s.likes[key], userID) < 0 {
		s.likes[key] = append(s.likes[key], userID)
	}
	return vkapi.AddResponse{Likes: len(s.likes[key])}, nil
}

func (s *Server) remove(req *http.Request, userID int) (interface{}, *methodError) {
	key, merr := s.target(req, userID)
	if merr != nil {
		return nil, merr
	}
	i := indexOf(s.likes[key], userID)
	if i < 0 {
		return nil, &methodError{vkapi.CodeAccessDenied, "Access denied: like not found"}
	}
	likers := s.likes[key]
	s.likes[key] = append(likers[:i:i], likers[i+1:]...)
	if len(s.likes[key]) == 0 {
		delete(s.likes, key)
	}
	return vkapi.DeleteResponse{Likes: len(s.likes[key])}, nil
}

func (s *Server) getList(req *http.Request, userID int) (interface{}, *methodError) {
	key, merr := s.target(req, userID)
	if merr != nil {
		return nil, merr
	}
	items := append([]int{}, s.likes[key]...)
	sort.Ints(items)
	count := len(items)
	if v := req.Form.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			if offset > len(items) {
				offset = len(items)
			}
			items = items[offset:]
		}
	}
	if v := req.Form.Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(items) {
			items = items[:n]
		}
	}
	return vkapi.GetListResponse{Count: count, Items: items}, nil
}

func (s *Server) isLiked(req *http.Request, userID int) (interface{}, *methodError) {
	key, merr := s.target(req, userID)
	if merr != nil {
		return nil, merr
	}
	checkUser := userID
	if v := req.Form.Get("user_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, paramError("user_id not integer")
		}
		checkUser = id
	}
	liked := vkapi.No
	if indexOf(s.likes[key], checkUser) >= 0 {
		liked = vkapi.Yes
	}
	return vkapi.IsLikedResponse{Liked: liked, Copied: vkapi.No}, nil
}

func paramError(detail string) *methodError {
	return &methodError{vkapi.CodeParam, "One of the parameters specified was missing or invalid: " + detail}
}

func writeMethodError(w http.ResponseWriter, merr methodError) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error": map[string]interface{}{
			"error_code": merr.code,
			"error_msg":  merr.message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
