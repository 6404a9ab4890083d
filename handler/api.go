package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/filevault/pkg/httpserver"
	"github.com/dmitrymomot/filevault/pkg/objectid"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/files"
)

// AuthService is the account side of the API.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	WhoAmI(ctx context.Context, token string) (*auth.User, error)
}

// FileManager is the file side of the API.
type FileManager interface {
	CreateNode(ctx context.Context, token string, in files.CreateNodeInput) (*files.Node, error)
	Get(ctx context.Context, token, id string) (*files.Node, error)
	List(ctx context.Context, token, parentID string, page int) ([]files.Node, error)
	SetVisibility(ctx context.Context, token, id string, public bool) (*files.Node, error)
	ReadContent(ctx context.Context, token, id string, size int) (*files.Content, error)
	RenditionStatus(ctx context.Context, token, id string) (map[int]bool, error)
	Stats(ctx context.Context) (files.Stats, error)
}

// API holds the endpoint implementations.
type API struct {
	auth   AuthService
	files  FileManager
	probes map[string]httpserver.Probe
}

// NewAPI returns an API over the given services.
func NewAPI(a AuthService, f FileManager) *API {
	return &API{auth: a, files: f, probes: map[string]httpserver.Probe{}}
}

// probeTimeout bounds each /status check.
const probeTimeout = 3 * time.Second

// WithProbe adds a dependency reported by /status and /health/ready.
// Probes must be added before NewRouter.
func (a *API) WithProbe(name string, p httpserver.Probe) *API {
	a.probes[name] = p
	return a
}

// Probes returns the registered dependency checks.
func (a *API) Probes() map[string]httpserver.Probe {
	return a.probes
}

// NoParams is the request type of endpoints without bound input.
type NoParams struct{}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    objectid.ID `json:"id"`
	Email string      `json:"email"`
}

// TokenResponse carries a new session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateFileRequest is the body of POST /files. ParentID accepts 0, "0",
// or an id string.
type CreateFileRequest struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	ParentID json.RawMessage `json:"parentId"`
	IsPublic bool            `json:"isPublic"`
	Data     string          `json:"data"`
}

// FileRequest addresses a node by path id.
type FileRequest struct {
	ID string `path:"id"`
}

// ListRequest is the query of GET /files.
type ListRequest struct {
	ParentID string `query:"parentId"`
	Page     string `query:"page"`
}

// pageNumber reads the page query leniently: garbage and negatives mean the
// first page, numbers too large for an int mean a page past the end.
func pageNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		return math.MaxInt
	case err != nil, n < 0:
		return 0
	}
	return n
}

// DataRequest is the path and query of GET /files/{id}/data.
type DataRequest struct {
	ID   string `path:"id"`
	Size string `query:"size"`
}

// Status reports dependency liveness.
func (a *API) Status(ctx Context, _ NoParams) Response {
	status := make(map[string]bool, len(a.probes))
	for name, probe := range a.probes {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		status[name] = probe(pctx) == nil
		cancel()
	}
	return JSON(status)
}

// Stats reports user and file totals.
func (a *API) Stats(ctx Context, _ NoParams) Response {
	s, err := a.files.Stats(ctx)
	if err != nil {
		return Error(err)
	}
	return JSON(s)
}

// Register creates a user.
func (a *API) Register(ctx Context, req RegisterRequest) Response {
	u, err := a.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		return Error(err)
	}
	return JSON(UserResponse{ID: u.ID, Email: u.Email}, WithJSONStatus(http.StatusCreated))
}

// Connect exchanges Basic credentials for a token.
func (a *API) Connect(ctx Context, _ NoParams) Response {
	email, password, err := auth.ParseBasicAuth(ctx.Request().Header.Get("Authorization"))
	if err != nil {
		return Error(err)
	}
	token, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return Error(err)
	}
	return JSON(TokenResponse{Token: token})
}

// Disconnect ends the session.
func (a *API) Disconnect(ctx Context, _ NoParams) Response {
	if err := a.auth.Logout(ctx, ctx.Token()); err != nil {
		return Error(err)
	}
	return Empty()
}

// Me returns the current user.
func (a *API) Me(ctx Context, _ NoParams) Response {
	u, err := a.auth.WhoAmI(ctx, ctx.Token())
	if err != nil {
		return Error(err)
	}
	return JSON(UserResponse{ID: u.ID, Email: u.Email})
}

// CreateFile uploads a node.
func (a *API) CreateFile(ctx Context, req CreateFileRequest) Response {
	n, err := a.files.CreateNode(ctx, ctx.Token(), files.CreateNodeInput{
		Name:     req.Name,
		Type:     files.NodeType(req.Type),
		ParentID: rawID(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		return Error(err)
	}
	return JSON(n, WithJSONStatus(http.StatusCreated))
}

// GetFile returns one node.
func (a *API) GetFile(ctx Context, req FileRequest) Response {
	n, err := a.files.Get(ctx, ctx.Token(), req.ID)
	if err != nil {
		return Error(err)
	}
	return JSON(n)
}

// ListFiles returns a page of nodes.
func (a *API) ListFiles(ctx Context, req ListRequest) Response {
	nodes, err := a.files.List(ctx, ctx.Token(), req.ParentID, pageNumber(req.Page))
	if err != nil {
		return Error(err)
	}
	return JSON(nodes)
}

// Publish makes a node public.
func (a *API) Publish(ctx Context, req FileRequest) Response {
	return a.setVisibility(ctx, req.ID, true)
}

// Unpublish makes a node private.
func (a *API) Unpublish(ctx Context, req FileRequest) Response {
	return a.setVisibility(ctx, req.ID, false)
}

func (a *API) setVisibility(ctx Context, id string, public bool) Response {
	n, err := a.files.SetVisibility(ctx, ctx.Token(), id, public)
	if err != nil {
		return Error(err)
	}
	return JSON(n)
}

// FileData streams node content. Unparseable sizes serve the original.
func (a *API) FileData(ctx Context, req DataRequest) Response {
	size, _ := strconv.Atoi(req.Size)
	c, err := a.files.ReadContent(ctx, ctx.Token(), req.ID, size)
	if err != nil {
		return Error(err)
	}
	return Content(c)
}

// Thumbnails reports rendition readiness of an image.
func (a *API) Thumbnails(ctx Context, req FileRequest) Response {
	status, err := a.files.RenditionStatus(ctx, ctx.Token(), req.ID)
	if err != nil {
		return Error(err)
	}
	return JSON(status)
}

// rawID turns a JSON id value into its string form. Numbers other than 0
// stay as written and fail id parsing downstream.
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}
