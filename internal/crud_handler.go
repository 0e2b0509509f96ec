package internal

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrymomot/scaffold/pkg/crud"
)

// maxMultipartMemory is how much of an upload is kept in memory before
// spilling to temporary files.
const maxMultipartMemory = 32 << 20

// crudRoutes are mounted under every resource base URL.
var crudRoutes = []string{"/", "/page/{page}", "/{action}", "/{id}/{action}"}

// resourceHandler binds a crud.Resource to HTTP.
type resourceHandler struct {
	res *crud.Resource
	app *App
}

func (h *resourceHandler) Routes(r Router) {
	r.Route(h.res.BaseURL(), func(r Router) {
		for _, p := range crudRoutes {
			r.GET(p, h.serve)
			r.POST(p, h.serve)
		}
	})
}

func (h *resourceHandler) serve(c Context) error {
	req, err := h.app.crudRequest(c)
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "", WithError(err))
	}

	ctrl := crud.NewController(h.res, req, crud.Env{
		Flash:   c.Flash(),
		Filters: h.app.filters(c),
		Logger:  c.Logger(),
	})
	// Dispatch always settles on a response; the error is already logged.
	resp, err := ctrl.Dispatch(c)
	return writeResponse(c, resp, err)
}

// apiHandler binds a crud.APIResource to GET pattern and pattern/{id}.
type apiHandler struct {
	api     *crud.APIResource
	app     *App
	pattern string
}

func (h *apiHandler) Routes(r Router) {
	r.Route(h.pattern, func(r Router) {
		r.GET("/", h.serve)
		r.GET("/{id}", h.serve)
	})
}

func (h *apiHandler) serve(c Context) error {
	r := c.Request()
	resp := h.api.Handle(c, crud.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header,
		Query:  r.URL.Query(),
		Params: crud.Params{ID: c.Param("id")},
	})
	return writeResponse(c, resp, nil)
}

// crudRequest reads the route params, form and uploads of c.
func (a *App) crudRequest(c Context) (crud.Request, error) {
	r := c.Request()
	req := crud.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header,
		Query:  r.URL.Query(),
		Params: crud.Params{
			Action: c.Param("action"),
			ID:     c.Param("id"),
			Page:   c.Param("page"),
		},
	}
	if p, ok := a.principal.Extract(c); ok {
		req.Principal = p
	}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return req, nil
	}

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return req, fmt.Errorf("parse multipart form: %w", err)
		}
		req.Files = make(map[string]crud.File, len(r.MultipartForm.File))
		for name, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			fh := headers[0]
			req.Files[name] = crud.File{
				Open:        func() (io.ReadCloser, error) { return fh.Open() },
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			}
		}
	} else if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("parse form: %w", err)
	}
	req.Form = r.PostForm
	return req, nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// filters keeps list state in the session when sessions are configured.
func (a *App) filters(c Context) crud.FilterStore {
	if a.sessions == nil {
		return nil
	}
	rc, ok := c.Value(requestContextKey{}).(*requestContext)
	if !ok {
		return nil
	}
	return crud.NewSessionFilters(sessionValues{c: rc})
}

// writeResponse writes a controller response. cause is attached to error
// responses for logging.
func writeResponse(c Context, resp crud.Response, cause error) error {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch resp.Kind {
	case crud.KindHTML:
		return c.Render(status, resp.Template, resp.Data)
	case crud.KindJSON:
		return c.JSON(status, resp.JSON)
	case crud.KindRedirect:
		if status < 300 || status > 399 {
			status = http.StatusSeeOther
		}
		return c.Redirect(status, resp.Location)
	case crud.KindFile:
		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.SetHeader("Content-Type", contentType)
		c.SetHeader("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": resp.Filename}))
		c.ResponseWriter().WriteHeader(status)
		_, err := c.Response().Write(resp.Body)
		return err
	case crud.KindError:
		return NewHTTPError(status, resp.Message, WithError(cause))
	default:
		return errors.Join(errUnknownResponse, fmt.Errorf("kind %s", resp.Kind))
	}
}

var errUnknownResponse = errors.New("scaffold: unknown response kind")
