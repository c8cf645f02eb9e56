package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/hyperifyio/goinsight/internal/analysis"
	"github.com/hyperifyio/goinsight/internal/dataset"
	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/prompt"
	"github.com/hyperifyio/goinsight/internal/report"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     string       `json:"error"`
	Fields    []fieldError `json:"fields,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

func errorBody(r *http.Request, msg string) errorResponse {
	return errorResponse{Error: msg, RequestID: middleware.GetReqID(r.Context())}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorBody(r, err.Error())
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Error = "invalid request"
		for _, fe := range verrs {
			body.Fields = append(body.Fields, fieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
	}
	ev := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")
	render.Status(r, status)
	render.JSON(w, r, body)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := render.DecodeJSON(body, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return s.validate.Struct(v)
}

type reportRequest struct {
	Text           string   `json:"text" validate:"required"`
	Columns        []string `json:"columns" validate:"omitempty,dive,required"`
	NumericColumns []string `json:"numericColumns" validate:"omitempty,dive,required"`
}

func (q reportRequest) options(normalize bool) analysis.Options {
	return analysis.Options{
		Normalize: normalize,
		Context:   extract.Context{Columns: q.Columns, Numeric: q.NumericColumns},
	}
}

type generateRequest struct {
	Data    string `json:"data" validate:"required"`
	Format  string `json:"format" validate:"omitempty,oneof=csv json"`
	Name    string `json:"name"`
	MaxRows int    `json:"maxRows" validate:"gte=0"`
}

type categoryInfo struct {
	Name        extract.Category `json:"name"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Sections    []string         `json:"sections"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":    "ok",
		"version":   s.cfg.Version,
		"generator": s.generator != nil,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	var out []categoryInfo
	for _, p := range prompt.Profiles() {
		out = append(out, categoryInfo{Name: p.Category, Title: p.Name, Description: p.Description, Sections: p.Outline})
	}
	render.JSON(w, r, out)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	text := req.Text
	if s.cfg.Normalize {
		text = report.Normalize(text)
	}
	doc := report.Parse(text)
	s.metrics.sections.Observe(float64(len(doc.Sections)))
	render.JSON(w, r, doc)
}

func (s *Server) category(w http.ResponseWriter, r *http.Request) (extract.Category, bool) {
	c, err := extract.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, err)
		return "", false
	}
	return c, true
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	c, ok := s.category(w, r)
	if !ok {
		return
	}
	var req reportRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	start := time.Now()
	a, err := analysis.Run(c, req.Text, req.options(s.cfg.Normalize))
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.metrics.observeExtract(string(c), start, len(a.Document.Sections))
	render.JSON(w, r, a)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	start := time.Now()
	all, err := analysis.RunAll(req.Text, req.options(s.cfg.Normalize))
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if a, ok := all[extract.CategoryOverview]; ok {
		s.metrics.observeExtract("all", start, len(a.Document.Sections))
	}
	render.JSON(w, r, all)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	c, ok := s.category(w, r)
	if !ok {
		return
	}
	if s.generator == nil {
		s.fail(w, r, http.StatusServiceUnavailable, errors.New("generation is not configured"))
		return
	}
	var req generateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	format := dataset.FormatCSV
	if req.Format != "" {
		format = dataset.Format(req.Format)
	}
	d, err := dataset.Read(strings.NewReader(req.Data), format, dataset.Options{})
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	d.Name = req.Name
	maxRows := req.MaxRows
	if maxRows == 0 {
		maxRows = s.cfg.MaxRows
	}
	start := time.Now()
	g, err := analysis.FromDataset(r.Context(), s.generator, c, d, prompt.Options{MaxRows: maxRows}, analysis.Options{Normalize: s.cfg.Normalize})
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	s.metrics.observeExtract(string(c), start, len(g.Document.Sections))
	render.JSON(w, r, g)
}
