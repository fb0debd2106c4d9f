package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/toyz/jointc/internal/compiler"
	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/errors"
)

// MIMETextTxtar selects the txtar request form of POST /v1/compile
const MIMETextTxtar = "text/x-txtar"

// CompileRequest is the JSON request form of POST /v1/compile
type CompileRequest struct {
	Sources []compiler.Source `json:"sources"`
	Options RequestOptions    `json:"options"`
}

// RequestOptions override the service's compiler defaults for one request.
// The txtar form takes the same fields as query parameters.
type RequestOptions struct {
	Compliance           string `json:"compliance,omitempty"`
	GenericsStrict       *bool  `json:"generics_strict,omitempty"`
	StarImportPrecedence string `json:"star_import_precedence,omitempty"`
	PathStyle            string `json:"path_style,omitempty"`
	Dump                 bool   `json:"dump,omitempty"`
}

// CompileResponse is the body of a successful compile request. Source
// problems do not fail the request; Errors reports them.
type CompileResponse struct {
	RequestID string         `json:"request_id"`
	SessionID string         `json:"session_id"`
	Errors    bool           `json:"errors"`
	Problems  int            `json:"problems"`
	Report    string         `json:"report"`
	Units     []UnitResponse `json:"units"`
}

// UnitResponse is the outcome of one source
type UnitResponse struct {
	Path         string               `json:"path"`
	Diagnostics  []DiagnosticResponse `json:"diagnostics"`
	Declarations string               `json:"declarations,omitempty"`
	Classes      []ClassResponse      `json:"classes"`
}

// DiagnosticResponse is one reported problem
type DiagnosticResponse struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// ClassResponse is one emitted class
type ClassResponse struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Disassembly string `json:"disassembly"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) compile(c echo.Context) error {
	req, err := s.bind(c)
	if err != nil {
		return err
	}
	if len(req.Sources) == 0 {
		return ErrBadRequest("no sources")
	}
	opts, err := s.options(req.Options)
	if err != nil {
		return err
	}

	id := c.Response().Header().Get(echo.HeaderXRequestID)
	s.diagnostics.Verbose("request %s: %d sources", id, len(req.Sources))
	session := compiler.NewSession(opts,
		compiler.WithLogger(s.diagnostics),
		compiler.WithFrontEnds(s.frontEnds),
	)
	result, err := session.Compile(c.Request().Context(), req.Sources)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response(id, result))
}

// bind reads either form of the request
func (s *Server) bind(c echo.Context) (*CompileRequest, error) {
	req := &CompileRequest{}
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, MIMETextTxtar) {
		if err := c.Bind(req); err != nil {
			return nil, err
		}
		return req, nil
	}

	req.Options = RequestOptions{
		Compliance:           c.QueryParam("compliance"),
		StarImportPrecedence: c.QueryParam("star_import_precedence"),
		PathStyle:            c.QueryParam("path_style"),
	}
	strict, err := queryBool(c, "generics_strict")
	if err != nil {
		return nil, err
	}
	req.Options.GenericsStrict = strict
	if dump, err := queryBool(c, "dump"); err != nil {
		return nil, err
	} else if dump != nil {
		req.Options.Dump = *dump
	}

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", "request body", err)
	}
	req.Sources = compiler.ArchiveSources(data)
	return req, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, ErrBadRequest(fmt.Sprintf("%s must be a boolean", name))
	}
	return &v, nil
}

// options layers request overrides on a copy of the service defaults
func (s *Server) options(ro RequestOptions) (*config.Options, error) {
	opts := *s.config.Options
	opts.Imports = make([]*config.ImportSet, len(s.config.Options.Imports))
	for i, set := range s.config.Options.Imports {
		cp := *set
		opts.Imports[i] = &cp
	}
	if ro.Compliance != "" {
		opts.Compliance = ro.Compliance
	}
	if ro.GenericsStrict != nil {
		opts.GenericsStrict = *ro.GenericsStrict
	}
	if ro.StarImportPrecedence != "" {
		opts.StarImportPrecedence = config.Precedence(ro.StarImportPrecedence)
	}
	switch ro.PathStyle {
	case "":
	case "windows":
		opts.PathStyle = errors.PathStyleWindows
	case "native":
		opts.PathStyle = errors.PathStyleNative
	default:
		return nil, ErrBadRequest(`path_style must be "windows" or "native"`)
	}
	opts.Retain = ro.Dump
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func response(id string, result *compiler.Result) *CompileResponse {
	out := &CompileResponse{
		RequestID: id,
		SessionID: result.SessionID,
		Errors:    result.HasErrors(),
		Problems:  result.Problems(),
		Report:    result.Report(),
		Units:     make([]UnitResponse, 0, len(result.Units)),
	}
	for _, u := range result.Units {
		ur := UnitResponse{
			Path:         u.Source.Path,
			Diagnostics:  make([]DiagnosticResponse, 0, len(u.Diagnostics)),
			Declarations: u.Declarations,
			Classes:      make([]ClassResponse, 0, len(u.Classes)),
		}
		for _, d := range u.Diagnostics {
			pos := d.Position()
			ur.Diagnostics = append(ur.Diagnostics, DiagnosticResponse{
				Severity: d.Severity.String(),
				Code:     d.Code.String(),
				Message:  d.Text(),
				Line:     pos.Line,
				Column:   pos.Column,
			})
		}
		for _, cl := range u.Classes {
			ur.Classes = append(ur.Classes, ClassResponse{
				Name:        cl.BinaryName,
				File:        cl.FilePath,
				Disassembly: cl.Disassembly,
			})
		}
		out.Units = append(out.Units, ur)
	}
	return out
}
