package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/photosheet/pkg/buildinfo"
	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/dims"
	"github.com/matzehuels/photosheet/pkg/errors"
	pio "github.com/matzehuels/photosheet/pkg/io"
	"github.com/matzehuels/photosheet/pkg/pipeline"
	"github.com/matzehuels/photosheet/pkg/sink"
)

// Upload form fields.
const (
	fieldPhoto   = "photo"
	fieldOptions = "options"
)

// formOverhead is the room left for the options field and multipart framing
// on top of the photo limit.
const formOverhead = 1 << 20

// Response headers describing a generated sheet.
const (
	headerCopies    = "X-Photosheet-Copies"
	headerRequested = "X-Photosheet-Requested"
	headerLayout    = "X-Photosheet-Layout"
	headerCache     = "X-Photosheet-Cache"
	headerWarnings  = "X-Photosheet-Warnings"
)

// =============================================================================
// Metadata
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

type catalogResponse struct {
	Sizes  []catalog.SizeStandard  `json:"sizes"`
	Papers []catalog.PaperStandard `json:"papers"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{Sizes: s.catalog.Sizes(), Papers: s.catalog.Papers()})
}

// =============================================================================
// JSON Endpoints
// =============================================================================

type resolveResponse struct {
	Standard string          `json:"standard,omitempty"`
	Name     string          `json:"name,omitempty"`
	WidthMM  float64         `json:"width_mm"`
	HeightMM float64         `json:"height_mm"`
	Target   dims.Target     `json:"target"`
	Head     *dims.HeadRange `json:"head,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := opts.ValidateForFit(); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := dims.Resolve(opts.Catalog, opts.DimsRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := resolveResponse{Target: target, WidthMM: opts.WidthMM, HeightMM: opts.HeightMM}
	if opts.WidthMM == 0 {
		std, err := opts.Catalog.Size(opts.Standard)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Standard, resp.Name = std.Code, std.Name
		resp.WidthMM, resp.HeightMM = std.WidthMM, std.HeightMM
		if head, ok := dims.Head(std, target.DPI); ok {
			resp.Head = &head
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := opts.ValidateForPlan(); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.runner.Preview(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := sink.RenderPlanJSON(res.Plan,
		sink.WithJSONPaper(opts.Paper),
		sink.WithJSONStandard(opts.Standard),
		sink.WithJSONWarnings(res.Warnings))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// =============================================================================
// Upload Endpoints
// =============================================================================

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.runner.FitPhoto(r.Context(), up.src.Image, up.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setWarnings(w, res)
	name := pio.PhotoName(up.filename, up.opts.Standard, res.Artifact.Extension)
	writeArtifact(w, res.Artifact, name)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), up.src.Image, up.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	h := w.Header()
	h.Set(headerCopies, strconv.Itoa(res.Plan.ActualCopies))
	h.Set(headerRequested, strconv.Itoa(res.Plan.RequestedCopies))
	h.Set(headerLayout, fmt.Sprintf("%dx%d", res.Plan.Cols, res.Plan.Rows))
	if res.CacheInfo.ArtifactHit {
		h.Set(headerCache, "hit")
	} else {
		h.Set(headerCache, "miss")
	}
	setWarnings(w, res)

	name := pio.OutputName(up.filename, up.opts.Paper, res.Plan.ActualCopies, res.Artifact.Extension)
	writeArtifact(w, res.Artifact, name)
}

// upload is a decoded multipart request.
type upload struct {
	src      *pio.Source
	opts     pipeline.Options
	filename string
}

// readUpload parses the multipart form, validates the options and decodes
// the photo. Options are validated first so a bad request is rejected
// without decoding the image.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+formOverhead)
	if err := r.ParseMultipartForm(s.maxUpload + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "expected a multipart form")
	}

	opts, err := s.decodeOptions(strings.NewReader(r.FormValue(fieldOptions)))
	if err != nil {
		return nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	file, header, err := r.FormFile(fieldPhoto)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing %q file field", fieldPhoto)
	}
	defer file.Close()

	src, err := pio.ReadImage(file, s.maxUpload)
	if err != nil {
		return nil, err
	}
	opts.SourceHash = src.Hash
	return &upload{src: src, opts: opts, filename: uploadName(header)}, nil
}

func uploadName(h *multipart.FileHeader) string {
	if h == nil || h.Filename == "" {
		return "photo"
	}
	return h.Filename
}

// =============================================================================
// Helpers
// =============================================================================

// decodeOptions overlays the JSON in body onto the server defaults. An empty
// body yields the defaults.
func (s *Server) decodeOptions(body io.Reader) (pipeline.Options, error) {
	opts := s.baseOptions()
	data, err := io.ReadAll(io.LimitReader(body, formOverhead))
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read options")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return opts, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options JSON")
	}
	var set map[string]json.RawMessage
	if err := json.Unmarshal(data, &set); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options JSON")
	}
	overlayImplied(&opts, set)
	return opts, nil
}

// overlayImplied resolves request fields that override a differently named
// default, the way the CLI flags do: a margin preset replaces the default
// margin_mm, and a guide style turns guides on.
func overlayImplied(opts *pipeline.Options, set map[string]json.RawMessage) {
	_, margin := set["margin"]
	_, marginMM := set["margin_mm"]
	if margin && !marginMM {
		opts.MarginMM = nil
	}
	_, style := set["cut_guide_style"]
	_, guide := set["cut_guide"]
	if style && !guide {
		opts.CutGuide = pipeline.Bool(!strings.EqualFold(opts.CutGuideStyle, "none"))
	}
}

// baseOptions copies the defaults. Pointer fields are reallocated because
// the JSON decoder writes through non-nil pointers.
func (s *Server) baseOptions() pipeline.Options {
	opts := s.defaults
	if opts.MarginMM != nil {
		opts.MarginMM = pipeline.Float(*opts.MarginMM)
	}
	if opts.GutterMM != nil {
		opts.GutterMM = pipeline.Float(*opts.GutterMM)
	}
	if opts.CutGuide != nil {
		opts.CutGuide = pipeline.Bool(*opts.CutGuide)
	}
	opts.Catalog = s.catalog
	opts.Logger = s.logger
	return opts
}

// fail writes err, logging it first when it is not a client error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", requestIDFrom(r.Context()), "error", err)
	}
	writeError(w, r, err)
}

func setWarnings(w http.ResponseWriter, res *pipeline.Result) {
	if len(res.Warnings) == 0 {
		return
	}
	kinds := make([]string, len(res.Warnings))
	for i, wn := range res.Warnings {
		kinds[i] = wn.Kind
	}
	w.Header().Set(headerWarnings, strings.Join(kinds, ","))
}

func writeArtifact(w http.ResponseWriter, art *sink.Artifact, filename string) {
	h := w.Header()
	h.Set("Content-Type", art.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(art.Data)))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_ = pio.WriteArtifact(art, w)
}
