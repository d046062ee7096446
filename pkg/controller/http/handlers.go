package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/utils/errutil"
	"github.com/skyelectric/reglens/pkg/utils/safe"
)

// maxUploadBytes caps the multipart memory buffer; larger files spill to disk
const maxUploadBytes = 32 << 20

type documentResponse struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	DocType  string `json:"doc_type"`
	Version  string `json:"version"`
}

func toDocumentResponse(doc *model.Document) documentResponse {
	return documentResponse{
		ID:       doc.ID,
		Filename: doc.Filename,
		DocType:  doc.DocType.String(),
		Version:  doc.Version,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	// header already committed, a failed write can only be logged
	safe.Write(r.Context(), w, data)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(types.ErrEmptyInput, "invalid ID in path", goerr.V("raw", chi.URLParam(r, "id")))
	}
	return id, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "invalid multipart form", goerr.V("cause", err.Error())))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "missing file field"))
		return
	}
	defer file.Close() //nolint:errcheck // read-only descriptor

	data, err := io.ReadAll(file)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read upload"))
		return
	}

	docType := types.DocTypeSession
	if raw := r.FormValue("file_type"); raw != "" {
		docType, err = types.ParseDocType(raw)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "invalid file_type", goerr.V("raw", raw)))
			return
		}
	}

	var nsOverride types.Namespace
	if r.FormValue("namespace") == types.NamespacePermanent.String() {
		nsOverride = types.NamespacePermanent
	}

	result, err := s.uc.Upload(ctx, sid, header.Filename, docType, r.FormValue("version"), data, nsOverride)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	writeJSON(w, r, struct {
		Document   documentResponse `json:"document"`
		ChunkCount int              `json:"chunk_count"`
	}{
		Document:   toDocumentResponse(result.Document),
		ChunkCount: result.ChunkCount,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	docs, err := s.uc.ListDocuments(ctx, sid)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := struct {
		Documents []documentResponse `json:"documents"`
	}{Documents: make([]documentResponse, len(docs))}
	for i, doc := range docs {
		resp.Documents[i] = toDocumentResponse(doc)
	}
	writeJSON(w, r, resp)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	if err := s.uc.DeleteDocument(ctx, sid, id); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateDocumentType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	var req struct {
		DocType string `json:"doc_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "invalid request body"))
		return
	}

	// only assessment roles may be assigned after upload
	docType := types.DocType(req.DocType)
	if docType != types.DocTypeRegulation && docType != types.DocTypeCustomer {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "doc_type must be regulation or customer", goerr.V("raw", req.DocType)))
		return
	}

	if err := s.uc.UpdateDocumentType(ctx, sid, id, docType); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	var req struct {
		CustomerDocID   int64 `json:"customer_doc_id"`
		RegulationDocID int64 `json:"regulation_doc_id"`
		UseKB           bool  `json:"use_kb"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "invalid request body"))
		return
	}

	result, err := s.uc.Assess(ctx, sid, req.CustomerDocID, req.RegulationDocID, req.UseKB)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	writeJSON(w, r, struct {
		AssessmentID int64 `json:"assessment_id"`
		ResultsCount int   `json:"results_count"`
	}{
		AssessmentID: result.Assessment.ID,
		ResultsCount: result.ResultsCount,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	var req struct {
		Query string `json:"query"`
		UseKB bool   `json:"use_kb"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "invalid request body"))
		return
	}
	if req.Query == "" {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrEmptyInput, "query is required"))
		return
	}

	docs, err := s.uc.ListDocuments(ctx, sid)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	answer, err := s.uc.Chat(ctx, sid, req.Query, req.UseKB, len(docs) > 0)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	writeJSON(w, r, struct {
		Answer string `json:"answer"`
	}{Answer: answer})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	graph, err := s.uc.Graph(ctx, sid, id)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(w, r, graph)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	report, err := s.uc.Report(ctx, sid, id)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="assessment_`+strconv.FormatInt(id, 10)+`.csv"`)
	if err := s.renderer.Render(ctx, w, report); err != nil {
		_ = errutil.Handle(ctx, err, "failed to render report")
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := types.SessionIDFromContext(ctx)

	if err := s.uc.Reset(ctx, sid); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNamespaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.uc.IndexStats(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := struct {
		Namespaces map[string]int `json:"namespaces"`
	}{Namespaces: make(map[string]int, len(stats))}
	for ns, count := range stats {
		resp.Namespaces[ns.String()] = count
	}
	writeJSON(w, r, resp)
}
