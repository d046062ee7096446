package http_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	httpctrl "github.com/skyelectric/reglens/pkg/controller/http"
	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/repository/memory"
	"github.com/skyelectric/reglens/pkg/service/vectorindex"
	"github.com/skyelectric/reglens/pkg/usecase"
)

type stubLLM struct{}

func (c *stubLLM) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, errors.New("not used")
}

func (c *stubLLM) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	out := make([][]float64, len(input))
	for i, text := range input {
		v := make([]float64, dimension)
		if len(text) > 0 {
			v[int(text[0])%dimension] = 1.0
		}
		v[dimension-1] = 0.1
		out[i] = v
	}
	return out, nil
}

type stubJudge struct{}

func (s *stubJudge) Judge(ctx context.Context, customerClause, regulationContext string) (*model.Verdict, error) {
	return &model.Verdict{
		Status:     types.StatusCompliant,
		Risk:       types.RiskLow,
		Reasoning:  "covered",
		Confidence: 0.8,
	}, nil
}

type stubChat struct{}

func (s *stubChat) AnswerFromSource(ctx context.Context, query, sourceContext, sourceLabel string, history []*model.ChatMessage) (string, error) {
	return "answer from " + sourceLabel, nil
}

func (s *stubChat) Synthesize(ctx context.Context, query, kbAnswer, docAnswer, kbRefs, docRefs string) (string, error) {
	return "synthesized", nil
}

func (s *stubChat) AnswerGeneral(ctx context.Context, query, docContext string, history []*model.ChatMessage) (string, error) {
	return "general", nil
}

func setupServer(t *testing.T) (*httpctrl.Server, *memory.Store) {
	t.Helper()
	repo := memory.New()
	engine := vectorindex.NewEngine(8)
	router := vectorindex.NewRouter(engine, &stubLLM{}, vectorindex.WithDimension(8))
	uc := usecase.New(repo, router, &stubJudge{}, &stubChat{})
	return httpctrl.New(uc), repo
}

func multipartUpload(t *testing.T, filename, fileType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	gt.NoError(t, err).Required()
	_, err = fw.Write([]byte(content))
	gt.NoError(t, err).Required()
	if fileType != "" {
		gt.NoError(t, mw.WriteField("file_type", fileType)).Required()
	}
	gt.NoError(t, mw.Close()).Required()

	return &buf, mw.FormDataContentType()
}

func TestUploadAndListDocuments(t *testing.T) {
	srv, _ := setupServer(t)

	body, contentType := multipartUpload(t, "reg.txt", "regulation", "1.1 Equipment must be grounded at every service point.")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Session-ID", "s1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var uploadResp struct {
		Document struct {
			ID      int64  `json:"id"`
			DocType string `json:"doc_type"`
		} `json:"document"`
		ChunkCount int `json:"chunk_count"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploadResp)).Required()
	gt.Value(t, uploadResp.Document.DocType).Equal("regulation")
	gt.Value(t, uploadResp.ChunkCount).Equal(1)

	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("X-Session-ID", "s1")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var listResp struct {
		Documents []struct {
			Filename string `json:"filename"`
		} `json:"documents"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp)).Required()
	gt.Array(t, listResp.Documents).Length(1)
	gt.Value(t, listResp.Documents[0].Filename).Equal("reg.txt")
}

func TestSessionHeaderIsolation(t *testing.T) {
	srv, _ := setupServer(t)

	body, contentType := multipartUpload(t, "a.txt", "customer", "1.1 Alpha must hold at all operating points.")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Session-ID", "alice")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	// another session must not see alice's upload
	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("X-Session-ID", "bob")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var listResp struct {
		Documents []json.RawMessage `json:"documents"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp)).Required()
	gt.Array(t, listResp.Documents).Length(0)
}

func TestUploadUnsupportedExtension(t *testing.T) {
	srv, _ := setupServer(t)

	body, contentType := multipartUpload(t, "scan.png", "customer", "binary-ish")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestUpdateDocumentTypeValidation(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	doc, err := repo.Document().Create(ctx, "s1", &model.Document{Filename: "a.txt", DocType: types.DocTypeSession})
	gt.NoError(t, err).Required()

	patch := func(docType string) int {
		body := strings.NewReader(`{"doc_type":"` + docType + `"}`)
		req := httptest.NewRequest(http.MethodPatch, "/api/documents/1/type", body)
		req.Header.Set("X-Session-ID", "s1")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec.Code
	}

	gt.Value(t, patch("session")).Equal(http.StatusBadRequest)
	gt.Value(t, patch("bogus")).Equal(http.StatusBadRequest)
	gt.Value(t, patch("regulation")).Equal(http.StatusNoContent)

	updated, err := repo.Document().Get(ctx, "s1", doc.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, updated.DocType).Equal(types.DocTypeRegulation)
}

func TestDeleteDocument(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	doc, err := repo.Document().Create(ctx, "s1", &model.Document{Filename: "a.txt", DocType: types.DocTypeCustomer})
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/1", nil)
	req.Header.Set("X-Session-ID", "s1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	_, err = repo.Document().Get(ctx, "s1", doc.ID)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
}

func TestChatWithoutSourcesReturnsGuidance(t *testing.T) {
	srv, _ := setupServer(t)

	body := strings.NewReader(`{"query":"what applies here?","use_kb":false}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("X-Session-ID", "empty")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var resp struct {
		Answer string `json:"answer"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Value(t, resp.Answer).Equal(usecase.GuidanceMessage)
}

func TestChatRequiresQuery(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"use_kb":true}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestAssessEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	upload := func(filename, fileType, content string) {
		body, contentType := multipartUpload(t, filename, fileType, content)
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Session-ID", "assess")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	}

	upload("reg.txt", "regulation", "1.1 Equipment must be grounded at every service point.")
	upload("cust.txt", "customer", "A.1 Equipment is grounded at the main panel only.")

	body := strings.NewReader(`{"customer_doc_id":2,"regulation_doc_id":1,"use_kb":false}`)
	req := httptest.NewRequest(http.MethodPost, "/api/assess", body)
	req.Header.Set("X-Session-ID", "assess")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var resp struct {
		AssessmentID int64 `json:"assessment_id"`
		ResultsCount int   `json:"results_count"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Value(t, resp.ResultsCount).Equal(1)

	// the graph for the run carries both documents' nodes
	req = httptest.NewRequest(http.MethodGet, "/api/assessments/1/graph", nil)
	req.Header.Set("X-Session-ID", "assess")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var graph model.Graph
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graph)).Required()
	gt.Array(t, graph.Nodes).Length(2)
	gt.Array(t, graph.Edges).Length(1)
}

func TestAssessUnknownDocumentRejected(t *testing.T) {
	srv, _ := setupServer(t)

	body := strings.NewReader(`{"customer_doc_id":99,"regulation_doc_id":98,"use_kb":false}`)
	req := httptest.NewRequest(http.MethodPost, "/api/assess", body)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestReportCSV(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()
	sid := types.SessionID("report")

	reg, err := repo.Document().Create(ctx, sid, &model.Document{Filename: "iec.txt", DocType: types.DocTypeRegulation})
	gt.NoError(t, err).Required()
	rc, err := repo.Clause().Create(ctx, sid, &model.Clause{DocumentID: reg.ID, Label: "1.1", Text: "grounding"})
	gt.NoError(t, err).Required()

	cust, err := repo.Document().Create(ctx, sid, &model.Document{Filename: "plan.txt", DocType: types.DocTypeCustomer})
	gt.NoError(t, err).Required()
	cc, err := repo.Clause().Create(ctx, sid, &model.Clause{DocumentID: cust.ID, Label: "A.1", Text: "bonding"})
	gt.NoError(t, err).Required()

	assessment, err := repo.Assessment().Create(ctx, sid, &model.Assessment{CustomerDocID: cust.ID, RegulationDocID: reg.ID})
	gt.NoError(t, err).Required()
	_, err = repo.Assessment().AddResult(ctx, sid, &model.AssessmentResult{
		AssessmentID:       assessment.ID,
		CustomerClauseID:   cc.ID,
		RegulationClauseID: rc.ID,
		Status:             types.StatusNonCompliant,
		Risk:               types.RiskHigh,
		Reasoning:          "missing strap",
		EvidenceText:       "grounded at panel only",
		Confidence:         0.7,
	})
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/1/report", nil)
	req.Header.Set("X-Session-ID", "report")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(2)
	gt.Value(t, rows[0][0]).Equal("assessment_id")
	gt.Value(t, rows[1][3]).Equal("A.1")
	gt.Value(t, rows[1][4]).Equal("NON_COMPLIANT")
	gt.Value(t, rows[1][6]).Equal("0.70")
}

func TestResetEndpoint(t *testing.T) {
	srv, repo := setupServer(t)
	ctx := context.Background()

	_, err := repo.Document().Create(ctx, "wipe", &model.Document{Filename: "a.txt", DocType: types.DocTypeCustomer})
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	req.Header.Set("X-Session-ID", "wipe")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	docs, err := repo.Document().List(ctx, "wipe")
	gt.NoError(t, err).Required()
	gt.Array(t, docs).Length(0)
}

func TestNamespacesDebugEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	body, contentType := multipartUpload(t, "kb.txt", "regulation", "1.1 Cables must be rated for the ambient temperature.")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Session-ID", "ns")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	req = httptest.NewRequest(http.MethodGet, "/api/debug/namespaces", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var resp struct {
		Namespaces map[string]int `json:"namespaces"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Value(t, resp.Namespaces["session_ns"]).Equal(1)
}
