package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"docqa-go/internal/model"
	"docqa-go/internal/rag"
	"docqa-go/internal/service"
	"docqa-go/internal/vectorindex"
	"docqa-go/pkg/embedding"
	"docqa-go/pkg/token"
)

const capitals = "Paris is the capital of France.\n\nBerlin is the capital of Germany."

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *token.JWTManager) {
	t.Helper()
	return newTestRouterWithSecret(t, "test-secret")
}

func newTestRouterWithSecret(t *testing.T, secret string) (*gin.Engine, *token.JWTManager) {
	t.Helper()
	provider := embedding.NewProvider(embedding.NewLexicalModel())
	engine := rag.NewEngine(provider, vectorindex.New(embedding.Dimension), nil, nil)
	docs := service.NewDocumentService(engine, nil, service.DocumentServiceOptions{})
	queries := service.NewQueryService(engine, provider)

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	jwtManager := token.NewJWTManager(secret, 1)
	r := NewRouter(Handlers{
		Document: NewDocumentHandler(docs, 1<<20),
		Query:    NewQueryHandler(queries),
		Auth:     NewAuthHandler(string(hash), jwtManager),
		Chat:     NewChatHandler(queries),
	}, jwtManager)
	return r, jwtManager
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doJSON(r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAndQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "capitals.txt", "text/plain", []byte(capitals)))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	var up struct {
		Filename      string `json:"filename"`
		Type          string `json:"type"`
		Size          int64  `json:"size"`
		ChunkCount    int    `json:"chunkCount"`
		DocumentCount int    `json:"documentCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if up.Filename != "capitals.txt" || up.Type != "txt" || up.ChunkCount != 2 || up.DocumentCount != 1 {
		t.Errorf("upload response = %+v", up)
	}

	w = doJSON(r, http.MethodPost, "/api/v1/query", `{"query":"What is the capital of France?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("query status = %d: %s", w.Code, w.Body.String())
	}
	var resp model.RAGResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if len(resp.Sources) == 0 || resp.Sources[0].Content != "Paris is the capital of France." {
		t.Errorf("sources = %+v", resp.Sources)
	}
	if !strings.HasSuffix(resp.Answer, "Paris is the capital of France.") {
		t.Errorf("answer = %q", resp.Answer)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/status", "")
	var st service.Status
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if w.Code != http.StatusOK || st.DocumentCount != 1 || st.ChunkCount != 2 || st.Status != "ok" {
		t.Errorf("status = %d %+v", w.Code, st)
	}
}

func TestUploadErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		want        int
	}{
		{"unsupported type", "photo.png", "image/png", []byte{0x89}, http.StatusBadRequest},
		{"pdf without extractor", "paper.pdf", "application/pdf", []byte("%PDF-1.4"), http.StatusNotImplemented},
		{"too large", "big.txt", "text/plain", bytes.Repeat([]byte("a"), 2<<20), http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, uploadRequest(t, tc.filename, tc.contentType, tc.data))
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", w.Code)
	}
}

func TestQueryValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, body := range []string{`{"query":""}`, `{"query":"   "}`, `not json`} {
		if w := doJSON(r, http.MethodPost, "/api/v1/query", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d", body, w.Code)
		}
	}

	w := doJSON(r, http.MethodPost, "/api/v1/query", `{"query":"anything"}`)
	var resp model.RAGResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Answer != rag.NoRelevantDocumentsAnswer || resp.Sources == nil {
		t.Errorf("empty index query = %d %+v", w.Code, resp)
	}
}

func TestAuthAndClear(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "capitals.txt", "", []byte(capitals)))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}

	if w := doJSON(r, http.MethodDelete, "/api/v1/documents", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("clear without token = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/v1/auth/token", `{"password":"wrong"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/v1/auth/token", `{"password":"letmein"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("token status = %d", w.Code)
	}
	var tok struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &tok)

	if w := doJSON(r, http.MethodDelete, "/api/v1/documents", "", "Authorization", "Bearer "+tok.Token); w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/v1/query", `{"query":"What is the capital of France?"}`)
	var resp model.RAGResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Answer != rag.NoRelevantDocumentsAnswer || len(resp.Sources) != 0 {
		t.Errorf("query after clear = %+v", resp)
	}
}

func TestAdminDisabledWithoutSecret(t *testing.T) {
	r, _ := newTestRouterWithSecret(t, "")
	if w := doJSON(r, http.MethodPost, "/api/v1/auth/token", `{"password":"letmein"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("token status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, "/api/v1/documents", "", "Authorization", "Bearer x.y.z"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("clear status = %d", w.Code)
	}
}

func TestListUploadsWithoutDatabase(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/api/v1/documents/uploads", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Errorf("uploads = %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodGet, "/api/v1/documents/uploads?limit=0", ""); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d", w.Code)
	}
}

func TestChatWebsocket(t *testing.T) {
	r, _ := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "capitals.txt", "text/plain", []byte(capitals)))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("What is the capital of France?")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var answer struct {
		Type    string               `json:"type"`
		Answer  string               `json:"answer"`
		Sources []model.SearchResult `json:"sources"`
	}
	if err := conn.ReadJSON(&answer); err != nil {
		t.Fatalf("read answer: %v", err)
	}
	if answer.Type != "answer" || len(answer.Sources) == 0 || answer.Sources[0].Content != "Paris is the capital of France." {
		t.Errorf("answer frame = %+v", answer)
	}
	var done map[string]interface{}
	if err := conn.ReadJSON(&done); err != nil || done["type"] != "completion" {
		t.Fatalf("completion frame = %v, %v", done, err)
	}

	_ = conn.WriteMessage(websocket.TextMessage, []byte("  "))
	var errFrame map[string]interface{}
	if err := conn.ReadJSON(&errFrame); err != nil || errFrame["error"] == nil {
		t.Fatalf("error frame = %v, %v", errFrame, err)
	}
	if err := conn.ReadJSON(&done); err != nil || done["type"] != "completion" {
		t.Fatalf("completion after error = %v, %v", done, err)
	}
}
