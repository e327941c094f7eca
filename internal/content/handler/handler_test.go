package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"proofwall/internal/content/handler/mocks"
	"proofwall/internal/content/models"
	"proofwall/pkg/domain"
	dErrors "proofwall/pkg/domain-errors"
)

type UploadHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestUploadHandlerSuite(t *testing.T) {
	suite.Run(t, new(UploadHandlerSuite))
}

func (s *UploadHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *UploadHandlerSuite) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *UploadHandlerSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *UploadHandlerSuite) TestSuccess() {
	id := domain.NewContentID()
	s.service.EXPECT().Upload(gomock.Any(), "doc-1", "0xabc", "job-1").
		Return(&models.Record{ID: id, Verified: true, VerifiedAt: new(time.Time)}, nil)

	w := s.post(`{"reference":"doc-1","contentHash":"0xabc","proofJobId":"job-1"}`)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(map[string]any{"id": id.String(), "verified": true}, s.decode(w))
}

func (s *UploadHandlerSuite) TestLegacyFieldNames() {
	s.service.EXPECT().Upload(gomock.Any(), "doc-1", "0xabc", "job-1").
		Return(&models.Record{ID: domain.NewContentID(), Verified: true}, nil)

	w := s.post(`{"contentRef":"doc-1","contentHash":"0xabc","proofJobHash":"job-1"}`)

	s.Equal(http.StatusOK, w.Code)
}

func (s *UploadHandlerSuite) TestMissingFields() {
	for _, body := range []string{
		`{}`,
		`{"reference":"doc-1","contentHash":"0xabc"}`,
		`{"reference":"  ","contentHash":"0xabc","proofJobId":"job"}`,
	} {
		w := s.post(body)
		s.Equal(http.StatusBadRequest, w.Code, body)
		s.Equal("missing_fields", s.decode(w)["error"], body)
	}
}

func (s *UploadHandlerSuite) TestOversizedFields() {
	w := s.post(`{"reference":"doc-1","contentHash":"0x` + strings.Repeat("a", 200) + `","proofJobId":"job-1"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.decode(w)["error_description"], "contentHash exceeds max length")
}

func (s *UploadHandlerSuite) TestMalformedBody() {
	w := s.post(`{"reference":`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("bad_request", s.decode(w)["error"])
}

func (s *UploadHandlerSuite) TestErrorMapping() {
	cases := []struct {
		err    error
		status int
		code   string
		detail string
	}{
		{dErrors.New(dErrors.CodeProofTimeout, "timeout"), http.StatusBadRequest, "proof_not_completed", "timeout"},
		{dErrors.New(dErrors.CodeProofFailed, "failed"), http.StatusBadRequest, "proof_not_completed", "failed"},
		{dErrors.New(dErrors.CodeHashMismatch, "digest differs"), http.StatusBadRequest, "contenthash_mismatch", "digest differs"},
		{dErrors.New(dErrors.CodeInternal, "prover unavailable"), http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tc := range cases {
		s.Run(tc.code, func() {
			s.service.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)

			w := s.post(`{"reference":"doc-1","contentHash":"0xabc","proofJobId":"job-1"}`)

			s.Equal(tc.status, w.Code)
			body := s.decode(w)
			s.Equal(tc.code, body["error"])
			if tc.detail != "" {
				s.Equal(tc.detail, body["error_description"])
			}
		})
	}
}
