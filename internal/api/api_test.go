package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdeck/internal/api"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/testutil"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

type APISuite struct {
	suite.Suite
	store   *testutil.MemoryStore
	handler http.Handler
	token   string
}

func (s *APISuite) SetupTest() {
	s.token = ""
	db := testutil.NewTestDB(s.T())
	s.T().Cleanup(func() { testutil.MustClose(s.T(), db) })

	s.store = testutil.NewMemoryStore()
	authSvc := services.NewAuthService(sqlite.NewUserRepository(db), s.store, bcrypt.MinCost)
	deckSvc := services.NewDeckService(s.store, services.DeckServiceOptions{GuestStarterDecks: true})
	quizSvc := services.NewQuizService(deckSvc)
	s.handler = api.NewServer(authSvc, deckSvc, quizSvc).Routes()

	s.do(http.MethodPost, "/api/auth/register", `{"username": "alice", "password": "pw"}`, http.StatusCreated, nil)
	var login struct {
		Token string `json:"token"`
	}
	s.do(http.MethodPost, "/api/auth/login", `{"username": "alice", "password": "pw"}`, http.StatusOK, &login)
	s.Require().NotEmpty(login.Token)
	s.token = login.Token
}

func (s *APISuite) request(method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		r.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func (s *APISuite) do(method, path, body string, wantStatus int, out any) {
	w := s.request(method, path, body)
	s.Require().Equal(wantStatus, w.Code, "%s %s: %s", method, path, w.Body.String())
	if out != nil {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type deckList struct {
	Decks []struct {
		Name  string `json:"name"`
		Cards int    `json:"cards"`
	} `json:"decks"`
	Unsaved bool `json:"unsaved"`
}

type sessionView struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Score      int    `json:"score"`
	LastResult *struct {
		Correct  bool   `json:"correct"`
		Expected string `json:"expected"`
	} `json:"last_result"`
}

func (s *APISuite) TestHealth() {
	s.do(http.MethodGet, "/healthz", "", http.StatusOK, nil)
	s.do(http.MethodGet, "/readyz", "", http.StatusOK, nil)
}

func (s *APISuite) TestRequiresLogin() {
	s.token = ""
	var body errorResponse
	s.do(http.MethodGet, "/api/decks", "", http.StatusUnauthorized, &body)
	s.Assert().Equal("UNAUTHORIZED", body.Error.Code)

	s.token = "bogus"
	s.do(http.MethodGet, "/api/decks", "", http.StatusUnauthorized, nil)
}

func (s *APISuite) TestLoginCookie() {
	s.token = ""
	w := s.request(http.MethodPost, "/api/auth/login", `{"username": "alice", "password": "pw"}`)
	s.Require().Equal(http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "flashdeck_token" {
			cookie = c
		}
	}
	s.Require().NotNil(cookie)
	s.Assert().True(cookie.HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	s.Assert().Equal(http.StatusOK, rec.Code)
	s.Assert().Contains(rec.Body.String(), `"key":"alice"`)
}

func (s *APISuite) TestRegisterErrors() {
	s.token = ""
	var body errorResponse
	s.do(http.MethodPost, "/api/auth/register", `{"username": "alice", "password": "pw"}`, http.StatusConflict, &body)
	s.Assert().Equal("CONFLICT", body.Error.Code)

	s.do(http.MethodPost, "/api/auth/register", `{"username": "bob"}`, http.StatusBadRequest, &body)
	s.Assert().Equal("VALIDATION_ERROR", body.Error.Code)

	s.do(http.MethodPost, "/api/auth/register", `not json`, http.StatusBadRequest, nil)
	s.do(http.MethodPost, "/api/auth/login", `{"username": "alice", "password": "nope"}`, http.StatusUnauthorized, nil)
}

func (s *APISuite) TestDeckLifecycle() {
	var list deckList
	s.do(http.MethodGet, "/api/decks", "", http.StatusOK, &list)
	s.Assert().Empty(list.Decks)

	var saved struct {
		Name  string `json:"name"`
		Text  string `json:"text"`
		Saved bool   `json:"saved"`
	}
	s.do(http.MethodPut, "/api/decks/animals", `{"text": "dog - chien\ncat - chat"}`, http.StatusOK, &saved)
	s.Assert().Equal("animals", saved.Name)
	s.Assert().Equal("dog - chien\ncat - chat", saved.Text)
	s.Assert().True(saved.Saved)

	s.do(http.MethodGet, "/api/decks", "", http.StatusOK, &list)
	s.Require().Len(list.Decks, 1)
	s.Assert().Equal(2, list.Decks[0].Cards)

	data, ok := s.store.Record("alice")
	s.Require().True(ok)
	s.Assert().Contains(string(data), `"dog": "chien"`)

	s.do(http.MethodGet, "/api/decks/animals", "", http.StatusOK, nil)
	var deleted struct {
		Existed bool `json:"existed"`
		Saved   bool `json:"saved"`
	}
	s.do(http.MethodDelete, "/api/decks/animals", "", http.StatusOK, &deleted)
	s.Assert().True(deleted.Existed)
	s.Assert().True(deleted.Saved)

	deleted.Existed = true
	s.do(http.MethodDelete, "/api/decks/animals", "", http.StatusOK, &deleted)
	s.Assert().False(deleted.Existed)
	s.do(http.MethodGet, "/api/decks/animals", "", http.StatusNotFound, nil)
}

func (s *APISuite) TestPaddedDeckName() {
	path := "/api/decks/" + url.PathEscape(" Verbs ")
	var saved struct {
		Name string `json:"name"`
	}
	s.do(http.MethodPut, path, `{"text": "dog - chien"}`, http.StatusOK, &saved)
	s.Assert().Equal("Verbs", saved.Name)

	s.do(http.MethodGet, path, "", http.StatusOK, nil)
	var deleted struct {
		Existed bool `json:"existed"`
	}
	s.do(http.MethodDelete, path, "", http.StatusOK, &deleted)
	s.Assert().True(deleted.Existed)
}

func (s *APISuite) TestDeleteDeckStorageFailure() {
	s.do(http.MethodPut, "/api/decks/gone", `{"text": "q - a"}`, http.StatusOK, nil)
	s.store.FailWrites = fmt.Errorf("disk full")

	var deleted struct {
		Existed bool `json:"existed"`
		Saved   bool `json:"saved"`
	}
	s.do(http.MethodDelete, "/api/decks/gone", "", http.StatusAccepted, &deleted)
	s.Assert().True(deleted.Existed)
	s.Assert().False(deleted.Saved)

	var list deckList
	s.do(http.MethodGet, "/api/decks", "", http.StatusOK, &list)
	s.Assert().Empty(list.Decks)
	s.Assert().True(list.Unsaved)
}

func (s *APISuite) TestDeckNameWithSpaces() {
	path := "/api/decks/" + url.PathEscape("French vocabulary")
	s.do(http.MethodPut, path, `{"text": "dog - chien"}`, http.StatusOK, nil)

	var got struct {
		Name string `json:"name"`
	}
	s.do(http.MethodGet, path, "", http.StatusOK, &got)
	s.Assert().Equal("French vocabulary", got.Name)
}

func (s *APISuite) TestSaveDeckValidation() {
	var body errorResponse
	s.do(http.MethodPut, "/api/decks/empty", `{"text": "no separators"}`, http.StatusBadRequest, &body)
	s.Assert().Equal("VALIDATION_ERROR", body.Error.Code)

	s.do(http.MethodPut, "/api/decks/empty", `{}`, http.StatusBadRequest, nil)
	s.do(http.MethodPut, "/api/decks/empty", `{"text": "a - b", "extra": 1}`, http.StatusBadRequest, nil)
}

func (s *APISuite) TestSaveDeckStorageFailure() {
	s.store.FailWrites = fmt.Errorf("disk full")

	var saved struct {
		Saved bool `json:"saved"`
	}
	s.do(http.MethodPut, "/api/decks/pending", `{"text": "q - a"}`, http.StatusAccepted, &saved)
	s.Assert().False(saved.Saved)

	var list deckList
	s.do(http.MethodGet, "/api/decks", "", http.StatusOK, &list)
	s.Assert().True(list.Unsaved)

	var body errorResponse
	s.do(http.MethodPost, "/api/decks/flush", "", http.StatusServiceUnavailable, &body)
	s.Assert().Equal("NOT_SAVED", body.Error.Code)

	s.store.FailWrites = nil
	s.do(http.MethodPost, "/api/decks/flush", "", http.StatusNoContent, nil)
	s.do(http.MethodGet, "/api/decks", "", http.StatusOK, &list)
	s.Assert().False(list.Unsaved)
}

func (s *APISuite) TestImportSpreadsheet() {
	f := excelize.NewFile()
	defer f.Close()
	s.Require().NoError(f.SetCellValue("Sheet1", "A1", "dog"))
	s.Require().NoError(f.SetCellValue("Sheet1", "B1", "chien"))
	s.Require().NoError(f.SetCellValue("Sheet1", "A2", "cat"))
	s.Require().NoError(f.SetCellValue("Sheet1", "B2", "chat"))
	xlsx, err := f.WriteToBuffer()
	s.Require().NoError(err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "animals.xlsx")
	s.Require().NoError(err)
	_, err = part.Write(xlsx.Bytes())
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/decks/animals/import", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Text string `json:"text"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Assert().Equal("dog - chien\ncat - chat", got.Text)
}

func (s *APISuite) TestImportWithoutFile() {
	s.do(http.MethodPost, "/api/decks/animals/import", "", http.StatusBadRequest, nil)
}

func (s *APISuite) TestTypedSession() {
	s.do(http.MethodPut, "/api/decks/one", `{"text": "dog - chien"}`, http.StatusOK, nil)

	var v sessionView
	s.do(http.MethodPost, "/api/sessions", `{"deck": "one", "mode": "typed"}`, http.StatusCreated, &v)
	s.Assert().Equal("dog", v.Question)
	s.Assert().Equal(1, v.Total)
	id := v.ID

	s.do(http.MethodPost, "/api/sessions/"+id+"/answer", `{"answer": "chat"}`, http.StatusOK, &v)
	s.Require().NotNil(v.LastResult)
	s.Assert().False(v.LastResult.Correct)
	s.Assert().Equal("chien", v.LastResult.Expected)
	s.Assert().Equal("question_shown", v.State)

	s.do(http.MethodPost, "/api/sessions/"+id+"/answer", `{"answer": " Chien "}`, http.StatusOK, &v)
	s.Assert().True(v.LastResult.Correct)
	s.Assert().Equal("complete", v.State)
	s.Assert().Equal(1, v.Score)

	var body errorResponse
	s.do(http.MethodPost, "/api/sessions/"+id+"/answer", `{"answer": "chien"}`, http.StatusConflict, &body)
	s.Assert().Equal("CONFLICT", body.Error.Code)

	s.do(http.MethodPost, "/api/sessions/"+id+"/restart", "", http.StatusOK, &v)
	s.Assert().Equal(0, v.Score)
	s.do(http.MethodDelete, "/api/sessions/"+id, "", http.StatusNoContent, nil)
	s.do(http.MethodGet, "/api/sessions/"+id, "", http.StatusNotFound, nil)
}

func (s *APISuite) TestRevealSession() {
	s.do(http.MethodPut, "/api/decks/one", `{"text": "dog - chien"}`, http.StatusOK, nil)

	var v sessionView
	s.do(http.MethodPost, "/api/sessions", `{"deck": "one", "mode": "reveal"}`, http.StatusCreated, &v)
	id := v.ID

	s.do(http.MethodPost, "/api/sessions/"+id+"/known", "", http.StatusConflict, nil)
	s.do(http.MethodPost, "/api/sessions/"+id+"/reveal", "", http.StatusOK, &v)
	s.Assert().Equal("chien", v.Answer)
	s.do(http.MethodPost, "/api/sessions/"+id+"/unknown", "", http.StatusOK, &v)
	s.Assert().Equal(0, v.Score)
	s.do(http.MethodPost, "/api/sessions/"+id+"/reveal", "", http.StatusOK, nil)
	s.do(http.MethodPost, "/api/sessions/"+id+"/known", "", http.StatusOK, &v)
	s.Assert().Equal("complete", v.State)
	s.Assert().Equal(1, v.Score)
	s.Assert().Equal(1, v.Total)
}

func (s *APISuite) TestStartSessionValidation() {
	s.do(http.MethodPost, "/api/sessions", `{"deck": "one", "mode": "shuffle"}`, http.StatusBadRequest, nil)
	s.do(http.MethodPost, "/api/sessions", `{"deck": "missing", "mode": "typed"}`, http.StatusNotFound, nil)
}

func (s *APISuite) TestGuestFlow() {
	s.token = ""
	var login struct {
		Token string `json:"token"`
	}
	s.do(http.MethodPost, "/api/auth/guest", "", http.StatusOK, &login)
	s.token = login.Token

	var list deckList
	s.do(http.MethodGet, "/api/decks", "", http.StatusOK, &list)
	s.Assert().NotEmpty(list.Decks, "guests start with the starter decks")

	s.do(http.MethodPut, "/api/decks/mine", `{"text": "q - a"}`, http.StatusOK, nil)
	s.Assert().Equal(1, s.store.Writes(), "only alice's registration wrote to the store")

	s.do(http.MethodPost, "/api/auth/logout", "", http.StatusNoContent, nil)
	s.do(http.MethodGet, "/api/decks", "", http.StatusUnauthorized, nil)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}
