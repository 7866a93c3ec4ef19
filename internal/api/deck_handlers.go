package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vytor/flashdeck/internal/deck"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/services"
)

const maxUploadBytes = 10 << 20

type deckListResponse struct {
	Decks   []services.DeckSummary `json:"decks"`
	Unsaved bool                   `json:"unsaved"`
}

type cardView struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type deckResponse struct {
	Name  string     `json:"name"`
	Cards []cardView `json:"cards"`
	Text  string     `json:"text"`
	Saved bool       `json:"saved"`
}

type saveDeckRequest struct {
	Text string `json:"text" validate:"required"`
}

func newDeckResponse(d *deck.Deck, saved bool) deckResponse {
	cards := d.Cards()
	out := deckResponse{
		Name:  d.Name(),
		Cards: make([]cardView, len(cards)),
		Text:  d.Text(),
		Saved: saved,
	}
	for i, c := range cards {
		out.Cards[i] = cardView{Question: c.Question, Answer: c.Answer}
	}
	return out
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, unsaved, err := s.DeckService.List(r.Context(), scopeOf(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deckListResponse{Decks: decks, Unsaved: unsaved})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	d, err := s.DeckService.Get(r.Context(), scopeOf(r), pathParam(r, "name"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDeckResponse(d, true))
}

func (s *Server) handleSaveDeck(w http.ResponseWriter, r *http.Request) {
	var req saveDeckRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	d, err := s.DeckService.Save(r.Context(), scopeOf(r), pathParam(r, "name"), req.Text)
	s.respondSaved(w, r, d, err)
}

// handleImportDeck accepts a multipart "file" field holding a .xlsx, .csv or
// text file. Query parameters sheet and header=true tune spreadsheet reads.
func (s *Server) handleImportDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Debug("import without file: %v", err)
		handleError(w, r, errors.NewBadRequestError("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	skipHeader, _ := strconv.ParseBool(r.URL.Query().Get("header"))
	cards, err := deck.ReadCards(file, header.Filename, deck.SheetOptions{
		Sheet:      r.URL.Query().Get("sheet"),
		SkipHeader: skipHeader,
	})
	if err != nil {
		log.Debug("unreadable upload %q: %v", header.Filename, err)
		handleError(w, r, errors.NewBadRequestError("could not read "+header.Filename))
		return
	}

	d, err := s.DeckService.Import(r.Context(), scopeOf(r), pathParam(r, "name"), cards)
	s.respondSaved(w, r, d, err)
}

// respondSaved reports a stored deck. An edit that was applied but could not
// be persisted answers 202 with saved=false.
func (s *Server) respondSaved(w http.ResponseWriter, r *http.Request, d *deck.Deck, err error) {
	if err != nil {
		if d != nil && errors.Is(err, errors.ErrStorageIO) {
			logger.FromContext(r.Context()).Warn("deck %q kept in memory only: %v", d.Name(), err)
			writeJSON(w, http.StatusAccepted, newDeckResponse(d, false))
			return
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDeckResponse(d, true))
}

type deleteResponse struct {
	Name    string `json:"name"`
	Existed bool   `json:"existed"`
	Saved   bool   `json:"saved"`
}

// handleDeleteDeck answers 200 whether or not the deck existed. A delete
// that could not be persisted answers 202 with saved=false, like a save.
func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(pathParam(r, "name"))
	existed, err := s.DeckService.Delete(r.Context(), scopeOf(r), name)
	if err != nil {
		if existed && errors.Is(err, errors.ErrStorageIO) {
			logger.FromContext(r.Context()).Warn("delete of %q not saved: %v", name, err)
			writeJSON(w, http.StatusAccepted, deleteResponse{Name: name, Existed: true, Saved: false})
			return
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Name: name, Existed: existed, Saved: true})
}

func (s *Server) handleFlushDecks(w http.ResponseWriter, r *http.Request) {
	if err := s.DeckService.Flush(r.Context(), scopeOf(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
