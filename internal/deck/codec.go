package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vytor/flashdeck/internal/errors"
)

// Encode serializes decks as a JSON object of deck name to an object of
// question to answer, indented with four spaces. Key order follows the
// slice and each deck's card order.
func Encode(decks []*Deck) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, d := range decks {
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := writeString(&compact, d.name); err != nil {
			return nil, err
		}
		compact.WriteString(":{")
		for j, c := range d.cards {
			if j > 0 {
				compact.WriteByte(',')
			}
			if err := writeString(&compact, c.Question); err != nil {
				return nil, err
			}
			compact.WriteByte(':')
			if err := writeString(&compact, c.Answer); err != nil {
				return nil, err
			}
		}
		compact.WriteByte('}')
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// Decode parses data written by Encode (or any JSON of the same shape),
// keeping key order. Decks that hold no valid card are left out and their
// names returned in dropped. Malformed input yields errors.ErrStorageCorrupt.
func Decode(data []byte) (decks []*Deck, dropped []string, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	index := make(map[string]int)
	for dec.More() {
		name, err := readString(dec)
		if err != nil {
			return nil, nil, err
		}
		cards, err := readCards(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("deck %q: %w", name, err)
		}

		d, err := New(name, cards)
		if err != nil {
			dropped = append(dropped, name)
			continue
		}
		if i, ok := index[d.name]; ok {
			decks[i] = d
			continue
		}
		index[d.name] = len(decks)
		decks = append(decks, d)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("%w: trailing data after collection", errors.ErrStorageCorrupt)
	}
	return decks, dropped, nil
}

func readCards(dec *json.Decoder) ([]Card, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var cards []Card
	for dec.More() {
		q, err := readString(dec)
		if err != nil {
			return nil, err
		}
		a, err := readString(dec)
		if err != nil {
			return nil, err
		}
		cards = append(cards, Card{Question: q, Answer: a})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return cards, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorageCorrupt, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", errors.ErrStorageCorrupt, want, tok)
	}
	return nil
}

func readString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrStorageCorrupt, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %v", errors.ErrStorageCorrupt, tok)
	}
	return s, nil
}
