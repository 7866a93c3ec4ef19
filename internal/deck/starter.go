package deck

const starterVocabulary = `dog - chien
cat - chat
house - maison
book - livre
water - eau`

const starterCapitals = `France - Paris
Japan - Tokyo
Canada - Ottawa
Australia - Canberra
Brazil - Brasilia`

// StarterDecks returns the built-in decks offered to guests.
func StarterDecks() []*Deck {
	specs := []struct{ name, text string }{
		{"French vocabulary", starterVocabulary},
		{"Capitals", starterCapitals},
	}
	decks := make([]*Deck, 0, len(specs))
	for _, s := range specs {
		d, err := FromText(s.name, s.text)
		if err != nil {
			panic("deck: invalid starter deck " + s.name + ": " + err.Error())
		}
		decks = append(decks, d)
	}
	return decks
}
