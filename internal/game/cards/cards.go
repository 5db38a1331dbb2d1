// Package cards models the cards a seat can reveal and decodes the image
// references clients report them with.
package cards

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Kind distinguishes fruit cards from the two special cards.
type Kind int

const (
	KindFruit Kind = iota
	KindPlus
	KindMinus
)

func (k Kind) String() string {
	switch k {
	case KindFruit:
		return "FRUIT"
	case KindPlus:
		return "PLUS"
	case KindMinus:
		return "MINUS"
	default:
		return "UNKNOWN"
	}
}

// Fruit names the fruit printed on a fruit card.
type Fruit string

const (
	Apple  Fruit = "apple"
	Grape  Fruit = "grape"
	Orange Fruit = "orange"
	Lime   Fruit = "lime"
	Banana Fruit = "banana"
)

// fruits is the lookup order used when a name contains more than one token.
var fruits = []Fruit{Apple, Grape, Orange, Lime, Banana}

const (
	MinValue = 1
	MaxValue = 5
)

// ErrUnknownCard is returned when a reference resolves to no card.
var ErrUnknownCard = errors.New("unknown card")

// Card is a revealed card. Fruit and Value are only meaningful for KindFruit.
type Card struct {
	Kind  Kind
	Fruit Fruit
	Value int
}

// NewFruit builds a fruit card, validating the value range.
func NewFruit(fruit Fruit, value int) (Card, error) {
	if value < MinValue || value > MaxValue {
		return Card{}, fmt.Errorf("%w: %s value %d out of range", ErrUnknownCard, fruit, value)
	}
	for _, f := range fruits {
		if f == fruit {
			return Card{Kind: KindFruit, Fruit: fruit, Value: value}, nil
		}
	}
	return Card{}, fmt.Errorf("%w: fruit %q", ErrUnknownCard, fruit)
}

// Plus returns the plus card.
func Plus() Card { return Card{Kind: KindPlus} }

// Minus returns the minus card.
func Minus() Card { return Card{Kind: KindMinus} }

func (c Card) String() string {
	switch c.Kind {
	case KindPlus:
		return "plus"
	case KindMinus:
		return "minus"
	default:
		return fmt.Sprintf("%s%d", c.Fruit, c.Value)
	}
}

// Parse resolves an image reference such as "images/apple3.png" to a card.
// Matching is done on substrings of the lower-cased base name: "plus" wins
// over everything, then "minus", then the first fruit token and the first
// digit between 1 and 5.
func Parse(ref string) (Card, error) {
	name := baseName(ref)
	if name == "" {
		return Card{}, fmt.Errorf("%w: empty reference", ErrUnknownCard)
	}

	if strings.Contains(name, "plus") {
		return Plus(), nil
	}
	if strings.Contains(name, "minus") {
		return Minus(), nil
	}

	var fruit Fruit
	for _, f := range fruits {
		if strings.Contains(name, string(f)) {
			fruit = f
			break
		}
	}
	if fruit == "" {
		return Card{}, fmt.Errorf("%w: no fruit in %q", ErrUnknownCard, name)
	}

	for v := MinValue; v <= MaxValue; v++ {
		if strings.ContainsRune(name, rune('0'+v)) {
			return NewFruit(fruit, v)
		}
	}
	return Card{}, fmt.Errorf("%w: no value in %q", ErrUnknownCard, name)
}

func baseName(ref string) string {
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}
	ref = strings.ReplaceAll(ref, "\\", "/")
	name := path.Base(strings.TrimSpace(ref))
	if name == "." || name == "/" {
		return ""
	}
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	return strings.ToLower(name)
}
