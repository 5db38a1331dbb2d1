package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want Card
	}{
		{"plain fruit", "apple3", Card{Kind: KindFruit, Fruit: Apple, Value: 3}},
		{"path and extension", "images/cards/banana5.png", Card{Kind: KindFruit, Fruit: Banana, Value: 5}},
		{"windows path", `C:\game\img\lime1.jpg`, Card{Kind: KindFruit, Fruit: Lime, Value: 1}},
		{"url encoded", "file:/tmp/my%20cards/grape2.png", Card{Kind: KindFruit, Fruit: Grape, Value: 2}},
		{"upper case", "ORANGE4.PNG", Card{Kind: KindFruit, Fruit: Orange, Value: 4}},
		{"plus with digit", "plus1.png", Plus()},
		{"minus", "cards/minus.png", Minus()},
		{"plus beats minus", "plusminus.png", Plus()},
		{"first digit in order", "apple53.png", Card{Kind: KindFruit, Fruit: Apple, Value: 3}},
		{"first fruit in order", "limeapple2.png", Card{Kind: KindFruit, Fruit: Apple, Value: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	for _, ref := range []string{"", "back.png", "apple.png", "apple9.png", "cherry3.png", ".png"} {
		_, err := Parse(ref)
		assert.ErrorIs(t, err, ErrUnknownCard, "ref %q", ref)
	}
}

func TestNewFruit(t *testing.T) {
	c, err := NewFruit(Grape, 5)
	require.NoError(t, err)
	assert.Equal(t, "grape5", c.String())

	_, err = NewFruit(Grape, 0)
	assert.ErrorIs(t, err, ErrUnknownCard)

	_, err = NewFruit("kiwi", 2)
	assert.ErrorIs(t, err, ErrUnknownCard)
}
