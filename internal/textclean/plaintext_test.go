package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain sentence unchanged", "The crop yield was excellent this year!", "The crop yield was excellent this year!"},
		{"contractions survive", "I'm sure it didn't rain.", "I'm sure it didn't rain."},
		{"emphasis dropped", "The harvest was **really** good", "The harvest was really good"},
		{"heading marker dropped", "# Field report\nSoil looks healthy.", "Field report Soil looks healthy."},
		{"link target dropped", "See [our report](https://example.com/report) for details", "See our report for details"},
		{"bare url dropped", "Photos at https://example.com/photos today", "Photos at today"},
		{"raw html dropped", "Yield was <b>great</b>", "Yield was great"},
		{"ampersand entity", "Seeds &amp; fertilizer", "Seeds & fertilizer"},
		{"other entities kept", "harvest was ok &lt;3", "harvest was ok &lt;3"},
		{"heart emoticon kept", "I <3 this new seed variety", "I <3 this new seed variety"},
		{"tag-like text kept", "yield <3 bushels> short", "yield <3 bushels> short"},
		{"image alt text kept", "![great](x.png) harvest", "great harvest"},
		{"html comment dropped", "dry <!-- note --> week", "dry week"},
		{"list items joined", "- drought\n- pests\n", "drought pests"},
		{"blank input", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToPlainText(tt.in))
		})
	}
}

func TestRemoveLinks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "read this now", RemoveLinks("read [this](http://x.io/a) now"))
	assert.Equal(t, "visit ", RemoveLinks("visit www.example.com"))
}
