package shoppinglist

import (
	"testing"

	"github.com/recipegram/apiserver/config"
	"github.com/recipegram/apiserver/types"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		item types.ShoppingListItem
		want string
	}{
		{item: types.ShoppingListItem{Name: "мука", Amount: 500, Unit: "г"}, want: "мука 500 г"},
		{item: types.ShoppingListItem{Name: "молоко", Amount: 1, Unit: "л"}, want: "молоко 1 л"},
	}
	for _, tt := range tests {
		if got := FormatLine(tt.item); got != tt.want {
			t.Fatalf("FormatLine(%+v) = %q, want %q", tt.item, got, tt.want)
		}
	}
}

func TestRenderMissingFont(t *testing.T) {
	renderer := NewRenderer(config.PDFConfig{
		FontFile: "testdata/does-not-exist.ttf",
		FontName: "Missing",
	})

	_, err := renderer.Render([]types.ShoppingListItem{{Name: "мука", Amount: 500, Unit: "г"}})
	if err == nil {
		t.Fatalf("expected an error for a missing font file")
	}
}
