package domain

import "testing"

func TestProductPrice(t *testing.T) {
	tests := []struct {
		name       string
		salePriceU int64
		want       int64
	}{
		{"whole rubles", 150000, 1500},
		{"kopecks are dropped", 150099, 1500},
		{"missing price", 0, 0},
		{"below one ruble", 99, 0},
		{"negative rounds down", -150, -2},
		{"negative whole", -200, -2},
		{"negative below one ruble", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Product{SalePriceU: tt.salePriceU}.Price()
			if got != tt.want {
				t.Errorf("Price() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProductImageID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"42", "00042"},
		{"", "00000"},
		{"12345", "12345"},
		{"123456", "123456"},
		{"-42", "-0042"},
		{"+7", "+0007"},
		{"-", "-0000"},
		{"ид", "000ид"},
		{"абвгд", "абвгд"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := Product{ID: tt.id}.ImageID()
			if got != tt.want {
				t.Errorf("ImageID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchResultLen(t *testing.T) {
	var nilResult *SearchResult
	if nilResult.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", nilResult.Len())
	}

	result := &SearchResult{Records: []ProductRecord{ProductRecord(`{}`), ProductRecord(`{}`)}}
	if result.Len() != 2 {
		t.Errorf("Len() = %d, want 2", result.Len())
	}
}
