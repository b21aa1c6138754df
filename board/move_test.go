package board

import "testing"

func TestMoveEncodeDecode(t *testing.T) {
	cases := []struct {
		mt    MoveType
		from  Square
		to    Square
		promo PieceType
	}{
		{Normal, SquareE2, SquareE4, NoPieceType},
		{EnPassant, SquareD5, SquareE6, NoPieceType},
		{Castling, SquareE1, SquareG1, NoPieceType},
		{Promotion, SquareA7, SquareA8, Queen},
		{Promotion, SquareH2, SquareG1, Knight},
	}
	for _, c := range cases {
		m := NewMove(c.mt, c.from, c.to, c.promo)
		if m.Type() != c.mt {
			t.Errorf("NewMove(%v,%v,%v,%v).Type() = %v", c.mt, c.from, c.to, c.promo, m.Type())
		}
		if m.From() != c.from {
			t.Errorf("From() = %v, want %v", m.From(), c.from)
		}
		if m.To() != c.to {
			t.Errorf("To() = %v, want %v", m.To(), c.to)
		}
		if c.mt == Promotion && m.Promotion() != c.promo {
			t.Errorf("Promotion() = %v, want %v", m.Promotion(), c.promo)
		}
	}
}

func TestMoveStringPromotionLetters(t *testing.T) {
	cases := []struct {
		promo PieceType
		want  string
	}{
		{Knight, "a7a8n"},
		{Bishop, "a7a8b"},
		{Rook, "a7a8r"},
		{Queen, "a7a8q"},
	}
	for _, c := range cases {
		m := NewMove(Promotion, SquareA7, SquareA8, c.promo)
		if got := m.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestMoveNullAndNone(t *testing.T) {
	if !MoveNone.IsNone() {
		t.Error("MoveNone.IsNone() = false")
	}
	if !MoveNull.IsNull() {
		t.Error("MoveNull.IsNull() = false")
	}
	if MoveNull.String() != "0000" {
		t.Errorf("MoveNull.String() = %q, want 0000", MoveNull.String())
	}
}
