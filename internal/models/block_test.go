package models

import "testing"

func TestBlockAt(t *testing.T) {
	var w SearchWindow
	for i := 0; i < WindowSize; i++ {
		for j := 0; j < WindowSize; j++ {
			w[i][j] = uint16(i*100 + j)
		}
	}

	b := w.BlockAt(5, 30)
	for k := 0; k < BlockSize; k++ {
		for l := 0; l < BlockSize; l++ {
			if want := uint16((5+k)*100 + 30 + l); b[k][l] != want {
				t.Fatalf("b[%d][%d] = %d, expected %d", k, l, b[k][l], want)
			}
		}
	}
}

func TestValidRegion(t *testing.T) {
	r := ValidRegion{RowStart: BlockSize, RowEnd: WindowSize, ColStart: 0, ColEnd: 2 * BlockSize}

	if r.Rows() != 2*BlockSize || r.Cols() != 2*BlockSize {
		t.Errorf("Expected %dx%d, got %dx%d", 2*BlockSize, 2*BlockSize, r.Rows(), r.Cols())
	}

	cases := []struct {
		row, col int
		want     bool
	}{
		{BlockSize, 0, true},
		{WindowSize - 1, 2*BlockSize - 1, true},
		{BlockSize - 1, 0, false},
		{BlockSize, 2 * BlockSize, false},
		{WindowSize, 0, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.row, c.col); got != c.want {
			t.Errorf("Contains(%d, %d) = %v, expected %v", c.row, c.col, got, c.want)
		}
	}
}

func TestDisplacementString(t *testing.T) {
	if s := (Displacement{X: -3, Y: 12}).String(); s != "-3,12" {
		t.Errorf("Expected -3,12, got %s", s)
	}
}
