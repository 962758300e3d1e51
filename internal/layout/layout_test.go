package layout

import "testing"

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}

func TestResolveFixedExact(t *testing.T) {
	sizes, err := Resolve([]Constraint{Fixed(10), Fixed(20)}, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sizes[0] != 10 || sizes[1] != 20 {
		t.Fatalf("sizes = %v", sizes)
	}
}

func TestResolveFixedOverflow(t *testing.T) {
	_, err := Resolve([]Constraint{Fixed(10), Fixed(25)}, 30)
	if err == nil {
		t.Fatalf("expected InsufficientSpace")
	}
}

func TestResolveInvalidPercentages(t *testing.T) {
	_, err := Resolve([]Constraint{Percent(60), Percent(60)}, 100)
	if err == nil {
		t.Fatalf("expected InvalidPercentages")
	}
}

func TestResolvePercentageSum(t *testing.T) {
	sizes, err := Resolve([]Constraint{Percent(50), Percent(50)}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum(sizes) != 100 {
		t.Fatalf("sizes = %v, sum != 100", sizes)
	}
}

func TestResolveFlexibleFillsResidual(t *testing.T) {
	sizes, err := Resolve([]Constraint{Fixed(10), Flexible(), Flexible()}, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum(sizes) != 30 {
		t.Fatalf("sizes = %v, want sum 30", sizes)
	}
	if sizes[1] != 10 || sizes[2] != 10 {
		t.Fatalf("flexible split unevenly: %v", sizes)
	}
}

func TestResolveRangeRespectsMinMax(t *testing.T) {
	sizes, err := Resolve([]Constraint{Range(5, 10), Flexible()}, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sizes[0] < 5 || sizes[0] > 10 {
		t.Fatalf("range constraint violated: %v", sizes)
	}
	if sum(sizes) != 30 {
		t.Fatalf("sizes = %v, want sum 30", sizes)
	}
}

func TestResolveRangeMinRaisedEvenWhenTight(t *testing.T) {
	sizes, err := Resolve([]Constraint{Fixed(15), Range(15, 20)}, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sizes[1] != 15 {
		t.Fatalf("expected range raised to min 15, got %v", sizes)
	}
}

func TestResolveEmpty(t *testing.T) {
	sizes, err := Resolve(nil, 100)
	if err != nil || sizes != nil {
		t.Fatalf("expected nil,nil for empty constraints, got %v, %v", sizes, err)
	}
}

func TestGridRowsThenColumns(t *testing.T) {
	rows := [][]Constraint{
		{Fixed(10), Flexible()},
		{Percent(50), Percent(50)},
	}
	rowHeights := []Constraint{Fixed(5), Flexible()}
	rects, err := Grid(rows, rowHeights, 40, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rects) != 4 {
		t.Fatalf("got %d rects, want 4", len(rects))
	}
	if rects[0].Y != 0 || rects[0].Height != 5 {
		t.Fatalf("row 0 rect = %+v", rects[0])
	}
	if rects[2].Y != 5 || rects[2].Height != 15 {
		t.Fatalf("row 1 rect = %+v", rects[2])
	}
	if rects[0].Width != 10 {
		t.Fatalf("row 0 col 0 width = %d, want 10", rects[0].Width)
	}
}
