package balancer

import (
	"errors"
	"testing"
)

func TestIsClean(t *testing.T) {
	clean := []int{1, 2, 3, 4, 6, 8, 9, 12, 16, 18, 24, 27, 32, 36, 48, 54, 64, 72, 96, 108}
	for _, n := range clean {
		if !IsClean(n) {
			t.Errorf("IsClean(%d) = false, want true", n)
		}
	}
	dirty := []int{0, -1, 5, 7, 10, 11, 13, 14, 15, 17, 20, 21, 100}
	for _, n := range dirty {
		if IsClean(n) {
			t.Errorf("IsClean(%d) = true, want false", n)
		}
	}
}

func TestFactorize(t *testing.T) {
	cases := []struct {
		n            int
		twos, threes int
	}{
		{1, 0, 0},
		{2, 1, 0},
		{3, 0, 1},
		{6, 1, 1},
		{8, 3, 0},
		{27, 0, 3},
		{72, 3, 2},
		{108, 2, 3},
	}
	for _, tc := range cases {
		twos, threes, err := Factorize(tc.n)
		if err != nil {
			t.Fatalf("Factorize(%d) returned error: %v", tc.n, err)
		}
		if twos != tc.twos || threes != tc.threes {
			t.Errorf("Factorize(%d) = (%d, %d), want (%d, %d)", tc.n, twos, threes, tc.twos, tc.threes)
		}
	}
}

func TestFactorizeRejectsDirtySizes(t *testing.T) {
	for _, n := range []int{5, 7, 10, 35, 1000000007} {
		if _, _, err := Factorize(n); !errors.Is(err, ErrNotClean) {
			t.Errorf("Factorize(%d) error = %v, want ErrNotClean", n, err)
		}
	}
}

func TestValidation(t *testing.T) {
	for _, n := range []int{0, -1, -50} {
		if _, err := NextCleanSize(n); err == nil {
			t.Errorf("NextCleanSize(%d) accepted invalid input", n)
		}
		if _, err := PrevCleanSize(n); err == nil {
			t.Errorf("PrevCleanSize(%d) accepted invalid input", n)
		}
		if _, err := BuildPlan(n); err == nil {
			t.Errorf("BuildPlan(%d) accepted invalid input", n)
		}
		if _, _, err := Factorize(n); err == nil {
			t.Errorf("Factorize(%d) accepted invalid input", n)
		}
	}
}

func TestNextCleanSizeKnownValues(t *testing.T) {
	cases := []struct{ n, want int }{
		{1, 1},
		{2, 2},
		{5, 6},
		{7, 8},
		{13, 16},
		{17, 18},
		{25, 27},
		{100, 108},
		{129, 144},
		{1000, 1024},
	}
	for _, tc := range cases {
		got, err := NextCleanSize(tc.n)
		if err != nil {
			t.Fatalf("NextCleanSize(%d) returned error: %v", tc.n, err)
		}
		if got != tc.want {
			t.Errorf("NextCleanSize(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestPrevCleanSizeKnownValues(t *testing.T) {
	cases := []struct{ n, want int }{
		{1, 1},
		{5, 4},
		{7, 6},
		{13, 12},
		{17, 16},
		{26, 24},
		{100, 96},
		{1000, 972},
	}
	for _, tc := range cases {
		got, err := PrevCleanSize(tc.n)
		if err != nil {
			t.Fatalf("PrevCleanSize(%d) returned error: %v", tc.n, err)
		}
		if got != tc.want {
			t.Errorf("PrevCleanSize(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

// The brute-force scan below is the ground truth for the neighbor
// searches across a contiguous range.
func TestCleanSizeNeighborsMatchScan(t *testing.T) {
	for n := 1; n <= 2000; n++ {
		next, err := NextCleanSize(n)
		if err != nil {
			t.Fatalf("NextCleanSize(%d) returned error: %v", n, err)
		}
		wantNext := n
		for !IsClean(wantNext) {
			wantNext++
		}
		if next != wantNext {
			t.Fatalf("NextCleanSize(%d) = %d, want %d", n, next, wantNext)
		}

		prev, err := PrevCleanSize(n)
		if err != nil {
			t.Fatalf("PrevCleanSize(%d) returned error: %v", n, err)
		}
		wantPrev := n
		for !IsClean(wantPrev) {
			wantPrev--
		}
		if prev != wantPrev {
			t.Fatalf("PrevCleanSize(%d) = %d, want %d", n, prev, wantPrev)
		}
	}
}

func TestBuildPlanInvariants(t *testing.T) {
	for n := 1; n <= 500; n++ {
		plan, err := BuildPlan(n)
		if err != nil {
			t.Fatalf("BuildPlan(%d) returned error: %v", n, err)
		}
		if plan.Requested != n {
			t.Fatalf("BuildPlan(%d) recorded request %d", n, plan.Requested)
		}
		wantSize, _ := NextCleanSize(n)
		if plan.Size != wantSize {
			t.Fatalf("BuildPlan(%d) size = %d, want %d", n, plan.Size, wantSize)
		}

		// The branch product over all layers must equal the planned size.
		product := 1
		total := 0
		edges := 1
		for _, layer := range plan.Layers {
			if layer.Arity != 2 && layer.Arity != 3 {
				t.Fatalf("BuildPlan(%d) produced arity %d", n, layer.Arity)
			}
			if layer.Splitters != edges {
				t.Fatalf("BuildPlan(%d) layer splitters = %d, want %d", n, layer.Splitters, edges)
			}
			product *= layer.Arity
			total += layer.Splitters
			edges *= layer.Arity
		}
		if product != plan.Size {
			t.Fatalf("BuildPlan(%d) branch product = %d, want %d", n, product, plan.Size)
		}
		if total != plan.TotalSplitters {
			t.Fatalf("BuildPlan(%d) total = %d, layer sum = %d", n, plan.TotalSplitters, total)
		}
		if plan.Outputs() != plan.Size {
			t.Fatalf("BuildPlan(%d) outputs = %d, want %d", n, plan.Outputs(), plan.Size)
		}
	}
}

// minTotalSplitters brute-forces every ordering of the factor multiset.
func minTotalSplitters(twos, threes int) int {
	if twos == 0 && threes == 0 {
		return 0
	}
	best := -1
	if twos > 0 {
		if total := 1 + 2*minTotalSplitters(twos-1, threes); best < 0 || total < best {
			best = total
		}
	}
	if threes > 0 {
		if total := 1 + 3*minTotalSplitters(twos, threes-1); best < 0 || total < best {
			best = total
		}
	}
	return best
}

func TestBuildPlanMinimizesSplitters(t *testing.T) {
	for n := 1; n <= 500; n++ {
		plan, err := BuildPlan(n)
		if err != nil {
			t.Fatalf("BuildPlan(%d) returned error: %v", n, err)
		}
		twos, threes, err := Factorize(plan.Size)
		if err != nil {
			t.Fatalf("Factorize(%d) returned error: %v", plan.Size, err)
		}
		if want := minTotalSplitters(twos, threes); plan.TotalSplitters != want {
			t.Fatalf("BuildPlan(%d) total = %d, brute force found %d", n, plan.TotalSplitters, want)
		}
	}
}

func TestBuildPlanTrivialFanOut(t *testing.T) {
	plan, err := BuildPlan(1)
	if err != nil {
		t.Fatalf("BuildPlan(1) returned error: %v", err)
	}
	if plan.Size != 1 || len(plan.Layers) != 0 || plan.TotalSplitters != 0 {
		t.Fatalf("unexpected trivial plan %#v", plan)
	}
}

func TestBuildPlanSixOutputs(t *testing.T) {
	plan, err := BuildPlan(6)
	if err != nil {
		t.Fatalf("BuildPlan(6) returned error: %v", err)
	}
	// 2 then 3 costs 1+2=3 splitters; 3 then 2 would cost 1+3=4.
	if len(plan.Layers) != 2 || plan.Layers[0].Arity != 2 || plan.Layers[1].Arity != 3 {
		t.Fatalf("unexpected layer ordering %#v", plan.Layers)
	}
	if plan.TotalSplitters != 3 {
		t.Fatalf("BuildPlan(6) total = %d, want 3", plan.TotalSplitters)
	}
}
