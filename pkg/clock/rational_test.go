// ABOUTME: Tests for exact rational time arithmetic
// ABOUTME: Covers normalization, overflow-triggered reduction and comparisons
package clock

import (
	"math"
	"testing"
	"time"
)

func TestNewRationalTimeNormalizes(t *testing.T) {
	tests := []struct {
		name    string
		num     int64
		den     int32
		wantNum int64
		wantDen int32
	}{
		{"already reduced", 1, 2, 1, 2},
		{"reducible", 2, 4, 1, 2},
		{"negative denominator", 1, -2, -1, 2},
		{"both negative", -3, -6, 1, 2},
		{"zero", 0, 5, 0, 1},
		{"samples at 48k", 1024, 48000, 8, 375},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRationalTime(tt.num, tt.den)
			if r.Num != tt.wantNum || r.Den != tt.wantDen {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantNum, tt.wantDen, r.Num, r.Den)
			}
		})
	}
}

func TestNewRationalTimeZeroDenominatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on zero denominator")
		}
	}()
	NewRationalTime(1, 0)
}

func TestAddExact(t *testing.T) {
	tests := []struct {
		name     string
		a, b     RationalTime
		expected RationalTime
	}{
		{"thirds and sixths", NewRationalTime(1, 3), NewRationalTime(1, 6), NewRationalTime(1, 2)},
		{"negative", NewRationalTime(1, 2), NewRationalTime(-1, 4), NewRationalTime(1, 4)},
		{"zero value operand", RationalTime{}, NewRationalTime(3, 7), NewRationalTime(3, 7)},
		// 48000*48000 exceeds 32-bit range; the GCD path must reduce instead.
		{"overflow-triggering denominators", NewRationalTime(1, 48000), NewRationalTime(1, 48000), NewRationalTime(1, 24000)},
		// lcm(44100,48000)=7056000 still fits, but only after reduction.
		{"cross rate", NewRationalTime(1, 44100), NewRationalTime(1, 48000), NewRationalTime(307, 7056000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Add(tt.b)
			if !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
			if got.Den <= 0 {
				t.Errorf("expected positive denominator, got %d", got.Den)
			}
		})
	}
}

func TestSubInverse(t *testing.T) {
	a := NewRationalTime(1001, 30000)
	b := NewRationalTime(7, 48000)
	if got := a.Add(b).Sub(b); !got.Equal(a) {
		t.Errorf("expected %v, got %v", a, got)
	}
}

func TestRepeatedAdditionStaysExact(t *testing.T) {
	// 100 advances of 1024 samples at 48 kHz must land on exactly
	// 102400/48000 s with no accumulated float error.
	step := FromSamples(1024, 48000)
	var pos RationalTime
	for i := 0; i < 100; i++ {
		pos = pos.Add(step)
	}

	expected := NewRationalTime(102400, 48000)
	if !pos.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, pos)
	}
	if pos.Num != 32 || pos.Den != 15 {
		t.Errorf("expected normalized 32/15, got %d/%d", pos.Num, pos.Den)
	}
}

func TestCmpExact(t *testing.T) {
	// 1/3 > 333333/1000000; a float comparison at this scale can tie.
	a := NewRationalTime(1, 3)
	b := NewRationalTime(333333, 1000000)
	if a.Cmp(b) != 1 {
		t.Errorf("expected 1/3 > 0.333333, got cmp %d", a.Cmp(b))
	}
	if !b.Less(a) {
		t.Error("expected Less to agree with Cmp")
	}
	if !a.Equal(NewRationalTime(2, 6)) {
		t.Error("expected 1/3 == 2/6")
	}
}

func TestMul(t *testing.T) {
	got := NewRationalTime(3, 2).Mul(NewRationalTime(4, 9))
	if !got.Equal(NewRationalTime(2, 3)) {
		t.Errorf("expected 2/3, got %v", got)
	}

	got = NewRationalTime(1024, 48000).MulInt(100)
	if !got.Equal(NewRationalTime(102400, 48000)) {
		t.Errorf("expected 102400/48000, got %v", got)
	}
}

func TestInv(t *testing.T) {
	fps := NewRationalTime(30000, 1001) // NTSC frame rate
	frameDur := fps.Inv()
	if frameDur.Num != 1001 || frameDur.Den != 30000 {
		t.Errorf("expected 1001/30000, got %v", frameDur)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on zero inverse")
		}
	}()
	RationalTime{}.Inv()
}

func TestRound(t *testing.T) {
	frame := NewRationalTime(1, 30)
	tests := []struct {
		name     string
		input    RationalTime
		expected RationalTime
	}{
		{"on boundary", NewRationalTime(2, 5), NewRationalTime(12, 30)},
		{"rounds up", NewRationalTime(123, 1000), NewRationalTime(4, 30)},  // 0.123 s = 3.69 frames
		{"rounds down", NewRationalTime(39, 1000), NewRationalTime(1, 30)}, // 0.039 s = 1.17 frames
		{"half away from zero", NewRationalTime(1, 20), NewRationalTime(2, 30)},
		{"negative half away", NewRationalTime(-1, 20), NewRationalTime(-2, 30)},
		{"zero", RationalTime{}, RationalTime{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Round(frame)
			if !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSamples(t *testing.T) {
	pos := FromSamples(102400, 48000)
	if got := pos.Samples(48000); got != 102400 {
		t.Errorf("expected 102400, got %d", got)
	}
	if got := pos.Samples(44100); got != 94080 {
		t.Errorf("expected 94080, got %d", got)
	}
}

func TestDuration(t *testing.T) {
	if got := NewRationalTime(1, 2).Duration(); got != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", got)
	}
	// 1/48000 s truncates to whole nanoseconds.
	if got := NewRationalTime(1, 48000).Duration(); got != 20833*time.Nanosecond {
		t.Errorf("expected 20833ns, got %v", got)
	}
	if got := FromDuration(20 * time.Millisecond); !got.Equal(NewRationalTime(1, 50)) {
		t.Errorf("expected 1/50, got %v", got)
	}
}

func TestOverflowFallsBackToApproximation(t *testing.T) {
	// Both operands sit near 136 years so the exact-sum numerator overflows
	// int64, while the true sum (~272 years) still fits in a time.Duration
	// for the nanosecond fallback.
	a := NewRationalTime(math.MaxInt64, math.MaxInt32)
	b := NewRationalTime(math.MaxInt64-1, math.MaxInt32)

	got := a.Add(b).Seconds()
	expected := a.Seconds() + b.Seconds()
	if rel := math.Abs(got-expected) / expected; rel > 1e-9 {
		t.Errorf("expected within 1e-9 of %g, got %g", expected, got)
	}
}

func TestSignAbs(t *testing.T) {
	neg := NewRationalTime(-3, 4)
	if neg.Sign() != -1 {
		t.Errorf("expected sign -1, got %d", neg.Sign())
	}
	if !neg.Abs().Equal(NewRationalTime(3, 4)) {
		t.Errorf("expected 3/4, got %v", neg.Abs())
	}
	if (RationalTime{}).Sign() != 0 {
		t.Error("expected zero sign for zero value")
	}
}
