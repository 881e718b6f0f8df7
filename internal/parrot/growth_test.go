package parrot

import "testing"

func TestMaxExperienceBreakpoints(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 10},
		{5, 50},
		{10, 100},
		{11, 120},
		{25, 400},
		{26, 430},
		{40, 850},
		{41, 900},
		{0, 10},
	}
	for _, c := range cases {
		if got := MaxExperience(c.level, false); got != c.want {
			t.Errorf("MaxExperience(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestMaxExperienceLearningBonus(t *testing.T) {
	for level := 1; level <= 80; level++ {
		plain := MaxExperience(level, false)
		got := MaxExperience(level, true)
		want := int(float64(plain) * 0.9)
		if got != want {
			t.Errorf("MaxExperience(%d, bonus) = %d, want %d", level, got, want)
		}
	}
	if got := MaxExperience(11, true); got != 108 {
		t.Errorf("MaxExperience(11, bonus) = %d, want 108", got)
	}
}

func TestMemorizedWordsBoundsAndMonotone(t *testing.T) {
	prev := 0
	for level := 1; level <= 200; level++ {
		got := MemorizedWords(level)
		if got < 1 || got > 10000 {
			t.Fatalf("MemorizedWords(%d) = %d, out of [1, 10000]", level, got)
		}
		if got < prev {
			t.Fatalf("MemorizedWords(%d) = %d, decreased from %d", level, got, prev)
		}
		prev = got
	}
}

func TestMemorizedWordsValues(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 1},
		{2, 3},
		{16, 7131},
		{17, 10000},
		{1000, 10000},
	}
	for _, c := range cases {
		if got := MemorizedWords(c.level); got != c.want {
			t.Errorf("MemorizedWords(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestMemoryTimeHours(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 1},
		{5, 5},
		{6, 7},
		{15, 25},
		{16, 28},
		{30, 70},
		{31, 75},
		{10000, 8760},
		{1 << 40, 8760},
	}
	for _, c := range cases {
		if got := MemoryTimeHours(c.level); got != c.want {
			t.Errorf("MemoryTimeHours(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}
