package value

import "testing"

func TestToIntFromString(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{"  -7abc", -7},
		{"0x1A", 26},
		{"0b101", 5},
		{"010", 8},
		{"", 0},
		{"abc", 0},
	}
	for _, c := range cases {
		var v Cell
		v.InitString(c.in)
		v.ToInt()
		if v.IntVal() != c.want {
			t.Errorf("to_int(%q) = %d, want %d", c.in, v.IntVal(), c.want)
		}
	}
}

func TestToBoolRules(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false}, {"0", false}, {"00", false},
		{"false", false}, {"FALSE", false},
		{"true", true}, {"ON", true}, {"yes", true},
		{"0.0", true}, {"anything", true},
	}
	for _, c := range cases {
		var v Cell
		v.InitString(c.in)
		v.ToBool()
		if v.BoolVal() != c.want {
			t.Errorf("to_bool(%q) = %v, want %v", c.in, v.BoolVal(), c.want)
		}
	}
}

func TestToStringBoolStrictVsLoose(t *testing.T) {
	var v Cell
	v.InitBool(false)
	v.ToString(false)
	if v.StringBuf() != "FALSE" {
		t.Fatalf("loose to_string(false) = %q, want FALSE", v.StringBuf())
	}

	v.InitBool(false)
	v.ToString(true)
	if v.StringBuf() != "" {
		t.Fatalf("strict to_string(false) = %q, want empty", v.StringBuf())
	}
}

func TestIntRealCoexistenceInvariant(t *testing.T) {
	var v Cell
	v.InitReal(3.0)
	v.ToReal()
	if !v.Flags().Has(Int) || !v.Flags().Has(Real) {
		t.Fatal("a lossless real should cache an INT representation")
	}
	if v.IntVal() != 3 {
		t.Fatalf("cached int = %d, want 3", v.IntVal())
	}

	v.InitReal(3.5)
	v.ToReal()
	if v.Flags().Has(Int) {
		t.Fatal("a lossy real must not cache an INT representation")
	}
}

func TestNormalizationIdempotence(t *testing.T) {
	var v Cell
	v.InitString("007")
	v.ToString(false)
	first := v.StringBuf()
	v.ToInt()
	v.ToString(false)
	second := v.StringBuf()
	if second != "7" {
		t.Fatalf("to_string after to_int = %q, want 7 (leading zeros drop)", second)
	}
	_ = first
}

func TestScalarCopyOnStore(t *testing.T) {
	var c, d Cell
	c.InitInt(5)
	Store(&d, &c)
	d.ToString(false)
	if c.Flags() != Int || c.IntVal() != 5 {
		t.Fatal("mutating d's payload must not alter c (scalar copy-on-store)")
	}
}

func TestToHashmapWrapsScalar(t *testing.T) {
	var v Cell
	v.InitInt(9)
	v.ToHashmap()
	if !v.Flags().Has(Array) {
		t.Fatal("expected ARRAY flag")
	}
	if v.ArrVal().Len() != 1 {
		t.Fatalf("len = %d, want 1", v.ArrVal().Len())
	}
}

func TestToHashmapNullBecomesEmpty(t *testing.T) {
	var v Cell
	v.InitNull()
	v.ToHashmap()
	if v.ArrVal().Len() != 0 {
		t.Fatalf("NULL.to_hashmap() len = %d, want 0", v.ArrVal().Len())
	}
}

func TestCmpArrayGreaterThanScalar(t *testing.T) {
	var arr, scalar Cell
	arr.InitInt(1)
	arr.ToHashmap()
	scalar.InitInt(5)

	if Cmp(&arr, &scalar, false) <= 0 {
		t.Fatal("array should compare greater than scalar")
	}
	if Cmp(&scalar, &arr, false) >= 0 {
		t.Fatal("scalar should compare less than array regardless of operand order")
	}
}

func TestCmpStrictTypeMismatch(t *testing.T) {
	var a, b Cell
	a.InitInt(1)
	b.InitString("1")
	if Cmp(&a, &b, true) == 0 {
		t.Fatal("strict comparison of INT vs STRING must not be equal")
	}
	if Cmp(&a, &b, false) != 0 {
		t.Fatal("loose comparison of 1 vs \"1\" should be equal")
	}
}

func TestCmpNumericStringsByValue(t *testing.T) {
	var a, b Cell
	a.InitString("10")
	b.InitString("9")
	if Cmp(&a, &b, false) <= 0 {
		t.Fatal("numeric strings should compare by value: \"10\" > \"9\"")
	}
}

func TestCmpNonNumericStringsByBytes(t *testing.T) {
	var a, b Cell
	a.InitString("10")
	b.InitString("9a")
	if Cmp(&a, &b, false) >= 0 {
		t.Fatal("non-numeric string compare should be byte-wise: \"10\" < \"9a\"")
	}
}

func TestAddNumeric(t *testing.T) {
	var a, b, dst Cell
	a.InitInt(2)
	b.InitInt(3)
	if err := Add(&dst, &a, &b); err != nil {
		t.Fatal(err)
	}
	if dst.IntVal() != 5 {
		t.Fatalf("2+3 = %d, want 5", dst.IntVal())
	}
}

func TestAddArrayUnion(t *testing.T) {
	var a, b, dst Cell
	a.InitInt(1)
	a.ToHashmap() // {0: 1}
	b.InitInt(2)
	b.ToHashmap() // {0: 2}

	if err := Add(&dst, &a, &b); err != nil {
		t.Fatal(err)
	}
	if dst.ArrVal().Len() != 1 {
		t.Fatalf("union len = %d, want 1", dst.ArrVal().Len())
	}
	n, _ := dst.ArrVal().Lookup(indexZero)
	if n.Value.IntVal() != 1 {
		t.Fatal("union should keep the left operand's value on key conflict")
	}
}

func TestAddArrayUnionIdempotent(t *testing.T) {
	var a Cell
	a.InitInt(1)
	a.ToHashmap()

	var dst Cell
	if err := Add(&dst, &a, &a); err != nil {
		t.Fatal(err)
	}
	if dst.ArrVal().Len() != a.ArrVal().Len() {
		t.Fatal("union(m, m) should not grow the entry count")
	}
}

func TestCloneArrayDropsForeignness(t *testing.T) {
	m := NewMap()
	elemCell := &Cell{}
	elemCell.InitInt(1)
	m.InsertByRef(indexZero, elemCell, 1)

	var src Cell
	src.InitArray(m)

	cp, err := Clone(&src, cloneBudgetDefault)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := cp.ArrVal().Lookup(indexZero)
	if !ok {
		t.Fatal("cloned array missing element")
	}
	if n.Foreign {
		t.Fatal("clone must drop foreign-ness (copy-and-drop Open Question decision)")
	}
}

func TestCloneBudgetExhausted(t *testing.T) {
	inner := NewMap()
	var innerCell Cell
	innerCell.InitInt(1)
	inner.Insert(indexZero, &innerCell, 0)

	var outer Cell
	outer.InitArray(inner)

	if _, err := Clone(&outer, 0); err == nil {
		t.Fatal("expected LIMIT error when the clone budget is exhausted before descending")
	}
}
