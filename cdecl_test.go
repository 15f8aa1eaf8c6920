package cdecl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goplus/cdecl"
	"github.com/goplus/cdecl/ctypes"
)

func TestIncrementalTypedefResolution(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("typedef int myint;"))
	require.NoError(t, c.Declare("myint x;"))

	tp, ok := c.Lookup("variable x")
	require.True(t, ok)
	prim, ok := tp.(*ctypes.Primitive)
	require.True(t, ok)
	assert.Equal(t, "int", prim.Name)
}

func TestPrimitiveNormalization(t *testing.T) {
	cases := []struct {
		decl string
		want string
	}{
		{"unsigned u;", "unsigned int"},
		{"signed s;", "int"},
		{"signed int si;", "int"},
		{"signed char sc;", "signed char"},
		{"unsigned char uc;", "unsigned char"},
		{"long int li;", "long"},
		{"long long int lli;", "long long"},
		{"unsigned long int uli;", "unsigned long"},
		{"unsigned int ui;", "unsigned int"},
		{"double d;", "double"},
	}
	for _, tc := range cases {
		c := cdecl.NewCompiler()
		require.NoError(t, c.Declare(tc.decl), tc.decl)
		tp, ok := c.Lookup("variable " + lastIdent(tc.decl))
		require.True(t, ok, tc.decl)
		prim, ok := tp.(*ctypes.Primitive)
		require.True(t, ok, tc.decl)
		assert.Equal(t, tc.want, prim.Name, tc.decl)
	}
}

func TestVoidResolution(t *testing.T) {
	c := cdecl.NewCompiler()
	tp, err := c.ResolveType("void")
	require.NoError(t, err)
	assert.Same(t, ctypes.Void, tp)
}

func TestStructIdentityStability(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct Point { int x; int y; };"))

	first, ok := c.Lookup("struct Point")
	require.True(t, ok)
	rec := first.(*ctypes.Record)
	require.True(t, rec.Complete)
	require.Len(t, rec.Fields, 2)

	// a later opaque mention must reuse the same object, fields intact
	require.NoError(t, c.Declare("struct Point;"))
	again, ok := c.Lookup("struct Point")
	require.True(t, ok)
	assert.Same(t, first, again)
	assert.True(t, again.(*ctypes.Record).Complete)

	tp, err := c.ResolveType("struct Point")
	require.NoError(t, err)
	assert.Same(t, first, tp)
}

func TestDuplicateFieldListRejected(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct Point { int x; };"))
	err := c.Declare("struct Point { int x; };")
	require.Error(t, err)
	assert.True(t, cdecl.IsDuplicateFieldListError(err))
}

func TestEnumDefaultIncrementRule(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("enum Color { RED, GREEN = 5, BLUE };"))

	tp, ok := c.Lookup("enum Color")
	require.True(t, ok)
	en := tp.(*ctypes.Enum)
	assert.Equal(t, []string{"RED", "GREEN", "BLUE"}, en.Enumerators)
	assert.Equal(t, []int64{0, 5, 6}, en.Values)
}

func TestEnumNegativeAndRedefinition(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("enum E { A = -2, B, C };"))
	tp, ok := c.Lookup("enum E")
	require.True(t, ok)
	en := tp.(*ctypes.Enum)
	assert.Equal(t, []int64{-2, -1, 0}, en.Values)

	// a second defining mention returns the registered enum unchanged
	require.NoError(t, c.Declare("enum E ev;"))
	v, ok := c.Lookup("variable ev")
	require.True(t, ok)
	assert.Same(t, tp, v)
}

func TestOpaqueEnumNotCachedByTag(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("enum Flag a;"))
	require.NoError(t, c.Declare("enum Flag b;"))

	_, registered := c.Lookup("enum Flag")
	assert.False(t, registered)

	ta, _ := c.Lookup("variable a")
	tb, _ := c.Lookup("variable b")
	require.IsType(t, &ctypes.Enum{}, ta)
	require.IsType(t, &ctypes.Enum{}, tb)
	// each opaque mention yields a fresh empty enum
	assert.NotSame(t, ta, tb)
	assert.Empty(t, ta.(*ctypes.Enum).Enumerators)
}

func TestSelfReferentialStruct(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct Node { struct Node *next; int value; };"))

	tp, ok := c.Lookup("struct Node")
	require.True(t, ok)
	rec := tp.(*ctypes.Record)
	require.True(t, rec.Complete)
	require.Len(t, rec.Fields, 2)

	ptr, ok := rec.Fields[0].Type.(*ctypes.Pointer)
	require.True(t, ok)
	assert.Same(t, tp, ptr.To)
}

func TestMutuallyReferentialStructs(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare(`
		struct A { struct B *b; };
		struct B { struct A *a; };
	`))
	ta, _ := c.Lookup("struct A")
	tb, _ := c.Lookup("struct B")
	assert.Same(t, tb, ta.(*ctypes.Record).Fields[0].Type.(*ctypes.Pointer).To)
	assert.Same(t, ta, tb.(*ctypes.Record).Fields[0].Type.(*ctypes.Pointer).To)
	assert.True(t, tb.(*ctypes.Record).Complete)
}

func TestVariadicFunction(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("int add(int a, int b, ...);"))

	tp, ok := c.Lookup("function add")
	require.True(t, ok)
	fn := tp.(*ctypes.Func)
	assert.True(t, fn.Variadic)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "int", fn.Params[0].(*ctypes.Primitive).Name)
	assert.Equal(t, "int", fn.Ret.(*ctypes.Primitive).Name)
}

func TestVoidParameterListMeansNoParams(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("int f(void);"))
	fn, _ := c.Lookup("function f")
	assert.Empty(t, fn.(*ctypes.Func).Params)
	assert.False(t, fn.(*ctypes.Func).Variadic)
}

func TestArrayParameterDecaysToPointer(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("int sum(int values[10], int n);"))
	fn, _ := c.Lookup("function sum")
	ptr, ok := fn.(*ctypes.Func).Params[0].(*ctypes.Pointer)
	require.True(t, ok)
	assert.Equal(t, "int", ptr.To.(*ctypes.Primitive).Name)
}

func TestPointerToFunctionCollapses(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("typedef int (*callback)(int);"))
	tp, ok := c.Lookup("typedef callback")
	require.True(t, ok)
	fn, ok := tp.(*ctypes.Func)
	require.True(t, ok, "pointer-to-function must collapse to the function type")
	require.Len(t, fn.Params, 1)
}

func TestBareTypeExpressions(t *testing.T) {
	c := cdecl.NewCompiler()

	tp, err := c.ResolveType("int[10]")
	require.NoError(t, err)
	arr := tp.(*ctypes.Array)
	assert.Equal(t, int64(10), arr.Len)
	assert.Equal(t, "int", arr.Elt.(*ctypes.Primitive).Name)

	tp, err = c.ResolveType("int[]")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), tp.(*ctypes.Array).Len)

	tp, err = c.ResolveType("unsigned char *")
	require.NoError(t, err)
	assert.Equal(t, "unsigned char", tp.(*ctypes.Pointer).To.(*ctypes.Primitive).Name)

	// nothing registered under variable/function names
	for _, name := range c.Names() {
		assert.NotContains(t, name, "variable ")
		assert.NotContains(t, name, "function ")
	}
}

func TestResolveTypePtr(t *testing.T) {
	c := cdecl.NewCompiler()

	tp, err := c.ResolveTypePtr("int")
	require.NoError(t, err)
	assert.Equal(t, "int", tp.(*ctypes.Pointer).To.(*ctypes.Primitive).Name)

	// a typedef'ed array is not wrapped
	require.NoError(t, c.Declare("typedef int vec[4];"))
	tp, err = c.ResolveTypePtr("vec")
	require.NoError(t, err)
	assert.IsType(t, &ctypes.Array{}, tp)
}

func TestNamespaceSeparation(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct foo { int a; };"))
	require.NoError(t, c.Declare("typedef int foo;"))
	require.NoError(t, c.Declare("int foo(void);"))

	_, ok := c.Lookup("struct foo")
	assert.True(t, ok)
	_, ok = c.Lookup("typedef foo")
	assert.True(t, ok)
	_, ok = c.Lookup("function foo")
	assert.True(t, ok)
}

func TestDuplicateDeclarationRejected(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("int x;"))
	err := c.Declare("double x;")
	require.Error(t, err)
	assert.True(t, cdecl.IsDuplicateDeclError(err))
}

func TestFailedDeclarePublishesNothing(t *testing.T) {
	c := cdecl.NewCompiler()
	err := c.Declare("typedef int ok; typedef int ok;")
	require.Error(t, err)
	assert.True(t, cdecl.IsDuplicateDeclError(err))
	_, visible := c.Lookup("typedef ok")
	assert.False(t, visible, "failed call must not publish new names")

	err = c.Declare("typedef int fine; int bad bad;")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnsupportedConstructError(err))
	_, visible = c.Lookup("typedef fine")
	assert.False(t, visible)
}

func TestUnnamedDeclarationRejected(t *testing.T) {
	c := cdecl.NewCompiler()

	err := c.Declare("int;")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnnamedDeclError(err))

	err = c.Declare("typedef int;")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnnamedDeclError(err))
}

func TestForwardDeclarationIsNotAnError(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct foo;"))
	// the bare forward declaration registers nothing by itself
	_, ok := c.Lookup("struct foo")
	assert.False(t, ok)

	// first real use allocates the incomplete record
	require.NoError(t, c.Declare("struct foo *p;"))
	tp, ok := c.Lookup("struct foo")
	require.True(t, ok)
	assert.False(t, tp.(*ctypes.Record).Complete)

	// fields can still arrive later, on the same object
	require.NoError(t, c.Declare("struct foo { int a; };"))
	again, _ := c.Lookup("struct foo")
	assert.Same(t, tp, again)
	assert.True(t, again.(*ctypes.Record).Complete)
}

func TestSharedAnonymousAggregate(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("typedef struct { int x; } foo_t, *foo_p;"))

	tt, ok := c.Lookup("typedef foo_t")
	require.True(t, ok)
	tv, ok := c.Lookup("typedef foo_p")
	require.True(t, ok)

	rec := tt.(*ctypes.Record)
	assert.Equal(t, "$foo_t", rec.Name)
	assert.True(t, rec.Complete)
	// one underlying aggregate, not two
	assert.Same(t, tt, tv.(*ctypes.Pointer).To)
}

func TestAnonymousAggregateNaming(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct { int x; } v;"))
	tp, _ := c.Lookup("variable v")
	assert.Equal(t, "$v", tp.(*ctypes.Record).Name)

	// abstract mention falls back to the counter
	tp, err := c.ResolveType("struct { int y; }")
	require.NoError(t, err)
	assert.Equal(t, "$1", tp.(*ctypes.Record).Name)

	tp, err = c.ResolveType("union { int z; }")
	require.NoError(t, err)
	assert.Equal(t, "$2", tp.(*ctypes.Record).Name)
}

func TestUnionResolution(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("union u { int i; float f; };"))
	tp, ok := c.Lookup("union u")
	require.True(t, ok)
	rec := tp.(*ctypes.Record)
	assert.Equal(t, ctypes.Union, rec.Kind)
	require.Len(t, rec.Fields, 2)

	// the union namespace is distinct from the struct namespace
	require.NoError(t, c.Declare("struct u { int j; };"))
	st, ok := c.Lookup("struct u")
	require.True(t, ok)
	assert.NotSame(t, tp, st)
}

func TestBitfields(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct flags { unsigned a : 1; unsigned b : 3; int plain; };"))
	rec, _ := c.Lookup("struct flags")
	fields := rec.(*ctypes.Record).Fields
	require.Len(t, fields, 3)
	assert.Equal(t, int64(1), fields[0].Bitsize)
	assert.Equal(t, int64(3), fields[1].Bitsize)
	assert.Equal(t, int64(-1), fields[2].Bitsize)
}

func TestElidedFieldTailIsSkipped(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct partial { int known; ...; };"))
	rec, ok := c.Lookup("struct partial")
	require.True(t, ok)
	require.True(t, rec.(*ctypes.Record).Complete)
	require.Len(t, rec.(*ctypes.Record).Fields, 1)
	assert.Equal(t, "known", rec.(*ctypes.Record).Fields[0].Name)
}

func TestNonConstantExpressionRejected(t *testing.T) {
	c := cdecl.NewCompiler()
	err := c.Declare("int a[~3];")
	require.Error(t, err)
	assert.True(t, cdecl.IsNonConstExprError(err))

	err = c.Declare("struct s { int b : !1; };")
	require.Error(t, err)
	assert.True(t, cdecl.IsNonConstExprError(err))
}

func TestSentinelIsNeverAType(t *testing.T) {
	c := cdecl.NewCompiler()
	err := c.Declare("... x;")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnsupportedTypeError(err))
}

func TestParseFailureIsUnsupportedConstruct(t *testing.T) {
	c := cdecl.NewCompiler()
	err := c.Declare("int $$$;")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnsupportedConstructError(err))
}

func TestUnaryNegationConstant(t *testing.T) {
	c := cdecl.NewCompiler()
	tp, err := c.ResolveType("int[(2)]")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tp.(*ctypes.Array).Len)

	// unary negation is the one composite constant form
	require.NoError(t, c.Declare("enum neg { N = -(3) };"))
	en, _ := c.Lookup("enum neg")
	assert.Equal(t, []int64{-3}, en.(*ctypes.Enum).Values)
}

func TestNegativeLengthsRejected(t *testing.T) {
	c := cdecl.NewCompiler()

	err := c.Declare("int a[-1];")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnsupportedTypeError(err))

	_, err = c.ResolveType("int[-2]")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnsupportedTypeError(err))

	err = c.Declare("struct s { int b : -1; };")
	require.Error(t, err)
	assert.True(t, cdecl.IsUnsupportedTypeError(err))
}

func TestFailedDeclareRevertsFieldCompletion(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("struct foo *p;"))

	// the failing tail must not leave the earlier record complete
	err := c.Declare("struct foo { int a; }; int bad[~1];")
	require.Error(t, err)
	tp, ok := c.Lookup("struct foo")
	require.True(t, ok)
	rec := tp.(*ctypes.Record)
	assert.False(t, rec.Complete)
	assert.Nil(t, rec.Fields)

	// a later successful call still completes the same object
	require.NoError(t, c.Declare("struct foo { int a; };"))
	again, _ := c.Lookup("struct foo")
	assert.Same(t, tp, again)
	assert.True(t, again.(*ctypes.Record).Complete)
}

func TestIncrementalAcrossManyCalls(t *testing.T) {
	c := cdecl.NewCompiler()
	require.NoError(t, c.Declare("typedef unsigned long size_t;"))
	require.NoError(t, c.Declare("typedef struct Buf { size_t len; char *data; } buf_t;"))
	require.NoError(t, c.Declare("buf_t *buf_new(size_t cap);"))

	fn, ok := c.Lookup("function buf_new")
	require.True(t, ok)
	ret := fn.(*ctypes.Func).Ret.(*ctypes.Pointer)
	rec, _ := c.Lookup("struct Buf")
	assert.Same(t, rec, ret.To)
	assert.Equal(t, "unsigned long",
		rec.(*ctypes.Record).Fields[0].Type.(*ctypes.Primitive).Name)
}

func TestCompilerInstancesAreIsolated(t *testing.T) {
	c1 := cdecl.NewCompiler()
	c2 := cdecl.NewCompiler()
	require.NoError(t, c1.Declare("typedef int myint;"))
	err := c2.Declare("myint x;")
	require.Error(t, err, "typedefs must not leak between compiler instances")
}

// lastIdent extracts the declared variable name of a simple test
// declaration like "unsigned long int uli;".
func lastIdent(decl string) string {
	end := len(decl) - 1 // trailing ';'
	start := end
	for start > 0 && decl[start-1] != ' ' {
		start--
	}
	return decl[start:end]
}
