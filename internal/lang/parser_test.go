package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AssignAndCall(t *testing.T) {
	src := "x = get_document(name=\"Q4_Financial_Report.pdf\")\n"
	mod, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)

	assign, ok := mod.Body[0].(*Assign)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Target)

	call, ok := assign.Value.(*Call)
	require.True(t, ok)
	name, ok := call.Func.(*Name)
	require.True(t, ok)
	assert.Equal(t, "get_document", name.Id)
	require.Len(t, call.Keywords, 1)
	assert.Equal(t, "name", call.Keywords[0].Name)
}

func TestParse_IfElse(t *testing.T) {
	src := "if x == 1:\n    y = 2\nelse:\n    y = 3\n"
	mod, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)

	ifStmt, ok := mod.Body[0].(*If)
	require.True(t, ok)
	assert.Len(t, ifStmt.Body, 1)
	assert.Len(t, ifStmt.Orelse, 1)
}

func TestParse_AttributeAndSubscript(t *testing.T) {
	src := "x = doc.content[0]\n"
	mod, err := Parse(src)
	require.NoError(t, err)
	assign := mod.Body[0].(*Assign)
	sub, ok := assign.Value.(*Subscript)
	require.True(t, ok)
	_, ok = sub.Value.(*Attribute)
	assert.True(t, ok)
}

func TestParse_BoolAndCompareChain(t *testing.T) {
	src := "x = a < b and not c == d\n"
	mod, err := Parse(src)
	require.NoError(t, err)
	assign := mod.Body[0].(*Assign)
	boolOp, ok := assign.Value.(*BoolOp)
	require.True(t, ok)
	assert.Equal(t, "and", boolOp.Op)
}

func TestParse_Return(t *testing.T) {
	src := "if True:\n    return 1\n"
	mod, err := Parse(src)
	require.NoError(t, err)
	ifStmt := mod.Body[0].(*If)
	ret, ok := ifStmt.Body[0].(*Return)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
}

func TestParse_ForbiddenImport(t *testing.T) {
	_, err := Parse("import os\n")
	require.Error(t, err)
	var fe *ForbiddenConstructError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Import", fe.Construct)
}

func TestParse_ForbiddenConstructs(t *testing.T) {
	cases := map[string]string{
		"ClassDef":         "class Foo:\n    pass\n",
		"FunctionDef":      "def foo():\n    pass\n",
		"While":            "while True:\n    pass\n",
		"For":              "for x in y:\n    pass\n",
		"Try":              "try:\n    x = 1\nexcept:\n    pass\n",
		"With":             "with x:\n    pass\n",
		"Lambda":           "x = lambda: 1\n",
		"Global":           "global x\n",
		"Nonlocal":         "nonlocal x\n",
	}
	for want, src := range cases {
		_, err := Parse(src)
		require.Error(t, err, "src=%q", src)
		var fe *ForbiddenConstructError
		require.ErrorAs(t, err, &fe, "src=%q", src)
		assert.Equal(t, want, fe.Construct, "src=%q", src)
	}
}

func TestParse_ListTupleDict(t *testing.T) {
	mod, err := Parse("x = [1, 2, 3]\ny = (1, 2)\nz = {\"a\": 1}\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 3)
	_, ok := mod.Body[0].(*Assign).Value.(*ListExpr)
	assert.True(t, ok)
	_, ok = mod.Body[1].(*Assign).Value.(*TupleExpr)
	assert.True(t, ok)
	_, ok = mod.Body[2].(*Assign).Value.(*DictExpr)
	assert.True(t, ok)
}

func TestParse_Slice(t *testing.T) {
	mod, err := Parse("x = y[1:2]\n")
	require.NoError(t, err)
	sub := mod.Body[0].(*Assign).Value.(*Subscript)
	sl, ok := sub.Index.(*Slice)
	require.True(t, ok)
	assert.NotNil(t, sl.Lower)
	assert.NotNil(t, sl.Upper)
}
