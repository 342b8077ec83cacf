package step

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	repo := NewRepository()
	p := Add(repo, &CartesianPoint{Name: "it's; tricky"})
	v := Add(repo, &VertexPoint{Point: p})
	unit := Add(repo, NewComplex(
		Part{Keyword: "SI_UNIT", Attributes: []Value{Enum("MILLI"), Enum("METRE")}},
		Part{Keyword: "LENGTH_UNIT"},
		Part{Keyword: "NAMED_UNIT", Attributes: []Value{Derived}},
	))
	Add(repo, &UncertaintyMeasureWithUnit{
		Value: Typed{Keyword: "LENGTH_MEASURE", Value: Real(1e-5)},
		Unit:  unit, Name: "distance_accuracy_value",
	})

	text, err := Format(repo, Header{
		FileName:  "part",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Author:    []string{"Zoë"},
		Schemas:   []string{"AUTOMOTIVE_DESIGN"},
	})
	require.NoError(t, err)

	doc, err := Parse(strings.NewReader(text))
	require.NoError(t, err)

	require.Len(t, doc.Header, 3)
	assert.Equal(t, "FILE_DESCRIPTION", doc.Header[0].Keyword())
	assert.Equal(t, "FILE_NAME", doc.Header[1].Keyword())
	assert.Equal(t, "FILE_SCHEMA", doc.Header[2].Keyword())
	assert.Contains(t, doc.Header[1].Strings, "Zoë")

	require.Len(t, doc.Records, 4)
	first, ok := doc.Get(1)
	require.True(t, ok)
	assert.Equal(t, "CARTESIAN_POINT", first.Keyword())
	assert.Equal(t, []string{"it's; tricky"}, first.Strings)

	vertex, ok := doc.Get(v.ID())
	require.True(t, ok)
	assert.Equal(t, []int{1}, vertex.Refs)

	u, ok := doc.Get(unit.ID())
	require.True(t, ok)
	assert.Equal(t, []string{"LENGTH_UNIT", "NAMED_UNIT", "SI_UNIT"}, u.Keywords)
	assert.True(t, u.Is("SI_UNIT"))

	unc := doc.Find("UNCERTAINTY_MEASURE_WITH_UNIT")
	require.Len(t, unc, 1)
	assert.Equal(t, []string{"UNCERTAINTY_MEASURE_WITH_UNIT"}, unc[0].Keywords)
	assert.Equal(t, []int{unit.ID()}, unc[0].Refs)

	assert.Equal(t, 1, doc.Count("LENGTH_UNIT"))
	assert.Equal(t, []string{
		"CARTESIAN_POINT", "LENGTH_UNIT", "NAMED_UNIT", "SI_UNIT",
		"UNCERTAINTY_MEASURE_WITH_UNIT", "VERTEX_POINT",
	}, doc.Keywords())
	assert.Empty(t, doc.Check())
}

func TestParseHandlesCommentsAndLineBreaks(t *testing.T) {
	text := "ISO-10303-21;\nHEADER;\n/* generated; by hand */\nFILE_SCHEMA(('X'));\nENDSEC;\nDATA;\n" +
		"#10=CARTESIAN_POINT('',\n(0.,0.,0.));\n#11=VERTEX_POINT('',#10);\nENDSEC;\nEND-ISO-10303-21;\n"

	doc, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, doc.Records, 2)
	rec, ok := doc.Get(11)
	require.True(t, ok)
	assert.Equal(t, []int{10}, rec.Refs)
	assert.Equal(t, []int{11}, doc.Roots())
}

func TestParseLineBreaksSeparateTokens(t *testing.T) {
	text := "ISO-10303-21;\nHEADER;\nFILE_SCHEMA(('X'));\nENDSEC;\nDATA;\n" +
		"#1=\nCARTESIAN_POINT\n('',(0.,0.,0.));\n" +
		"#2 = VERTEX_POINT ('',#1);\n" +
		"#3=(\nNAMED_UNIT(*)\nSI_UNIT($,.METRE.)/* x */LENGTH_UNIT()\n);\n" +
		"ENDSEC;\nEND-ISO-10303-21;\n"

	doc, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, doc.Records, 3)

	point, ok := doc.Get(1)
	require.True(t, ok)
	assert.Equal(t, "CARTESIAN_POINT", point.Keyword())

	vertex, ok := doc.Get(2)
	require.True(t, ok)
	assert.Equal(t, []string{"VERTEX_POINT"}, vertex.Keywords)
	assert.Equal(t, []int{1}, vertex.Refs)

	unit, ok := doc.Get(3)
	require.True(t, ok)
	assert.Equal(t, []string{"NAMED_UNIT", "SI_UNIT", "LENGTH_UNIT"}, unit.Keywords)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing opening", "HEADER;ENDSEC;DATA;ENDSEC;END-ISO-10303-21;"},
		{"missing closing", "ISO-10303-21;HEADER;ENDSEC;DATA;ENDSEC;"},
		{"duplicate id", "ISO-10303-21;DATA;#1=A();#1=B();ENDSEC;END-ISO-10303-21;"},
		{"bad id", "ISO-10303-21;DATA;#x=A();ENDSEC;END-ISO-10303-21;"},
		{"no keyword", "ISO-10303-21;DATA;#1=(1.,2.);ENDSEC;END-ISO-10303-21;"},
		{"unbalanced", "ISO-10303-21;DATA;#1=A((1.);ENDSEC;END-ISO-10303-21;"},
		{"unterminated string", "ISO-10303-21;DATA;#1=A('abc);"},
		{"outside section", "ISO-10303-21;#1=A();END-ISO-10303-21;"},
		{"trailing text", "ISO-10303-21;DATA;ENDSEC;END-ISO-10303-21;junk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.text))
			assert.Error(t, err)
		})
	}
}
