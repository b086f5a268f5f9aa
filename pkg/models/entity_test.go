package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpan_Valid(t *testing.T) {
	assert.True(t, Span{Start: 0, End: 4}.Valid())
	assert.True(t, Span{Start: 3, End: 10}.Valid())
	assert.False(t, Span{}.Valid())
	assert.False(t, Span{Start: 5, End: 5}.Valid())
	assert.False(t, Span{Start: 6, End: 2}.Valid())
	assert.False(t, Span{Start: -1, End: 3}.Valid())
}

func TestSpan_Len(t *testing.T) {
	assert.Equal(t, 4, Span{Start: 0, End: 4}.Len())
	assert.Equal(t, 0, Span{}.Len())
	assert.Equal(t, 0, Span{Start: 6, End: 2}.Len())
}

func TestSpan_Overlaps(t *testing.T) {
	base := Span{Start: 5, End: 10}

	assert.True(t, base.Overlaps(Span{Start: 8, End: 12}))
	assert.True(t, base.Overlaps(Span{Start: 0, End: 6}))
	assert.True(t, base.Overlaps(Span{Start: 6, End: 9}))
	// Adjacent ranges do not intersect.
	assert.False(t, base.Overlaps(Span{Start: 10, End: 14}))
	assert.False(t, base.Overlaps(Span{Start: 0, End: 5}))
	// An unknown position never collides with anything.
	assert.False(t, base.Overlaps(Span{}))
	assert.False(t, Span{}.Overlaps(base))
}

func TestEntity_DisplayText(t *testing.T) {
	entity := Entity{Text: "spn1234 fmi5", Type: EntityTypeFaultCode}
	assert.Equal(t, "spn1234 fmi5", entity.DisplayText())

	entity.Canonical = "SPN 1234 FMI 5"
	assert.Equal(t, "SPN 1234 FMI 5", entity.DisplayText())
}
