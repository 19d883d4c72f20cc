package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFrom(t *testing.T) {
	str, ok := ValueFrom("guitar").AsString()
	assert.True(t, ok)
	assert.Equal(t, "guitar", str)

	num, ok := ValueFrom(42).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 42.0, num)

	b, ok := ValueFrom(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.Equal(t, KindNull, ValueFrom(nil).Kind())

	// Non-scalars are stringified so property maps stay scalar-only
	str, ok = ValueFrom([]int{1, 2}).AsString()
	assert.True(t, ok)
	assert.Equal(t, "[1 2]", str)
}

func TestValueJSONRoundTrip(t *testing.T) {
	props := Properties{
		"name":   String("Guitar"),
		"years":  Number(5),
		"active": Bool(true),
		"note":   Null(),
	}

	data, err := json.Marshal(props)
	require.NoError(t, err)

	var decoded Properties
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, props["name"], decoded["name"])
	assert.Equal(t, props["years"], decoded["years"])
	assert.Equal(t, props["active"], decoded["active"])
	assert.Equal(t, KindNull, decoded["note"].Kind())
}

func TestPropertiesMerge(t *testing.T) {
	existing := Properties{
		"category": String("general"),
		"level":    String("beginner"),
	}
	incoming := Properties{
		"level": String("advanced"),
		"years": Number(3),
	}

	existing.Merge(incoming)

	// Incoming wins on conflict, untouched keys survive
	level, _ := existing["level"].AsString()
	assert.Equal(t, "advanced", level)
	category, _ := existing["category"].AsString()
	assert.Equal(t, "general", category)
	years, _ := existing["years"].AsNumber()
	assert.Equal(t, 3.0, years)
}

func TestPropertiesMergeEmpty(t *testing.T) {
	existing := Properties{"key": String("value")}
	existing.Merge(Properties{})

	val, _ := existing["key"].AsString()
	assert.Equal(t, "value", val)
	assert.Len(t, existing, 1)
}

func TestPropertiesClone(t *testing.T) {
	original := Properties{"key": String("value")}
	clone := original.Clone()
	clone["key"] = String("changed")

	val, _ := original["key"].AsString()
	assert.Equal(t, "value", val)
}

func TestPropertiesNative(t *testing.T) {
	props := Properties{
		"name":  String("Berlin"),
		"count": Number(2),
		"flag":  Bool(false),
	}
	native := props.Native()

	assert.Equal(t, "Berlin", native["name"])
	assert.Equal(t, 2.0, native["count"])
	assert.Equal(t, false, native["flag"])
}

func TestPropertiesKeysSorted(t *testing.T) {
	props := Properties{
		"zebra": String("z"),
		"alpha": String("a"),
		"mid":   String("m"),
	}
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, props.Keys())
}
