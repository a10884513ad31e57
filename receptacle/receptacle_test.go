package receptacle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hupe1980/compmesh/core"
)

type greeter interface {
	Greet() string
}

type sink struct {
	name  string
	attrs map[string]core.TypedAttribute
}

func (s *sink) Greet() string { return "hello from " + s.name }

func (s *sink) QueryInterface(name string) any {
	switch name {
	case "IGreet":
		return s
	case core.IMetaInterface:
		return sinkMeta{s}
	}
	return nil
}

type sinkMeta struct{ s *sink }

func (sinkMeta) EnumInterfaces() []string               { return []string{"IGreet"} }
func (sinkMeta) EnumReceptacles() []core.ReceptacleInfo { return nil }
func (m sinkMeta) SetAttributeValue(_ string, _ core.AttributeScope, name string, attr core.TypedAttribute) bool {
	m.s.attrs[name] = attr
	return true
}
func (m sinkMeta) AttributeValue(iid string, scope core.AttributeScope, name string) (core.TypedAttribute, bool) {
	if iid != "IGreet" || scope != core.ScopeInterface {
		return core.TypedAttribute{}, false
	}
	a, ok := m.s.attrs[name]
	return a, ok
}
func (m sinkMeta) AllValues(core.AttributeScope, string) map[string]core.TypedAttribute {
	return m.s.attrs
}

func newSink(name string) *sink { return &sink{name: name, attrs: map[string]core.TypedAttribute{}} }

type mute struct{}

func (mute) QueryInterface(string) any { return nil }

func TestSingle_Cardinality(t *testing.T) {
	r := NewSingle[greeter]("IGreet")
	assert.Equal(t, core.ReceptacleSingle, r.Kind())
	assert.Equal(t, "IGreet", r.InterfaceType())

	_, ok := r.Get()
	assert.False(t, ok)

	require.True(t, r.ConnectTo(newSink("a"), 1))
	assert.False(t, r.ConnectTo(newSink("b"), 2))

	g, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, "hello from a", g.Greet())

	id, ok := r.ConnID()
	assert.True(t, ok)
	assert.Equal(t, core.ConnID(1), id)

	assert.False(t, r.DisconnectFrom(2))
	assert.True(t, r.DisconnectFrom(1))
	assert.False(t, r.DisconnectFrom(1))

	require.True(t, r.ConnectTo(newSink("b"), 3))
}

func TestSingle_RejectsWrongCapability(t *testing.T) {
	r := NewSingle[greeter]("IGreet")
	assert.False(t, r.ConnectTo(mute{}, 1))
	assert.False(t, r.ConnectTo(nil, 1))
}

func TestSingle_CardinalityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewSingle[greeter]("IGreet")
		var held bool
		var heldID core.ConnID
		next := core.ConnID(1)

		n := rapid.IntRange(1, 50).Draw(t, "ops")
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "connect") {
				ok := r.ConnectTo(newSink("s"), next)
				if ok == held {
					t.Fatalf("connect returned %v while held=%v", ok, held)
				}
				if ok {
					held, heldID = true, next
				}
				next++
				continue
			}
			ok := r.DisconnectFrom(heldID)
			if ok != held {
				t.Fatalf("disconnect returned %v while held=%v", ok, held)
			}
			held = false
		}
		_, bound := r.Get()
		if bound != held {
			t.Fatalf("bound=%v, want %v", bound, held)
		}
	})
}

func TestMulti_ConnectDisconnect(t *testing.T) {
	r := NewMulti[greeter]("IGreet")
	assert.Equal(t, core.ReceptacleMulti, r.Kind())

	require.True(t, r.ConnectTo(newSink("a"), 1))
	require.True(t, r.ConnectTo(newSink("b"), 2))
	require.True(t, r.ConnectTo(newSink("c"), 3))
	assert.False(t, r.ConnectTo(newSink("dup"), 2))
	assert.Equal(t, 3, r.Len())

	assert.True(t, r.DisconnectFrom(2))
	assert.False(t, r.DisconnectFrom(2))

	var got []string
	r.Each(func(_ core.ConnID, g greeter) bool {
		got = append(got, g.Greet())
		return true
	})
	assert.Equal(t, []string{"hello from a", "hello from c"}, got)

	g, ok := r.At(1)
	require.True(t, ok)
	assert.Equal(t, "hello from c", g.Greet())
	_, ok = r.At(5)
	assert.False(t, ok)
	assert.Len(t, r.Targets(), 2)
}

func TestMulti_EachStops(t *testing.T) {
	r := NewMulti[greeter]("IGreet")
	r.ConnectTo(newSink("a"), 1)
	r.ConnectTo(newSink("b"), 2)

	calls := 0
	r.Each(func(core.ConnID, greeter) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

func TestMultiContext_Lookup(t *testing.T) {
	r := NewMultiContext[greeter]("IGreet")
	assert.Equal(t, core.ReceptacleMultiContext, r.Kind())

	fast, slow := newSink("fast"), newSink("slow")
	fast.attrs["speed"] = core.StringAttr("fast")
	slow.attrs["speed"] = core.StringAttr("slow")

	require.True(t, r.ConnectTo(slow, 1))
	require.True(t, r.ConnectTo(fast, 2))

	assert.Equal(t, 1, r.ContextIndex("speed", "fast"))
	assert.Equal(t, -1, r.ContextIndex("speed", "medium"))

	g, ok := r.Lookup("speed", "fast")
	require.True(t, ok)
	assert.Equal(t, "hello from fast", g.Greet())

	_, ok = r.Lookup("colour", "red")
	assert.False(t, ok)
}

func TestReceptacle_Data(t *testing.T) {
	r := NewSingle[greeter]("IGreet")

	assert.False(t, r.PutData("", core.IntAttr(1)))
	require.True(t, r.PutData("retries", core.IntAttr(3)))

	v, ok := r.Value("retries")
	require.True(t, ok)
	assert.True(t, v.Equal(3))

	vals := r.Values()
	assert.Len(t, vals, 1)
	vals["x"] = core.IntAttr(1)
	assert.Len(t, r.Values(), 1)
}
