package registry_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobthemighty/punq/internal/registry"
)

type widget struct{}

type gadget struct{}

var (
	widgetType = reflect.TypeOf(widget{})
	gadgetType = reflect.TypeOf(gadget{})
)

func instanceOf(key registry.Key, value any) *registry.Registration {
	reg := registry.NewRegistration(key)
	reg.Instance = value
	reg.HasInstance = true
	reg.Scope = registry.Singleton
	return reg
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "registry_test.widget", registry.TypeKey(widgetType).String())
	assert.Equal(t, `"database"`, registry.NameKey("database").String())
}

func TestKey_Predicates(t *testing.T) {
	assert.True(t, registry.NameKey("x").IsName())
	assert.False(t, registry.TypeKey(widgetType).IsName())
	assert.True(t, registry.Key{}.IsZero())
	assert.False(t, registry.NameKey("x").IsZero())
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "Transient", registry.Transient.String())
	assert.Equal(t, "Singleton", registry.Singleton.String())
	assert.Equal(t, "Unknown(7)", registry.Scope(7).String())
}

func TestScope_IsValid(t *testing.T) {
	assert.True(t, registry.Transient.IsValid())
	assert.True(t, registry.Singleton.IsValid())
	assert.False(t, registry.Scope(-1).IsValid())
	assert.False(t, registry.Scope(2).IsValid())
}

func TestRegistration_IDsAreUnique(t *testing.T) {
	a := registry.NewRegistration(registry.TypeKey(widgetType))
	b := registry.NewRegistration(registry.TypeKey(widgetType))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRegistration_TargetType(t *testing.T) {
	key := registry.TypeKey(widgetType)

	structural := registry.NewRegistration(key)
	structural.Target = widgetType
	assert.Equal(t, widgetType, structural.TargetType())

	ctor := registry.NewRegistration(key)
	ctor.Constructor = reflect.ValueOf(func() widget { return widget{} })
	assert.Equal(t, reflect.Func, ctor.TargetType().Kind())

	assert.Nil(t, instanceOf(key, widget{}).TargetType())
}

func TestRegistration_ProducedType(t *testing.T) {
	key := registry.TypeKey(widgetType)

	value := registry.NewRegistration(key)
	value.Target = widgetType
	assert.Equal(t, widgetType, value.ProducedType())

	ptr := registry.NewRegistration(key)
	ptr.Target = widgetType
	ptr.TargetPtr = true
	assert.Equal(t, reflect.PointerTo(widgetType), ptr.ProducedType())

	ctor := registry.NewRegistration(key)
	ctor.Constructor = reflect.ValueOf(func() *widget { return &widget{} })
	assert.Equal(t, reflect.PointerTo(widgetType), ctor.ProducedType())

	assert.Equal(t, reflect.PointerTo(widgetType), instanceOf(key, &widget{}).ProducedType())
}

func TestStore_GetReturnsInsertionOrder(t *testing.T) {
	s := registry.NewStore(nil)
	key := registry.TypeKey(widgetType)

	first := instanceOf(key, "first")
	second := instanceOf(key, "second")
	s.Append(first)
	s.Append(second)

	regs := s.Get(key)
	require.Len(t, regs, 2)
	assert.Same(t, first, regs[0])
	assert.Same(t, second, regs[1])
}

func TestStore_GetLayersAncestorsFirst(t *testing.T) {
	key := registry.TypeKey(widgetType)

	parent := registry.NewStore(nil)
	inherited := instanceOf(key, "inherited")
	parent.Append(inherited)

	child := registry.NewStore(parent)
	local := instanceOf(key, "local")
	child.Append(local)

	regs := child.Get(key)
	require.Len(t, regs, 2)
	assert.Same(t, inherited, regs[0])
	assert.Same(t, local, regs[1])

	// The parent never sees the child's layer.
	require.Len(t, parent.Get(key), 1)
}

func TestStore_Has(t *testing.T) {
	parent := registry.NewStore(nil)
	parent.Append(instanceOf(registry.TypeKey(widgetType), widget{}))
	child := registry.NewStore(parent)

	assert.True(t, child.Has(registry.TypeKey(widgetType)))
	assert.True(t, parent.Has(registry.TypeKey(widgetType)))
	assert.False(t, child.Has(registry.TypeKey(gadgetType)))
}

func TestStore_AllYieldsMostRecentFirst(t *testing.T) {
	key := registry.TypeKey(widgetType)

	parent := registry.NewStore(nil)
	oldest := instanceOf(key, "oldest")
	parent.Append(oldest)

	child := registry.NewStore(parent)
	older := instanceOf(key, "older")
	newest := instanceOf(key, "newest")
	child.Append(older)
	child.Append(newest)

	var seen []*registry.Registration
	for reg := range child.All(key) {
		seen = append(seen, reg)
	}

	require.Len(t, seen, 3)
	assert.Same(t, newest, seen[0])
	assert.Same(t, older, seen[1])
	assert.Same(t, oldest, seen[2])
}

func TestStore_AllSupportsEarlyBreak(t *testing.T) {
	key := registry.TypeKey(widgetType)
	s := registry.NewStore(nil)
	s.Append(instanceOf(key, "a"))
	s.Append(instanceOf(key, "b"))

	count := 0
	for range s.All(key) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestStore_AppendBindsTypeName(t *testing.T) {
	s := registry.NewStore(nil)
	s.Append(instanceOf(registry.TypeKey(widgetType), widget{}))

	key, ok := s.ResolveName("widget")
	require.True(t, ok)
	assert.Equal(t, registry.TypeKey(widgetType), key)
}

func TestStore_AppendBindsNameKeys(t *testing.T) {
	s := registry.NewStore(nil)
	s.Append(instanceOf(registry.NameKey("database"), "dsn"))

	key, ok := s.ResolveName("database")
	require.True(t, ok)
	assert.Equal(t, registry.NameKey("database"), key)
}

func TestStore_ResolveNameWalksInnermostFirst(t *testing.T) {
	parent := registry.NewStore(nil)
	parent.Append(instanceOf(registry.TypeKey(widgetType), widget{}))
	parent.BindName("thing", registry.TypeKey(widgetType))

	child := registry.NewStore(parent)
	child.BindName("thing", registry.TypeKey(gadgetType))

	key, ok := child.ResolveName("thing")
	require.True(t, ok)
	assert.Equal(t, registry.TypeKey(gadgetType), key)

	key, ok = parent.ResolveName("thing")
	require.True(t, ok)
	assert.Equal(t, registry.TypeKey(widgetType), key)

	_, ok = child.ResolveName("missing")
	assert.False(t, ok)
}
