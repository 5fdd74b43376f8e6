package punq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobthemighty/punq"
)

func TestInvalidRegistrationError_Message(t *testing.T) {
	c := punq.New()

	_, err := c.Register(punq.TypeOf[MessageWriter](),
		punq.WithImplementation(&StdoutMessageWriter{}),
		punq.WithInstance(&StdoutMessageWriter{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid registration")
	assert.Contains(t, err.Error(), "MessageWriter")
	assert.Contains(t, err.Error(), "cannot register both")
}

func TestMissingDependencyError_NamesParameterAndOwner(t *testing.T) {
	c := punq.New()
	c.MustRegister(punq.TypeOf[MessageSpeaker](), punq.WithImplementation(&HelloWorldSpeaker{}))

	_, err := punq.Resolve[MessageSpeaker](c)

	var missing punq.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Writer", missing.Parameter)
	assert.Equal(t, punq.TypeOf[HelloWorldSpeaker](), missing.Owner)

	msg := err.Error()
	assert.Contains(t, msg, `"Writer"`)
	assert.Contains(t, msg, "HelloWorldSpeaker")
}

func TestMissingDependencyError_CarriesResolutionPath(t *testing.T) {
	type inner struct {
		Writer MessageWriter
	}
	type outer struct {
		Inner *inner
	}

	c := punq.New()
	c.MustRegister(punq.TypeOf[*inner]())
	c.MustRegister(punq.TypeOf[*outer]())

	_, err := punq.Resolve[*outer](c)

	var missing punq.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	require.Len(t, missing.Path, 2)
	assert.Contains(t, err.Error(), "resolution path")
	assert.Contains(t, err.Error(), "->")
}

func TestMissingDependencyError_TopLevelHasNoParameter(t *testing.T) {
	c := punq.New()

	_, err := c.Resolve("unknown")

	var missing punq.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Empty(t, missing.Parameter)
	assert.Contains(t, err.Error(), `no registration for "unknown"`)
}

func TestInvalidForwardReferenceError_Message(t *testing.T) {
	c := punq.New()
	c.MustRegister(punq.TypeOf[*forwardClient]())

	_, err := punq.Resolve[*forwardClient](c)

	var fwd punq.InvalidForwardReferenceError
	require.ErrorAs(t, err, &fwd)
	assert.Equal(t, "config", fwd.Ref)
	assert.Contains(t, err.Error(), `"config"`)
	assert.Contains(t, err.Error(), "forwardClient")
}

func TestMaxDepthError_Message(t *testing.T) {
	c := punq.New(punq.WithMaxDepth(5))
	c.MustRegister(punq.TypeOf[*node]())

	_, err := punq.Resolve[*node](c)

	var depth punq.MaxDepthError
	require.ErrorAs(t, err, &depth)
	assert.Contains(t, err.Error(), "maximum depth 5")
	assert.Contains(t, err.Error(), "cycle")
}

func TestTypeMismatchError_Message(t *testing.T) {
	c := punq.New()
	c.MustRegister(punq.TypeOf[Greeter](), punq.WithImplementation(&FileWritingGreeter{}))

	_, err := punq.Resolve[Greeter](c,
		punq.Arg("path", []byte("nope")),
		punq.Arg("greeting", "hi"))

	var mismatch punq.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, err.Error(), `"Path"`)
	assert.Contains(t, err.Error(), "[]uint8")
	assert.Contains(t, err.Error(), "string")
}

func TestErrors_InnermostFailureSurfaces(t *testing.T) {
	// A failure three levels deep is surfaced as-is, not wrapped per level.
	c := punq.New()
	c.MustRegister(punq.TypeOf[ConfigReader](), punq.WithImplementation(&EnvConfigReader{}))
	c.MustRegister(punq.TypeOf[Greeter](), punq.WithImplementation(&ConsoleGreeter{}))

	type app struct {
		Greeter Greeter
		Writer  MessageWriter
	}
	c.MustRegister(punq.TypeOf[*app]())

	_, err := punq.Resolve[*app](c)

	var missing punq.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Writer", missing.Parameter)
}
