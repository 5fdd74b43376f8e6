package punq_test

import (
	"fmt"
	"os"

	"github.com/bobthemighty/punq"
)

// Shared fixture types used across the test files. They mirror the kind of
// object graphs the container is built for: an interface with several
// implementations, composites over those implementations, and a chain of
// collaborators.

type MessageWriter interface {
	Write(msg string)
}

// Exported fields are constructor parameters, so implementation state
// stays unexported.
type StdoutMessageWriter struct {
	written []string
}

func (w *StdoutMessageWriter) Write(msg string) {
	w.written = append(w.written, msg)
}

type TmpFileMessageWriter struct {
	Path string
}

func (w *TmpFileMessageWriter) Write(msg string) {}

type MessageSpeaker interface {
	Speak() string
}

type HelloWorldSpeaker struct {
	Writer MessageWriter
}

func (s *HelloWorldSpeaker) Speak() string {
	s.Writer.Write("Hello World")
	return "Hello World"
}

// BroadcastSpeaker depends on every registered MessageWriter.
type BroadcastSpeaker struct {
	Writers []MessageWriter
}

func (s *BroadcastSpeaker) Speak() string {
	for _, w := range s.Writers {
		w.Write("Hello World")
	}
	return fmt.Sprintf("broadcast to %d writers", len(s.Writers))
}

// Greeter types for the end-to-end scenarios.

type ConfigReader interface {
	Read(key string) string
}

type EnvConfigReader struct {
	Prefix string `optional:"true"`
}

func (r *EnvConfigReader) Read(key string) string {
	return os.Getenv(r.Prefix + key)
}

type Greeter interface {
	Greet(name string) string
}

type ConsoleGreeter struct {
	Config ConfigReader
}

func (g *ConsoleGreeter) Greet(name string) string {
	greeting := g.Config.Read("GREETING")
	if greeting == "" {
		greeting = "Hello"
	}
	return greeting + " " + name
}

type FileWritingGreeter struct {
	Path     string
	Greeting string
}

func (g *FileWritingGreeter) Greet(name string) string {
	return g.Greeting + " " + name
}

// Filter types model a chain of collaborators assembled from stacked
// registrations of a single key.

type Filter interface {
	Match(input string) bool
}

type callLog struct {
	calls []string
}

type IsA struct {
	Next Filter
	Log  *callLog
}

func (f *IsA) Match(input string) bool {
	f.Log.calls = append(f.Log.calls, "is_a")
	return input == "A" || f.Next.Match(input)
}

type IsB struct {
	Next Filter
	Log  *callLog
}

func (f *IsB) Match(input string) bool {
	f.Log.calls = append(f.Log.calls, "is_b")
	return input == "B" || f.Next.Match(input)
}

type IsC struct {
	Next Filter
	Log  *callLog
}

func (f *IsC) Match(input string) bool {
	f.Log.calls = append(f.Log.calls, "is_c")
	return input == "C" || f.Next.Match(input)
}

type NullFilter struct {
	Log *callLog
}

func (f *NullFilter) Match(input string) bool {
	f.Log.calls = append(f.Log.calls, "null")
	return false
}

// Dispatcher receives the active container and picks implementations
// dynamically.
type Dispatcher struct {
	Container *punq.Container
}

func (d *Dispatcher) Dispatch() ([]any, error) {
	return d.Container.ResolveAll(punq.TypeOf[MessageWriter]())
}
