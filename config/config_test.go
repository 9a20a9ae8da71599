package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveWorkers(t *testing.T) {
	prev := NumCPU
	defer func() { NumCPU = prev }()
	NumCPU = func() int { return 8 }

	assert.Equal(t, 8, ResolveWorkers(0))
	assert.Equal(t, 1, ResolveWorkers(1))
	assert.Equal(t, 4, ResolveWorkers(4))
	assert.Equal(t, 8, ResolveWorkers(-3))
}

type fakeSink struct{ messages []string }

func (f *fakeSink) Warnf(format string, args ...interface{}) {
	f.messages = append(f.messages, format)
}

func TestWarnSinkIsSwappable(t *testing.T) {
	prev := Warn
	defer func() { Warn = prev }()

	sink := &fakeSink{}
	Warn = sink
	Warn.Warnf("truncated %d", 3)
	assert.Len(t, sink.messages, 1)
}

func TestBoundaryString(t *testing.T) {
	assert.Equal(t, "Expand", Expand.String())
	assert.Equal(t, "Wrap", Wrap.String())
	assert.Equal(t, "Sym", Sym.String())
	assert.Equal(t, "Undef", Undef.String())
}
