package stricttuple

// Renderer formats a record's field name/value pairs for display.
//
// A Renderer is only consulted by Record.String. If it returns an error or
// panics, the record falls back to its built-in representation.
type Renderer interface {
	Render(pairs []Pair) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(pairs []Pair) (string, error)

// Render calls f(pairs).
func (f RendererFunc) Render(pairs []Pair) (string, error) {
	return f(pairs)
}
