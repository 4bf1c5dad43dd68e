package tool

import "fmt"

// Registry indexes tools by name. It is built once per agent and read
// concurrently afterwards.
type Registry map[string]Tool

// NewRegistry indexes tools by name, rejecting empty and duplicate names.
func NewRegistry(tools ...Tool) (Registry, error) {
	r := make(Registry, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, dup := r[name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		r[name] = t
	}
	return r, nil
}

// Names returns the registered tool names in no particular order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
