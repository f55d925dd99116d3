package server

import (
	"fmt"
	"reflect"
)

// container resolves constructor arguments by type. Provider results are
// memoised, so every type has a single instance per server.
type container struct {
	singletons map[reflect.Type]reflect.Value
	providers  map[reflect.Type]reflect.Value // func(...) T
	resolving  map[reflect.Type]bool
}

func newContainer(
	singletons map[reflect.Type]reflect.Value,
	providers map[reflect.Type]reflect.Value,
) *container {
	return &container{singletons: singletons, providers: providers, resolving: map[reflect.Type]bool{}}
}

func (c *container) resolve(t reflect.Type) (reflect.Value, error) {
	if v, ok := c.singletons[t]; ok {
		return v, nil
	}

	p, ok := c.providers[t]
	if !ok {
		return reflect.Value{}, fmt.Errorf("no provider for %v", t)
	}
	if c.resolving[t] {
		return reflect.Value{}, fmt.Errorf("dependency cycle while resolving %v", t)
	}
	c.resolving[t] = true
	defer delete(c.resolving, t)

	args := make([]reflect.Value, p.Type().NumIn())
	for i := range args {
		v, err := c.resolve(p.Type().In(i))
		if err != nil {
			return v, err
		}
		args[i] = v
	}
	v := p.Call(args)[0]
	c.singletons[t] = v // memoise
	return v, nil
}
