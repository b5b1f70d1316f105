package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

type Func = func(ctx huma.Context, next func(huma.Context))

// Container собирает набор мидлварей для одной группы операций.
type Container struct {
	common huma.Middlewares
	items  huma.Middlewares
}

// NewContainer создает контейнер. common добавляются в начало каждого набора.
func NewContainer(common ...Func) *Container {
	c := &Container{}
	for _, mw := range common {
		c.common = append(c.common, mw)
	}
	return c
}

// Add добавляет мидлвари в текущий набор
func (mc *Container) Add(mws ...Func) *Container {
	for _, mw := range mws {
		mc.items = append(mc.items, mw)
	}
	return mc
}

// GetAllAndClear возвращает общие и добавленные мидлвари и очищает набор
func (mc *Container) GetAllAndClear() huma.Middlewares {
	result := make(huma.Middlewares, 0, len(mc.common)+len(mc.items))
	result = append(result, mc.common...)
	result = append(result, mc.items...)
	mc.items = nil
	return result
}
