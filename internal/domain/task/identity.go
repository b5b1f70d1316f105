package task

import (
	"sync"
	"time"
)

// IDAllocator выдаёт временные отрицательные ID для задач, созданных офлайн.
// Значения строго убывают в пределах процесса, поэтому повторный вызов
// в ту же миллисекунду не даёт дубликата.
type IDAllocator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDAllocator создаёт генератор. floor — наименьший ID, уже занятый в хранилище.
func NewIDAllocator(floor int64) *IDAllocator {
	return NewIDAllocatorWithClock(floor, time.Now)
}

func NewIDAllocatorWithClock(floor int64, now func() time.Time) *IDAllocator {
	if floor > 0 {
		floor = 0
	}
	return &IDAllocator{last: floor, now: now}
}

// Next возвращает очередной временный ID.
func (a *IDAllocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := -a.now().UnixMilli()
	if id >= a.last {
		id = a.last - 1
	}
	a.last = id
	return id
}
