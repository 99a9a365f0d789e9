package importer

import "context"

// batcher accumulates inserts and hands them to flush once size items are
// queued. done always sees every flushed item together with the flush error.
type batcher[T any] struct {
	size  int
	items []T
	flush func(ctx context.Context, items []T) error
	done  func(items []T, err error)
}

func newBatcher[T any](size int, flush func(context.Context, []T) error, done func([]T, error)) *batcher[T] {
	if size <= 0 {
		size = 1
	}
	return &batcher[T]{size: size, flush: flush, done: done}
}

func (b *batcher[T]) Add(ctx context.Context, item T) {
	b.items = append(b.items, item)
	if len(b.items) >= b.size {
		b.Flush(ctx)
	}
}

// Flush writes whatever is queued, including a partial batch.
func (b *batcher[T]) Flush(ctx context.Context) {
	if len(b.items) == 0 {
		return
	}
	items := b.items
	b.items = nil
	err := b.flush(ctx, items)
	b.done(items, err)
}
