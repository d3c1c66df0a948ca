package mem

const (
	// ArenaStartSize is the element count of the first block when none is given.
	ArenaStartSize = 64
	// ArenaStandardSize caps the size blocks grow to by doubling.
	ArenaStandardSize = 1 << 16
)

type arenaBlock[T any] struct {
	buf  []T
	used int
}

type arenaAlloc struct {
	block int
	start int
	size  int
}

// Arena is a stack-like allocator backed by blocks. Freeing the most recent
// allocation rewinds it; other frees are deferred until Reset or Release.
// Arena is not safe for concurrent use.
type Arena[T any] struct {
	blocks      []*arenaBlock[T]
	allocations []arenaAlloc
	totalSize   int
	pool        *BufferPool[T]
}

// NewArena creates an arena whose first block holds size elements.
func NewArena[T any](size int) *Arena[T] {
	return NewArenaWithPool[T](size, nil)
}

// NewArenaWithPool creates an arena that takes pool-sized blocks from pool.
func NewArenaWithPool[T any](size int, pool *BufferPool[T]) *Arena[T] {
	if size <= 0 {
		size = ArenaStartSize
	}
	a := &Arena[T]{pool: pool}
	a.addBlock(size)
	return a
}

func (a *Arena[T]) Alloc(n int) []T {
	if a == nil || n <= 0 {
		return nil
	}
	if len(a.blocks) == 0 {
		a.addBlock(max(n, ArenaStartSize))
	}
	idx := len(a.blocks) - 1
	block := a.blocks[idx]
	if n > len(block.buf)-block.used {
		block = a.addBlock(a.nextBlockSize(n))
		idx++
	}
	start := block.used
	block.used += n
	a.allocations = append(a.allocations, arenaAlloc{block: idx, start: start, size: n})
	out := block.buf[start:block.used:block.used]
	clear(out)
	return out
}

func (a *Arena[T]) Realloc(buf []T, n int) []T {
	if a == nil {
		return nil
	}
	if n <= 0 {
		a.Free(buf)
		return nil
	}
	if top, ok := a.top(buf); ok {
		block := a.blocks[top.block]
		if top.start+n <= len(block.buf) {
			end := top.start + n
			if n > top.size {
				clear(block.buf[top.start+top.size : end])
			}
			block.used = end
			a.allocations[len(a.allocations)-1].size = n
			return block.buf[top.start:end:end]
		}
	}
	out := a.Alloc(n)
	copy(out, buf)
	a.Free(buf)
	return out
}

// Free rewinds the arena when buf is the most recent allocation.
func (a *Arena[T]) Free(buf []T) {
	top, ok := a.top(buf)
	if !ok {
		return
	}
	a.allocations = a.allocations[:len(a.allocations)-1]
	block := a.blocks[top.block]
	block.used = top.start
	if block.used == 0 && top.block > 0 && top.block == len(a.blocks)-1 {
		a.releaseBlock(block)
		a.totalSize -= len(block.buf)
		a.blocks = a.blocks[:top.block]
	}
}

// Reset clears the arena while keeping the first block.
func (a *Arena[T]) Reset() {
	if a == nil || len(a.blocks) == 0 {
		return
	}
	for i := len(a.blocks) - 1; i > 0; i-- {
		a.releaseBlock(a.blocks[i])
	}
	a.blocks = a.blocks[:1]
	a.blocks[0].used = 0
	a.allocations = a.allocations[:0]
	a.totalSize = len(a.blocks[0].buf)
}

// Release returns all blocks to the pool or GC.
func (a *Arena[T]) Release() {
	if a == nil {
		return
	}
	for _, block := range a.blocks {
		a.releaseBlock(block)
	}
	a.blocks = nil
	a.allocations = nil
	a.totalSize = 0
}

// Size reports the total element capacity of all blocks.
func (a *Arena[T]) Size() int {
	if a == nil {
		return 0
	}
	return a.totalSize
}

// Blocks reports the number of blocks currently held.
func (a *Arena[T]) Blocks() int {
	if a == nil {
		return 0
	}
	return len(a.blocks)
}

func (a *Arena[T]) top(buf []T) (arenaAlloc, bool) {
	if a == nil || cap(buf) == 0 || len(a.allocations) == 0 {
		return arenaAlloc{}, false
	}
	top := a.allocations[len(a.allocations)-1]
	block := a.blocks[top.block]
	if top.size == 0 || &block.buf[top.start] != &buf[:1][0] {
		return arenaAlloc{}, false
	}
	return top, true
}

func (a *Arena[T]) nextBlockSize(minSize int) int {
	newSize := ArenaStartSize
	if len(a.blocks) > 0 {
		newSize = len(a.blocks[len(a.blocks)-1].buf) * 2
	}
	if newSize > ArenaStandardSize {
		newSize = ArenaStandardSize
	}
	if newSize < minSize {
		newSize = minSize
	}
	return newSize
}

func (a *Arena[T]) addBlock(size int) *arenaBlock[T] {
	block := &arenaBlock[T]{buf: a.allocBlock(size)}
	a.blocks = append(a.blocks, block)
	a.totalSize += len(block.buf)
	return block
}

func (a *Arena[T]) allocBlock(size int) []T {
	if a.pool != nil && size == a.pool.Size() {
		return a.pool.Get()
	}
	return make([]T, size)
}

func (a *Arena[T]) releaseBlock(block *arenaBlock[T]) {
	if block == nil {
		return
	}
	if a.pool != nil && cap(block.buf) == a.pool.Size() {
		a.pool.Put(block.buf)
	}
}
