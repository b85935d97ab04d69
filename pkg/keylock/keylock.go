// Package keylock 进程内按key加锁
//
// 同一个key的临界区串行执行，不同key互不影响。
// 没有被持有的key会被回收，map不会无限增长。
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	ch   chan struct{} // 容量为1，持有即占位
	refs int
}

// KeyLock 进程内keyed mutex
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New 创建KeyLock
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Lock 获取key对应的锁，ctx取消时放弃等待
// 返回的unlock必须且只能调用一次
func (k *KeyLock) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

func (k *KeyLock) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

// Len 当前被引用的key数量
func (k *KeyLock) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
